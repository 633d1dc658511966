// Package plugin discovers and runs out-of-process key injectors.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// Each invocation receives one JSON Request on stdin and must write one JSON
// Response on stdout.
package plugin

import "encoding/json"

// Actions understood by key plugins.
const (
	ActionKeyDown = "key-down"
	ActionKeyUp   = "key-up"
	ActionKeyTap  = "key-tap"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Request is sent to a plugin on stdin.
type Request struct {
	Action string          `json:"action"`
	Key    string          `json:"key"`
	HoldMs int             `json:"hold_ms,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the manifest lists action.
func (p *Plugin) Supports(action string) bool {
	for _, a := range p.Manifest.Actions {
		if a == action {
			return true
		}
	}
	return false
}
