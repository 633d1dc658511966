// Package main provides the keyboard plugin for handwheel.
// It holds, releases and taps the driving keys through robotgo.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Key    string          `json:"key"`
	HoldMs int             `json:"hold_ms,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// defaultHold is how long key-tap holds a key when hold_ms is unset.
const defaultHold = 100 * time.Millisecond

// drivingKeys are the only keys this plugin will touch.
var drivingKeys = map[string]bool{
	"w": true,
	"a": true,
	"s": true,
	"d": true,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	key := strings.ToLower(req.Key)
	if !drivingKeys[key] {
		writeErrorResponse(fmt.Sprintf("unsupported key: %q", req.Key))
		return
	}

	var err error
	switch req.Action {
	case "key-down":
		err = robotgo.KeyToggle(key, "down")
	case "key-up":
		err = robotgo.KeyToggle(key, "up")
	case "key-tap":
		err = tap(key, req.HoldMs)
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

// tap holds key for holdMs milliseconds and releases it.
func tap(key string, holdMs int) error {
	hold := defaultHold
	if holdMs > 0 {
		hold = time.Duration(holdMs) * time.Millisecond
	}

	if err := robotgo.KeyToggle(key, "down"); err != nil {
		return err
	}
	time.Sleep(hold)
	return robotgo.KeyToggle(key, "up")
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{
		Success: false,
		Error:   errMsg,
	})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
