package keys

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/handwheel/internal/plugin"
)

// DefaultPlugin is the plugin used when none is named.
const DefaultPlugin = "keyboard"

// Plugin injects key events by running a key plugin once per event.
type Plugin struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
}

// NewPlugin discovers plugins under dir and binds the one called name.
func NewPlugin(dir, name string, timeout time.Duration) (*Plugin, error) {
	if name == "" {
		name = DefaultPlugin
	}

	mgr := plugin.NewManager(dir)
	if err := mgr.Discover(); err != nil {
		return nil, fmt.Errorf("discover plugins in %s: %w", dir, err)
	}

	p, err := mgr.Resolve(name, plugin.ActionKeyDown, plugin.ActionKeyUp)
	if err != nil {
		return nil, fmt.Errorf("key plugin in %s: %w", dir, err)
	}

	return &Plugin{
		plugin:   p,
		executor: plugin.NewExecutor(timeout),
	}, nil
}

// PressKey asks the plugin to hold sym.
func (p *Plugin) PressKey(sym string) error {
	return p.run(plugin.ActionKeyDown, sym)
}

// ReleaseKey asks the plugin to release sym.
func (p *Plugin) ReleaseKey(sym string) error {
	return p.run(plugin.ActionKeyUp, sym)
}

func (p *Plugin) run(action, sym string) error {
	key, err := Normalize(sym)
	if err != nil {
		return err
	}

	resp, err := p.executor.Execute(context.Background(), p.plugin, &plugin.Request{
		Action: action,
		Key:    key,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error == "" {
			return errors.New(action + " " + key + ": plugin reported failure")
		}
		return fmt.Errorf("%s %s: %s", action, key, resp.Error)
	}
	return nil
}
