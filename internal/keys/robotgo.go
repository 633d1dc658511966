package keys

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// Robotgo injects key events into the OS event stream in-process.
type Robotgo struct {
	toggle func(key string, args ...interface{}) error
}

// NewRobotgo creates a robotgo-backed injector.
func NewRobotgo() *Robotgo {
	return &Robotgo{toggle: robotgo.KeyToggle}
}

// PressKey sends a key-down event for sym.
func (r *Robotgo) PressKey(sym string) error {
	return r.send(sym, "down")
}

// ReleaseKey sends a key-up event for sym.
func (r *Robotgo) ReleaseKey(sym string) error {
	return r.send(sym, "up")
}

func (r *Robotgo) send(sym, state string) error {
	key, err := Normalize(sym)
	if err != nil {
		return err
	}
	if err := r.toggle(key, state); err != nil {
		return fmt.Errorf("robotgo key %s %s: %w", key, state, err)
	}
	return nil
}
