package steer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ayusman/handwheel/internal/log"
)

// ErrInvalidDirection is returned when asked to press or release a direction
// that has no key.
var ErrInvalidDirection = errors.New("invalid direction")

// Direction is one of the four driving keys.
type Direction int

const (
	DirForward Direction = iota
	DirLeft
	DirRight
	DirReverse
	numDirections
)

var directionSymbols = [numDirections]string{
	DirForward: "w",
	DirLeft:    "a",
	DirRight:   "d",
	DirReverse: "s",
}

// releaseOrder is the order in which the non-target keys are released.
var releaseOrder = [numDirections]Direction{DirReverse, DirLeft, DirRight, DirForward}

// Symbol returns the key symbol bound to the direction.
func (d Direction) Symbol() (string, error) {
	if d < 0 || d >= numDirections {
		return "", fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return directionSymbols[d], nil
}

// String returns the key symbol, or "?" for an invalid direction.
func (d Direction) String() string {
	sym, err := d.Symbol()
	if err != nil {
		return "?"
	}
	return sym
}

// KeyPressState is the set of direction keys currently held down.
type KeyPressState uint8

// Held reports whether d is held.
func (s KeyPressState) Held(d Direction) bool {
	if d < 0 || d >= numDirections {
		return false
	}
	return s&(1<<d) != 0
}

// Count returns the number of held keys.
func (s KeyPressState) Count() int {
	n := 0
	for d := Direction(0); d < numDirections; d++ {
		if s.Held(d) {
			n++
		}
	}
	return n
}

// String lists the held key symbols, e.g. "w" or "none".
func (s KeyPressState) String() string {
	var held []string
	for d := Direction(0); d < numDirections; d++ {
		if s.Held(d) {
			held = append(held, directionSymbols[d])
		}
	}
	if len(held) == 0 {
		return "none"
	}
	return strings.Join(held, "+")
}

func (s KeyPressState) with(d Direction) KeyPressState    { return s | 1<<d }
func (s KeyPressState) without(d Direction) KeyPressState { return s &^ (1 << d) }

// Injector sends key events to the operating system.
type Injector interface {
	PressKey(symbol string) error
	ReleaseKey(symbol string) error
}

// Controller owns the held-key state and drives an Injector.
// It is not safe for concurrent use; the frame loop is its only caller.
type Controller struct {
	injector Injector
	state    KeyPressState
	logger   *slog.Logger
}

// NewController creates a Controller with nothing held.
// A nil logger uses the global logger.
func NewController(injector Injector, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = log.L()
	}
	return &Controller{
		injector: injector,
		logger:   logger,
	}
}

// State returns a snapshot of the held keys.
func (c *Controller) State() KeyPressState {
	return c.state
}

// Apply moves the key state to the one cmd asks for.
//
// For a concrete command the other three directions are released and then
// the command's direction is pressed. Every call is issued even when the
// state says it is redundant, so an out-of-band key change is corrected on the
// next frame. Idle issues nothing. Failures are logged and do not stop the
// remaining calls.
func (c *Controller) Apply(cmd Command) {
	target, ok := cmd.Direction()
	if !ok {
		return
	}

	for _, d := range releaseOrder {
		if d == target {
			continue
		}
		if err := c.Release(d); err != nil {
			c.logger.Warn("key release failed", "command", cmd, "key", d, "error", err)
		}
	}

	if err := c.Press(target); err != nil {
		c.logger.Warn("key press failed", "command", cmd, "key", target, "error", err)
	}
}

// Press holds the key for d.
// The state records the press even if the injector fails.
func (c *Controller) Press(d Direction) error {
	sym, err := d.Symbol()
	if err != nil {
		return err
	}

	c.state = c.state.with(d)
	if err := c.injector.PressKey(sym); err != nil {
		return fmt.Errorf("press %s: %w", sym, err)
	}
	return nil
}

// Release lets go of the key for d.
// The state records the release even if the injector fails.
func (c *Controller) Release(d Direction) error {
	sym, err := d.Symbol()
	if err != nil {
		return err
	}

	c.state = c.state.without(d)
	if err := c.injector.ReleaseKey(sym); err != nil {
		return fmt.Errorf("release %s: %w", sym, err)
	}
	return nil
}

// ReleaseAll releases every direction and empties the state.
func (c *Controller) ReleaseAll() {
	for _, d := range releaseOrder {
		if err := c.Release(d); err != nil {
			c.logger.Warn("key release failed", "key", d, "error", err)
		}
	}
}
