// Package keys provides the key-event injectors behind the steering
// controller: in-process through robotgo, out-of-process through a key
// plugin, or a dry run that only logs.
package keys

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayusman/handwheel/internal/steer"
)

// ErrUnknownKey is returned for a symbol outside the driving keys.
var ErrUnknownKey = errors.New("unknown key")

// Injector kinds accepted by New.
const (
	KindRobotgo = "robotgo"
	KindPlugin  = "plugin"
	KindLog     = "log"
)

// Kinds lists the accepted injector kinds.
var Kinds = []string{KindRobotgo, KindPlugin, KindLog}

// Symbols are the key symbols an injector accepts.
var Symbols = []string{"w", "a", "s", "d"}

// Normalize lower-cases sym and checks it is a driving key.
func Normalize(sym string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(sym))
	for _, k := range Symbols {
		if s == k {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, sym)
}

// Options configures New.
type Options struct {
	PluginDir  string
	PluginName string
	Timeout    time.Duration
}

// New builds the injector named by kind.
func New(kind string, opts Options) (steer.Injector, error) {
	switch kind {
	case KindRobotgo, "":
		return NewRobotgo(), nil
	case KindPlugin:
		return NewPlugin(opts.PluginDir, opts.PluginName, opts.Timeout)
	case KindLog:
		return NewLog(nil), nil
	default:
		return nil, fmt.Errorf("unknown injector %q (want one of %s)", kind, strings.Join(Kinds, ", "))
	}
}

// Tap presses sym, holds it for hold, then releases it.
// The release is attempted even if the press failed.
func Tap(inj steer.Injector, sym string, hold time.Duration) error {
	pressErr := inj.PressKey(sym)
	time.Sleep(hold)
	releaseErr := inj.ReleaseKey(sym)
	return errors.Join(pressErr, releaseErr)
}
