package keys

import (
	"log/slog"

	"github.com/ayusman/handwheel/internal/log"
)

// Log is a dry-run injector: it validates and logs key events without
// sending them anywhere.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a dry-run injector. A nil logger uses the global logger.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = log.L()
	}
	return &Log{logger: logger}
}

// PressKey logs a key-down.
func (l *Log) PressKey(sym string) error {
	key, err := Normalize(sym)
	if err != nil {
		return err
	}
	l.logger.Debug("key down", "key", key)
	return nil
}

// ReleaseKey logs a key-up.
func (l *Log) ReleaseKey(sym string) error {
	key, err := Normalize(sym)
	if err != nil {
		return err
	}
	l.logger.Debug("key up", "key", key)
	return nil
}
