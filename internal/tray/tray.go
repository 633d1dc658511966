// Package tray provides a system tray menu for pausing steering and quitting.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handwheel/internal/steer"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastCommand *systray.MenuItem
	lastCommand     steer.Command
}

// New creates a new Tray instance with steering enabled.
func New() *Tray {
	return &Tray{
		enabled:     true,
		lastCommand: steer.Idle,
	}
}

// OnToggle sets the callback function to be called when steering is paused or resumed.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray on the calling goroutine.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Register starts the tray without taking over the main loop, for when
// another GUI event loop (the preview window) is pumping events.
func (t *Tray) Register() {
	systray.Register(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("handwheel")
	systray.SetTooltip("handwheel: hand steering")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume key presses")
	systray.AddSeparator()

	t.menuLastCommand = systray.AddMenuItem(lastTitle(t.lastCommand), "Last steering command")
	t.menuLastCommand.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit handwheel")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetCommand updates the last command shown in the menu. It only touches
// the menu when the command changes, so it is cheap to call every frame.
func (t *Tray) SetCommand(cmd steer.Command) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cmd == t.lastCommand {
		return
	}
	t.lastCommand = cmd
	if t.menuLastCommand != nil {
		t.menuLastCommand.SetTitle(lastTitle(cmd))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Steering on"
	}
	return "○ Steering paused"
}

func lastTitle(cmd steer.Command) string {
	if cmd == steer.Idle {
		return "Last: none"
	}
	return "Last: " + cmd.String()
}
