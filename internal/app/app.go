// Package app runs the handwheel frame loop: capture, detect, classify,
// inject keys, draw and display, one frame at a time.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/ayusman/handwheel/internal/capture"
	"github.com/ayusman/handwheel/internal/config"
	"github.com/ayusman/handwheel/internal/detector"
	"github.com/ayusman/handwheel/internal/log"
	"github.com/ayusman/handwheel/internal/render"
	"github.com/ayusman/handwheel/internal/steer"
)

// ErrAlreadyRunning is returned by Start when the loop is already running.
var ErrAlreadyRunning = errors.New("frame loop already running")

// Options wires an App. Camera, Detector, Injector and Surface are required.
type Options struct {
	Camera   capture.Camera
	Detector detector.Detector
	Injector steer.Injector
	Surface  render.Surface
	Steering config.SteeringConfig

	// SessionID tags every log line of this run.
	SessionID string
}

// App owns the frame loop and everything it drives.
type App struct {
	camera     capture.Camera
	detector   detector.Detector
	surface    render.Surface
	controller *steer.Controller
	logger     *slog.Logger

	// Loop-goroutine state.
	classifier steer.Classifier
	radius     float64
	paused     bool
	lastCmd    steer.Command
	logRepeat  rate.Sometimes

	// Side channels drained by the loop between frames.
	enabled  atomic.Bool
	steering chan config.SteeringConfig

	onCommand func(steer.Command)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// New creates an App. Zero steering values fall back to the defaults.
func New(opts Options) (*App, error) {
	if opts.Camera == nil || opts.Detector == nil || opts.Injector == nil || opts.Surface == nil {
		return nil, errors.New("app: camera, detector, injector and surface are required")
	}

	steering := opts.Steering
	if steering.Radius == 0 {
		steering.Radius = steer.DefaultRadius
	}
	if steering.ThresholdDeg == 0 {
		steering.ThresholdDeg = steer.DefaultThresholdDeg
	}
	if err := steering.Validate(); err != nil {
		return nil, err
	}

	logger := log.L()
	if opts.SessionID != "" {
		logger = logger.With("session", opts.SessionID)
	}

	a := &App{
		camera:     opts.Camera,
		detector:   opts.Detector,
		surface:    opts.Surface,
		controller: steer.NewController(opts.Injector, logger),
		logger:     logger,
		classifier: steer.Classifier{ThresholdDeg: steering.ThresholdDeg},
		radius:     steering.Radius,
		steering:   make(chan config.SteeringConfig, 1),
		lastCmd:    steer.Idle,
		logRepeat:  rate.Sometimes{Interval: time.Second},
	}
	a.enabled.Store(true)
	return a, nil
}

// SetEnabled pauses or resumes key injection. Frames are still processed and
// displayed while paused; all keys are released when pausing.
func (a *App) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

// IsEnabled returns whether key injection is enabled.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// UpdateSteering queues new steering settings for the next frame. Only the
// latest queued update is applied.
func (a *App) UpdateSteering(s config.SteeringConfig) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for {
		select {
		case a.steering <- s:
			return nil
		default:
			select {
			case <-a.steering:
			default:
			}
		}
	}
}

// OnCommand registers fn to be called from the loop with every classified
// command. It must be set before Start or Run.
func (a *App) OnCommand(fn func(steer.Command)) {
	a.onCommand = fn
}

// Start opens the camera and runs the loop in a new goroutine.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done != nil {
		return ErrAlreadyRunning
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done

	go func() {
		defer close(done)
		err := a.loop(ctx)
		a.mu.Lock()
		a.err = err
		a.mu.Unlock()
	}()

	a.logger.Info("frame loop started")
	return nil
}

// Run opens the camera and runs the loop on the calling goroutine until ctx
// is done, the surface asks to quit, or the camera fails for good.
// GUI toolkits that need the main thread should call Run from main.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.done != nil {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	if err := a.camera.Open(); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("open camera: %w", err)
	}
	done := make(chan struct{})
	a.done = done
	a.mu.Unlock()

	defer close(done)
	a.logger.Info("frame loop started")
	return a.loop(ctx)
}

// Wait blocks until a loop started with Start has exited and returns its error.
func (a *App) Wait() error {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()

	if done == nil {
		return nil
	}
	<-done

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Stop ends the loop and waits for it to release every key.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := a.Wait(); err != nil {
		a.logger.Warn("frame loop ended with error", "error", err)
	}
}

// Close releases the camera, detector and surface.
func (a *App) Close() error {
	var errs []error
	if err := a.camera.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close camera: %w", err))
	}
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	if err := a.surface.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close surface: %w", err))
	}
	return errors.Join(errs...)
}

// KeyState returns the held-key set. It is only safe to call from the
// OnCommand callback or after the loop has exited.
func (a *App) KeyState() steer.KeyPressState {
	return a.controller.State()
}
