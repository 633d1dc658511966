package app

import (
	"context"
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handwheel/internal/capture"
	"github.com/ayusman/handwheel/internal/detector"
	"github.com/ayusman/handwheel/internal/render"
	"github.com/ayusman/handwheel/internal/steer"
)

// captureRetryDelay is the pause after a failed camera read.
const captureRetryDelay = 10 * time.Millisecond

// FrameResult is what one frame produced.
type FrameResult struct {
	Hands    []steer.HandPosition
	Geometry *steer.Geometry
	Command  steer.Command
	Keys     steer.KeyPressState
}

// loop processes frames until ctx is done, the surface quits, or the camera
// stops for good. Every key is released on the way out.
//
// Per frame:
//  1. apply queued steering updates and pause/resume
//  2. read a frame; a failed read skips the iteration
//  3. detect, classify, apply keys and draw (ProcessFrame)
//  4. show the frame and poll for quit
func (a *App) loop(ctx context.Context) error {
	defer func() {
		a.controller.ReleaseAll()
		a.logger.Info("frame loop stopped", "keys", a.controller.State().String())
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		a.drainSideChannels()

		frame, err := a.camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrCameraNotOpen) || errors.Is(err, capture.ErrNoMoreFrames) {
				return err
			}
			a.logger.Warn("ignoring failed camera read", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(captureRetryDelay):
			}
			continue
		}

		if _, err := a.ProcessFrame(frame); err != nil {
			a.logger.Warn("skipping frame", "error", err)
		}

		showErr := a.surface.Show(frame)
		frame.Close()
		if showErr != nil {
			a.logger.Warn("display failed", "error", showErr)
		}
		if a.surface.Quit() {
			a.logger.Info("quit requested from display")
			return nil
		}
	}
}

func (a *App) drainSideChannels() {
	select {
	case s := <-a.steering:
		a.radius = s.Radius
		a.classifier.ThresholdDeg = s.ThresholdDeg
		a.logger.Info("steering updated", "radius", s.Radius, "threshold_deg", s.ThresholdDeg)
	default:
	}

	enabled := a.enabled.Load()
	switch {
	case !enabled && !a.paused:
		a.paused = true
		a.controller.ReleaseAll()
		a.logger.Info("steering paused")
	case enabled && a.paused:
		a.paused = false
		a.logger.Info("steering resumed")
	}
}

// ProcessFrame runs detection and classification on frame, applies the
// resulting command to the keys unless paused, and draws the overlay onto
// frame. A detection failure returns an error and changes no keys.
func (a *App) ProcessFrame(frame *gocv.Mat) (FrameResult, error) {
	hands, err := a.detector.Detect(frame)
	if err != nil {
		return FrameResult{Command: steer.Idle, Keys: a.controller.State()}, err
	}

	width, height := frame.Cols(), frame.Rows()
	positions := detector.HandPositions(hands, width, height)

	var geom *steer.Geometry
	if len(positions) == 2 {
		if g, ok := steer.ComputeGeometry(positions[0], positions[1], a.radius); ok {
			geom = &g
		}
	}

	cmd := a.classifier.Classify(positions, geom, width)
	if !a.paused {
		a.controller.Apply(cmd)
	}
	a.logCommand(cmd, len(positions))

	render.Draw(frame, render.Build(hands, geom, cmd, a.radius, width, height))

	if a.onCommand != nil {
		a.onCommand(cmd)
	}

	return FrameResult{
		Hands:    positions,
		Geometry: geom,
		Command:  cmd,
		Keys:     a.controller.State(),
	}, nil
}

// logCommand logs every change of command and repeats at most once a second.
func (a *App) logCommand(cmd steer.Command, hands int) {
	if cmd != a.lastCmd {
		a.lastCmd = cmd
		a.logger.Info("command", "command", cmd.String(), "hands", hands, "paused", a.paused)
		return
	}
	a.logRepeat.Do(func() {
		a.logger.Debug("command", "command", cmd.String(), "hands", hands, "paused", a.paused)
	})
}
