package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ayusman/handwheel/internal/app"
	"github.com/ayusman/handwheel/internal/capture"
	"github.com/ayusman/handwheel/internal/config"
	"github.com/ayusman/handwheel/internal/detector"
	"github.com/ayusman/handwheel/internal/keys"
	"github.com/ayusman/handwheel/internal/log"
	"github.com/ayusman/handwheel/internal/render"
	"github.com/ayusman/handwheel/internal/steer"
	"github.com/ayusman/handwheel/internal/tray"
)

var rootCmd = &cobra.Command{
	Use:   "handwheel",
	Short: "Steer driving games with your hands in front of a webcam",
	Long: `handwheel turns two hands held like a steering wheel into w/a/s/d key presses.

Level hands hold w, tilting the wheel past the threshold holds a or d, and
dropping a hand out of view holds s. Press q in the preview window to quit.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runWheel,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "config file (default ~/.handwheel/config.toml)")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.String("injector", "", "key injector: robotgo, plugin, log")
	f.String("plugin-dir", "", "directory holding key plugins")

	rf := rootCmd.Flags()
	rf.Int("camera", 0, "camera device index")
	rf.String("detector", "", "hand detector: mediapipe, mock")
	rf.Bool("tray", false, "show a system tray menu")
	rf.Bool("no-window", false, "run without the preview window")
}

// loadConfig reads the config file and applies command-line overrides.
// It returns the path that was read.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("injector") {
		cfg.Keys.Injector, _ = flags.GetString("injector")
	}
	if flags.Changed("plugin-dir") {
		cfg.Keys.PluginDir, _ = flags.GetString("plugin-dir")
	}
	if flags.Changed("camera") {
		cfg.Camera.Device, _ = flags.GetInt("camera")
	}
	if flags.Changed("detector") {
		cfg.Detector.Kind, _ = flags.GetString("detector")
	}
	if flags.Changed("tray") {
		cfg.Tray.Enabled, _ = flags.GetBool("tray")
	}
	if flags.Changed("no-window") {
		noWindow, _ := flags.GetBool("no-window")
		cfg.Display.Window = !noWindow
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	log.Init(cfg.Log.Level)

	return cfg, path, nil
}

func newInjector(cfg *config.Config) (steer.Injector, error) {
	return keys.New(cfg.Keys.Injector, keys.Options{
		PluginDir:  cfg.Keys.PluginDir,
		PluginName: cfg.Keys.Plugin,
	})
}

func runWheel(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	logger := log.With("session", sessionID)

	inj, err := newInjector(cfg)
	if err != nil {
		return fmt.Errorf("key injector: %w", err)
	}

	det, err := detector.New(cfg.Detector.Kind, detector.Config{
		MaxHands:        cfg.Detector.MaxHands,
		MinConfidence:   cfg.Detector.MinConfidence,
		MinTrackingConf: cfg.Detector.MinTrackingConfidence,
	})
	if err != nil {
		return fmt.Errorf("hand detector: %w", err)
	}

	cam := capture.NewCamera(cfg.Camera.Device,
		capture.WithResolution(cfg.Camera.Width, cfg.Camera.Height),
		capture.WithFPS(cfg.Camera.FPS),
	)

	var surface render.Surface = render.NewHeadless()
	if cfg.Display.Window {
		surface = render.NewWindow(cfg.Display.Mirror)
	}

	a, err := app.New(app.Options{
		Camera:    cam,
		Detector:  det,
		Injector:  inj,
		Surface:   surface,
		Steering:  cfg.Steering,
		SessionID: sessionID,
	})
	if err != nil {
		det.Close()
		surface.Close()
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchConfig(ctx, a, path)

	logger.Info("handwheel starting",
		"camera", cfg.Camera.Device,
		"injector", cfg.Keys.Injector,
		"detector", cfg.Detector.Kind,
		"window", cfg.Display.Window,
		"tray", cfg.Tray.Enabled,
	)

	if !cfg.Tray.Enabled {
		return ignoreEndOfStream(a.Run(ctx))
	}

	tr := tray.New()
	tr.OnToggle(a.SetEnabled)
	tr.OnQuit(stop)
	a.OnCommand(tr.SetCommand)

	if cfg.Display.Window {
		// The preview window pumps GUI events for the tray.
		tr.Register()
		return ignoreEndOfStream(a.Run(ctx))
	}

	if err := a.Start(ctx); err != nil {
		return err
	}
	go func() {
		a.Wait()
		tr.Quit()
	}()
	tr.Run()
	a.Stop()
	return ignoreEndOfStream(a.Wait())
}

// watchConfig applies steering changes from the config file while running.
func watchConfig(ctx context.Context, a *app.App, path string) {
	if _, err := os.Stat(path); err != nil {
		log.Debug("config file not watched", "path", path, "error", err)
		return
	}

	updates, err := config.Watch(ctx, path)
	if err != nil {
		log.Warn("config file not watched", "path", path, "error", err)
		return
	}

	go func() {
		for cfg := range updates {
			if err := a.UpdateSteering(cfg.Steering); err != nil {
				log.Warn("steering update rejected", "error", err)
			}
		}
	}()
}

func ignoreEndOfStream(err error) error {
	if errors.Is(err, capture.ErrNoMoreFrames) {
		return nil
	}
	return err
}
