package e2e

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/handwheel/internal/app"
	"github.com/ayusman/handwheel/internal/capture"
	"github.com/ayusman/handwheel/internal/config"
	"github.com/ayusman/handwheel/internal/detector"
	"github.com/ayusman/handwheel/internal/keys"
	"github.com/ayusman/handwheel/internal/render"
	"github.com/ayusman/handwheel/internal/steer"
)

const (
	width  = 1280
	height = 720
)

// installKeyPlugin writes a key plugin that appends "<action> <key>" lines
// to a log file and returns the plugin root and the log path.
func installKeyPlugin(t *testing.T) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	root := t.TempDir()
	dir := filepath.Join(root, "keyboard")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(root, "keys.log")

	manifest := `{"name":"keyboard","version":"1.0.0","executable":"run.sh","actions":["key-down","key-up"]}`
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	script := `#!/bin/sh
IN=$(cat)
ACTION=$(echo "$IN" | sed 's/.*"action":"\([^"]*\)".*/\1/')
KEY=$(echo "$IN" | sed 's/.*"key":"\([^"]*\)".*/\1/')
echo "$ACTION $KEY" >> ` + logPath + `
echo '{"success":true}'
`
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return root, logPath
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestE2E_DriveThroughPlugin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	pluginRoot, keyLog := installKeyPlugin(t)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(`
[keys]
injector = "plugin"
plugin_dir = "`+pluginRoot+`"

[detector]
kind = "mock"
`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	inj, err := keys.New(cfg.Keys.Injector, keys.Options{
		PluginDir:  cfg.Keys.PluginDir,
		PluginName: cfg.Keys.Plugin,
		Timeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatalf("keys.New() error = %v", err)
	}

	det := detector.NewMockDetector()
	det.SetSequence(
		detector.Wheel(400, 300, 800, 300, width, height), // level: forward
		detector.Wheel(400, 200, 800, 500, width, height), // hand 1 lower: left
		detector.Wheel(400, 500, 800, 200, width, height), // hand 1 higher: right
		[]detector.HandLandmarks{detector.HandAt(640, 360, width, height)}, // one hand: reverse
	)

	frames := capture.BlankFrames(4, width, height)
	defer func() {
		for _, f := range frames {
			f.Close()
		}
	}()

	surface := render.NewHeadless()
	a, err := app.New(app.Options{
		Camera:    capture.NewMockCamera(frames, false),
		Detector:  det,
		Injector:  inj,
		Surface:   surface,
		Steering:  cfg.Steering,
		SessionID: "e2e",
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer a.Close()

	var commands []steer.Command
	a.OnCommand(func(c steer.Command) { commands = append(commands, c) })

	err = a.Run(context.Background())
	if err != nil && !errors.Is(err, capture.ErrNoMoreFrames) {
		t.Fatalf("Run() error = %v", err)
	}

	want := []steer.Command{steer.Forward, steer.Left, steer.Right, steer.Reverse}
	if len(commands) != len(want) {
		t.Fatalf("commands = %v, want %v", commands, want)
	}
	for i := range want {
		if commands[i] != want[i] {
			t.Errorf("frame %d: %v, want %v", i, commands[i], want[i])
		}
	}
	if surface.Shown() != 4 {
		t.Errorf("shown %d frames, want 4", surface.Shown())
	}

	var downs []string
	for _, line := range readLines(t, keyLog) {
		if strings.HasPrefix(line, "key-down ") {
			downs = append(downs, strings.TrimPrefix(line, "key-down "))
		}
	}
	if strings.Join(downs, "") != "wads" {
		t.Errorf("key-down sequence = %v, want w a d s", downs)
	}

	lines := readLines(t, keyLog)
	for _, line := range lines[len(lines)-4:] {
		if !strings.HasPrefix(line, "key-up ") {
			t.Errorf("expected shutdown to release every key, got %q", line)
		}
	}
}

// commandLog is an OnCommand sink safe to read while the loop runs.
type commandLog struct {
	mu   sync.Mutex
	last steer.Command
	n    int
}

func (c *commandLog) record(cmd steer.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = cmd
	c.n++
}

func (c *commandLog) get() (steer.Command, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.n
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestE2E_LiveThresholdReload(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[steering]\nthreshold_deg = 30.0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}

	// Hands tilted 45 degrees.
	det := detector.NewMockDetector()
	det.SetHands(detector.Wheel(400, 200, 700, 500, width, height))

	frames := capture.BlankFrames(1, width, height)
	defer frames[0].Close()

	a, err := app.New(app.Options{
		Camera:   capture.NewMockCamera(frames, true),
		Detector: det,
		Injector: keys.NewLog(nil),
		Surface:  render.NewHeadless(),
		Steering: cfg.Steering,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	var log commandLog
	a.OnCommand(log.record)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := config.Watch(ctx, cfgPath)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	go func() {
		for c := range updates {
			a.UpdateSteering(c.Steering)
		}
	}()

	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer a.Stop()

	waitFor(t, "left turn", func() bool { cmd, _ := log.get(); return cmd == steer.Left })

	if err := os.WriteFile(cfgPath, []byte("[steering]\nthreshold_deg = 60.0\n"), 0600); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "forward after reload", func() bool { cmd, _ := log.get(); return cmd == steer.Forward })

	a.Stop()
	if a.KeyState() != 0 {
		t.Errorf("keys held after Stop: %s", a.KeyState())
	}
}
