package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScriptPlugin creates a shell-script plugin in a temp dir.
func writeScriptPlugin(t *testing.T, name, script string) *Plugin {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    []string{ActionKeyDown, ActionKeyUp},
		},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	p := writeScriptPlugin(t, "ok", `#!/bin/sh
echo '{"success":true,"data":{"message":"pressed"}}'
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{
		Action: ActionKeyDown,
		Key:    "w",
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Error != "" {
		t.Errorf("expected empty error, got %q", resp.Error)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "pressed" {
		t.Errorf("expected message 'pressed', got %q", data["message"])
	}
}

func TestExecutor_Execute_SendsRequestOnStdin(t *testing.T) {
	p := writeScriptPlugin(t, "echo", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":$INPUT}"
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{
		Action: ActionKeyUp,
		Key:    "d",
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var got Request
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if got.Action != ActionKeyUp {
		t.Errorf("expected action %q, got %q", ActionKeyUp, got.Action)
	}
	if got.Key != "d" {
		t.Errorf("expected key 'd', got %q", got.Key)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	p := writeScriptPlugin(t, "slow", `#!/bin/sh
exec sleep 5
echo '{"success":true}'
`)

	start := time.Now()
	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), p, &Request{Action: ActionKeyDown, Key: "w"})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %s", elapsed)
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	p := writeScriptPlugin(t, "reject", `#!/bin/sh
echo '{"success":false,"error":"unknown key"}'
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: ActionKeyDown, Key: "q"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "unknown key" {
		t.Errorf("expected error 'unknown key', got %q", resp.Error)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	p := writeScriptPlugin(t, "garbage", `#!/bin/sh
echo 'not json'
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: ActionKeyDown, Key: "w"})
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "parse plugin response") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	p := writeScriptPlugin(t, "crash", `#!/bin/sh
echo "no event tap" >&2
exit 1
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: ActionKeyDown, Key: "w"})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "no event tap") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestExecutor_Execute_CancelledContext(t *testing.T) {
	p := writeScriptPlugin(t, "ok", `#!/bin/sh
echo '{"success":true}'
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExecutor(5*time.Second).Execute(ctx, p, &Request{Action: ActionKeyDown, Key: "w"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestNewExecutor(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"explicit", 2 * time.Second, 2 * time.Second},
		{"zero uses default", 0, DefaultTimeout},
		{"negative uses default", -time.Second, DefaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewExecutor(tt.timeout).Timeout(); got != tt.want {
				t.Errorf("Timeout() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPlugin_Supports(t *testing.T) {
	p := &Plugin{Manifest: Manifest{Actions: []string{ActionKeyDown, ActionKeyUp}}}

	if !p.Supports(ActionKeyDown) {
		t.Error("expected key-down to be supported")
	}
	if p.Supports(ActionKeyTap) {
		t.Error("expected key-tap to be unsupported")
	}
}
