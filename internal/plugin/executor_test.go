package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string, actions ...string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    actions,
		},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "hello", "echo '{\"success\":true,\"data\":{\"message\":\"hello world\"}}'\n", "type")

	resp, err := NewExecutor(5000).Execute(context.Background(), plugin, &Request{Action: "type", Text: "A"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("response = %+v, want success", resp)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("message = %q, want 'hello world'", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := scriptPlugin(t, "echo", "INPUT=$(cat)\necho \"{\\\"success\\\":true,\\\"data\\\":{\\\"received\\\":$INPUT}}\"\n")

	req := &Request{
		Action: "type",
		Event:  "recognized",
		Text:   "7",
		Config: json.RawMessage(`{"setting":"enabled"}`),
	}

	resp, err := NewExecutor(5000).Execute(context.Background(), plugin, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received Request `json:"received"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}

	got := data.Received
	if got.Action != "type" || got.Event != "recognized" || got.Text != "7" {
		t.Errorf("plugin received %+v", got)
	}
	if string(got.Config) != `{"setting":"enabled"}` {
		t.Errorf("config = %s", got.Config)
	}
}

func TestExecutor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout int
		want    string
	}{
		{"timeout", "sleep 10\necho '{\"success\":true}'\n", 100, "timeout"},
		{"invalid json", "echo 'not valid json'\n", 5000, "parse plugin response"},
		{"non-zero exit", "echo 'boom' >&2\nexit 1\n", 5000, "stderr: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := scriptPlugin(t, "failing", tt.script)

			_, err := NewExecutor(tt.timeout).Execute(context.Background(), plugin, &Request{Action: "type"})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	plugin := scriptPlugin(t, "error", "echo '{\"success\":false,\"error\":\"something went wrong\"}'\n")

	resp, err := NewExecutor(5000).Execute(context.Background(), plugin, &Request{Action: "type"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "something went wrong" {
		t.Errorf("error = %q, want 'something went wrong'", resp.Error)
	}
}

func TestExecutor_UnsupportedAction(t *testing.T) {
	plugin := scriptPlugin(t, "keys", "echo '{\"success\":true}'\n", "keystroke")

	_, err := NewExecutor(5000).Execute(context.Background(), plugin, &Request{Action: "type"})
	if !errors.Is(err, ErrUnsupportedAction) {
		t.Errorf("error = %v, want ErrUnsupportedAction", err)
	}
}

func TestExecutor_Cancelled(t *testing.T) {
	plugin := scriptPlugin(t, "slow", "sleep 10\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExecutor(5000).Execute(ctx, plugin, &Request{Action: "type"}); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}

func TestPlugin_Supports(t *testing.T) {
	p := &Plugin{Manifest: Manifest{Actions: []string{"type", "keystroke"}}}

	if !p.Supports("type") || !p.Supports("keystroke") {
		t.Error("listed actions should be supported")
	}
	if p.Supports("shortcut") {
		t.Error("unlisted action should not be supported")
	}
}
