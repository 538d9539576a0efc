// Package main is the notify output plugin for macOS. It puts recognized
// text on the clipboard, shows it as a notification or speaks it.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request is read from stdin.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Text   string          `json:"text"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type actionHandler func(text string) error

var actionHandlers = map[string]actionHandler{
	"copy":   copyText,
	"notify": notifyText,
	"speak":  speakText,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(fmt.Errorf("unknown action: %s", req.Action))
		return
	}
	if req.Text == "" {
		writeResponse(errors.New("no text to output"))
		return
	}

	if err := handler(req.Text); err != nil {
		writeResponse(fmt.Errorf("action %s failed: %w", req.Action, err))
		return
	}
	writeResponse(nil)
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func run(name string, stdin string, args ...string) error {
	cmd := exec.Command(name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func copyText(text string) error {
	return run("pbcopy", text)
}

func notifyText(text string) error {
	script := fmt.Sprintf(`display notification "%s" with title "Skywrite"`, escapeAppleScript(text))
	return run("osascript", "", "-e", script)
}

func speakText(text string) error {
	return run("say", "", text)
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
