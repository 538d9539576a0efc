// Package main is the keyboard output plugin for macOS. It types recognized
// glyphs into the focused application and can send arbitrary keystrokes,
// both through AppleScript.
package main

import (
	"encoding/json"
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

// KeystrokeParams are the params of the keystroke action.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	var err error
	switch req.Action {
	case "type":
		err = handleType(req.Text)
	case "keystroke":
		err = handleKeystroke(req.Params)
	default:
		err = fmt.Errorf("unknown action: %s", req.Action)
	}
	if err != nil {
		err = fmt.Errorf("action %s failed: %w", req.Action, err)
	}
	writeResponse(err)
}

// handleType types the recognized token as plain keystrokes.
func handleType(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	return runAppleScript(buildKeystrokeScript(text, nil))
}

func handleKeystroke(params json.RawMessage) error {
	var p KeystrokeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}
	if p.Key == "" {
		return fmt.Errorf("key is required")
	}
	return runAppleScript(buildKeystrokeScript(p.Key, p.Modifiers))
}

// buildKeystrokeScript returns the AppleScript for key with optional
// modifiers. Quotes and backslashes in key are escaped.
func buildKeystrokeScript(key string, modifiers []string) string {
	key = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(key)

	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, strings.Join(appleModifiers, ", "))
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
