// Package tray provides the system tray menu for skywrite.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the menu bar front end of the manual overrides.
type Tray struct {
	onToggle    func(enabled bool)
	onClear     func()
	onRecognize func()
	onQuit      func()
	enabled     bool
	lastText    string
	mu          sync.RWMutex

	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a Tray showing the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback for the enable toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnClear sets the callback for "Clear canvas".
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnRecognize sets the callback for "Recognize now".
func (t *Tray) OnRecognize(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecognize = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until Quit is called and must run on the
// main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Skywrite")
	systray.SetTooltip("Skywrite air writing")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle air writing")
	systray.AddSeparator()
	t.menuLast = systray.AddMenuItem(lastTitle(t.lastText), "Last recognized text")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuClear := systray.AddMenuItem("Clear canvas", "Erase the drawing")
	menuRecognize := systray.AddMenuItem("Recognize now", "Read the drawing and clear it")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Skywrite")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuClear.ClickedCh:
				t.call(func() func() { return t.onClear })
			case <-menuRecognize.ClickedCh:
				t.call(func() func() { return t.onRecognize })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Outside the lock: the callback may call back into SetEnabled.
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetEnabled updates the toggle without running the callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetLastText updates the "Last:" entry.
func (t *Tray) SetLastText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastText = text
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(text))
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
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastTitle(text string) string {
	if text == "" {
		return "Last: none"
	}
	return "Last: " + text
}
