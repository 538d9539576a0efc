package app

import (
	"context"
	"log"

	"github.com/ayusman/skywrite/internal/engine"
	"github.com/ayusman/skywrite/internal/plugin"
	"github.com/ayusman/skywrite/internal/store"
)

// publish logs ev once and hands it to every subscriber in registration order.
func (a *App) publish(ev engine.Event) {
	switch {
	case ev.Kind == engine.EventCleared:
		log.Printf("Canvas cleared (%s)", ev.Source)
	case ev.Err != "":
		log.Printf("Recognition failed (%s): %s", ev.Source, ev.Err)
	default:
		log.Printf("Recognized %q (%s)", ev.Text, ev.Source)
	}

	a.mu.Lock()
	if ev.Kind == engine.EventRecognized && ev.Text != "" {
		a.lastText = ev.Text
	}
	subscribers := append([]func(engine.Event){}, a.subscribers...)
	a.mu.Unlock()

	for _, fn := range subscribers {
		fn(ev)
	}
}

// journal writes ev to the store.
func (a *App) journal(ev engine.Event) {
	err := a.config.Store.Events().Create(&store.Event{
		ID:        ev.ID,
		Kind:      string(ev.Kind),
		Text:      ev.Text,
		Error:     ev.Err,
		Source:    string(ev.Source),
		CreatedAt: ev.At,
	})
	if err != nil {
		log.Printf("Failed to journal %s event: %v", ev.Kind, err)
	}
}

// dispatchOutput sends a recognized token to the configured output plugin
// without blocking the caller.
func (a *App) dispatchOutput(ev engine.Event) {
	name := a.settings.Output.Plugin
	if name == "" || ev.Kind != engine.EventRecognized || ev.Text == "" {
		return
	}

	p, err := a.pluginMgr.Get(name)
	if err != nil {
		log.Printf("Output skipped: %v", err)
		return
	}

	req := &plugin.Request{
		Action: a.settings.Output.Action,
		Event:  string(ev.Kind),
		Text:   ev.Text,
	}

	a.outputs.Add(1)
	go func() {
		defer a.outputs.Done()

		resp, err := a.pluginExec.Execute(context.Background(), p, req)
		if err != nil {
			log.Printf("Plugin %s failed: %v", name, err)
			return
		}
		if !resp.Success {
			log.Printf("Plugin %s returned error: %s", name, resp.Error)
		}
	}()
}
