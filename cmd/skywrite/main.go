package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/skywrite/internal/app"
	"github.com/ayusman/skywrite/internal/capture"
	"github.com/ayusman/skywrite/internal/config"
	"github.com/ayusman/skywrite/internal/engine"
	"github.com/ayusman/skywrite/internal/server"
	"github.com/ayusman/skywrite/internal/store"
	"github.com/ayusman/skywrite/internal/tray"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config.yaml")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	writeConfig := flag.Bool("write-config", false, "write the effective configuration to -config and exit")
	flag.Parse()

	fmt.Println("Skywrite - Air Writing")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *noTray {
		cfg.Tray = false
	}

	if *writeConfig {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("skywrite: %v", err)
	}
}

func run(cfg config.Config) error {
	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	application, err := app.New(app.Config{
		Settings: cfg,
		Store:    st,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	webDir := findWebDir(cfg.Server.StaticDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Pipeline:  application,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := application.Run(gctx)
		if errors.Is(err, capture.ErrStreamEnded) {
			log.Println("Camera stream ended")
		}
		return err
	})
	g.Go(func() error {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		return srv.ListenAndServe(gctx, cfg.Server.Addr)
	})

	if cfg.Tray {
		t := tray.New(application.IsEnabled())
		t.SetLastText(application.LastText())
		t.OnToggle(application.SetEnabled)
		t.OnClear(func() { application.ForceClear() })
		t.OnRecognize(func() { application.ForceRecognize(gctx) })
		t.OnQuit(stop)
		application.Subscribe(func(ev engine.Event) {
			if ev.Kind == engine.EventRecognized && ev.Text != "" {
				t.SetLastText(ev.Text)
			}
		})

		go func() {
			<-gctx.Done()
			t.Quit()
		}()
		// The tray owns the main goroutine until it quits.
		t.Run()
		stop()
	}

	return g.Wait()
}

// findWebDir returns dir if it exists, otherwise the first web directory
// found next to the working directory or in ~/.skywrite/web.
func findWebDir(dir string) string {
	candidates := []string{dir, "web", "../web", "../../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".skywrite", "web"))
	}

	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
