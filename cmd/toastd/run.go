package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/audio"
	"github.com/jmylchreest/toastd/internal/source"
	"github.com/jmylchreest/toastd/internal/store"
	"github.com/jmylchreest/toastd/internal/theme"
	"github.com/jmylchreest/toastd/internal/tui"
	"github.com/jmylchreest/toastd/internal/view"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the toast daemon with the terminal renderer",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runDaemon wires the shared store, theme provider, configured viewers,
// optional sources and the terminal renderer, then blocks on the TUI.
func runDaemon(cmd *cobra.Command, args []string) error {
	toastStore := store.NewStore()
	defer toastStore.Close()

	// Theme: load once, then hot-reload on file change
	th, err := theme.Load(theme.ThemePath())
	if err != nil {
		logger.Warn("failed to load theme, using defaults", "error", err)
		th = theme.Default()
	}
	themes := theme.NewProvider(th)

	if path := theme.ThemePath(); path != "" {
		watcher, err := theme.NewWatcher(themes, path, logger)
		if err != nil {
			logger.Warn("theme watcher unavailable", "error", err)
		} else if err := watcher.Start(); err != nil {
			logger.Warn("failed to start theme watcher", "error", err)
		} else {
			defer func() { _ = watcher.Stop() }()
		}
	}

	// Viewers share the one store; each renders into the TUI sink
	sink := tui.NewSink()
	viewers := make([]*view.Viewer, 0, len(cfg.Viewers))
	for _, vc := range cfg.Viewers {
		viewCfg, err := vc.ViewConfig()
		if err != nil {
			return fmt.Errorf("viewer %q: %w", vc.Name, err)
		}
		v := view.NewViewer(vc.Name, viewCfg, toastStore, themes, sink, logger)
		viewers = append(viewers, v)
	}
	defer func() {
		for _, v := range viewers {
			v.Close()
		}
	}()

	// Optional arrival sound cue
	if cfg.Sound.Enabled && cfg.Sound.File != "" {
		player := audio.NewPlayer(logger)
		player.SetVolume(cfg.Sound.Volume)
		defer player.Close()

		events := toastStore.Subscribe()
		defer toastStore.Unsubscribe(events)
		go func() {
			for ev := range events {
				if ev.Type == store.ChangeTypeShow {
					_ = player.Play(cfg.Sound.File)
				}
			}
		}()
	}

	// Optional D-Bus ingestion
	if cfg.Source.DBus {
		monitor := source.NewMonitor(toastStore, cfg.Toast.Height, logger)
		if err := monitor.Start(); err != nil {
			logger.Warn("D-Bus monitor unavailable", "error", err)
		} else {
			defer func() { _ = monitor.Stop() }()
		}
	}

	model := tui.New(toastStore, viewers, cfg.Toast.Height)
	program := tea.NewProgram(model, tea.WithAltScreen())
	sink.Attach(program)

	for _, v := range viewers {
		v.Start()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
