package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rundownlog/rundownlog-go/internal/ui"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog"
)

var (
	// tui flags
	tuiLogDir      string
	tuiPatternFile string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Watch GTFO logs in a terminal UI",
	Long: `Open a terminal UI that follows the current session, showing the
seeds, zones and item placements of the level being generated.

Press q to quit.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiLogDir, "log-dir", "d", "",
		"GTFO log directory (auto-detected if not specified)")
	tuiCmd.Flags().StringVar(&tuiPatternFile, "patterns", "",
		"YAML file overriding the built-in log patterns")

	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []rundownlog.Option{rundownlog.WithLogger(logger)}
	if dir := pickStr(tuiLogDir, cfg.LogDir); dir != "" {
		opts = append(opts, rundownlog.WithLogDir(dir))
	}
	if pf := pickStr(tuiPatternFile, cfg.PatternFile); pf != "" {
		opts = append(opts, rundownlog.WithPatternFile(pf))
	}
	if cfg.PollInterval > 0 {
		opts = append(opts, rundownlog.WithPollInterval(cfg.PollInterval))
	}

	watcher, err := rundownlog.NewWatcher(opts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	events, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	model := ui.New(ui.Options{Events: events, Errors: errs})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
