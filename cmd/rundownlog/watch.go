package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rundownlog/rundownlog-go/internal/export"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/level"
)

var (
	// watch flags
	watchLogDir      string
	watchFormat      string
	watchKinds       []string
	watchPatternFile string
	watchExportDir   string
	watchInterval    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor GTFO logs and output events",
	Long: `Monitor the newest GTFO log file in real-time and output parsed
level generation events.

Events are output as human-readable lines by default. Use --format jsonl
for one JSON object per line, which is easy to process with tools like jq.

Examples:
  # Monitor with default settings (auto-detect log directory)
  rundownlog watch

  # Specify log directory
  rundownlog watch --log-dir "C:\Users\me\AppData\LocalLow\10 Chambers Collective\GTFO"

  # Output only zone and gatherable events
  rundownlog watch --kinds zone,gatherable

  # Machine-readable output piped to jq
  rundownlog watch --format jsonl | jq 'select(.kind == "gatherable")'

  # Write a JSON snapshot of every completed level
  rundownlog watch --export-dir ~/gtfo-snapshots`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchLogDir, "log-dir", "d", "",
		"GTFO log directory (auto-detected if not specified)")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "",
		"Output format: jsonl, pretty")
	watchCmd.Flags().StringSliceVarP(&watchKinds, "kinds", "k", nil,
		"Event kinds to show (comma-separated: seeds,expedition,zone,gatherable,...)")
	watchCmd.Flags().StringVar(&watchPatternFile, "patterns", "",
		"YAML file overriding the built-in log patterns")
	watchCmd.Flags().StringVar(&watchExportDir, "export-dir", "",
		"Directory for JSON snapshots of completed levels")
	watchCmd.Flags().DurationVar(&watchInterval, "poll-interval", 0,
		"Log directory poll interval (default from config, 2s)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format := pickStr(watchFormat, cfg.Format)
	if !ValidFormats[format] {
		return fmt.Errorf("unknown format: %s", format)
	}

	kindFilter, err := buildKindFilter(watchKinds)
	if err != nil {
		return err
	}

	watcher, err := rundownlog.NewWatcher(watchOptions()...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	events, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	exportDir := pickStr(watchExportDir, cfg.ExportDir)
	out := cmd.OutOrStdout()

	// The level aggregate folds every event regardless of the output
	// filter, so exported snapshots are always complete.
	lv := level.New()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			// Snapshot on run completion, before the trailing reset
			// clears the aggregate.
			if _, done := ev.(event.RunEnd); done && exportDir != "" {
				if path, err := export.WriteSnapshot(exportDir, lv, time.Now()); err != nil {
					fmt.Fprintf(os.Stderr, "warning: export failed: %v\n", err)
				} else if verbose {
					fmt.Fprintf(os.Stderr, "exported %s\n", path)
				}
			}
			lv.Apply(ev)

			if kindFilter != nil && !kindFilter[ev.Kind()] {
				continue
			}
			if err := OutputEvent(format, ev, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// watchOptions assembles watcher options from flags layered over the
// config file.
func watchOptions() []rundownlog.Option {
	opts := []rundownlog.Option{rundownlog.WithLogger(logger)}

	if dir := pickStr(watchLogDir, cfg.LogDir); dir != "" {
		opts = append(opts, rundownlog.WithLogDir(dir))
	}
	if pf := pickStr(watchPatternFile, cfg.PatternFile); pf != "" {
		opts = append(opts, rundownlog.WithPatternFile(pf))
	}
	if watchInterval > 0 {
		opts = append(opts, rundownlog.WithPollInterval(watchInterval))
	} else if cfg.PollInterval > 0 {
		opts = append(opts, rundownlog.WithPollInterval(cfg.PollInterval))
	}

	return opts
}

// buildKindFilter returns nil when no filter was requested, so the caller
// can distinguish "show everything" cheaply.
func buildKindFilter(names []string) (map[event.Kind]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	kinds, err := parseKinds(names)
	if err != nil {
		return nil, err
	}
	filter := make(map[event.Kind]bool, len(kinds))
	for _, k := range kinds {
		filter[k] = true
	}
	return filter, nil
}

// pickStr returns the flag value when set, else the config value.
func pickStr(flag, fromConfig string) string {
	if flag != "" {
		return flag
	}
	return fromConfig
}
