package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rundownlog/rundownlog-go/internal/parse"
	"github.com/rundownlog/rundownlog-go/internal/pattern"
)

var (
	// replay flags
	replayFormat      string
	replayKinds       []string
	replayPatternFile string
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Parse a saved log file and output its events",
	Long: `Parse a complete GTFO log file offline and output every level
generation event it contains, at full speed.

The parser runs the same state machine the live watcher uses, so the
event stream is identical to what watching the session would have
produced.

Examples:
  # Replay a saved session
  rundownlog replay GTFO.12345.NetStatus.txt

  # Extract the item placements as JSON
  rundownlog replay --format jsonl --kinds gatherable session.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayFormat, "format", "f", "",
		"Output format: jsonl, pretty")
	replayCmd.Flags().StringSliceVarP(&replayKinds, "kinds", "k", nil,
		"Event kinds to show (comma-separated)")
	replayCmd.Flags().StringVar(&replayPatternFile, "patterns", "",
		"YAML file overriding the built-in log patterns")

	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	format := pickStr(replayFormat, cfg.Format)
	if !ValidFormats[format] {
		return fmt.Errorf("unknown format: %s", format)
	}

	kindFilter, err := buildKindFilter(replayKinds)
	if err != nil {
		return err
	}

	cat := pattern.Default()
	if pf := pickStr(replayPatternFile, cfg.PatternFile); pf != "" {
		cat, err = pattern.LoadFile(pf)
		if err != nil {
			return fmt.Errorf("load patterns: %w", err)
		}
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	m := parse.New(cat, nil, logger)
	events, parseErrs := m.Feed(string(data))
	for _, err := range parseErrs {
		if verbose {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	out := cmd.OutOrStdout()
	for _, ev := range events {
		if kindFilter != nil && !kindFilter[ev.Kind()] {
			continue
		}
		if err := OutputEvent(format, ev, out); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}
