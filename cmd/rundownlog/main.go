// Command rundownlog watches GTFO log files and reports level generation
// events: seeds, the selected expedition, zones and the items placed in
// them.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rundownlog/rundownlog-go/internal/config"
)

var (
	// root flags
	verbose    bool
	configPath string

	// cfg is the file config, loaded before any subcommand runs. Flags
	// override it per command.
	cfg config.Config

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
)

var rootCmd = &cobra.Command{
	Use:   "rundownlog",
	Short: "Watch GTFO logs and report level generation events",
	Long: `rundownlog tails the newest GTFO log file and reports level
generation events as they appear: session seeds, the selected expedition,
created zones and the gatherable items distributed into them.

Settings may be placed in a TOML config file (default
~/.config/rundownlog/config.toml); command-line flags take precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default ~/.config/rundownlog/config.toml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
