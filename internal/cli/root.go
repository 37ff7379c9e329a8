// Package cli implements the roomsplit command line: creating receipts,
// splitting them against the receipt server and browsing local history.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mmynk/roomsplit/internal/config"
	"github.com/mmynk/roomsplit/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "text" | "json" | "yaml"
	ConfigPath  string
	ServerURL   string // overrides client.server_url
	HistoryPath string // overrides client.history_path

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the roomsplit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "roomsplit",
		Short: "Split shared receipts between roommates",
		Long: `roomsplit records shared receipts on a receipt server, splits their totals
equally or by custom amounts, and keeps a local history of settled receipts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if opts.ServerURL != "" {
				cfg.Client.ServerURL = opts.ServerURL
			}
			if opts.HistoryPath != "" {
				cfg.Client.HistoryPath = opts.HistoryPath
			}
			opts.cfg = cfg

			// Diagnostics go to stderr; only warnings unless -v.
			level := slog.LevelWarn
			if opts.Verbose {
				level = logging.ParseLevel(cfg.Log.Level)
				if level > slog.LevelDebug {
					level = slog.LevelDebug
				}
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./config.yaml or ~/.roomsplit/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.ServerURL, "server", "", "receipt server URL")
	cmd.PersistentFlags().StringVar(&opts.HistoryPath, "history-file", "", "local history file")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewSplitCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}
