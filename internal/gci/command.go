// Package gci holds the command line interface of gmwdg.
package gci

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the gmwdg root command.
//
// If log is nil, each subcommand builds its own logger
// from the log.level and log.format settings, writing to the command's stderr.
func NewRootCmd(log *slog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "gmwdg SUBCOMMAND",

		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},

		// main prints the returned error.
		SilenceUsage:  true,
		SilenceErrors: true,

		Long: `gmwdg is a software multi-watchdog.

Each supervised task owns a watchdog node with its own timeout
and must feed it periodically.
A supervisor checks every node on an interval,
reports the IDs of nodes whose tasks stopped feeding,
and can stop the process when that happens.

Run a self-contained demonstration with:
  $ gmwdg demo --demo-tasks 8 --demo-stall-task 3 --http-addr 127.0.0.1:8080

Settings may also come from a config file (--config)
or from GMWDG_ environment variables such as GMWDG_SUPERVISOR_INTERVAL=250ms.
`,
	}

	addConfigFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		NewDemoCmd(log),
		NewConfigCmd(log),
	)

	return rootCmd
}

// NewConfigCmd returns a command that prints the effective configuration.
func NewConfigCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use: "config",

		Short: "Print the effective configuration as JSON",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}

			cfg, err := LoadConfig(v)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}

			return nil
		},
	}
}

// commandLogger returns log if set,
// or a new logger configured by cfg writing to w.
func commandLogger(log *slog.Logger, cfg LogConfig, w io.Writer) *slog.Logger {
	if log != nil {
		return log
	}

	// Already validated.
	level, _ := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
