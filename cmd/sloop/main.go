// Package main is the entry point for the sloop CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flemzord/sloop/internal/config"
	"github.com/flemzord/sloop/internal/logging"
	"github.com/flemzord/sloop/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sloop",
		Short:         "Drive language models through ReAct, Reflection and Plan-Execute loops",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.AddCommand(versionCmd(), runCmd(), serveCmd(), runsCmd(), configCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sloop %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// loadConfig loads the file given by --config, else the first file found in
// the standard locations, else the environment-derived defaults. The run
// configuration is validated when validate is set.
func loadConfig(cmd *cobra.Command, validate bool) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		resolved, err := app.ResolveConfigPath()
		if err == nil {
			path = resolved
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg = config.Default()
	} else if cfg, err = config.Load(path); err != nil {
		return nil, err
	}

	if validate {
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger builds the process logger on stderr with every configured
// secret redacted.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	return logging.New(w, cfg.Log.Level, cfg.Log.Format, cfg.Secrets()...)
}
