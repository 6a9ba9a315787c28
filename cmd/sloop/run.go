package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/pkg/app"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <task...>",
		Short: "Run one loop on a task and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, logger, version)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(cmd.Context()) }()

			kind, _ := cmd.Flags().GetString("loop")
			rec, err := a.Runner.Run(ctx, app.RunRequest{Kind: kind, Task: strings.Join(args, " ")})
			if err != nil && rec.ID == "" {
				return err
			}
			if err != nil {
				logger.Error("run not recorded", "run_id", rec.ID, "error", err)
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rec); err != nil {
					return err
				}
			} else if rec.Status == agent.StatusCompleted {
				fmt.Fprintln(out, rec.Answer)
			}

			if rec.Status != agent.StatusCompleted {
				return fmt.Errorf("run %s failed: %s", rec.ID, rec.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringP("loop", "l", "", "Loop kind: react, reflection or plan_execute (default from config)")
	cmd.Flags().Bool("json", false, "Print the full run record as JSON")
	return cmd
}
