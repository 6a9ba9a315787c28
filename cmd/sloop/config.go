package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flemzord/sloop/internal/config"
	"github.com/flemzord/sloop/internal/tool/builtin"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			tools, err := builtin.Registry(cfg.Tools.Enabled)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK (loop: %s, store: %s)\n", cfg.Loop.Kind, cfg.Store.Driver)
			for _, p := range cfg.Providers {
				fmt.Fprintf(out, "  provider %s (%s)\n", p.Name, p.Type)
			}
			for _, name := range tools.Names() {
				fmt.Fprintf(out, "  tool %s\n", name)
			}
			return nil
		},
	})
	return cmd
}
