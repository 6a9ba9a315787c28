package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/sloop/internal/gateway"
	"github.com/flemzord/sloop/pkg/app"
)

// stopTimeout bounds the graceful shutdown of the gateway and the app.
const stopTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve loop runs over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}
			if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
				cfg.Server.Bind = bind
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
			a.Failover.Start(ctx)

			deps := gateway.Deps{Runner: a.Runner, Store: a.Store, Health: a.Failover}
			if a.Registry != nil {
				deps.Gatherer = a.Registry
			}
			gw, err := gateway.New(cfg.Server, deps, logger)
			if err != nil {
				_ = a.Close(context.Background())
				return err
			}
			if err := gw.Start(ctx); err != nil {
				_ = a.Close(context.Background())
				return err
			}

			<-ctx.Done()
			logger.Info("shutdown signal received")

			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			return errors.Join(gw.Stop(stopCtx), a.Close(stopCtx))
		},
	}
	cmd.Flags().String("bind", "", "Listen address (default from config)")
	return cmd
}
