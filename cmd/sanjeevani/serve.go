package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sanjeevani/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := api.NewServer(a.orch, a.agentList, a.kb)
		logger.Info("starting HTTP API",
			zap.String("addr", cfg.Server.Addr),
			zap.String("db", cfg.Store.DatabasePath),
		)
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}
