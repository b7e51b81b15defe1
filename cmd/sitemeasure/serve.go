package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/innovadoor/sitemeasure/internal/api"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var dbPath, addr, token string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the production measurement API from a local database",
		Long: `Serves parties, products, designs, serial numbers and measurement
submission under /api/v1/production, backed by a sqlite database.

Configure the serial prefix with "sitemeasure prefix set" before the first
serial is requested.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			if token == "" {
				token = a.cfg.APIToken
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(st, token, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("listening", zap.String("addr", addr), zap.Bool("auth", token != ""))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				a.logger.Info("shutting down")
				return srv.Shutdown(sctx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Database file (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token required by clients (default from config)")
	return cmd
}
