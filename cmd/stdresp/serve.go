package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/bjaus/stdresp"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		rate       float64
		burst      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bookshelf demo API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := stdresp.LoadConfig(configPath)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			logger := slog.Default()
			r := newRouter(newShelf(), cfg, reg, logger)
			if rate > 0 {
				r.Use(stdresp.RateLimit(stdresp.RateLimitConfig{Rate: rate, Burst: burst}))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting server", "addr", addr, "routes", len(r.Contracts()))
			if err := r.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file (or "+stdresp.ConfigEnv+" env)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Per-client requests per second (0 disables)")
	cmd.Flags().IntVar(&burst, "burst", 20, "Per-client burst size")

	return cmd
}
