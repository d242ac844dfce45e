package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/pmwatch/internal/keys"
	"github.com/nhle/pmwatch/internal/model"
	"github.com/nhle/pmwatch/internal/notify"
	"github.com/nhle/pmwatch/internal/readstate"
	"github.com/nhle/pmwatch/internal/ui/notifications"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll notifications and browse the unread ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		ephemeral, _ := cmd.Flags().GetBool("ephemeral")

		ctx := cmd.Context()
		p, closer, err := openPoller(ctx, ephemeral, metricsAddr)
		if err != nil {
			return err
		}
		defer closer()

		p.Start()
		defer p.Stop()

		prog := tea.NewProgram(
			notifications.New(p, keys.DefaultKeyMap(), 80, 24),
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		)
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("running notifications view: %w", err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9100)")
	watchCmd.Flags().Bool("ephemeral", false, "keep read state in memory only")
}

// openPoller wires the backend client, read-state store and metrics into
// a poller. The returned func releases everything openPoller acquired.
func openPoller(ctx context.Context, ephemeral bool, metricsAddr string) (*notify.Poller, func(), error) {
	client, err := newClient()
	if err != nil {
		return nil, nil, err
	}

	rsCfg := cfg.ReadState
	if ephemeral {
		rsCfg.Driver = model.ReadStateMemory
	}
	store, storeCloser, err := readstate.Open(ctx, rsCfg, logger)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	metrics := notify.NewMetrics(reg)
	srv := serveMetrics(metricsAddr, reg)

	p := notify.New(ctx, client, store, notify.Options{
		Interval:     cfg.Poll.Interval(),
		FetchTimeout: cfg.Poll.FetchTimeout(),
		Logger:       logger,
		Metrics:      metrics,
	})

	release := func() {
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}
		if err := storeCloser.Close(); err != nil {
			logger.Warn("closing read-state store", zap.Error(err))
		}
	}
	return p, release, nil
}

// serveMetrics starts a /metrics endpoint on addr, or returns nil when
// addr is empty.
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
