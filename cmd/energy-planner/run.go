package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	apiserver "github.com/envtest/energy-planner/internal/api_server"
	"github.com/envtest/energy-planner/internal/config"
	"github.com/envtest/energy-planner/internal/events"
	"github.com/envtest/energy-planner/internal/service"
	"github.com/envtest/energy-planner/pkg/log"
	"github.com/envtest/energy-planner/pkg/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the energy planner api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel), cfg.Service.LogFormat)
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting API service...")
		defer zap.S().Info("API service stopped")

		zap.S().Infof("Using config: %s", cfg)

		var srvOpts []service.EnergyServiceOption
		if cfg.Service.AuditEvents {
			producer := events.NewEventProducer(events.NewStdoutWriter(), events.WithOutputTopic(cfg.Service.AuditTopic))
			defer func() { _ = producer.Close() }()
			srvOpts = append(srvOpts, service.WithEventPublisher(producer))
		}

		energySrv, cache, err := service.NewEnergyServiceFromConfig(cfg, srvOpts...)
		if err != nil {
			zap.S().Fatalw("initializing energy service", "error", err)
		}

		if err := metrics.RegisterCatalogCollector(energySrv.Catalog()); err != nil {
			zap.S().Warnw("failed to register catalog collector", "error", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		if cache != nil {
			zap.S().Infow("table cache enabled", "ttl", cfg.Dataset.CacheTTL)
			go cache.Run(ctx)
		}

		apiDone := make(chan struct{})
		go func() {
			defer close(apiDone)
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, energySrv, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("Error running server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener, cfg.Service.LogLevel)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("failed to run metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		// pending audit events are flushed by the deferred producer Close once the
		// api server has drained its in-flight lookups.
		<-apiDone
		return nil
	},
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
