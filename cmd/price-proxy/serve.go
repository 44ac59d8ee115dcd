package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/LavaJover/shvark-price-proxy/internal/app/background"
	"github.com/LavaJover/shvark-price-proxy/internal/app/setup"
	"github.com/LavaJover/shvark-price-proxy/internal/config"
	"github.com/LavaJover/shvark-price-proxy/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-price-proxy/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-price-proxy/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the gRPC health service and background jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg := config.MustLoad(configPath)
	log := logger.New(cfg.LogConfig, os.Stdout)
	log.Info("Starting price proxy", "env", cfg.Env)

	deps, err := setup.InitializeDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.Market.RateLimit, cfg.Market.RateBurst, log)
	routerDeps := handlers.RouterDeps{
		Proxy:    ucs.PriceProxy,
		Market:   ucs.Market,
		Swap:     ucs.Swap,
		Limiter:  limiter,
		Metrics:  deps.Metrics,
		Gatherer: deps.Registry,
		Logger:   log,
	}
	if deps.Journal != nil {
		routerDeps.History = deps.Journal
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Addr(),
		Handler:      handlers.NewRouter(routerDeps),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	health := grpcapi.NewHealthHandler(ucs.PriceProxy, log)
	tasks := &background.BackgroundTasks{
		Market:     ucs.Market,
		Health:     health,
		Limiter:    limiter,
		WarmupSpec: cfg.Market.WarmupSpec,
		Logger:     log,
	}
	if ucs.Recorder.Enabled() {
		tasks.Recorder = ucs.Recorder
	}
	if err := tasks.StartAll(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPCServer.Port != "" {
		lis, err := net.Listen("tcp", cfg.GRPCServer.Addr())
		if err != nil {
			stop()
			tasks.Wait()
			return fmt.Errorf("failed to listen: %w", err)
		}
		grpcServer = grpcapi.NewGRPCServer(health)
		go func() {
			log.Info("gRPC health server listening", "addr", lis.Addr().String())
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down price proxy")
	case runErr = <-errCh:
		log.Error("Server failed, shutting down", "error", runErr)
	}
	stop()

	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	tasks.Wait()
	return runErr
}
