package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	DefaultHealthSyncInterval = 5 * time.Second
	limiterCleanupSpec        = "@every 5m"
	warmupTimeout             = 15 * time.Second
)

type TokenWarmer interface {
	WarmUp(ctx context.Context) error
}

type HealthSyncer interface {
	Sync() healthpb.HealthCheckResponse_ServingStatus
}

type LimiterCleaner interface {
	Cleanup() int
}

type EventWorker interface {
	Run(ctx context.Context)
}

// BackgroundTasks runs the periodic jobs of the service. Nil members are skipped.
type BackgroundTasks struct {
	Market   TokenWarmer
	Health   HealthSyncer
	Limiter  LimiterCleaner
	Recorder EventWorker

	WarmupSpec         string
	HealthSyncInterval time.Duration
	Logger             *slog.Logger

	wg sync.WaitGroup
}

// StartAll schedules every job and returns once they are running.
// Jobs stop when ctx is cancelled; Wait blocks until they have.
func (bt *BackgroundTasks) StartAll(ctx context.Context) error {
	if bt.Logger == nil {
		bt.Logger = slog.Default()
	}

	scheduler := cron.New()
	if bt.Market != nil && bt.WarmupSpec != "" {
		if _, err := scheduler.AddFunc(bt.WarmupSpec, func() { bt.warmTokens(ctx) }); err != nil {
			return fmt.Errorf("schedule token warmup %q: %w", bt.WarmupSpec, err)
		}
		bt.goRun(func() { bt.warmTokens(ctx) })
	}
	if bt.Limiter != nil {
		if _, err := scheduler.AddFunc(limiterCleanupSpec, func() {
			if dropped := bt.Limiter.Cleanup(); dropped > 0 {
				bt.Logger.Debug("Dropped idle client rate limiters", "count", dropped)
			}
		}); err != nil {
			return fmt.Errorf("schedule limiter cleanup: %w", err)
		}
	}

	scheduler.Start()
	bt.goRun(func() {
		<-ctx.Done()
		<-scheduler.Stop().Done()
	})

	if bt.Health != nil {
		bt.goRun(func() { bt.startHealthSync(ctx) })
	}
	if bt.Recorder != nil {
		bt.goRun(func() { bt.Recorder.Run(ctx) })
	}
	return nil
}

func (bt *BackgroundTasks) Wait() {
	bt.wg.Wait()
}

func (bt *BackgroundTasks) goRun(fn func()) {
	bt.wg.Add(1)
	go func() {
		defer bt.wg.Done()
		fn()
	}()
}

func (bt *BackgroundTasks) warmTokens(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()

	if err := bt.Market.WarmUp(ctx); err != nil {
		bt.Logger.Warn("Token list warmup failed", "error", err)
		return
	}
	bt.Logger.Debug("Token list warmed up")
}

func (bt *BackgroundTasks) startHealthSync(ctx context.Context) {
	interval := bt.HealthSyncInterval
	if interval <= 0 {
		interval = DefaultHealthSyncInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.Health.Sync()
		}
	}
}
