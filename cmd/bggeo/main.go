package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/background-geolocation/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/background-geolocation/internal/adapter/kafka"
	"github.com/couchcryptid/background-geolocation/internal/adapter/mapbox"
	"github.com/couchcryptid/background-geolocation/internal/adapter/replay"
	"github.com/couchcryptid/background-geolocation/internal/config"
	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/couchcryptid/background-geolocation/internal/geolocation"
	"github.com/couchcryptid/background-geolocation/internal/native"
	"github.com/couchcryptid/background-geolocation/internal/observability"
	"github.com/couchcryptid/background-geolocation/internal/relay"
	"github.com/couchcryptid/background-geolocation/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	track, err := replay.LoadTrack(cfg.ReplayTrackPath)
	if err != nil {
		logger.Error("failed to load replay track", "error", err)
		os.Exit(1)
	}
	native.Install(replay.New(track, cfg.ReplayLoop, clockwork.NewRealClock(), logger, metrics))

	var provider *geolocation.Provider
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger { return &fxevent.SlogLogger{Logger: logger} }),
		fx.Supply(logger, metrics, &geolocation.Settings{StreamBuffer: cfg.StreamBuffer}),
		geolocation.ForRoot(),
		fx.Populate(&provider),
	)
	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		logger.Error("failed to start container", "error", err)
		os.Exit(1)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.ReverseGeocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocoder", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	writer := kafkaadapter.NewWriter(cfg, logger)
	r := relay.New(provider, relay.NewEnricher(cfg.DeviceID, geocoder, logger), writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
	srv := httpadapter.NewServer(cfg.HTTPAddr, r, provider, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider.Configure(cfg.PluginOptions())

	// Lifecycle logging outlives ctx so the stop event at shutdown is seen.
	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	// Subscribed here, not in the goroutine, so the start event cannot be missed.
	starts := provider.EventStart().Subscribe(lifecycleCtx)
	stops := provider.EventStop().Subscribe(lifecycleCtx)
	go logLifecycle(starts, stops, logger)

	taskKey, err := stream.First(ctx, provider.StartTask())
	if err != nil {
		logger.Warn("start background task failed", "error", err)
	} else {
		logger.Info("background task started", "task_key", taskKey)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Start location relay.
	g.Go(func() error {
		return r.Run(gctx)
	})

	provider.Start()

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		provider.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if taskKey != 0 {
		if _, err := stream.First(shutdownCtx, provider.EndTask(taskKey)); err != nil {
			logger.Error("end background task failed", "error", err, "task_key", taskKey)
		}
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if err := app.Stop(shutdownCtx); err != nil {
		logger.Error("container stop error", "error", err)
	}

	logger.Info("shutdown complete")
}

// logLifecycle logs plugin start and stop events until either subscription ends.
func logLifecycle(starts, stops *stream.Subscription[struct{}], logger *slog.Logger) {
	for {
		select {
		case _, ok := <-starts.Values():
			if !ok {
				return
			}
			logger.Info("location tracking started")
		case _, ok := <-stops.Values():
			if !ok {
				return
			}
			logger.Info("location tracking stopped")
		}
	}
}
