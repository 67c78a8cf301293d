package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/dispatchops/api"
	"github.com/jonwraymond/dispatchops/config"
	"github.com/jonwraymond/dispatchops/dispatch"
	"github.com/jonwraymond/dispatchops/health"
	"github.com/jonwraymond/dispatchops/observe"
	"github.com/jonwraymond/dispatchops/provider"
)

type app struct {
	cfg        config.Config
	obs        observe.Observer
	logger     observe.Logger
	dispatcher *dispatch.Dispatcher
	server     *http.Server
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	logger := obs.Logger()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("middleware: %w", err)
	}

	opts := append(cfg.DispatchOptions(),
		dispatch.WithLogger(logger),
		dispatch.WithMiddleware(mw),
	)
	d, err := dispatch.New(chaosProvider(cfg.Providers.Primary, logger), chaosProvider(cfg.Providers.Secondary, logger), opts...)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	return &app{
		cfg:        cfg,
		obs:        obs,
		logger:     logger,
		dispatcher: d,
		server: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      newRouter(cfg, d, logger),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}, nil
}

func chaosProvider(pc config.ProviderConfig, logger observe.Logger) *provider.Chaos {
	return provider.NewChaos(provider.ChaosConfig{
		Name:        pc.Name,
		FailPercent: pc.FailPercent,
		Latency:     pc.Latency,
		Logger:      logger,
	})
}

// newRouter assembles health, metrics and message routes.
func newRouter(cfg config.Config, d *dispatch.Dispatcher, logger observe.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	if len(cfg.HTTP.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.HTTP.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		}))
	}

	agg := health.NewAggregator()
	agg.Register(health.NewCircuitChecker(d))
	agg.Register(health.NewQueueChecker(d, health.QueueCheckerConfig{
		WarningDepth:  cfg.Queue.WarningDepth,
		CriticalDepth: cfg.Queue.CriticalDepth,
	}))
	agg.Register(health.NewLimiterChecker(d))
	health.Mount(r, agg)

	r.Handle("/metrics", promhttp.Handler())

	api.NewHandler(d, api.Config{
		Authenticator: cfg.Authenticator(),
		Logger:        logger,
	}).Mount(r)

	return r
}

// serve runs the server until ctx is done or it fails, then shuts down.
func (a *app) serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info(ctx, "dispatchd listening", observe.Field{Key: "addr", Value: a.cfg.HTTP.Addr})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

// shutdown stops the server first so no new messages arrive, then drains
// the queue and flushes telemetry.
func (a *app) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	a.logger.Info(ctx, "dispatchd shutting down")
	return errors.Join(
		a.server.Shutdown(ctx),
		a.dispatcher.Close(ctx),
		a.obs.Shutdown(ctx),
	)
}
