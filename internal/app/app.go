// internal/app/app.go

// Package app builds the trendlens object graph from configuration. Both the
// HTTP server and the CLI start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"trendlens/internal/adapter/events"
	"trendlens/internal/adapter/storage"
	"trendlens/internal/config"
	"trendlens/internal/domain/analysis"
	"trendlens/internal/domain/trend"
	"trendlens/internal/metrics"
	"trendlens/internal/server"
	"trendlens/internal/service/analyzer"
	"trendlens/internal/service/collector"
	"trendlens/internal/service/telegram"
)

// App holds the long-lived resources of one process
type App struct {
	Config   config.Config
	Log      zerolog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Analyzer *analyzer.Orchestrator

	history analysis.HistoryReader
	events  events.Subscriber
	subject string

	db    *pgxpool.Pool
	nc    *nats.Conn
	cache *collector.Cache
}

// New wires every component. Postgres, NATS and Redis are optional: when one
// is disabled or unreachable the app runs without the feature it backs.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	a := &App{
		Config:   cfg,
		Log:      log,
		Registry: registry,
		Metrics:  m,
	}

	// Trend collectors, behind the Redis cache when configured
	a.cache = collector.NewCache(cfg.Redis.URL, cfg.Redis.TrendTTL, log)
	trendClient := &http.Client{Timeout: cfg.Trends.HTTPTimeout}

	trendCollectors := []trend.Collector{
		a.cache.Wrap(collector.NewGoogle(collector.GoogleConfig{
			FeedURL:    cfg.Trends.GoogleFeedURL,
			Region:     cfg.Trends.GoogleRegion,
			HTTPClient: trendClient,
		})),
		a.cache.Wrap(collector.NewX(collector.XConfig{
			BaseURL:       cfg.Trends.XBaseURL,
			APIHost:       cfg.Trends.XAPIHost,
			BearerToken:   cfg.Trends.XBearerToken,
			WOEID:         cfg.Trends.XWOEID,
			FallbackQuery: cfg.Trends.XFallbackTerm,
			HTTPClient:    trendClient,
			Log:           log,
		})),
		a.cache.Wrap(collector.NewYouTube(collector.YouTubeConfig{
			BaseURL:    cfg.Trends.YouTubeBaseURL,
			APIKey:     cfg.Trends.YouTubeAPIKey,
			Region:     cfg.Trends.YouTubeRegion,
			MaxResults: cfg.Trends.YouTubeMaxResults,
			HTTPClient: trendClient,
		})),
	}

	// Telegram channel resolution
	resolver := telegram.NewClient(telegram.ClientConfig{
		BaseURL:    cfg.Telegram.BaseURL,
		BotToken:   cfg.Telegram.BotToken,
		HTTPClient: &http.Client{Timeout: cfg.Telegram.Timeout},
	})
	index := telegram.NewSearchIndex(telegram.SearchConfig{
		BaseURL:    cfg.Search.BaseURL,
		APIKey:     cfg.Search.APIKey,
		Engine:     cfg.Search.Engine,
		HTTPClient: &http.Client{Timeout: cfg.Search.Timeout},
	})
	searcher := telegram.NewSearcher(index, resolver, telegram.SearcherConfig{
		Limit:   cfg.Search.ResultCap,
		PaceMin: cfg.Analysis.PaceMin,
		PaceMax: cfg.Analysis.PaceMax,
	}, log, m)

	a.Analyzer = analyzer.NewOrchestrator(
		analyzer.OrchestratorConfig{
			Mode:          analysis.Mode(cfg.Analysis.Mode),
			DefaultRegion: cfg.Trends.Region,
		},
		trendCollectors,
		resolver,
		searcher,
		log,
		m,
	)

	// Analysis history
	if cfg.Database.Enabled {
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, analysis history disabled")
		} else {
			store := storage.NewAnalysisStore(db)
			if err := store.Migrate(ctx); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
			a.db = db
			a.history = store
			a.Analyzer.AddRecorder(store)
			log.Info().Msg("analysis history enabled")
		}
	}

	// Analysis events
	if cfg.NATS.Enabled {
		nc, err := initNATS(cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable, analysis events disabled")
		} else {
			publisher := events.NewPublisher(nc, cfg.NATS.EventsTopic)
			a.nc = nc
			a.events = events.NewNATSSubscriber(nc)
			a.subject = publisher.Subject()
			a.Analyzer.AddRecorder(publisher)
			log.Info().Str("subject", a.subject).Msg("analysis events enabled")
		}
	}

	return a, nil
}

// ServerDependencies returns what the HTTP layer needs
func (a *App) ServerDependencies() server.Dependencies {
	return server.Dependencies{
		Analyzer:      a.Analyzer,
		History:       a.history,
		Events:        a.events,
		EventsSubject: a.subject,
		Gatherer:      a.Registry,
		Metrics:       a.Metrics,
		Log:           a.Log,
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	httpServer := server.NewServer(a.Config.Server, a.ServerDependencies())

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().
			Str("addr", a.Config.Server.Addr()).
			Str("mode", a.Config.Analysis.Mode).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	a.Log.Info().Msg("shutdown complete")
	return nil
}

// Close releases every long-lived connection
func (a *App) Close() {
	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			a.Log.Warn().Err(err).Msg("NATS drain error")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	if err := a.cache.Close(); err != nil {
		a.Log.Warn().Err(err).Msg("redis close error")
	}
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, log zerolog.Logger) (*nats.Conn, error) {
	log = log.With().Str("component", "nats").Logger()

	options := []nats.Option{
		nats.Name("trendlens"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
