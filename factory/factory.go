package factory

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
	"github.com/lychee-technology/formwave/internal"
)

// Services bundles the components built from one Config.
//
// Usage:
//
//	cfg, err := formwave.LoadConfigFromEnv()
//	if err != nil {
//	    // handle error
//	}
//	svc, err := factory.NewServices(ctx, cfg)
//	if err != nil {
//	    // handle error
//	}
//	defer svc.Close()
//
//	svc.Store.CreateNewForm()
//	saved, err := svc.Store.SaveForm(ctx)
type Services struct {
	Tokens    formwave.TokenStore
	Client    formwave.Client
	Store     formwave.DocumentStore
	Validator formwave.ResponseValidator
	Analytics formwave.AnalyticsTracker

	closers []func() error
}

// NewServices validates cfg and builds every component except the exporter,
// which needs bucket settings only some callers have; see NewExporter.
func NewServices(ctx context.Context, cfg *formwave.Config) (*Services, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc := &Services{}
	tokens, closeTokens, err := NewTokenStore(cfg.Session)
	if err != nil {
		return nil, err
	}
	svc.Tokens = tokens
	svc.closers = append(svc.closers, closeTokens)

	client := NewRESTClient(cfg.API, tokens)
	svc.Client = client
	svc.Store = internal.NewDocumentStore(client, internal.DocumentStoreOptions{})
	svc.Validator = internal.NewResponseValidator()

	analytics, err := NewAnalyticsStore(ctx, cfg.Analytics)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.closers = append(svc.closers, analytics.Close)
	svc.Analytics = internal.NewAnalyticsTracker(analytics, internal.AnalyticsTrackerOptions{
		Window: cfg.Analytics.HistoryWindow,
	})

	zap.S().Debugw("services ready",
		"api", cfg.API.BaseURL,
		"session", cfg.Session.Backend,
		"analytics", cfg.Analytics.Backend)
	return svc, nil
}

// Close releases the token and analytics backends.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// NewTokenStore returns the session token store selected by cfg.Backend and
// a function releasing its resources.
func NewTokenStore(cfg formwave.SessionConfig) (formwave.TokenStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case formwave.SessionBackendMemory:
		return internal.NewMemoryTokenStore(), noop, nil
	case formwave.SessionBackendFile, "":
		return internal.NewFileTokenStore(cfg.FilePath, cfg.TTL), noop, nil
	case formwave.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return internal.NewRedisTokenStore(client, cfg.Profile, cfg.TTL), client.Close, nil
	default:
		return nil, nil, &formwave.ConfigError{Field: "session.backend", Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
}

// NewRESTClient builds the REST client, with a circuit breaker when
// cfg.BreakerThreshold is positive.
func NewRESTClient(cfg formwave.APIConfig, tokens formwave.TokenStore) *internal.RESTClient {
	return internal.NewRESTClient(internal.RESTClientOptions{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Tokens:  tokens,
		Breaker: internal.NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerWindow, cfg.BreakerOpenTimeout),
	})
}

// NewAnalyticsStore opens the analytics backend selected by cfg.Backend.
func NewAnalyticsStore(ctx context.Context, cfg formwave.AnalyticsConfig) (formwave.AnalyticsStore, error) {
	switch cfg.Backend {
	case formwave.AnalyticsBackendMemory, "":
		return internal.NewMemoryAnalyticsStore(), nil
	case formwave.AnalyticsBackendDuckDB:
		store, err := internal.OpenDuckDBAnalyticsStore(ctx, cfg.DuckDBPath)
		if err != nil {
			return nil, err
		}
		if err := store.HealthCheck(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case formwave.AnalyticsBackendPostgres:
		pool, err := internal.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		store := internal.NewPostgresAnalyticsStore(pool, cfg.Database.TableName)
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, &formwave.ConfigError{Field: "analytics.backend", Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
}

// NewExporter builds the S3 exporter for cfg.
func NewExporter(ctx context.Context, cfg formwave.ExportConfig) (*internal.S3Exporter, error) {
	return internal.NewS3Exporter(ctx, cfg)
}
