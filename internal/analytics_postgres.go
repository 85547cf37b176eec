package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dsql/auth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
)

// AnalyticsPool is the subset of pgxpool.Pool used by PostgresAnalyticsStore.
type AnalyticsPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresAnalyticsStore keeps analytics records as JSONB rows keyed by form id.
type PostgresAnalyticsStore struct {
	pool  AnalyticsPool
	table string
}

var _ formwave.AnalyticsStore = (*PostgresAnalyticsStore)(nil)

// NewPostgresAnalyticsStore uses pool and the given table, which
// EnsureSchema creates when missing.
func NewPostgresAnalyticsStore(pool AnalyticsPool, table string) *PostgresAnalyticsStore {
	if table == "" {
		table = "form_analytics"
	}
	return &PostgresAnalyticsStore{pool: pool, table: sanitizeIdentifier(table)}
}

func (s *PostgresAnalyticsStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		form_id TEXT PRIMARY KEY,
		record JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return formwave.NewStorageError("create analytics table", err)
	}
	return nil
}

func (s *PostgresAnalyticsStore) Load(ctx context.Context, formID string) (*formwave.FormAnalytics, error) {
	var raw []byte
	query := fmt.Sprintf("SELECT record FROM %s WHERE form_id = $1", s.table)
	err := s.pool.QueryRow(ctx, query, formID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, formwave.NewStorageError("load analytics", err).WithForm(formID)
	}

	var rec formwave.FormAnalytics
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, formwave.NewStorageError("decode analytics", err).WithForm(formID)
	}
	return &rec, nil
}

func (s *PostgresAnalyticsStore) Save(ctx context.Context, record *formwave.FormAnalytics) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return formwave.NewStorageError("encode analytics", err).WithForm(record.FormID)
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (form_id, record, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (form_id) DO UPDATE SET record = EXCLUDED.record, updated_at = now()`, s.table)
	if _, err := s.pool.Exec(ctx, stmt, record.FormID, raw); err != nil {
		return formwave.NewStorageError("save analytics", err).WithForm(record.FormID)
	}
	return nil
}

func (s *PostgresAnalyticsStore) Close() error {
	s.pool.Close()
	return nil
}

// NewPostgresPool connects to the database described by cfg. With UseIAM
// the password is replaced by an Aurora DSQL auth token for cfg.Region.
func NewPostgresPool(ctx context.Context, cfg formwave.DatabaseConfig) (*pgxpool.Pool, error) {
	password := cfg.Password
	if cfg.UseIAM {
		token, err := dsqlAuthToken(ctx, cfg)
		if err != nil {
			return nil, formwave.NewStorageError("generate dsql auth token", err)
		}
		password = token
		zap.S().Infow("using IAM auth token for analytics database", "host", cfg.Host)
	}

	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(password),
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, formwave.NewStorageError("parse connection string", err)
	}
	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
	if cfg.Timeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.Timeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, formwave.NewStorageError("create connection pool", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, formwave.NewStorageError("ping database", err)
	}
	return pool, nil
}

func dsqlAuthToken(ctx context.Context, cfg formwave.DatabaseConfig) (string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}
	endpoint := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return auth.GenerateDbConnectAuthToken(ctx, endpoint, awsCfg.Region, awsCfg.Credentials)
}
