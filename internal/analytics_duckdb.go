package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
)

const duckDBAnalyticsTable = "form_analytics"

// DuckDBAnalyticsStore keeps analytics records in an embedded DuckDB file,
// one JSON document per form.
type DuckDBAnalyticsStore struct {
	DB *sql.DB
}

var _ formwave.AnalyticsStore = (*DuckDBAnalyticsStore)(nil)

// OpenDuckDBAnalyticsStore opens (or creates) the database at path. An empty
// path opens an in-memory database.
func OpenDuckDBAnalyticsStore(ctx context.Context, path string) (*DuckDBAnalyticsStore, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, formwave.NewStorageError("create duckdb directory", err)
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, formwave.NewStorageError("open duckdb", err)
	}
	// DuckDB allows one writer per file.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, formwave.NewStorageError("ping duckdb", err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		form_id VARCHAR PRIMARY KEY,
		record VARCHAR NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`, duckDBAnalyticsTable)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, formwave.NewStorageError("create analytics table", err)
	}

	zap.S().Debugw("duckdb analytics store opened", "path", dsn)
	return &DuckDBAnalyticsStore{DB: db}, nil
}

func (s *DuckDBAnalyticsStore) Load(ctx context.Context, formID string) (*formwave.FormAnalytics, error) {
	var raw string
	query := fmt.Sprintf("SELECT record FROM %s WHERE form_id = ?", duckDBAnalyticsTable)
	err := s.DB.QueryRowContext(ctx, query, formID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, formwave.NewStorageError("load analytics", err).WithForm(formID)
	}

	var rec formwave.FormAnalytics
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, formwave.NewStorageError("decode analytics", err).WithForm(formID)
	}
	return &rec, nil
}

func (s *DuckDBAnalyticsStore) Save(ctx context.Context, record *formwave.FormAnalytics) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return formwave.NewStorageError("encode analytics", err).WithForm(record.FormID)
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (form_id, record, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (form_id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		duckDBAnalyticsTable)
	if _, err := s.DB.ExecContext(ctx, stmt, record.FormID, string(raw), time.Now().UTC()); err != nil {
		return formwave.NewStorageError("save analytics", err).WithForm(record.FormID)
	}
	return nil
}

// HealthCheck runs a trivial query against the database.
func (s *DuckDBAnalyticsStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var v int
	if err := s.DB.QueryRowContext(ctx, "SELECT 1;").Scan(&v); err != nil {
		return fmt.Errorf("duckdb health query failed: %w", err)
	}
	if v != 1 {
		return fmt.Errorf("unexpected duckdb health result: %d", v)
	}
	return nil
}

func (s *DuckDBAnalyticsStore) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
