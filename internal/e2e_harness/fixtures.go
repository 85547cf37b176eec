package e2e_harness

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lychee-technology/formwave"
	"github.com/lychee-technology/formwave/internal"
)

// SampleForm returns a saved form with a few answered responses.
func SampleForm() (*formwave.Form, []formwave.FormResponse) {
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	form := &formwave.Form{
		ID:        "e2e-form",
		Title:     "Team offsite",
		CreatedAt: created,
		UpdatedAt: created,
		Fields: []formwave.Field{
			{ID: "name", Type: formwave.FieldTypeShortAnswer, Label: "Name", Required: true},
			{ID: "diet", Type: formwave.FieldTypeCheckbox, Label: "Dietary needs",
				Options: []formwave.FieldOption{{ID: "v", Value: "Vegetarian"}, {ID: "g", Value: "Gluten free"}}},
			{ID: "nights", Type: formwave.FieldTypeNumber, Label: "Nights"},
		},
	}
	responses := []formwave.FormResponse{
		{ID: "r1", FormID: form.ID, CreatedAt: created.Add(time.Hour),
			Data: map[string]any{"name": "Ada", "diet": []any{"Vegetarian", "Gluten free"}, "nights": 2.0}},
		{ID: "r2", FormID: form.ID, CreatedAt: created.Add(2 * time.Hour),
			Data: map[string]any{"name": "Grace", "nights": 1.0}},
		{ID: "r3", FormID: form.ID, CreatedAt: created.Add(3 * time.Hour),
			Data: map[string]any{"name": "Linus, Jr", "diet": []any{"Vegetarian"}}},
	}
	return form, responses
}

// SeedAnalytics writes an analytics row directly through database/sql so the
// pgx-backed store can be checked against data it did not write itself.
func SeedAnalytics(ctx context.Context, db *sql.DB, table, formID string, views, completions int) error {
	rec := formwave.NewFormAnalytics(formID, time.Now().UTC())
	rec.Views = views
	rec.Completions = completions
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (form_id, record, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (form_id) DO UPDATE SET record = EXCLUDED.record`, table)
	if _, err := db.ExecContext(ctx, stmt, formID, string(raw)); err != nil {
		return fmt.Errorf("seed analytics: %w", err)
	}
	return nil
}

// DownloadObject fetches one object from the S3-compatible endpoint.
func DownloadObject(ctx context.Context, cfg formwave.ExportConfig, key string) ([]byte, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithBaseEndpoint(cfg.Endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	buf := manager.NewWriteAtBuffer(nil)
	if _, err := manager.NewDownloader(client).Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("s3 download: %w", err)
	}
	return buf.Bytes(), nil
}

// CountCSVRows loads a CSV file through DuckDB and returns its data row count.
func CountCSVRows(ctx context.Context, duck *internal.DuckDBAnalyticsStore, data []byte, dir string) (int, error) {
	path := filepath.Join(dir, "responses.csv")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return 0, err
	}
	var n int
	query := fmt.Sprintf("SELECT count(*) FROM read_csv_auto('%s', header = true)", path)
	if err := duck.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("duckdb read_csv_auto: %w", err)
	}
	return n, nil
}
