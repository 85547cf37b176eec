package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lychee-technology/formwave"
)

// ValidateExportConfig performs basic sanity checks on the S3 export settings.
func ValidateExportConfig(cfg formwave.ExportConfig) error {
	if cfg.Bucket == "" {
		return &formwave.ConfigError{Field: "export.bucket", Message: "must not be empty"}
	}
	if cfg.Region == "" {
		return &formwave.ConfigError{Field: "export.region", Message: "must not be empty"}
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey == "" {
		return &formwave.ConfigError{Field: "export.secretAccessKey", Message: "accessKeyId provided without secretAccessKey"}
	}
	if cfg.SecretAccessKey != "" && cfg.AccessKeyID == "" {
		return &formwave.ConfigError{Field: "export.accessKeyId", Message: "secretAccessKey provided without accessKeyId"}
	}
	return nil
}

// HealthCheck confirms the export bucket is reachable with the configured
// credentials. A missing bucket is reported as an error; ExportForm creates it.
func (e *S3Exporter) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := e.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(e.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s not reachable: %w", e.bucket, err)
	}
	return nil
}
