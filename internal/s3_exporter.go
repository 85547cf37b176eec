package internal

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
)

type s3API interface {
	manager.UploadAPIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// ExportResult lists the objects written by one export.
type ExportResult struct {
	Bucket       string `json:"bucket"`
	FormKey      string `json:"formKey"`
	ResponsesKey string `json:"responsesKey"`
	Responses    int    `json:"responses"`
}

// S3Exporter archives a form and its responses to an S3 bucket.
type S3Exporter struct {
	client   s3API
	uploader *manager.Uploader
	bucket   string
	prefix   string
	region   string
}

// NewS3Exporter builds an exporter from cfg. Static credentials are used when
// configured, the default AWS credential chain otherwise.
func NewS3Exporter(ctx context.Context, cfg formwave.ExportConfig) (*S3Exporter, error) {
	if err := ValidateExportConfig(cfg); err != nil {
		return nil, err
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, exportError("load aws config", err)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Exporter(client, cfg), nil
}

func newS3Exporter(client s3API, cfg formwave.ExportConfig) *S3Exporter {
	return &S3Exporter{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		region:   cfg.Region,
	}
}

// ExportForm writes <prefix>/<formID>/form.json and responses.csv, creating
// the bucket first when it does not exist.
func (e *S3Exporter) ExportForm(ctx context.Context, form *formwave.Form, responses []formwave.FormResponse) (*ExportResult, error) {
	if form == nil || form.ID == "" {
		return nil, formwave.NewValidationError("form", "a saved form is required for export")
	}
	if err := e.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	formJSON, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return nil, exportError("encode form", err).WithForm(form.ID)
	}
	var csvBuf bytes.Buffer
	if err := WriteResponsesCSV(&csvBuf, form, responses); err != nil {
		return nil, exportError("encode responses", err).WithForm(form.ID)
	}

	base := path.Join(e.prefix, form.ID)
	res := &ExportResult{
		Bucket:       e.bucket,
		FormKey:      path.Join(base, "form.json"),
		ResponsesKey: path.Join(base, "responses.csv"),
		Responses:    len(responses),
	}
	if err := e.put(ctx, res.FormKey, "application/json", formJSON); err != nil {
		return nil, err.WithForm(form.ID)
	}
	if err := e.put(ctx, res.ResponsesKey, "text/csv", csvBuf.Bytes()); err != nil {
		return nil, err.WithForm(form.ID)
	}

	zap.S().Infow("form exported", "formId", form.ID, "bucket", e.bucket, "responses", len(responses))
	return res, nil
}

func (e *S3Exporter) put(ctx context.Context, key, contentType string, body []byte) *formwave.Error {
	_, err := e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return exportError("upload "+key, err)
	}
	return nil
}

// EnsureBucket creates the export bucket when HeadBucket cannot see it.
func (e *S3Exporter) EnsureBucket(ctx context.Context) error {
	if _, err := e.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(e.bucket)}); err == nil {
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(e.bucket)}
	if e.region != "" && e.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(e.region),
		}
	}
	_, err := e.client.CreateBucket(ctx, input)
	if err == nil {
		zap.S().Infow("export bucket created", "bucket", e.bucket)
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return nil
		}
	}
	return exportError("create bucket "+e.bucket, err)
}

// WriteResponsesCSV renders responses as CSV: response id, submission time,
// then one column per field label in form order.
func WriteResponsesCSV(w io.Writer, form *formwave.Form, responses []formwave.FormResponse) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(form.Fields)+2)
	header = append(header, "Response ID", "Submitted At")
	for _, f := range form.Fields {
		header = append(header, f.Label)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range responses {
		row := make([]string, 0, len(header))
		row = append(row, r.ID, r.CreatedAt.UTC().Format(time.RFC3339))
		for _, f := range form.Fields {
			row = append(row, formwave.AnswerString(r.Data[f.ID]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportError(op string, err error) *formwave.Error {
	return formwave.NewError(formwave.ErrorTypeInternal, formwave.ErrCodeExportFailed, fmt.Sprintf("export failed: %s", op)).
		WithCause(err)
}
