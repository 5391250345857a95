// Package archive uploads historical analysis output files (anomalies.jsonl,
// critical.jsonl) to an S3-compatible bucket once a batch run finishes.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Target abstracts the destination for a finished output file.
type Target interface {
	WriteFile(ctx context.Context, name string, data []byte) error
}

// FileTarget writes to a local filesystem directory — the default when
// no S3 config is given, so ttanalyse always has somewhere to put its
// output.
type FileTarget struct {
	path string
}

// NewFileTarget creates (if needed) and returns a local directory target.
func NewFileTarget(path string) (*FileTarget, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create target directory: %w", err)
	}
	return &FileTarget{path: path}, nil
}

func (ft *FileTarget) WriteFile(_ context.Context, name string, data []byte) error {
	return os.WriteFile(filepath.Join(ft.path, name), data, 0o640)
}

// Config configures an S3Target.
type Config struct {
	Endpoint     string `json:"endpoint"`
	Bucket       string `json:"bucket"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
	Region       string `json:"region"`
	UsePathStyle bool   `json:"use_path_style"`
}

// S3Target writes output files to an S3-compatible object store.
type S3Target struct {
	client *s3.Client
	bucket string
}

// NewS3Target builds an S3Target from Config.
func NewS3Target(ctx context.Context, cfg Config) (*S3Target, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive: empty bucket name")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: load AWS config: %w", err)
	}

	opts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}

	client := s3.NewFromConfig(awsCfg, opts)
	return &S3Target{client: client, bucket: cfg.Bucket}, nil
}

func (st *S3Target) WriteFile(ctx context.Context, name string, data []byte) error {
	_, err := st.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(st.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/jsonl"),
	})
	if err != nil {
		return fmt.Errorf("archive: put object %q: %w", name, err)
	}
	return nil
}
