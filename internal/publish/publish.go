// Package publish uploads a run's artifacts and report to S3 (or any S3
// compatible endpoint such as MinIO).
package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config selects the destination bucket.
type Config struct {
	Bucket   string `yaml:"bucket" json:"bucket"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	Region   string `yaml:"region" json:"region"`
	Endpoint string `yaml:"endpoint" json:"endpoint"` // Optional custom endpoint (MinIO, LocalStack)
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// PutObjectAPI is the part of *s3.Client the Publisher uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads files under a key prefix.
type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewClient builds an S3 client from the default AWS credential chain.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOpts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	}
	return s3.NewFromConfig(awsCfg, clientOpts), nil
}

// New creates a Publisher writing to cfg.Bucket through client.
func New(client PutObjectAPI, cfg Config) *Publisher {
	return &Publisher{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}
}

// File is one local file to upload. Key is relative to the run prefix.
type File struct {
	Path string
	Key  string
}

// Key returns the full object key for a run-relative key.
func (p *Publisher) Key(runID, rel string) string {
	parts := make([]string, 0, 3)
	if p.prefix != "" {
		parts = append(parts, p.prefix)
	}
	if runID != "" {
		parts = append(parts, runID)
	}
	parts = append(parts, filepath.ToSlash(rel))
	return path.Join(parts...)
}

// Publish uploads files under <prefix>/<runID>/ in the order given and
// returns the keys written. It stops at the first failed upload.
func (p *Publisher) Publish(ctx context.Context, runID string, files []File) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return keys, fmt.Errorf("read %s: %w", f.Path, err)
		}

		key := p.Key(runID, f.Key)
		_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType(f.Path)),
		})
		if err != nil {
			return keys, fmt.Errorf("s3 put %s failed: %w", key, err)
		}
		slog.Debug("published", "bucket", p.bucket, "key", key, "bytes", len(data))
		keys = append(keys, key)
	}
	return keys, nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".prom":
		return "text/plain; version=0.0.4"
	default:
		return "application/octet-stream"
	}
}
