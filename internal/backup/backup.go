package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/homebase/internal/model"
)

// ErrNotConfigured is returned by NewArchiver when bucket or credentials
// are missing.
var ErrNotConfigured = errors.New("export storage not configured")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Configured reports whether enough is set to build a client.
func (c S3Config) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Archiver writes encrypted family snapshots to object storage.
type Archiver struct {
	client s3Client
	bucket string
	logger *slog.Logger
}

// NewArchiver builds an Archiver backed by an S3 client for cfg.
func NewArchiver(cfg S3Config, logger *slog.Logger) (*Archiver, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	return newArchiver(newS3Client(cfg), cfg.Bucket, logger), nil
}

func newArchiver(client s3Client, bucket string, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{client: client, bucket: bucket, logger: logger.With("component", "backup")}
}

func newS3Client(cfg S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Archive serializes snapshot, encrypts it with passphrase and uploads it
// under key. It returns the size of the stored object.
func (a *Archiver) Archive(ctx context.Context, key string, snapshot *model.FamilySnapshot, passphrase string) (int64, error) {
	plaintext, err := json.Marshal(snapshot)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}

	sealed, err := Encrypt(plaintext, passphrase)
	if err != nil {
		return 0, fmt.Errorf("encrypt: %w", err)
	}

	size := int64(len(sealed))
	if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/octet-stream"),
	}); err != nil {
		return 0, fmt.Errorf("upload to s3: %w", err)
	}

	a.logger.Info("export uploaded", "key", key, "bytes", size)
	return size, nil
}

// Fetch downloads and decrypts the snapshot stored under key.
func (a *Archiver) Fetch(ctx context.Context, key, passphrase string) (*model.FamilySnapshot, error) {
	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	sealed, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}

	plaintext, err := Decrypt(sealed, passphrase)
	if err != nil {
		return nil, err
	}

	var snap model.FamilySnapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
