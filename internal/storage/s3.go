// Package storage uploads generated plot images to an S3 bucket and hands
// back publicly addressable URLs.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/config"
)

// Uploader pushes plot files to the configured bucket.
type Uploader struct {
	bucket   string
	region   string
	endpoint string
	client   *s3.Client
	log      zerolog.Logger
}

func NewUploader(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (*Uploader, error) {
	logger := log.With().Str("component", "s3-storage").Logger()

	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("missing S3_BUCKET_NAME")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Uploader{
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
		client:   client,
		log:      logger,
	}, nil
}

// UploadFile uploads a local plot file and returns its object URL. The local
// file is removed only after the upload is confirmed; a failed removal is
// logged but does not fail the upload.
func (u *Uploader) UploadFile(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}

	key := objectKey(filepath.Base(localPath))
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("image/png"),
	})
	f.Close()
	if err != nil {
		u.log.Error().Err(err).Str("bucket", u.bucket).Str("key", key).Msg("upload failed")
		return "", fmt.Errorf("upload %s to bucket %s: %w", key, u.bucket, err)
	}

	if err := os.Remove(localPath); err != nil {
		u.log.Error().Err(err).Str("path", localPath).Msg("failed to delete local file after upload")
	}

	url := u.ObjectURL(key)
	u.log.Info().Str("key", key).Str("url", url).Msg("plot uploaded")
	return url, nil
}

// ObjectURL builds the retrievable URL for an uploaded key. us-east-1 keeps
// the legacy regionless host.
func (u *Uploader) ObjectURL(key string) string {
	if u.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.endpoint, "/"), u.bucket, key)
	}
	if u.region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}

func objectKey(base string) string {
	ts := time.Now().Format("20060102_150405")
	short := uuid.NewString()[:8]
	return fmt.Sprintf("plots/%s_%s_%s", ts, short, base)
}
