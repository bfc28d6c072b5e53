// Package archive copies history exports to object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

// MinioArchiver stores each export under exports/YYYY/MM/DD/.
type MinioArchiver struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

func NewMinioArchiver(ctx context.Context, cfg Config, logger *zap.Logger) (*MinioArchiver, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	a := &MinioArchiver{client: client, bucket: cfg.Bucket, logger: logger, now: time.Now}
	if err := a.ensureBucket(ctx, region); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *MinioArchiver) ensureBucket(ctx context.Context, region string) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		a.logger.Info("bucket verified", zap.String("bucket", a.bucket))
		return nil
	}

	err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: region})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	a.logger.Info("bucket created", zap.String("bucket", a.bucket))
	return nil
}

func (a *MinioArchiver) objectName(name string) string {
	return path.Join("exports", a.now().Format("2006/01/02"), name)
}

// Archive implements history.Archiver.
func (a *MinioArchiver) Archive(ctx context.Context, name, contentType string, data []byte) error {
	object := a.objectName(name)
	info, err := a.client.PutObject(ctx, a.bucket, object,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", object, err)
	}

	a.logger.Info("export archived",
		zap.String("bucket", a.bucket),
		zap.String("object", object),
		zap.Int64("size", info.Size),
	)
	return nil
}
