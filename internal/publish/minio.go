// Package publish uploads written reports to S3-compatible object storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dropwatch/internal/config"
	apperrors "dropwatch/internal/errors"
	"dropwatch/internal/infrastructure"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv"
	contentTypeBin  = "application/octet-stream"
)

// objectAPI is the subset of *minio.Client used here
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Store uploads report files into one bucket
type Store struct {
	client objectAPI
	bucket string
	prefix string
	region string
	logger *slog.Logger
}

// Upload describes one stored report
type Upload struct {
	File string
	Key  string
	Size int64
}

// New connects to the configured endpoint and makes sure the bucket exists
func New(ctx context.Context, cfg config.PublishConfig, logger *slog.Logger) (*Store, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperrors.NewStorageError("invalid object store endpoint", err)
	}

	s := newStore(cli, cfg, logger)
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newStore(client objectAPI, cfg config.PublishConfig, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		region: cfg.Region,
		logger: infrastructure.WithComponent(logger, "publish"),
	}
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return apperrors.NewStorageError("bucket lookup failed", err).WithContext("bucket", s.bucket)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return apperrors.NewStorageError("bucket creation failed", err).WithContext("bucket", s.bucket)
	}
	s.logger.InfoContext(ctx, "Created bucket", slog.String("bucket", s.bucket))
	return nil
}

// ObjectKey returns <prefix>/<YYYY-MM-DD>/<file name>
func ObjectKey(prefix string, day time.Time, file string) string {
	return path.Join(strings.Trim(prefix, "/"), day.Format(time.DateOnly), filepath.Base(file))
}

// Publish uploads each file under the day's key prefix. Every file is
// attempted; the returned error joins all failures.
func (s *Store) Publish(ctx context.Context, day time.Time, files ...string) ([]Upload, error) {
	var uploads []Upload
	var errs []error

	for _, file := range files {
		key := ObjectKey(s.prefix, day, file)
		info, err := s.client.FPutObject(ctx, s.bucket, key, file, minio.PutObjectOptions{
			ContentType: contentType(file),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "Report upload failed",
				slog.String("file", file),
				slog.String("key", key),
				slog.String("error", err.Error()))
			errs = append(errs, apperrors.NewStorageError(fmt.Sprintf("upload %s", filepath.Base(file)), err))
			continue
		}

		s.logger.InfoContext(ctx, "Report uploaded",
			slog.String("bucket", s.bucket),
			slog.String("key", key),
			slog.Int64("size", info.Size))
		uploads = append(uploads, Upload{File: file, Key: key, Size: info.Size})
	}

	return uploads, errors.Join(errs...)
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".xlsx":
		return contentTypeXLSX
	case ".csv":
		return contentTypeCSV
	default:
		return contentTypeBin
	}
}
