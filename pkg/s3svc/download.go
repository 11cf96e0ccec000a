package s3svc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/natefinch/atomic"
)

const downloadFileMode os.FileMode = 0o644

// Download writes the object bucket/key to destPath and returns destPath.
// Missing parent directories are created. The object is first written to a
// temporary file next to destPath which then replaces destPath, so destPath is
// either left untouched or holds the complete object.
func (s *Service) Download(ctx context.Context, bucket string, key string, destPath string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("Download: bucket and key are required: %w", ErrInvalidInput)
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".*.part")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := s.downloader.Download(ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		_ = tmp.Close()
		s.log.Error("Download: error downloading from S3",
			slog.String("bucket", bucket),
			slog.String("key", key),
			slog.String("error", err.Error()))
		return "", newError(OpDownload, destPath, bucket, key, err)
	}

	if err := tmp.Chmod(downloadFileMode); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := atomic.ReplaceFile(tmpName, destPath); err != nil {
		return "", err
	}
	committed = true

	s.log.Debug("Download completed",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.String("dest", destPath),
		slog.Int64("size", n))

	return destPath, nil
}
