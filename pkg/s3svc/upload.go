package s3svc

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/sgaunet/s3tool/pkg/dto"
)

// Upload sends the local file srcPath to bucket/key.
// Only the options set in opts are sent with the request.
// Parameters:
//   - ctx: Context for the request
//   - srcPath: local file to upload, a missing or unreadable file is returned as is
//   - bucket, key: target location
//   - opts: content type, server-side encryption and canned ACL, each optional
func (s *Service) Upload(
	ctx context.Context,
	srcPath string,
	bucket string,
	key string,
	opts dto.UploadOptions,
) (dto.ObjectLocation, error) {
	if bucket == "" || key == "" {
		return dto.ObjectLocation{}, fmt.Errorf("Upload: bucket and key are required: %w", ErrInvalidInput)
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return dto.ObjectLocation{}, err
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.ServerSideEncryption != "" {
		input.ServerSideEncryption = types.ServerSideEncryption(opts.ServerSideEncryption)
	}
	if opts.ACL != "" {
		input.ACL = types.ObjectCannedACL(opts.ACL)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		s.log.Error("Upload: error uploading to S3",
			slog.String("src", srcPath),
			slog.String("bucket", bucket),
			slog.String("key", key),
			slog.String("error", err.Error()))
		return dto.ObjectLocation{}, newError(OpUpload, srcPath, bucket, key, err)
	}

	s.log.Debug("Upload completed",
		slog.String("src", srcPath),
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.String("contentType", opts.ContentType))

	return dto.ObjectLocation{Bucket: bucket, Key: key}, nil
}

// DetectContentType sniffs the media type of the file at path from its content.
func DetectContentType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}
