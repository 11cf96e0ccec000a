package s3svc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sgaunet/s3tool/pkg/dto"
)

// Summarize counts the objects under prefix in bucket and adds up their sizes.
// An empty prefix scans the whole bucket. A bucket or prefix without objects
// gives a zero summary, not an error. Any listing error aborts the scan and
// no partial result is returned.
func (s *Service) Summarize(ctx context.Context, bucket string, prefix string) (dto.BucketSummary, error) {
	if bucket == "" {
		return dto.BucketSummary{}, fmt.Errorf("Summarize: bucket name is required: %w", ErrInvalidInput)
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	paginator := s3.NewListObjectsV2Paginator(s.api, input, func(o *s3.ListObjectsV2PaginatorOptions) {
		if s.cfg.PageSize > 0 {
			o.Limit = s.cfg.PageSize
		}
	})

	var objectCount, totalBytes int64
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.log.Error("Summarize: error of paginator.NextPage",
				slog.String("bucket", bucket),
				slog.String("prefix", prefix),
				slog.Int("pages", pages),
				slog.String("error", err.Error()))
			return dto.BucketSummary{}, newError(OpSummary, "", bucket, prefix, err)
		}
		pages++
		for _, obj := range page.Contents {
			objectCount++
			totalBytes += aws.ToInt64(obj.Size)
		}
	}

	s.log.Debug("Summarize completed",
		slog.String("bucket", bucket),
		slog.String("prefix", prefix),
		slog.Int("pages", pages),
		slog.Int64("objects", objectCount),
		slog.Int64("bytes", totalBytes))

	return dto.BucketSummary{
		Bucket:      bucket,
		Prefix:      prefix,
		ObjectCount: objectCount,
		TotalBytes:  totalBytes,
	}, nil
}
