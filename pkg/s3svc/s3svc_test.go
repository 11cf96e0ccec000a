// Package s3svc_test tests the s3svc package functionality
package s3svc_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/s3tool/internal/testutil"
	"github.com/sgaunet/s3tool/pkg/config"
	"github.com/sgaunet/s3tool/pkg/dto"
	"github.com/sgaunet/s3tool/pkg/s3svc"
)

// TestNewS3Svc tests creating a new service
func TestNewS3Svc(t *testing.T) {
	service := s3svc.NewS3Svc(config.Config{}, &testutil.MockS3Client{})

	if service == nil {
		t.Fatal("Service should not be nil")
	}
}

// TestSetLogger tests setting a logger
func TestSetLogger(t *testing.T) {
	service := s3svc.NewS3Svc(config.Config{}, &testutil.MockS3Client{})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service.SetLogger(logger)

	_, err := service.Summarize(context.Background(), "test-bucket", "")
	assert.NoError(t, err)
}

func seedBucket(b *testutil.Bucket, n int, prefix string) int64 {
	var total int64
	for i := 0; i < n; i++ {
		size := (i + 1) * 10
		b.Put(fmt.Sprintf("%sobject-%03d", prefix, i), make([]byte, size))
		total += int64(size)
	}
	return total
}

func TestSummarize_PaginationInvariance(t *testing.T) {
	bucket := testutil.NewBucket("test-bucket")
	total := seedBucket(bucket, 25, "logs/")
	seedBucket(bucket, 4, "other/")

	for _, pageSize := range []int32{0, 1, 2, 7, 24, 25, 26, 1000} {
		t.Run(fmt.Sprintf("page size %d", pageSize), func(t *testing.T) {
			service := s3svc.NewS3Svc(config.Config{PageSize: pageSize}, bucket)

			summary, err := service.Summarize(context.Background(), "test-bucket", "logs/")
			require.NoError(t, err)

			assert.Equal(t, "test-bucket", summary.Bucket)
			assert.Equal(t, "logs/", summary.Prefix)
			assert.Equal(t, int64(25), summary.ObjectCount)
			assert.Equal(t, total, summary.TotalBytes)
		})
	}
}

func TestSummarize_ServerSidePageLimit(t *testing.T) {
	bucket := testutil.NewBucket("test-bucket")
	bucket.PageSize = 3
	total := seedBucket(bucket, 10, "")

	service := s3svc.NewS3Svc(config.Config{}, bucket)
	summary, err := service.Summarize(context.Background(), "test-bucket", "")
	require.NoError(t, err)

	assert.Equal(t, int64(10), summary.ObjectCount)
	assert.Equal(t, total, summary.TotalBytes)
	assert.Equal(t, 4, bucket.ListCalls(), "10 keys at 3 per page")
}

func TestSummarize_Empty(t *testing.T) {
	bucket := testutil.NewBucket("test-bucket")
	seedBucket(bucket, 3, "logs/")

	testCases := []struct {
		name   string
		bucket *testutil.Bucket
		prefix string
	}{
		{name: "empty bucket", bucket: testutil.NewBucket("test-bucket")},
		{name: "prefix without objects", bucket: bucket, prefix: "nothing/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := s3svc.NewS3Svc(config.Config{}, tc.bucket)

			summary, err := service.Summarize(context.Background(), "test-bucket", tc.prefix)
			require.NoError(t, err)
			assert.Equal(t, int64(0), summary.ObjectCount)
			assert.Equal(t, int64(0), summary.TotalBytes)
		})
	}
}

func TestSummarize_EmptyPrefixScansWholeBucket(t *testing.T) {
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			assert.Nil(t, params.Prefix, "empty prefix must not be sent")
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{{Key: aws.String("a"), Size: aws.Int64(5)}},
			}, nil
		},
	}

	summary, err := s3svc.NewS3Svc(config.Config{}, mock).Summarize(context.Background(), "test-bucket", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.ObjectCount)
	assert.Equal(t, int64(5), summary.TotalBytes)
}

func TestSummarize_MissingBucket(t *testing.T) {
	service := s3svc.NewS3Svc(config.Config{}, testutil.NewBucket("test-bucket"))

	_, err := service.Summarize(context.Background(), "missing-bucket", "")
	require.Error(t, err)

	assert.ErrorIs(t, err, s3svc.ErrNotFound)
	assert.Equal(t, s3svc.KindNotFound, s3svc.KindOf(err))
	var noSuchBucket *types.NoSuchBucket
	assert.ErrorAs(t, err, &noSuchBucket)
}

func TestSummarize_MidScanFailure(t *testing.T) {
	calls := 0
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			calls++
			if calls == 1 {
				assert.Nil(t, params.ContinuationToken)
				return &s3.ListObjectsV2Output{
					Contents:              []types.Object{{Key: aws.String("a"), Size: aws.Int64(100)}},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("token-2"),
				}, nil
			}
			assert.Equal(t, "token-2", aws.ToString(params.ContinuationToken))
			return nil, &smithy.GenericAPIError{Code: "SlowDown", Message: "Please reduce your request rate."}
		},
	}

	summary, err := s3svc.NewS3Svc(config.Config{}, mock).Summarize(context.Background(), "test-bucket", "logs/")
	require.Error(t, err)

	assert.Equal(t, dto.BucketSummary{}, summary, "no partial result on failure")
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, s3svc.ErrTransient)
	assert.Contains(t, err.Error(), "summary failed: s3://test-bucket/logs/")
}

func TestSummarize_InvalidInput(t *testing.T) {
	bucket := testutil.NewBucket("test-bucket")

	_, err := s3svc.NewS3Svc(config.Config{}, bucket).Summarize(context.Background(), "", "")
	assert.ErrorIs(t, err, s3svc.ErrInvalidInput)
	assert.Equal(t, 0, bucket.ListCalls())
}

func TestDownload_CreatesDirectories(t *testing.T) {
	bucket := testutil.NewBucket("test-bucket")
	bucket.Put("data/file.txt", []byte("hello, world"))
	service := s3svc.NewS3Svc(config.Config{}, bucket)

	dest := filepath.Join(t.TempDir(), "a", "b", "c", "file.txt")
	path, err := service.Download(context.Background(), "test-bucket", "data/file.txt", dest)
	require.NoError(t, err)
	assert.Equal(t, dest, path)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(content))
	assertNoTempFiles(t, filepath.Dir(dest))
}

func TestDownload_Overwrites(t *testing.T) {
	bucket := testutil.NewBucket("test-bucket")
	bucket.Put("key", []byte("new content"))
	service := s3svc.NewS3Svc(config.Config{}, bucket)

	dest := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, os.WriteFile(dest, []byte("old content that is longer"), 0600))

	_, err := service.Download(context.Background(), "test-bucket", "key", dest)
	require.NoError(t, err)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(content))
}

func TestDownload_EmptyObject(t *testing.T) {
	bucket := testutil.NewBucket("test-bucket")
	bucket.Put("empty", nil)
	service := s3svc.NewS3Svc(config.Config{}, bucket)

	dest := filepath.Join(t.TempDir(), "empty")
	_, err := service.Download(context.Background(), "test-bucket", "empty", dest)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestDownload_RelativePathWithoutDirectory(t *testing.T) {
	bucket := testutil.NewBucket("test-bucket")
	bucket.Put("key", []byte("content"))
	service := s3svc.NewS3Svc(config.Config{}, bucket)

	dir := t.TempDir()
	t.Chdir(dir)

	path, err := service.Download(context.Background(), "test-bucket", "key", "out.bin")
	require.NoError(t, err)
	assert.Equal(t, "out.bin", path)

	content, err := os.ReadFile(filepath.Join(dir, "out.bin"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))
}

func TestDownload_MissingKey(t *testing.T) {
	bucket := testutil.NewBucket("my-bucket")
	service := s3svc.NewS3Svc(config.Config{}, bucket)

	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")
	_, err := service.Download(context.Background(), "my-bucket", "missing-key", dest)
	require.Error(t, err)

	var s3err *s3svc.Error
	require.ErrorAs(t, err, &s3err)
	assert.Equal(t, s3svc.OpDownload, s3err.Op)
	assert.Equal(t, "my-bucket", s3err.Bucket)
	assert.Equal(t, "missing-key", s3err.Key)
	assert.Equal(t, s3svc.KindNotFound, s3err.Kind)
	assert.ErrorIs(t, err, s3svc.ErrNotFound)
	assert.Contains(t, err.Error(), "download failed: s3://my-bucket/missing-key")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "failed download leaves no destination file")
	assertNoTempFiles(t, dir)
}

func TestDownload_FailureKeepsExistingDestination(t *testing.T) {
	mock := &testutil.MockS3Client{
		GetObjectFunc: func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
		},
	}
	service := s3svc.NewS3Svc(config.Config{}, mock)

	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(dest, []byte("previous"), 0600))

	_, err := service.Download(context.Background(), "test-bucket", "key", dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, s3svc.ErrAccessDenied)

	content, readErr := os.ReadFile(dest)
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(content))
	assertNoTempFiles(t, dir)
}

func TestDownload_InvalidInput(t *testing.T) {
	service := s3svc.NewS3Svc(config.Config{}, &testutil.MockS3Client{})

	_, err := service.Download(context.Background(), "test-bucket", "", filepath.Join(t.TempDir(), "x"))
	assert.ErrorIs(t, err, s3svc.ErrInvalidInput)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.part"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(src, []byte(content), 0600))
	return src
}

func TestUpload_ForwardsOnlySetOptions(t *testing.T) {
	testCases := []struct {
		name string
		opts dto.UploadOptions
	}{
		{name: "no options"},
		{name: "content type only", opts: dto.UploadOptions{ContentType: "text/csv"}},
		{name: "sse only", opts: dto.UploadOptions{ServerSideEncryption: "AES256"}},
		{name: "acl only", opts: dto.UploadOptions{ACL: "public-read"}},
		{name: "all options", opts: dto.UploadOptions{
			ContentType:          "application/json",
			ServerSideEncryption: "aws:kms",
			ACL:                  "private",
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bucket := testutil.NewBucket("my-bucket")
			service := s3svc.NewS3Svc(config.Config{}, bucket)
			src := writeSource(t, "id,value\n1,42\n")

			loc, err := service.Upload(context.Background(), src, "my-bucket", "reports/2025/report.csv", tc.opts)
			require.NoError(t, err)
			assert.Equal(t, dto.ObjectLocation{Bucket: "my-bucket", Key: "reports/2025/report.csv"}, loc)

			puts := bucket.PutInputs()
			require.Len(t, puts, 1)
			put := puts[0]

			if tc.opts.ContentType == "" {
				assert.Nil(t, put.ContentType)
			} else {
				assert.Equal(t, tc.opts.ContentType, aws.ToString(put.ContentType))
			}
			assert.Equal(t, types.ServerSideEncryption(tc.opts.ServerSideEncryption), put.ServerSideEncryption)
			assert.Equal(t, types.ObjectCannedACL(tc.opts.ACL), put.ACL)

			stored, ok := bucket.Object("reports/2025/report.csv")
			require.True(t, ok)
			assert.Equal(t, "id,value\n1,42\n", string(stored))
		})
	}
}

func TestUpload_MissingSource(t *testing.T) {
	bucket := testutil.NewBucket("my-bucket")
	service := s3svc.NewS3Svc(config.Config{}, bucket)

	_, err := service.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "my-bucket", "k", dto.UploadOptions{})
	require.Error(t, err)

	assert.ErrorIs(t, err, os.ErrNotExist)
	var s3err *s3svc.Error
	assert.False(t, errors.As(err, &s3err), "local I/O errors are not wrapped")
	assert.Empty(t, bucket.PutInputs())
}

func TestUpload_StorageFailure(t *testing.T) {
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
		},
	}
	service := s3svc.NewS3Svc(config.Config{}, mock)
	src := writeSource(t, "data")

	_, err := service.Upload(context.Background(), src, "my-bucket", "reports/r.csv", dto.UploadOptions{})
	require.Error(t, err)

	var s3err *s3svc.Error
	require.ErrorAs(t, err, &s3err)
	assert.Equal(t, s3svc.OpUpload, s3err.Op)
	assert.Equal(t, src, s3err.Path)
	assert.Equal(t, s3svc.KindAccessDenied, s3err.Kind)
	assert.Contains(t, err.Error(), "upload failed: "+src+" to s3://my-bucket/reports/r.csv")
}

func TestUpload_InvalidInput(t *testing.T) {
	service := s3svc.NewS3Svc(config.Config{}, &testutil.MockS3Client{})

	_, err := service.Upload(context.Background(), "whatever", "", "key", dto.UploadOptions{})
	assert.ErrorIs(t, err, s3svc.ErrInvalidInput)
}

func TestUploadThenSummarize(t *testing.T) {
	bucket := testutil.NewBucket("my-bucket")
	service := s3svc.NewS3Svc(config.Config{}, bucket)
	src := writeSource(t, "0123456789")

	_, err := service.Upload(context.Background(), src, "my-bucket", "reports/2025/report.csv", dto.UploadOptions{ContentType: "text/csv"})
	require.NoError(t, err)

	summary, err := service.Summarize(context.Background(), "my-bucket", "reports/2025/")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, summary.ObjectCount, int64(1))
	assert.GreaterOrEqual(t, summary.TotalBytes, int64(10))
}

func TestDetectContentType(t *testing.T) {
	src := writeSource(t, "just some plain text\n")

	contentType, err := s3svc.DetectContentType(src)
	require.NoError(t, err)
	assert.Contains(t, contentType, "text/plain")

	_, err = s3svc.DetectContentType(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
