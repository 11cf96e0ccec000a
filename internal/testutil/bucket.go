package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sgaunet/s3tool/pkg/s3svc"
)

// defaultMaxKeys is the page size used by S3 when MaxKeys is not set.
const defaultMaxKeys = 1000

// Bucket is an in-memory, single-bucket S3 double.
// ListObjectsV2 honors Prefix, MaxKeys and continuation tokens, GetObject
// honors byte ranges. Multipart calls are rejected, test files stay below
// the transfer manager part size.
type Bucket struct {
	Name string
	// PageSize caps the number of keys per listing page when positive.
	PageSize int32

	mu        sync.Mutex
	objects   map[string][]byte
	puts      []s3.PutObjectInput
	listCalls int
}

// NewBucket returns an empty bucket called name.
func NewBucket(name string) *Bucket {
	return &Bucket{
		Name:    name,
		objects: make(map[string][]byte),
	}
}

// Put stores data under key.
func (b *Bucket) Put(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = append([]byte(nil), data...)
}

// Object returns the content stored under key.
func (b *Bucket) Object(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	return data, ok
}

// PutInputs returns the PutObject requests received so far, without their bodies.
func (b *Bucket) PutInputs() []s3.PutObjectInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]s3.PutObjectInput(nil), b.puts...)
}

// ListCalls returns the number of ListObjectsV2 requests received so far.
func (b *Bucket) ListCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

func (b *Bucket) checkBucket(name *string) error {
	if aws.ToString(name) != b.Name {
		return &types.NoSuchBucket{Message: aws.String("The specified bucket does not exist")}
	}
	return nil
}

// ListObjectsV2 implements s3svc.API.
func (b *Bucket) ListObjectsV2(
	_ context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++

	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}

	prefix := aws.ToString(params.Prefix)
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	limit := int32(defaultMaxKeys)
	if params.MaxKeys != nil && *params.MaxKeys > 0 && *params.MaxKeys < limit {
		limit = *params.MaxKeys
	}
	if b.PageSize > 0 && b.PageSize < limit {
		limit = b.PageSize
	}

	start := 0
	if token := aws.ToString(params.ContinuationToken); token != "" {
		start = sort.SearchStrings(keys, token)
	}
	end := start + int(limit)
	if end > len(keys) {
		end = len(keys)
	}

	out := &s3.ListObjectsV2Output{
		Name:        aws.String(b.Name),
		Prefix:      params.Prefix,
		KeyCount:    aws.Int32(int32(end - start)),
		IsTruncated: aws.Bool(end < len(keys)),
	}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(b.objects[k]))),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

// GetObject implements s3svc.API.
func (b *Bucket) GetObject(
	_ context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	data, ok := b.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}

	total := int64(len(data))
	part := data
	var contentRange *string
	if rng := aws.ToString(params.Range); rng != "" {
		if total == 0 {
			contentRange = aws.String("bytes */0")
		} else {
			var start, end int64
			if _, err := fmt.Sscanf(rng, "bytes=%d-%d", &start, &end); err != nil {
				return nil, &smithy.GenericAPIError{Code: "InvalidArgument", Message: err.Error()}
			}
			if start >= total {
				return nil, &smithy.GenericAPIError{Code: "InvalidRange", Message: "The requested range is not satisfiable"}
			}
			if end >= total {
				end = total - 1
			}
			part = data[start : end+1]
			contentRange = aws.String(fmt.Sprintf("bytes %d-%d/%d", start, end, total))
		}
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(append([]byte(nil), part...))),
		ContentLength: aws.Int64(int64(len(part))),
		ContentRange:  contentRange,
	}, nil
}

// PutObject implements s3svc.API.
func (b *Bucket) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	var data []byte
	if params.Body != nil {
		var err error
		data, err = io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	recorded := *params
	recorded.Body = nil
	b.puts = append(b.puts, recorded)
	b.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{ETag: aws.String(fmt.Sprintf("\"%d\"", len(data)))}, nil
}

var errMultipart = &smithy.GenericAPIError{Code: "NotImplemented", Message: "multipart uploads are not supported"}

// UploadPart implements s3svc.API.
func (b *Bucket) UploadPart(
	context.Context, *s3.UploadPartInput, ...func(*s3.Options),
) (*s3.UploadPartOutput, error) {
	return nil, errMultipart
}

// CreateMultipartUpload implements s3svc.API.
func (b *Bucket) CreateMultipartUpload(
	context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options),
) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errMultipart
}

// CompleteMultipartUpload implements s3svc.API.
func (b *Bucket) CompleteMultipartUpload(
	context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options),
) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errMultipart
}

// AbortMultipartUpload implements s3svc.API.
func (b *Bucket) AbortMultipartUpload(
	context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options),
) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

var _ s3svc.API = (*Bucket)(nil)
