package s3svc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Operation names carried by Error.
const (
	OpSummary  = "summary"
	OpDownload = "download"
	OpUpload   = "upload"
)

// Kind classifies a storage failure.
type Kind int

const (
	// KindUnknown is any failure that does not fit another kind.
	KindUnknown Kind = iota
	// KindNotFound means the bucket or the key does not exist.
	KindNotFound
	// KindAccessDenied covers missing, invalid or insufficient credentials.
	KindAccessDenied
	// KindTransient covers throttling, timeouts, 5xx and connection failures
	// still failing once the retry policy gave up.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAccessDenied:
		return "access denied"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Sentinel errors, matched by errors.Is against an *Error of the same kind.
var (
	ErrNotFound     = errors.New("s3: not found")
	ErrAccessDenied = errors.New("s3: access denied")
	ErrTransient    = errors.New("s3: transient failure")

	// ErrInvalidInput is returned before any request when a bucket or key argument is empty.
	ErrInvalidInput = errors.New("s3: invalid input")
)

var notFoundCodes = map[string]struct{}{
	"NoSuchKey":     {},
	"NoSuchBucket":  {},
	"NotFound":      {},
	"NoSuchVersion": {},
}

var accessDeniedCodes = map[string]struct{}{
	"AccessDenied":          {},
	"Forbidden":             {},
	"InvalidAccessKeyId":    {},
	"SignatureDoesNotMatch": {},
	"ExpiredToken":          {},
	"InvalidToken":          {},
	"AllAccessDisabled":     {},
	"AccountProblem":        {},
}

// credentialFailures are the SDK messages produced when no credentials could be resolved.
var credentialFailures = []string{
	"failed to retrieve credentials",
	"failed to refresh cached credentials",
	"get identity",
}

// Error is a storage-side failure of a bucket operation.
type Error struct {
	// Op is the operation that failed (summary, download, upload).
	Op string
	// Path is the local file involved, if any.
	Path string
	// Bucket and Key locate the object; for a summary Key holds the prefix.
	Bucket string
	Key    string
	// Kind classifies Err.
	Kind Kind
	// Err is the error returned by the SDK.
	Err error
}

func newError(op, path, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Path:   path,
		Bucket: bucket,
		Key:    key,
		Kind:   classify(err),
		Err:    err,
	}
}

func (e *Error) Error() string {
	location := "s3://" + e.Bucket + "/" + e.Key
	switch e.Op {
	case OpUpload:
		return fmt.Sprintf("upload failed: %s to %s: %v", e.Path, location, e.Err)
	case OpDownload:
		return fmt.Sprintf("download failed: %s: %v", location, e.Err)
	default:
		return fmt.Sprintf("%s failed: %s: %v", e.Op, location, e.Err)
	}
}

// Unwrap returns the underlying SDK error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrAccessDenied:
		return e.Kind == KindAccessDenied
	case ErrTransient:
		return e.Kind == KindTransient
	}
	return false
}

// KindOf returns the kind of err, classifying it when it is not an *Error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) || errors.As(err, &notFound) {
		return KindNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if _, ok := notFoundCodes[code]; ok {
			return KindNotFound
		}
		if _, ok := accessDeniedCodes[code]; ok {
			return KindAccessDenied
		}
		if _, ok := retry.DefaultThrottleErrorCodes[code]; ok {
			return KindTransient
		}
		if _, ok := retry.DefaultRetryableErrorCodes[code]; ok {
			return KindTransient
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status := respErr.HTTPStatusCode()
		switch {
		case status == http.StatusNotFound:
			return KindNotFound
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return KindAccessDenied
		case status == http.StatusTooManyRequests:
			return KindTransient
		}
		if _, ok := retry.DefaultRetryableHTTPStatusCodes[status]; ok {
			return KindTransient
		}
	}

	msg := err.Error()
	for _, s := range credentialFailures {
		if strings.Contains(msg, s) {
			return KindAccessDenied
		}
	}

	var maxAttempts *retry.MaxAttemptsError
	if errors.As(err, &maxAttempts) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	if retry.IsErrorRetryables(retry.DefaultRetryables).IsErrorRetryable(err) == aws.TrueTernary {
		return KindTransient
	}
	return KindUnknown
}
