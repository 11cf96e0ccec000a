// Package dto provides data transfer objects for S3 operations
package dto

import (
	"encoding/json"
	"fmt"
)

// sizeUnits are the 1024-based steps used by HumanSize.
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// BucketSummary is the result of a summary scan over a bucket and an optional prefix.
type BucketSummary struct {
	Bucket      string
	Prefix      string
	ObjectCount int64
	TotalBytes  int64
}

// HumanSize returns TotalBytes as a binary-scaled string with two decimals, e.g. "1.50 MB".
func (b BucketSummary) HumanSize() string {
	return HumanSize(b.TotalBytes)
}

// HumanSize formats a byte count using 1024 unit steps from B up to EB.
func HumanSize(n int64) string {
	size := float64(n)
	for _, unit := range sizeUnits {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f EB", size)
}

type bucketSummaryJSON struct {
	Bucket      string  `json:"bucket"`
	Prefix      *string `json:"prefix"`
	ObjectCount int64   `json:"object_count"`
	TotalBytes  int64   `json:"total_bytes"`
	HumanSize   string  `json:"human_size"`
}

// MarshalJSON renders the summary with its human readable size.
// An empty prefix is written as null.
func (b BucketSummary) MarshalJSON() ([]byte, error) {
	out := bucketSummaryJSON{
		Bucket:      b.Bucket,
		ObjectCount: b.ObjectCount,
		TotalBytes:  b.TotalBytes,
		HumanSize:   b.HumanSize(),
	}
	if b.Prefix != "" {
		prefix := b.Prefix
		out.Prefix = &prefix
	}
	return json.Marshal(out)
}

// UploadOptions holds the optional object settings of an upload.
// Empty fields are not sent, the service applies its own defaults.
type UploadOptions struct {
	ContentType          string
	ServerSideEncryption string
	ACL                  string
}

// ObjectLocation identifies an object in a bucket.
type ObjectLocation struct {
	Bucket string
	Key    string
}

// String returns the location in s3://bucket/key notation.
func (o ObjectLocation) String() string {
	return "s3://" + o.Bucket + "/" + o.Key
}
