// Package testutil provides test doubles for the S3 API used by s3tool.
// This package is internal and should only be used for testing.
package testutil
