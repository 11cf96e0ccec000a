// Package s3client builds the S3 client used by every s3tool command.
//
// Construction resolves configuration and credentials from the standard AWS
// chain (environment, shared files, profile) but never contacts the network:
// credentials are validated by the first real request.
package s3client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconf "github.com/sgaunet/s3tool/pkg/config"
)

const (
	// ConnectTimeout bounds the TCP dial of a single request.
	ConnectTimeout = 5 * time.Second
	// ReadTimeout bounds the wait for response headers once the request is sent.
	ReadTimeout = 60 * time.Second
	// MaxAttempts is the retry cap of the standard retry policy, first attempt included.
	MaxAttempts = 10

	// defaultEndpointRegion is used for signing against a custom endpoint when no region is set.
	defaultEndpointRegion = "us-east-1"
)

// NewHTTPClient returns the HTTP client carrying the fixed connect and read timeouts.
func NewHTTPClient() *awshttp.BuildableClient {
	return awshttp.NewBuildableClient().
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = ConnectTimeout
		}).
		WithTransportOptions(func(tr *http.Transport) {
			tr.ResponseHeaderTimeout = ReadTimeout
		})
}

// NewRetryer returns the standard retry policy capped at MaxAttempts.
func NewRetryer() aws.Retryer {
	return retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = MaxAttempts
	})
}

// LoadAWSConfig resolves an aws.Config for cfg.
// The profile is passed to the SDK as a load option, the process environment is left untouched.
// Extra load options are applied last.
func LoadAWSConfig(
	ctx context.Context,
	cfg appconf.Config,
	log *slog.Logger,
	extra ...func(*config.LoadOptions) error,
) (aws.Config, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	opts := []func(*config.LoadOptions) error{
		config.WithHTTPClient(NewHTTPClient()),
		config.WithRetryer(NewRetryer),
	}

	if cfg.Profile != "" {
		log.Debug("Using shared config profile", slog.String("profile", cfg.Profile))
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.AccessKey != "" {
		log.Debug("Using static credentials")
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	if log.Enabled(ctx, slog.LevelDebug) {
		opts = append(opts,
			config.WithLogger(newSDKLogger(log)),
			config.WithClientLogMode(aws.LogRetries),
		)
	}

	opts = append(opts, extra...)

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.Error("Error loading AWS config", slog.String("error", err.Error()))
		return awsCfg, fmt.Errorf("error loading AWS config: %w", err)
	}
	if awsCfg.Region == "" && cfg.Endpoint != "" {
		awsCfg.Region = defaultEndpointRegion
	}
	log.Debug("AWS config loaded", slog.String("region", awsCfg.Region))
	return awsCfg, nil
}

// ClientOptions returns the per-client options derived from cfg.
func ClientOptions(cfg appconf.Config) []func(*s3.Options) {
	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if cfg.PathStyle {
		opts = append(opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	return opts
}

// New returns an S3 client for cfg.
func New(
	ctx context.Context,
	cfg appconf.Config,
	log *slog.Logger,
	extra ...func(*config.LoadOptions) error,
) (*s3.Client, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg, log, extra...)
	if err != nil {
		return nil, err
	}
	// https://pkg.go.dev/github.com/aws/aws-sdk-go-v2/service/s3
	return s3.NewFromConfig(awsCfg, ClientOptions(cfg)...), nil
}
