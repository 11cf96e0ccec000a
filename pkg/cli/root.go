// Package cli wires the s3tool commands: summary, download and upload.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sgaunet/s3tool/pkg/config"
	"github.com/sgaunet/s3tool/pkg/s3client"
	"github.com/sgaunet/s3tool/pkg/s3svc"
)

// ServiceFactory builds the bucket service for a resolved configuration.
type ServiceFactory func(ctx context.Context, cfg config.Config, log *slog.Logger) (*s3svc.Service, error)

// NewService is the ServiceFactory backed by a real S3 client.
func NewService(ctx context.Context, cfg config.Config, log *slog.Logger) (*s3svc.Service, error) {
	client, err := s3client.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	svc := s3svc.NewS3Svc(cfg, client)
	svc.SetLogger(log)
	return svc, nil
}

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	configFile string
	flags      config.Config
	factory    ServiceFactory
}

// NewRootCmd returns the s3tool command tree using factory to reach S3.
func NewRootCmd(factory ServiceFactory) *cobra.Command {
	opts := &rootOptions{factory: factory}

	cmd := &cobra.Command{
		Use:          "s3tool",
		Short:        "Small S3 helper to summarize buckets and upload/download objects.",
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.flags.Profile, "profile", "", "AWS profile name (overrides the default chain)")
	pf.StringVar(&opts.flags.Region, "region", "", "AWS region (e.g., us-east-1)")
	pf.StringVar(&opts.flags.Endpoint, "endpoint", "", "S3 endpoint URL for S3-compatible services")
	pf.BoolVar(&opts.flags.PathStyle, "path-style", false, "Use path-style addressing")
	pf.StringVar(&opts.flags.LogLevel, "log-level", "", "Log level: debug, info, warn or error (default warn)")
	pf.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")

	cmd.AddCommand(
		newSummaryCmd(opts),
		newDownloadCmd(opts),
		newUploadCmd(opts),
	)
	return cmd
}

// service resolves the configuration (file, then global flags, then override)
// and builds the bucket service.
func (o *rootOptions) service(cmd *cobra.Command, override config.Config) (*s3svc.Service, error) {
	var cfg config.Config
	if o.configFile != "" {
		fileCfg, err := config.ReadYamlCnxFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	cfg = cfg.Merge(o.flags).Merge(override)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := initTrace(cfg.LogLevel, cmd.ErrOrStderr())
	return o.factory(cmd.Context(), cfg, log)
}

// initTrace initializes the logger
func initTrace(debugLevel string, w io.Writer) *slog.Logger {
	handlerOptions := &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}

	switch debugLevel {
	case "debug":
		handlerOptions.Level = slog.LevelDebug
		handlerOptions.AddSource = true
	case "info":
		handlerOptions.Level = slog.LevelInfo
	case "error":
		handlerOptions.Level = slog.LevelError
	}

	handler := slog.NewTextHandler(w, handlerOptions)
	return slog.New(handler)
}
