// Package s3svc implements the bucket operations of s3tool: summary, download and upload.
package s3svc

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sgaunet/s3tool/pkg/config"
)

// API is the subset of the S3 client used by the service.
// *s3.Client satisfies it.
type API interface {
	s3.ListObjectsV2APIClient
	manager.DownloadAPIClient
	manager.UploadAPIClient
}

var _ API = (*s3.Client)(nil)

// Service is the struct for the S3 service
type Service struct {
	cfg        config.Config
	api        API
	uploader   *manager.Uploader
	downloader *manager.Downloader
	log        *slog.Logger
}

// NewS3Svc creates a new S3 service
// It requires a config.Config and an API implementation, usually a *s3.Client.
// Transfers run one part at a time, chunking is left to the transfer manager.
// By default the logger is set to write to /dev/null
func NewS3Svc(cfg config.Config, api API) *Service {
	s := &Service{
		cfg: cfg,
		api: api,
		uploader: manager.NewUploader(api, func(u *manager.Uploader) {
			u.Concurrency = 1
		}),
		downloader: manager.NewDownloader(api, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
		log: slog.New(slog.DiscardHandler),
	}
	return s
}

// SetLogger sets the logger
func (s *Service) SetLogger(log *slog.Logger) {
	s.log = log
}
