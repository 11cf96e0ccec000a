package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgaunet/s3tool/pkg/config"
	"github.com/sgaunet/s3tool/pkg/dto"
	"github.com/sgaunet/s3tool/pkg/s3svc"
)

func newUploadCmd(root *rootOptions) *cobra.Command {
	var (
		opts   dto.UploadOptions
		detect bool
	)

	cmd := &cobra.Command{
		Use:   "upload <src_path> <bucket> <key>",
		Short: "Upload a local file to S3.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			if detect && opts.ContentType == "" {
				contentType, err := s3svc.DetectContentType(src)
				if err != nil {
					return err
				}
				opts.ContentType = contentType
			}

			svc, err := root.service(cmd, config.Config{})
			if err != nil {
				return err
			}
			loc, err := svc.Upload(cmd.Context(), src, args[1], args[2], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded: %s\n", loc)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ContentType, "content-type", "", "Set Content-Type metadata")
	cmd.Flags().StringVar(&opts.ServerSideEncryption, "sse", "", "Server-side encryption (AES256 or aws:kms)")
	cmd.Flags().StringVar(&opts.ACL, "acl", "", "Object ACL (e.g., private, public-read)")
	cmd.Flags().BoolVar(&detect, "detect-content-type", false, "Detect Content-Type from the file content when --content-type is not set")
	return cmd
}
