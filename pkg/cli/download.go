package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sgaunet/s3tool/pkg/config"
)

func newDownloadCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "download <bucket> <key> <dest_path>",
		Short: "Download an object to a local path.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.service(cmd, config.Config{})
			if err != nil {
				return err
			}
			path, err := svc.Download(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded to: %s\n", abs)
			return nil
		},
	}
}
