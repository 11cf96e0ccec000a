package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sgaunet/s3tool/pkg/config"
	"github.com/sgaunet/s3tool/pkg/dto"
)

func newSummaryCmd(root *rootOptions) *cobra.Command {
	var (
		prefix   string
		asJSON   bool
		pageSize int32
	)

	cmd := &cobra.Command{
		Use:   "summary <bucket>",
		Short: "Show object count and total size for a bucket/prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.service(cmd, config.Config{PageSize: pageSize})
			if err != nil {
				return err
			}
			summary, err := svc.Summarize(cmd.Context(), args[0], prefix)
			if err != nil {
				return err
			}
			if asJSON {
				return writeSummaryJSON(cmd.OutOrStdout(), summary)
			}
			writeSummaryText(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Optional prefix to limit the scan (e.g., logs/2025/)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().Int32Var(&pageSize, "page-size", 0, "Keys requested per listing page (default: service default)")
	return cmd
}

func writeSummaryJSON(w io.Writer, summary dto.BucketSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding summary: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeSummaryText(w io.Writer, summary dto.BucketSummary) {
	prefix := summary.Prefix
	if prefix == "" {
		prefix = "(none)"
	}
	fmt.Fprintf(w, "Bucket:       %s\n", summary.Bucket)
	fmt.Fprintf(w, "Prefix:       %s\n", prefix)
	fmt.Fprintf(w, "Objects:      %d\n", summary.ObjectCount)
	fmt.Fprintf(w, "Total size:   %d bytes (%s)\n", summary.TotalBytes, summary.HumanSize())
}
