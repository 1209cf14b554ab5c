package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oxfell/drover/internal/observability"
	"github.com/oxfell/drover/pkg/provider"
	"github.com/oxfell/drover/pkg/provider/s3"
)

var headCmd = &cobra.Command{
	Use:   "head <key>",
	Short: "Show the metadata of a single object",
	Long: `Fetch and print the metadata of one object without downloading its
body: size, ETag, content type, last-modified time, and user metadata.

Example:
  drover head --bucket my-bucket reports/2026/a.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runHead,
}

var headBucket string

func init() {
	rootCmd.AddCommand(headCmd)

	headCmd.Flags().StringVar(&headBucket, "bucket", "", "Bucket holding the object (env AWS_S3_BUCKET)")
}

func runHead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := args[0]

	bucket := stringOrEnv(headBucket, "bucket")
	if bucket == "" {
		return exitError(foundry.ExitInvalidArgument, "Missing bucket", fmt.Errorf("set --bucket or AWS_S3_BUCKET"))
	}

	client, err := s3.New(ctx, resolveClientConfig(bucket))
	if err != nil {
		observability.CLILogger.Error("Failed to create storage client", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = client.Close() }()

	meta, err := client.Head(ctx, key)
	if err != nil {
		if provider.IsNotFound(err) {
			return exitError(foundry.ExitFileNotFound, "Object not found", err)
		}
		observability.CLILogger.Error("Head failed",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Head failed", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Key\t%s\n", meta.Key)
	fmt.Fprintf(w, "Size\t%d\n", meta.Size)
	fmt.Fprintf(w, "ETag\t%s\n", meta.ETag)
	fmt.Fprintf(w, "ContentType\t%s\n", meta.ContentType)
	fmt.Fprintf(w, "LastModified\t%s\n", meta.LastModified.Format(time.RFC3339))

	keys := make([]string, 0, len(meta.Metadata))
	for k := range meta.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "Meta:%s\t%s\n", k, meta.Metadata[k])
	}
	return w.Flush()
}
