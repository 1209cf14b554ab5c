package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oxfell/drover/internal/observability"
	"github.com/oxfell/drover/pkg/inventory"
	"github.com/oxfell/drover/pkg/provider/s3"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count objects in a bucket under a prefix",
	Long: `Count the objects in a bucket with a given prefix by walking the
paginated listing until it is exhausted.

Examples:
  drover count --bucket my-bucket
  drover count --bucket my-bucket --prefix logs/2026/`,
	Args: cobra.NoArgs,
	RunE: runCount,
}

var (
	countBucket string
	countPrefix string
)

func init() {
	rootCmd.AddCommand(countCmd)

	countCmd.Flags().StringVar(&countBucket, "bucket", "", "Bucket to count (env AWS_S3_BUCKET)")
	countCmd.Flags().StringVar(&countPrefix, "prefix", "", "Object prefix to count under (env AWS_S3_OBJECT_PREFIX)")
}

func runCount(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	bucket := stringOrEnv(countBucket, "bucket")
	if bucket == "" {
		return exitError(foundry.ExitInvalidArgument, "Missing bucket", fmt.Errorf("set --bucket or AWS_S3_BUCKET"))
	}
	prefix := stringOrEnv(countPrefix, "prefix")

	client, err := s3.New(ctx, resolveClientConfig(bucket))
	if err != nil {
		observability.CLILogger.Error("Failed to create storage client", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = client.Close() }()

	fmt.Fprintf(cmd.OutOrStdout(), "Counting files in bucket %s with prefix %q\n", bucket, prefix)

	total, err := inventory.Count(ctx, client, prefix)
	if err != nil {
		observability.CLILogger.Error("Count failed",
			zap.String("bucket", bucket),
			zap.String("prefix", prefix),
			zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Count failed", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Total objects counted: %d\n", total)
	return nil
}
