package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oxfell/drover/internal/observability"
	"github.com/oxfell/drover/pkg/provider"
	"github.com/oxfell/drover/pkg/provider/s3"
)

var copyCmd = &cobra.Command{
	Use:   "copy <src-key> <dst-key>",
	Short: "Copy a single object between buckets",
	Long: `Copy one object from the source bucket to the destination bucket.

Example:
  drover copy --source-bucket src --destination-bucket dst reports/a.csv archive/a.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runCopy,
}

var (
	copySourceBucket string
	copyDestBucket   string
)

func init() {
	rootCmd.AddCommand(copyCmd)

	copyCmd.Flags().StringVar(&copySourceBucket, "source-bucket", "", "Source bucket (env AWS_S3_SRC_BUCKET)")
	copyCmd.Flags().StringVar(&copyDestBucket, "destination-bucket", "", "Destination bucket (env AWS_S3_DST_BUCKET)")
}

func runCopy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	srcKey, dstKey := args[0], args[1]

	srcBucket := stringOrEnv(copySourceBucket, "source_bucket")
	if srcBucket == "" {
		return exitError(foundry.ExitInvalidArgument, "Missing source bucket", fmt.Errorf("set --source-bucket or AWS_S3_SRC_BUCKET"))
	}
	dstBucket := stringOrEnv(copyDestBucket, "destination_bucket")
	if dstBucket == "" {
		return exitError(foundry.ExitInvalidArgument, "Missing destination bucket", fmt.Errorf("set --destination-bucket or AWS_S3_DST_BUCKET"))
	}

	client, err := s3.New(ctx, resolveClientConfig(dstBucket))
	if err != nil {
		observability.CLILogger.Error("Failed to create storage client", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = client.Close() }()

	etag, err := client.CopyObject(ctx, provider.CopyInput{
		SourceBucket: srcBucket,
		SourceKey:    srcKey,
		Key:          dstKey,
	})
	if err != nil {
		observability.CLILogger.Error("Copy failed",
			zap.String("source_key", srcKey),
			zap.String("key", dstKey),
			zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Copy failed", err)
	}

	if etag == "" {
		observability.CLILogger.Warn("Copy response had no ETag",
			zap.String("source_key", srcKey),
			zap.String("key", dstKey))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Copied from %s/%s to %s/%s with etag %s\n", srcBucket, srcKey, dstBucket, dstKey, etag)
	return nil
}
