package cmd

import (
	"context"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oxfell/drover/internal/observability"
	"github.com/oxfell/drover/pkg/batch"
	"github.com/oxfell/drover/pkg/joblist"
	"github.com/oxfell/drover/pkg/provider"
	"github.com/oxfell/drover/pkg/provider/s3"
)

var uploadListCmd = &cobra.Command{
	Use:   "upload-list [file]",
	Short: "Upload a list of local files to a bucket",
	Long: `Upload a list of local files to a remote bucket.

The list is read from the given file, or from stdin when the argument is
omitted or "-". Each line carries a local path and optional overrides:

  local_path[,destination_prefix[,metadata]]

Metadata is a space-separated list of key=value pairs. The destination key
is the file name joined onto the prefix. A line with no usable file name is
skipped and counted as a failure; it never aborts the batch.

Examples:
  drover upload-list --destination-bucket dst files.csv
  find . -name '*.parquet' | drover upload-list --destination-bucket dst --destination-prefix ingest/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUploadList,
}

var (
	uploadListDestBucket    string
	uploadListDestPrefix    string
	uploadListMaxConcurrent int
	uploadListRateLimit     float64
	uploadListMetadata      []string
)

func init() {
	rootCmd.AddCommand(uploadListCmd)

	uploadListCmd.Flags().StringVar(&uploadListDestBucket, "destination-bucket", "", "Destination bucket (env AWS_S3_DST_BUCKET)")
	uploadListCmd.Flags().StringVar(&uploadListDestPrefix, "destination-prefix", "", "Default destination prefix for lines without one (env AWS_S3_DST_OBJECT_PREFIX)")
	uploadListCmd.Flags().IntVar(&uploadListMaxConcurrent, "max-concurrent", batch.DefaultMaxConcurrent, "Max concurrent uploads (env AWS_S3_MAX_CONCURRENT)")
	uploadListCmd.Flags().Float64Var(&uploadListRateLimit, "rate-limit", 0, "Max uploads per second (0 = unlimited)")
	uploadListCmd.Flags().StringArrayVarP(&uploadListMetadata, "metadata", "m", nil, "Metadata key=value applied to every upload (repeatable)")
}

func runUploadList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dstBucket := stringOrEnv(uploadListDestBucket, "destination_bucket")
	if dstBucket == "" {
		return exitError(foundry.ExitInvalidArgument, "Missing destination bucket", fmt.Errorf("set --destination-bucket or AWS_S3_DST_BUCKET"))
	}

	maxConcurrent := resolveMaxConcurrent(cmd, uploadListMaxConcurrent)
	if maxConcurrent < 1 {
		return exitError(foundry.ExitInvalidArgument, "Invalid --max-concurrent value", fmt.Errorf("max_concurrent must be >= 1"))
	}

	cliMeta, err := joblist.ParseMetadataFlags(uploadListMetadata)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid --metadata value", err)
	}

	path := joblist.StdinPath
	if len(args) == 1 {
		path = args[0]
	}
	in, err := joblist.Open(path)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Failed to open job list", err)
	}
	defer func() { _ = in.Close() }()

	lines, err := joblist.ReadLines(in)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Failed to read job list", err)
	}

	client, err := s3.New(ctx, resolveClientConfig(dstBucket))
	if err != nil {
		observability.CLILogger.Error("Failed to create storage client", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = client.Close() }()

	jobID := uuid.New().String()
	parser := joblist.NewParser(joblist.Defaults{
		DestinationPrefix: stringOrEnv(uploadListDestPrefix, "destination_prefix"),
		Metadata:          cliMeta,
	}, observability.CLILogger)

	tracker := batch.NewTracker(len(lines))
	jobs := make([]batch.Job, 0, len(lines))
	for _, line := range lines {
		job, err := parser.ParseUploadLine(line)
		if err != nil {
			observability.CLILogger.Error("Skipping unparsable line",
				zap.String("job_id", jobID),
				zap.String("line", line),
				zap.Error(err))
			tracker.RecordFailure()
			continue
		}
		jobs = append(jobs, job)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploading files to bucket %s\n", dstBucket)

	observability.CLILogger.Info("Starting upload batch",
		zap.String("job_id", jobID),
		zap.Int("jobs", len(jobs)),
		zap.Int("max_concurrent", maxConcurrent))

	ex := batch.NewExecutor(batch.Config{
		MaxConcurrent: maxConcurrent,
		RateLimit:     uploadListRateLimit,
		Out:           cmd.OutOrStdout(),
	}, tracker, observability.CLILogger)

	res, err := ex.Execute(ctx, jobs, func(ctx context.Context, job batch.Job) (*batch.Outcome, error) {
		if err := client.UploadFile(ctx, provider.UploadInput{
			LocalPath: job.LocalPath,
			Key:       job.Key,
			Metadata:  job.Metadata,
		}); err != nil {
			return nil, err
		}
		return &batch.Outcome{}, nil
	})

	observability.CLILogger.Info("Upload batch completed",
		zap.String("job_id", jobID),
		zap.Int64("succeeded", res.Succeeded),
		zap.Int64("failed", res.Failed),
		zap.Duration("duration", res.Elapsed))

	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "upload-list completed with failures", err)
	}
	return nil
}
