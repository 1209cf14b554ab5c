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

var copyListCmd = &cobra.Command{
	Use:   "copy-list [file]",
	Short: "Copy a list of objects between buckets",
	Long: `Copy a list of objects from one bucket to another.

The list is read from the given file, or from stdin when the argument is
omitted or "-". Each line needs at least three comma-separated columns:

  file,source_prefix,destination_prefix[,metadata]

Metadata is a space-separated list of key=value pairs. A line with too few
columns is skipped and counted as a failure; it never aborts the batch.

Examples:
  drover copy-list --source-bucket src --destination-bucket dst list.csv
  cat list.csv | drover copy-list --source-bucket src --destination-bucket dst
  drover copy-list --source-bucket src --destination-bucket dst --metadata team=data list.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCopyList,
}

var (
	copyListSourceBucket  string
	copyListDestBucket    string
	copyListSourcePrefix  string
	copyListDestPrefix    string
	copyListMaxConcurrent int
	copyListRateLimit     float64
	copyListMetadata      []string
)

func init() {
	rootCmd.AddCommand(copyListCmd)

	copyListCmd.Flags().StringVar(&copyListSourceBucket, "source-bucket", "", "Source bucket (env AWS_S3_SRC_BUCKET)")
	copyListCmd.Flags().StringVar(&copyListDestBucket, "destination-bucket", "", "Destination bucket (env AWS_S3_DST_BUCKET)")
	copyListCmd.Flags().StringVar(&copyListSourcePrefix, "source-prefix", "", "Default source prefix for lines without one (env AWS_S3_SRC_OBJECT_PREFIX)")
	copyListCmd.Flags().StringVar(&copyListDestPrefix, "destination-prefix", "", "Default destination prefix for lines without one (env AWS_S3_DST_OBJECT_PREFIX)")
	copyListCmd.Flags().IntVar(&copyListMaxConcurrent, "max-concurrent", batch.DefaultMaxConcurrent, "Max concurrent copy operations (env AWS_S3_MAX_CONCURRENT)")
	copyListCmd.Flags().Float64Var(&copyListRateLimit, "rate-limit", 0, "Max copy operations per second (0 = unlimited)")
	copyListCmd.Flags().StringArrayVarP(&copyListMetadata, "metadata", "m", nil, "Metadata key=value applied to every copy (repeatable)")
}

func runCopyList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	srcBucket := stringOrEnv(copyListSourceBucket, "source_bucket")
	if srcBucket == "" {
		return exitError(foundry.ExitInvalidArgument, "Missing source bucket", fmt.Errorf("set --source-bucket or AWS_S3_SRC_BUCKET"))
	}
	dstBucket := stringOrEnv(copyListDestBucket, "destination_bucket")
	if dstBucket == "" {
		return exitError(foundry.ExitInvalidArgument, "Missing destination bucket", fmt.Errorf("set --destination-bucket or AWS_S3_DST_BUCKET"))
	}

	maxConcurrent := resolveMaxConcurrent(cmd, copyListMaxConcurrent)
	if maxConcurrent < 1 {
		return exitError(foundry.ExitInvalidArgument, "Invalid --max-concurrent value", fmt.Errorf("max_concurrent must be >= 1"))
	}

	cliMeta, err := joblist.ParseMetadataFlags(copyListMetadata)
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
		SourcePrefix:      stringOrEnv(copyListSourcePrefix, "source_prefix"),
		DestinationPrefix: stringOrEnv(copyListDestPrefix, "destination_prefix"),
		Metadata:          cliMeta,
	}, observability.CLILogger)

	tracker := batch.NewTracker(len(lines))
	jobs := make([]batch.Job, 0, len(lines))
	for _, line := range lines {
		job, err := parser.ParseCopyLine(line)
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

	fmt.Fprintf(cmd.OutOrStdout(), "Copying files from bucket %s to bucket %s\n", srcBucket, dstBucket)

	observability.CLILogger.Info("Starting copy batch",
		zap.String("job_id", jobID),
		zap.Int("jobs", len(jobs)),
		zap.Int("max_concurrent", maxConcurrent))

	ex := batch.NewExecutor(batch.Config{
		MaxConcurrent: maxConcurrent,
		RateLimit:     copyListRateLimit,
		Out:           cmd.OutOrStdout(),
	}, tracker, observability.CLILogger)

	res, err := ex.Execute(ctx, jobs, func(ctx context.Context, job batch.Job) (*batch.Outcome, error) {
		etag, err := client.CopyObject(ctx, provider.CopyInput{
			SourceBucket: srcBucket,
			SourceKey:    job.SourceKey,
			Key:          job.Key,
			Metadata:     job.Metadata,
		})
		if err != nil {
			return nil, err
		}
		return &batch.Outcome{ETag: etag}, nil
	})

	observability.CLILogger.Info("Copy batch completed",
		zap.String("job_id", jobID),
		zap.Int64("succeeded", res.Succeeded),
		zap.Int64("failed", res.Failed),
		zap.Duration("duration", res.Elapsed))

	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "copy-list completed with failures", err)
	}
	return nil
}
