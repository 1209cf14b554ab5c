package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oxfell/drover/internal/observability"
	"github.com/oxfell/drover/pkg/provider/s3"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List the buckets under the account",
	Args:  cobra.NoArgs,
	RunE:  runBuckets,
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
}

func runBuckets(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := s3.New(ctx, resolveClientConfig(""))
	if err != nil {
		observability.CLILogger.Error("Failed to create storage client", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = client.Close() }()

	buckets, err := client.ListBuckets(ctx)
	if err != nil {
		observability.CLILogger.Error("Failed to list buckets", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to list buckets", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCREATED")
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%s\n", b.Name, b.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
