// Package cmd implements the drover CLI commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oxfell/drover/internal/observability"
	"github.com/oxfell/drover/pkg/batch"
	"github.com/oxfell/drover/pkg/provider/s3"
)

var rootCmd = &cobra.Command{
	Use:   "drover",
	Short: "Bulk object operations for S3",
	Long: `drover runs bulk object-storage operations against S3 and
S3-compatible services: list-driven copies and uploads under a concurrency
cap, object counting, and a few single-object shortcuts.

Job lists are CSV lines read from a file or stdin; see the copy-list and
upload-list help for the line formats.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// SetVersionInfo records build metadata injected by the linker.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	rootCmd.Version = version
}

var (
	rootRegion   string
	rootProfile  string
	rootEndpoint string
	rootVerbose  bool
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&rootRegion, "region", "", "AWS region (env AWS_REGION)")
	rootCmd.PersistentFlags().StringVar(&rootProfile, "profile", "", "AWS profile (env AWS_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&rootEndpoint, "endpoint", "", "Custom S3 endpoint for S3-compatible stores")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
}

// initConfig wires environment variables and defaults through viper.
// The env names match the original tool so existing automation keeps working.
func initConfig() {
	setDefaults()

	_ = viper.BindEnv("region", "AWS_REGION")
	_ = viper.BindEnv("profile", "AWS_PROFILE")
	_ = viper.BindEnv("source_bucket", "AWS_S3_SRC_BUCKET")
	_ = viper.BindEnv("destination_bucket", "AWS_S3_DST_BUCKET")
	_ = viper.BindEnv("source_prefix", "AWS_S3_SRC_OBJECT_PREFIX")
	_ = viper.BindEnv("destination_prefix", "AWS_S3_DST_OBJECT_PREFIX")
	_ = viper.BindEnv("bucket", "AWS_S3_BUCKET")
	_ = viper.BindEnv("prefix", "AWS_S3_OBJECT_PREFIX")
	_ = viper.BindEnv("max_concurrent", "AWS_S3_MAX_CONCURRENT")

	observability.InitCLILogger("drover", rootVerbose)
}

// setDefaults registers configuration defaults.
func setDefaults() {
	viper.SetDefault("max_concurrent", batch.DefaultMaxConcurrent)
	viper.SetDefault("source_prefix", "")
	viper.SetDefault("destination_prefix", "")
	viper.SetDefault("prefix", "")
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// stringOrEnv returns the flag value when set, otherwise the viper-resolved
// environment value for key.
func stringOrEnv(flagVal, key string) string {
	if flagVal != "" {
		return flagVal
	}
	return viper.GetString(key)
}

// resolveClientConfig builds an S3 client config for the given bucket from
// the global flags and their environment fallbacks.
func resolveClientConfig(bucket string) s3.Config {
	return s3.Config{
		Bucket:   bucket,
		Region:   stringOrEnv(rootRegion, "region"),
		Profile:  stringOrEnv(rootProfile, "profile"),
		Endpoint: rootEndpoint,
		// Force path-style URLs when a custom endpoint is set.
		ForcePathStyle: rootEndpoint != "",
	}
}

// resolveMaxConcurrent prefers an explicit flag, then the environment, then
// the flag default.
func resolveMaxConcurrent(cmd *cobra.Command, flagVal int) int {
	if cmd.Flags().Changed("max-concurrent") {
		return flagVal
	}
	if v := viper.GetInt("max_concurrent"); v > 0 {
		return v
	}
	return flagVal
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return fmt.Errorf("%s: %w (exit code %d)", message, err, code)
}
