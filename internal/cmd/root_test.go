package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxfell/drover/pkg/batch"
)

func TestSetVersionInfo(t *testing.T) {
	// Save original values
	origVersion := versionInfo.Version
	origCommit := versionInfo.Commit
	origBuildDate := versionInfo.BuildDate
	defer func() {
		versionInfo.Version = origVersion
		versionInfo.Commit = origCommit
		versionInfo.BuildDate = origBuildDate
		rootCmd.Version = origVersion
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{
			name:      "set all values",
			version:   "1.0.0",
			commit:    "abc123",
			buildDate: "2026-08-25",
		},
		{
			name:      "set dev version",
			version:   "dev",
			commit:    "HEAD",
			buildDate: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
			assert.Equal(t, tt.version, rootCmd.Version)
		})
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	setDefaults()

	assert.Equal(t, batch.DefaultMaxConcurrent, viper.GetInt("max_concurrent"))
	assert.Equal(t, "", viper.GetString("source_prefix"))
	assert.Equal(t, "", viper.GetString("destination_prefix"))
	assert.Equal(t, "", viper.GetString("prefix"))
}

func TestStringOrEnv(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Setenv("AWS_REGION", "eu-central-1")
	require.NoError(t, viper.BindEnv("region", "AWS_REGION"))

	// Explicit flag value wins over the environment.
	assert.Equal(t, "us-west-2", stringOrEnv("us-west-2", "region"))

	// Empty flag value falls back to the environment.
	assert.Equal(t, "eu-central-1", stringOrEnv("", "region"))

	// Neither flag nor environment yields empty.
	assert.Equal(t, "", stringOrEnv("", "profile"))
}

func TestResolveClientConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	origRegion, origProfile, origEndpoint := rootRegion, rootProfile, rootEndpoint
	defer func() {
		rootRegion, rootProfile, rootEndpoint = origRegion, origProfile, origEndpoint
	}()

	rootRegion = "eu-west-1"
	rootProfile = "batch"
	rootEndpoint = ""

	cfg := resolveClientConfig("data")
	assert.Equal(t, "data", cfg.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "batch", cfg.Profile)
	assert.False(t, cfg.ForcePathStyle)

	// A custom endpoint switches to path-style addressing.
	rootEndpoint = "http://minio:9000"
	cfg = resolveClientConfig("data")
	assert.Equal(t, "http://minio:9000", cfg.Endpoint)
	assert.True(t, cfg.ForcePathStyle)
}

func TestResolveMaxConcurrent(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	setDefaults()

	// Environment value is used when the flag is untouched.
	viper.Set("max_concurrent", 25)
	assert.Equal(t, 25, resolveMaxConcurrent(copyListCmd, copyListMaxConcurrent))

	// An explicitly changed flag wins over the environment.
	require.NoError(t, copyListCmd.Flags().Set("max-concurrent", "3"))
	defer func() {
		require.NoError(t, copyListCmd.Flags().Set("max-concurrent", "10"))
		copyListCmd.Flags().Lookup("max-concurrent").Changed = false
	}()
	assert.Equal(t, 3, resolveMaxConcurrent(copyListCmd, copyListMaxConcurrent))
}

func TestExitError(t *testing.T) {
	inner := errors.New("bucket unreachable")
	err := exitError(69, "copy-list completed with failures", inner)

	require.Error(t, err)
	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "copy-list completed with failures")
	assert.Contains(t, err.Error(), "exit code 69")
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	want := []string{"buckets", "copy", "copy-list", "count", "head", "upload-list"}
	for _, name := range want {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "missing subcommand %s", name)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out := &strings.Builder{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Bulk object operations")
	assert.Contains(t, out.String(), "copy-list")
}
