// Package observability provides logger setup for the CLI.
package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the shared logger for CLI commands.
//
// It defaults to a no-op logger so library code and tests can log without
// initialization. InitCLILogger replaces it with a real logger.
var CLILogger = zap.NewNop()

// InitCLILogger configures the CLI logger.
//
// Logs go to stderr so stdout stays clean for command output. The verbose
// flag lowers the level to debug.
func InitCLILogger(component string, verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	CLILogger = zap.New(core).Named(component)
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = CLILogger.Sync()
}
