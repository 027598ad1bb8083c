package cmd

import (
	"errors"
	"fmt"
	"os"

	"webresource-sync/core/config"
	"webresource-sync/core/dataverse"
	"webresource-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit statuses returned by Execute.
const (
	exitOK               = 0
	exitSolutionNotFound = 1
	exitFailure          = 2
)

var dryRun bool

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "webresource-sync <connection-string> <solution> <source-dir>",
	Short: "Synchronize a local folder into the web resources of a Dataverse solution",
	Long: `webresource-sync uploads a directory of static assets to the web resources of a
Dataverse solution. New files are created inside the solution, changed files are
updated, unchanged files are skipped. Updated web resources are published in a
single call at the end of the run.

Settings such as the log level, exclude patterns, backups and the run journal are
read from environment variables or a .env file in the working directory.

Examples:
  webresource-sync "AuthType=ClientSecret;Url=https://contoso.crm.dynamics.com;ClientId=...;ClientSecret=..." contoso ./dist

  # Show what would change without writing anything
  webresource-sync --dry-run "$CONNECTION" contoso ./dist`,
	Args:          cobra.ExactArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSync,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		l, logErr := logger.New(errorLogConfig())
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// errorLogConfig returns the configured log settings, or console output at
// debug level when the configuration itself cannot be loaded.
func errorLogConfig() *logger.Config {
	fallback := &logger.Config{
		Level:  "debug",
		Format: "console",
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fallback
	}
	if _, err := logger.New(&cfg.Log); err != nil {
		return fallback
	}
	return &cfg.Log
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, dataverse.ErrSolutionNotFound):
		return exitSolutionNotFound
	default:
		return exitFailure
	}
}

func init() {
	RootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan and report without creating, updating or publishing")
}
