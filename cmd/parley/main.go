// Package main implements the parley command line interface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parley-dm/parley/internal/config"
)

var (
	// Global flags
	verbose    bool
	domainPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "parley - issue-based dialogue manager",
	Long: `parley runs task-oriented dialogues driven by declarative update
rules over an information state: a stack of questions under discussion,
a shared commitment set, and private plans.

The dialogue behavior comes from a domain description (YAML) naming the
predicates, sorts and plans of the task; the engine itself is generic.

Run without arguments to start an interactive dialogue.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel())
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runRepl,
}

func logLevel() zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	switch config.LogLevel() {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func resolveDomainPath() string {
	if domainPath != "" {
		return domainPath
	}
	return config.DomainPath()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&domainPath, "domain", "d", "", "Domain description file (default: DOMAIN_PATH or domain.yaml)")

	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(domainCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
