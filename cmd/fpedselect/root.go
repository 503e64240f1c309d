package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var ErrUnknownLogLevel = errors.New("unknown log level")

var (
	logLevel   string
	profileDir string

	stopProfile func()
)

var rootCmd = &cobra.Command{
	Use:   "fpedselect",
	Short: "Select FPED variables that predict seafood meals",
	Long: `fpedselect trains logistic regressions on balanced samples of NHANES meals and reports how
well every combination of Food Patterns Equivalents Database variables separates seafood meals
from the rest.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLogLevel(logLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if profileDir != "" {
			stopProfile = profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir), profile.Quiet).Stop
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopProfile != nil {
			stopProfile()
			slog.Info("wrote cpu profile", "dir", profileDir)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&profileDir, "profile", "", "Write a CPU profile to this directory")
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%q, %w", level, ErrUnknownLogLevel)
}
