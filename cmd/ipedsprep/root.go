package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"ipedsprep/internal/config"
	apperrors "ipedsprep/internal/errors"
	"ipedsprep/internal/infrastructure"
	"ipedsprep/pkg/contracts"
	"ipedsprep/pkg/contracts/domain"
)

// app holds flag values and the services built from them for one invocation
type app struct {
	configPath   string
	rawDir       string
	processedDir string
	logLevel     string

	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ipedsprep",
		Short: "Prepare IPEDS financial-aid extracts for reporting",
		Long: `ipedsprep turns yearly IPEDS raw extracts (Pell grant and federal loan
awards, the institution directory and graduation rates) into normalized parquet
artifacts, and serves the merged per-year dataset built from them.

Award artifacts are written once per year and never overwritten. The
institution and graduation-rate artifacts are regenerated on every run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default: ./"+config.DefaultConfigFile+" when present)")
	root.PersistentFlags().StringVar(&a.rawDir, "raw-dir", "", "Directory holding raw extracts (overrides config)")
	root.PersistentFlags().StringVar(&a.processedDir, "processed-dir", "", "Directory for published artifacts (overrides config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		a.awardCmd(),
		a.institutionsCmd(),
		a.gradRateCmd(),
		a.allCmd(),
		a.mergeCmd(),
		a.sectorsCmd(),
		a.yearsCmd(),
		a.verifyCmd(),
		versionCmd(),
	)
	return root
}

// setup loads configuration and builds the logger, paths and telemetry
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.rawDir != "" {
		cfg.Paths.RawDir = a.rawDir
	}
	if a.processedDir != "" {
		cfg.Paths.ProcessedDir = a.processedDir
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg

	logger, err := infrastructure.InitializeLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger

	a.paths = config.NewPaths(cfg.Paths, "")
	if err := a.paths.EnsureDirectories(); err != nil {
		return err
	}
	a.paths.LogPathResolution(logger)

	a.telemetry, err = infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return err
	}

	ctx := infrastructure.WithTraceID(cmd.Context(), infrastructure.GenerateTraceID())
	cmd.SetContext(ctx)
	logger.DebugContext(ctx, "Starting command",
		slog.String("command", cmd.CommandPath()),
		slog.String("version", contracts.Version))
	return nil
}

// close flushes telemetry and the log file
func (a *app) close() {
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.telemetry.Shutdown(ctx); err != nil && a.logger != nil {
			a.logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	_ = infrastructure.CloseLogFile()
}

// yearFlag parses a --year value given as a tag (2223) or label (2022-23)
func yearFlag(value string) (domain.YearTag, error) {
	tag, ok := domain.ParseYearTag(value)
	if !ok {
		return "", apperrors.NewInvalidYearTagError(value)
	}
	return tag, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}
