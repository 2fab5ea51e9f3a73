package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ipedsprep/internal/config"
	apperrors "ipedsprep/internal/errors"
	"ipedsprep/internal/files"
	"ipedsprep/internal/operations"
)

// staleTempAge is how old an unpublished temporary artifact must be before
// a batch run removes it
const staleTempAge = time.Hour

func (a *app) processor() *operations.YearlyProcessor {
	return operations.NewYearlyProcessor(a.paths, a.cfg.Pipeline, a.telemetry, a.logger)
}

// rawOrDefault returns args[0] when given, else the conventional raw file
func (a *app) rawOrDefault(args []string, name string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if fi, ok := files.NewDiscovery(a.paths.RawDir).FindRaw(name); ok {
		return fi.Path, nil
	}
	return "", apperrors.NewSourceUnreadableError(name, fmt.Errorf("no %s in %s", name, a.paths.RawDir))
}

func (a *app) awardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "award <file> <year>",
		Short: "Process one year's award extract",
		Long: `Maps, validates and publishes processed/financial_aid_<tag>.parquet for one
academic year. The year is a tag (2223) or a label (2022-23). A year that
already has an artifact fails with ALREADY_PROCESSED and the artifact is left
untouched; remove it first to rebuild the year.`,
		Example: "  ipedsprep award raw/finaid_2022_23.csv 2022-23",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := yearFlag(args[1])
			if err != nil {
				return err
			}
			res, err := a.processor().ProcessAwards(cmd.Context(), args[0], tag)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (a *app) institutionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "institutions [file]",
		Short: "Rebuild the institution reference artifact",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.rawOrDefault(args, config.InstitutionsRawFile)
			if err != nil {
				return err
			}
			res, err := a.processor().ProcessInstitutions(cmd.Context(), src)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (a *app) gradRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gradrate [file]",
		Short: "Rebuild the graduation-rate artifact",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.rawOrDefault(args, config.GradRateRawFile)
			if err != nil {
				return err
			}
			res, err := a.processor().ProcessGradRates(cmd.Context(), src)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (a *app) allCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Process every raw extract found in the raw directory",
		Long: `Rebuilds the institution and graduation-rate artifacts, then processes the
award extract of every known year found in the raw directory, in parallel.
Years without a raw file are reported as missing; years already processed
are skipped. A failing year does not stop the others, but makes the command
exit non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := files.NewManager(a.paths.ProcessedDir, a.logger).RemoveStaleTemps(staleTempAge); err != nil {
				return err
			}

			discovery := files.NewDiscovery(a.paths.RawDir)
			sources, err := discovery.FindAwardSources()
			if err != nil {
				return apperrors.NewSourceUnreadableError(a.paths.RawDir, err)
			}
			plan := operations.BatchPlan{Awards: sources}
			if fi, ok := discovery.FindRaw(config.InstitutionsRawFile); ok {
				plan.Institutions = fi.Path
			}
			if fi, ok := discovery.FindRaw(config.GradRateRawFile); ok {
				plan.GradRates = fi.Path
			}

			summary := operations.RunBatch(ctx, a.processor(), plan, a.cfg.Pipeline.Workers)
			printSummary(cmd.OutOrStdout(), summary)
			if summary.Failed() {
				return fmt.Errorf("%d of %d units failed", summary.Count(operations.StatusFailed), len(summary.Outcomes))
			}
			return nil
		},
	}
}

func printResult(w io.Writer, res *operations.Result) {
	fmt.Fprintf(w, "wrote %s (%d rows, %s)\n", res.Artifact, res.Rows, res.Duration.Round(time.Millisecond))
	if id := res.Identifiers; id != nil && id.NonConforming > 0 {
		fmt.Fprintf(w, "warning: %d of %d OPE IDs do not match the expected format, e.g. %v\n",
			id.NonConforming, id.Total, id.Sample)
	}
}

func printSummary(w io.Writer, summary *operations.BatchSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tYEAR\tSTATUS\tROWS\tDETAIL")
	for _, o := range summary.Outcomes {
		year, rows, detail := "-", "-", ""
		if o.Year != "" {
			year = o.Year.Label()
		}
		if o.Result != nil {
			rows = fmt.Sprint(o.Result.Rows)
			detail = o.Result.Artifact
		}
		if o.Err != nil {
			detail = o.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.Kind, year, o.Status, rows, detail)
	}
	tw.Flush()
	fmt.Fprintf(w, "processed %d, skipped %d, missing %d, failed %d in %s\n",
		summary.Count(operations.StatusProcessed),
		summary.Count(operations.StatusSkipped),
		summary.Count(operations.StatusMissing),
		summary.Count(operations.StatusFailed),
		summary.Duration.Round(time.Millisecond))
}
