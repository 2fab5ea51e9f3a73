package main

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ipedsprep/internal/config"
	"ipedsprep/internal/exporter"
	"ipedsprep/internal/files"
	"ipedsprep/internal/services"
	"ipedsprep/pkg/contracts/domain"
)

func (a *app) datasets() *services.DatasetService {
	return services.NewDatasetService(a.paths, a.telemetry, a.logger)
}

func (a *app) mergeCmd() *cobra.Command {
	var year, out string
	cmd := &cobra.Command{
		Use:   "merge --year <year>",
		Short: "Export the merged dataset of a year as CSV",
		Long: `Joins the year's award artifact with the institution and graduation-rate
artifacts and writes the result as CSV. Without --out the file is written to
merged_<tag>.csv in the processed directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := yearFlag(year)
			if err != nil {
				return err
			}
			records, err := a.datasets().Load(cmd.Context(), tag)
			if err != nil {
				return err
			}

			if out == "" {
				out = filepath.Join(a.paths.ProcessedDir, fmt.Sprintf("merged_%s.csv", tag))
			}
			if err := exporter.NewMergedExporter("", a.logger).ExportMerged(records, out); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "wrote %s (%d rows)\n", out, len(records))
			printTotals(w, tag, records)
			return nil
		},
	}
	cmd.Flags().StringVarP(&year, "year", "y", "", "Academic year, as a tag (2223) or label (2022-23)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output CSV path")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

// printTotals prints the headline figures of a merged dataset
func printTotals(w io.Writer, tag domain.YearTag, records []domain.MergedRecord) {
	var pell, loans, aid, rateSum float64
	var rates int
	for _, r := range records {
		if r.TotalPellAmount != nil {
			pell += *r.TotalPellAmount
		}
		if r.TotalLoanAmount != nil {
			loans += *r.TotalLoanAmount
		}
		if t := r.TotalAid(); t != nil {
			aid += *t
		}
		if r.GradRate2023 != nil {
			rateSum += *r.GradRate2023
			rates++
		}
	}
	var meanRate *float64
	if rates > 0 {
		m := rateSum / float64(rates)
		meanRate = &m
	}
	institutions := float64(len(records))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "year\t%s\n", tag.Label())
	fmt.Fprintf(tw, "institutions\t%s\n", exporter.FormatValue(&institutions, exporter.KindNumber))
	fmt.Fprintf(tw, "total pell\t%s\n", exporter.FormatValue(&pell, exporter.KindCurrency))
	fmt.Fprintf(tw, "total loans\t%s\n", exporter.FormatValue(&loans, exporter.KindCurrency))
	fmt.Fprintf(tw, "total aid\t%s\n", exporter.FormatValue(&aid, exporter.KindCurrency))
	fmt.Fprintf(tw, "mean graduation rate\t%s\n", exporter.FormatValue(meanRate, exporter.KindPercentage))
	tw.Flush()
}

func (a *app) sectorsCmd() *cobra.Command {
	var year string
	cmd := &cobra.Command{
		Use:   "sectors --year <year>",
		Short: "List the sector filter options of a year's dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := yearFlag(year)
			if err != nil {
				return err
			}
			records, err := a.datasets().Load(cmd.Context(), tag)
			if err != nil {
				return err
			}
			for _, s := range services.SectorOptions(records) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&year, "year", "y", "", "Academic year, as a tag (2223) or label (2022-23)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func (a *app) yearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List known academic years with raw and processed status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// a missing raw directory just means nothing is available yet
			sources, _ := files.NewDiscovery(a.paths.RawDir).FindAwardSources()
			raw := make(map[domain.YearTag]bool, len(sources))
			for _, s := range sources {
				raw[s.Year.Tag] = s.Found
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tYEAR\tRAW FILE\tRAW\tPROCESSED")
			for _, y := range domain.AcademicYears() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					y.Tag, y.Label, y.RawFile, yesNo(raw[y.Tag]), yesNo(config.FileExists(a.paths.AwardArtifact(y.Tag))))
			}
			return tw.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
