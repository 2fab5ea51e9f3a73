package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ipedsprep/internal/dataprocessing"
	apperrors "ipedsprep/internal/errors"
	"ipedsprep/internal/exporter"
	"ipedsprep/pkg/contracts/domain"
)

// requiredAwardColumns must be present in every award artifact
var requiredAwardColumns = []string{"unit_id", "total_undergrad", "total_pell_amount", "total_loan_amount"}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <artifact>",
		Short: "Check a published artifact",
		Long: `Reads a parquet artifact and reports its columns and row count. Award
artifacts are also checked for the required columns and profiled (nulls and
value ranges per measure). When a provenance sidecar exists its checksum is
compared with the artifact.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			w := cmd.OutOrStdout()

			schema, err := exporter.InspectArtifact(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "artifact: %s\n", path)
			fmt.Fprintf(w, "rows: %d\n", schema.Rows)
			fmt.Fprintf(w, "columns: %s\n", strings.Join(schema.Columns, ", "))

			status, err := exporter.VerifyChecksum(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "checksum: %s\n", status)
			if status == exporter.ChecksumMismatch {
				return apperrors.NewVerificationError(path, "artifact does not match its sidecar checksum")
			}

			if !isAwardArtifact(path) {
				return nil
			}
			if missing := missingColumns(schema.Columns, requiredAwardColumns); len(missing) > 0 {
				return apperrors.NewSchemaMismatchError("award artifact is missing required columns",
					requiredAwardColumns, schema.Columns).WithContext(apperrors.CtxMissing, missing)
			}

			records, err := exporter.ReadTable[domain.AwardRecord](path)
			if err != nil {
				return err
			}
			summary := dataprocessing.SummarizeAwards(records)
			fmt.Fprintf(w, "distinct unit_ids: %d\n", summary.DistinctUnitIDs)

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tNON-NULL\tNULLS\tMIN\tMAX\tMEAN")
			for _, c := range summary.Columns {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n", c.Column, c.NonNull, c.Nulls,
					exporter.FormatValue(c.Min, ""), exporter.FormatValue(c.Max, ""), exporter.FormatValue(c.Mean, ""))
			}
			return tw.Flush()
		},
	}
}

func isAwardArtifact(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, "financial_aid_") && strings.HasSuffix(base, ".parquet")
}

func missingColumns(have, want []string) []string {
	set := make(map[string]bool, len(have))
	for _, c := range have {
		set[c] = true
	}
	var missing []string
	for _, c := range want {
		if !set[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
