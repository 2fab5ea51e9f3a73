package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"ipedsprep/pkg/contracts/domain"
)

// MergedExporter writes merged datasets as CSV for downstream tools
type MergedExporter struct {
	csvWriter *CSVWriter
}

// NewMergedExporter creates an exporter writing relative paths under baseDir
func NewMergedExporter(baseDir string, logger *slog.Logger) *MergedExporter {
	return &MergedExporter{csvWriter: NewCSVWriter(baseDir, logger)}
}

// ExportMerged streams records in input order with domain.MergedColumns
// as the header. Nulls become empty cells.
func (e *MergedExporter) ExportMerged(records []domain.MergedRecord, outputPath string) error {
	stream, err := e.csvWriter.CreateStreamWriter(outputPath, domain.MergedColumns)
	if err != nil {
		return err
	}
	for i, r := range records {
		if err := stream.WriteRecord(mergedRow(r)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return stream.Close()
}

func mergedRow(r domain.MergedRecord) []string {
	return []string{
		strconv.FormatInt(r.UnitID, 10),
		formatCell(r.TotalUndergrad),
		formatCell(r.NumPellGrant),
		formatCell(r.PctPellGrant),
		formatCell(r.TotalPellAmount),
		formatCell(r.AvgPellAmount),
		formatCell(r.NumFedLoan),
		formatCell(r.PctFedLoan),
		formatCell(r.TotalLoanAmount),
		formatCell(r.AvgLoanAmount),
		formatString(r.InstitutionName),
		formatString(r.State),
		formatString(r.Sector),
		formatString(r.DegreeGranting),
		formatString(r.Control),
		formatString(r.Level),
		formatCell(r.GradRate2023),
	}
}
