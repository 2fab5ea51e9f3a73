package exporter

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipedsprep/pkg/contracts/domain"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	return NewCSVWriter(dir, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))), dir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestStreamWriter(t *testing.T) {
	writer, dir := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"1", "2"}))
	require.NoError(t, stream.WriteRecord([]string{"3", ""}))
	require.NoError(t, stream.Close())

	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", ""}}, readCSV(t, filepath.Join(dir, "stream.csv")))
}

func TestStreamWriter_AbsolutePath(t *testing.T) {
	writer, _ := setupTestEnv(t)
	abs := filepath.Join(t.TempDir(), "nested", "abs.csv")

	stream, err := writer.CreateStreamWriter(abs, []string{"h"})
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	assert.Equal(t, [][]string{{"h"}}, readCSV(t, abs))
}

func TestExportMerged(t *testing.T) {
	dir := t.TempDir()
	exp := NewMergedExporter(dir, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	name := "A"
	sector := "Public, 4-year or above"
	records := []domain.MergedRecord{
		{UnitID: 1, TotalPellAmount: f64(1000), TotalLoanAmount: f64(2000.5), InstitutionName: &name, Sector: &sector},
		{UnitID: 2},
	}
	require.NoError(t, exp.ExportMerged(records, "merged_2223.csv"))

	rows := readCSV(t, filepath.Join(dir, "merged_2223.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, domain.MergedColumns, rows[0])

	first := map[string]string{}
	for i, col := range rows[0] {
		first[col] = rows[1][i]
	}
	assert.Equal(t, "1", first["unit_id"])
	assert.Equal(t, "1000", first["total_pell_amount"])
	assert.Equal(t, "2000.5", first["total_loan_amount"])
	assert.Equal(t, "A", first["institution_name"])
	assert.Equal(t, "Public, 4-year or above", first["sector"])
	assert.Equal(t, "", first["grad_rate_2023"])

	assert.Equal(t, "2", rows[2][0])
	for _, cell := range rows[2][1:] {
		assert.Empty(t, cell)
	}
}
