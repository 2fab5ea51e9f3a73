package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "ipedsprep/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFile_CSV(t *testing.T) {
	path := writeFile(t, "finaid_2022_23.csv",
		"\ufeffUnitID,Institution Name,Total\n"+
			"100654,Alabama A & M University,\"5,196\"\n"+
			",,\n"+
			"100663,Short Row\n")

	table, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, table.Path)
	assert.Equal(t, []string{"UnitID", "Institution Name", "Total"}, table.Header)
	assert.Equal(t, 3, table.Width())
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"100654", "Alabama A & M University", "5,196"}, table.Rows[0])
	assert.Equal(t, []string{"100663", "Short Row", ""}, table.Rows[1])
}

func TestParseFile_TSV(t *testing.T) {
	path := writeFile(t, "institutions.tsv", "UnitID\tState\n1\tAL\n")
	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"UnitID", "State"}, table.Header)
	assert.Equal(t, [][]string{{"1", "AL"}}, table.Rows)
}

func TestParseFile_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"UnitID", "Institution Name", "Graduation rate  total cohort (DRVGR2023)"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{100654, "Alabama A & M University", 27}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{100663, "University of Alabama at Birmingham"}))

	path := filepath.Join(t.TempDir(), "gradrate.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "100654", table.Rows[0][0])
	assert.Equal(t, "27", table.Rows[0][2])
	assert.Equal(t, "", table.Rows[1][2])
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") }},
		{"empty file", func(t *testing.T) string { return writeFile(t, "empty.csv", "") }},
		{"directory", func(t *testing.T) string {
			dir := filepath.Join(t.TempDir(), "dir.csv")
			require.NoError(t, os.Mkdir(dir, 0755))
			return dir
		}},
		{"not a workbook", func(t *testing.T) string { return writeFile(t, "fake.xlsx", "plain text") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t)
			_, err := ParseFile(path)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrTypeSourceUnreadable), "got %v", err)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestParseReader(t *testing.T) {
	table, err := ParseReader("inline", strings.NewReader("a;b\n1;2\n"), ';')
	require.NoError(t, err)
	assert.Equal(t, "inline", table.Path)
	assert.Equal(t, [][]string{{"1", "2"}}, table.Rows)
}
