package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "ipedsprep/internal/errors"
)

const utf8BOM = "\ufeff"

// RawTable is a raw extract as read from disk: one header row and string cells.
// Rows are padded to the header width.
type RawTable struct {
	Path   string
	Header []string
	Rows   [][]string
}

// Width returns the number of header columns
func (t *RawTable) Width() int {
	return len(t.Header)
}

// ParseFile loads a raw extract. Delimited text (.csv, .tsv, .txt) and Excel
// workbooks (.xlsx, first sheet) are supported. Any failure is SourceUnreadable.
func ParseFile(filePath string) (*RawTable, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == ".xlsx" || ext == ".xlsm" {
		records, err := readWorkbook(filePath)
		if err != nil {
			return nil, apperrors.NewSourceUnreadableError(filePath, err)
		}
		return newRawTable(filePath, records)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.NewSourceUnreadableError(filePath, err)
	}
	defer f.Close()

	delimiter := ','
	if ext == ".tsv" || ext == ".txt" {
		delimiter = '\t'
	}
	return ParseReader(filePath, f, delimiter)
}

// ParseReader parses delimited text from r, for callers that already hold the bytes.
func ParseReader(name string, r io.Reader, delimiter rune) (*RawTable, error) {
	records, err := decodeDelimited(r, delimiter)
	if err != nil {
		return nil, apperrors.NewSourceUnreadableError(name, err)
	}
	return newRawTable(name, records)
}

func newRawTable(path string, records [][]string) (*RawTable, error) {
	if len(records) == 0 {
		return nil, apperrors.NewSourceUnreadableError(path, errors.New("file has no header row"))
	}

	header := make([]string, len(records[0]))
	copy(header, records[0])
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := &RawTable{Path: path, Header: header, Rows: make([][]string, 0, len(records)-1)}
	for _, rec := range records[1:] {
		if blankRow(rec) {
			continue
		}
		row := make([]string, len(header))
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func blankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func decodeDelimited(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited text: %w", err)
	}
	return records, nil
}

func readWorkbook(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
