package exporter

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	apperrors "ipedsprep/internal/errors"
)

// WriteTemp writes rows to a uniquely named temporary file next to target and
// returns its path. The caller publishes or removes it.
func WriteTemp[T any](target string, rows []T) (string, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(target), uuid.NewString()))

	if err := parquet.WriteFile(tmp, rows); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write parquet %s: %w", tmp, err)
	}
	return tmp, nil
}

// ReadTable loads every row of a parquet artifact
func ReadTable[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, apperrors.NewSourceUnreadableError(path, err)
	}
	return rows, nil
}

// ArtifactSchema describes a parquet file without decoding its rows
type ArtifactSchema struct {
	Columns []string
	Rows    int64
}

// InspectArtifact reads the column names and row count of a parquet file
func InspectArtifact(path string) (ArtifactSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return ArtifactSchema{}, apperrors.NewSourceUnreadableError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ArtifactSchema{}, apperrors.NewSourceUnreadableError(path, err)
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return ArtifactSchema{}, apperrors.NewSourceUnreadableError(path, err)
	}

	fields := pf.Schema().Fields()
	schema := ArtifactSchema{Columns: make([]string, len(fields)), Rows: pf.NumRows()}
	for i, field := range fields {
		schema.Columns[i] = field.Name()
	}
	return schema, nil
}

// PublishNew moves tmp to target only if target does not exist yet. The hard
// link fails atomically when another run already published, so two runs of
// the same identity cannot both succeed.
func PublishNew(tmp, target, year string) error {
	defer os.Remove(tmp)
	if err := os.Link(tmp, target); err != nil {
		if stderrors.Is(err, os.ErrExist) {
			return apperrors.NewAlreadyProcessedError(target, year)
		}
		return fmt.Errorf("failed to publish %s: %w", target, err)
	}
	return nil
}

// PublishReplace atomically replaces target with tmp
func PublishReplace(tmp, target string) error {
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish %s: %w", target, err)
	}
	return nil
}
