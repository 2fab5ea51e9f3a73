package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	sum, err := FileChecksum(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sum, "blake2b-256:"))
	assert.Len(t, strings.TrimPrefix(sum, "blake2b-256:"), 64)

	again, err := FileChecksum(path)
	require.NoError(t, err)
	assert.Equal(t, sum, again)

	_, err = FileChecksum(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestSidecarLifecycle(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "financial_aid_2223.parquet")
	require.NoError(t, os.WriteFile(artifact, []byte("artifact bytes"), 0644))

	status, err := VerifyChecksum(artifact)
	require.NoError(t, err)
	assert.Equal(t, ChecksumAbsent, status)

	sum, err := FileChecksum(artifact)
	require.NoError(t, err)
	want := Sidecar{
		RunID:         "run-1",
		Kind:          "award",
		Year:          "2223",
		Source:        "raw/finaid_2022_23.csv",
		Artifact:      artifact,
		Rows:          2,
		Columns:       []string{"unit_id"},
		Checksum:      sum,
		FormatVersion: "v1",
		ProcessedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		DurationMS:    15,
	}
	require.NoError(t, WriteSidecar(artifact, want))
	assert.FileExists(t, artifact+".meta.json")
	assert.NoFileExists(t, artifact+".meta.json.tmp")

	got, ok, err := ReadSidecar(artifact)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	status, err = VerifyChecksum(artifact)
	require.NoError(t, err)
	assert.Equal(t, ChecksumMatch, status)

	require.NoError(t, os.WriteFile(artifact, []byte("tampered"), 0644))
	status, err = VerifyChecksum(artifact)
	require.NoError(t, err)
	assert.Equal(t, ChecksumMismatch, status)
}

func TestReadSidecar_Malformed(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "x.parquet")
	require.NoError(t, os.WriteFile(artifact+".meta.json", []byte("{"), 0644))

	_, ok, err := ReadSidecar(artifact)
	assert.Error(t, err)
	assert.False(t, ok)
}
