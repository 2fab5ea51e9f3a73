package exporter

import (
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"

	"ipedsprep/internal/config"
)

const checksumPrefix = "blake2b-256:"

// Sidecar is the provenance record stored next to every artifact
type Sidecar struct {
	RunID         string    `json:"run_id"`
	Kind          string    `json:"kind"`
	Year          string    `json:"year,omitempty"`
	Source        string    `json:"source"`
	Artifact      string    `json:"artifact"`
	Rows          int       `json:"rows"`
	Columns       []string  `json:"columns"`
	Checksum      string    `json:"checksum"`
	FormatVersion string    `json:"format_version"`
	ProcessedAt   time.Time `json:"processed_at"`
	DurationMS    int64     `json:"duration_ms"`
}

// FileChecksum returns the BLAKE2b-256 digest of a file, prefixed with the algorithm
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return checksumPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

// WriteSidecar stores s next to its artifact, replacing any previous sidecar atomically
func WriteSidecar(artifact string, s Sidecar) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}
	path := config.SidecarPath(artifact)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish sidecar: %w", err)
	}
	return nil
}

// ReadSidecar loads the sidecar of an artifact. ok is false when there is none.
func ReadSidecar(artifact string) (s Sidecar, ok bool, err error) {
	data, err := os.ReadFile(config.SidecarPath(artifact))
	if stderrors.Is(err, os.ErrNotExist) {
		return Sidecar{}, false, nil
	}
	if err != nil {
		return Sidecar{}, false, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Sidecar{}, false, fmt.Errorf("malformed sidecar for %s: %w", filepath.Base(artifact), err)
	}
	return s, true, nil
}

// ChecksumStatus is the outcome of comparing an artifact with its sidecar
type ChecksumStatus string

const (
	ChecksumMatch    ChecksumStatus = "match"
	ChecksumMismatch ChecksumStatus = "mismatch"
	ChecksumAbsent   ChecksumStatus = "no sidecar"
)

// VerifyChecksum recomputes the artifact digest and compares it with the sidecar
func VerifyChecksum(artifact string) (ChecksumStatus, error) {
	s, ok, err := ReadSidecar(artifact)
	if err != nil {
		return "", err
	}
	if !ok {
		return ChecksumAbsent, nil
	}
	sum, err := FileChecksum(artifact)
	if err != nil {
		return "", err
	}
	if sum != s.Checksum {
		return ChecksumMismatch, nil
	}
	return ChecksumMatch, nil
}
