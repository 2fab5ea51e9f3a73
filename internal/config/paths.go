package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ipedsprep/pkg/contracts/domain"
)

// Paths contains every file location the pipeline touches.
// Artifact names are derived here and nowhere else.
type Paths struct {
	RawDir       string
	ProcessedDir string
	LogsDir      string
}

// NewPaths builds Paths from configuration, resolving relative
// directories against base when base is not empty.
func NewPaths(cfg PathsConfig, base string) *Paths {
	resolve := func(dir string) string {
		if dir == "" || filepath.IsAbs(dir) || base == "" {
			return dir
		}
		return filepath.Join(base, dir)
	}
	return &Paths{
		RawDir:       resolve(cfg.RawDir),
		ProcessedDir: resolve(cfg.ProcessedDir),
		LogsDir:      resolve(cfg.LogsDir),
	}
}

// EnsureDirectories creates the processed and logs directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ProcessedDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// AwardArtifact returns processed/financial_aid_<tag>.parquet
func (p *Paths) AwardArtifact(tag domain.YearTag) string {
	return filepath.Join(p.ProcessedDir, fmt.Sprintf(AwardArtifactPattern, tag))
}

// InstitutionsArtifact returns processed/institutions.parquet
func (p *Paths) InstitutionsArtifact() string {
	return filepath.Join(p.ProcessedDir, InstitutionsArtifact)
}

// GradRateArtifact returns processed/grad_rate_2023.parquet
func (p *Paths) GradRateArtifact() string {
	return filepath.Join(p.ProcessedDir, GradRateArtifact)
}

// Artifact returns the artifact path for a record kind. The tag is
// ignored for singleton kinds.
func (p *Paths) Artifact(kind domain.RecordKind, tag domain.YearTag) string {
	switch kind {
	case domain.KindInstitution:
		return p.InstitutionsArtifact()
	case domain.KindGradRate:
		return p.GradRateArtifact()
	default:
		return p.AwardArtifact(tag)
	}
}

// SidecarPath returns the provenance file stored next to an artifact
func SidecarPath(artifact string) string {
	return artifact + SidecarSuffix
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution",
		slog.String("raw_dir", p.RawDir),
		slog.String("processed_dir", p.ProcessedDir),
		slog.String("logs_dir", p.LogsDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
