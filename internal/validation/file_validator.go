package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "ipedsprep/internal/errors"
)

// supportedRaw lists the raw extract extensions the parser accepts
var supportedRaw = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xlsx": true,
	".xlsm": true,
}

// FileValidator checks raw inputs and output locations before a run starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateRawFile checks that path is a readable file of a supported format.
// Failures are SourceUnreadable errors.
func (v *FileValidator) ValidateRawFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Raw file not accessible",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewSourceUnreadableError(path, err)
	}
	if info.IsDir() {
		v.logger.Error("Raw path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewSourceUnreadableError(path, fmt.Errorf("%s is a directory", path))
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel lock file",
			slog.String("file", path))
		return apperrors.NewSourceUnreadableError(path, fmt.Errorf("%s is a temporary Excel file", base))
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedRaw[ext] {
		v.logger.Error("Unsupported raw file format",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewSourceUnreadableError(path, fmt.Errorf("unsupported extension %q", ext))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Raw file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewSourceUnreadableError(path, err)
	}
	file.Close()

	v.logger.Debug("Raw file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
