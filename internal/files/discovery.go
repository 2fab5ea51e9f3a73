package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ipedsprep/pkg/contracts/domain"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// RawExtensions are the raw extract formats the loader understands, in preference order
var RawExtensions = []string{".csv", ".tsv", ".txt", ".xlsx"}

// YearSource pairs a known academic year with the raw award extract found for it
type YearSource struct {
	Year  domain.AcademicYear
	File  *FileInfo
	Found bool
}

// Discovery locates raw extracts and published artifacts
type Discovery struct {
	rawDir string
}

// NewDiscovery creates a discovery rooted at the raw extract directory
func NewDiscovery(rawDir string) *Discovery {
	return &Discovery{rawDir: rawDir}
}

// FindAwardSources looks up the raw extract for every known year, oldest
// first. A year without a file is returned with Found false.
func (d *Discovery) FindAwardSources() ([]YearSource, error) {
	if _, err := os.Stat(d.rawDir); err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.rawDir, err)
	}

	years := domain.AcademicYears()
	out := make([]YearSource, len(years))
	for i, y := range years {
		out[i] = YearSource{Year: y}
		stem := strings.TrimSuffix(y.RawFile, filepath.Ext(y.RawFile))
		if fi, ok := d.findStem(stem); ok {
			out[i].File = fi
			out[i].Found = true
		}
	}
	return out, nil
}

// FindRaw returns the raw file for a conventional name, trying each
// supported extension when the exact name is absent.
func (d *Discovery) FindRaw(name string) (*FileInfo, bool) {
	if fi, ok := d.stat(filepath.Join(d.rawDir, name)); ok {
		return fi, true
	}
	return d.findStem(strings.TrimSuffix(name, filepath.Ext(name)))
}

func (d *Discovery) findStem(stem string) (*FileInfo, bool) {
	for _, ext := range RawExtensions {
		if fi, ok := d.stat(filepath.Join(d.rawDir, stem+ext)); ok {
			return fi, true
		}
	}
	return nil, false
}

func (d *Discovery) stat(path string) (*FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	return &FileInfo{Path: path, Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()}, true
}

// ArtifactLocator resolves the award artifact path for a year
type ArtifactLocator interface {
	AwardArtifact(tag domain.YearTag) string
}

// ProcessedYears returns the years whose award artifact exists, oldest first
func ProcessedYears(loc ArtifactLocator) []domain.AcademicYear {
	var out []domain.AcademicYear
	for _, y := range domain.AcademicYears() {
		if info, err := os.Stat(loc.AwardArtifact(y.Tag)); err == nil && !info.IsDir() {
			out = append(out, y)
		}
	}
	return out
}
