package domain

import (
	"fmt"
	"strings"
)

// YearTag identifies one academic year's award table, e.g. "2223" for 2022-23.
type YearTag string

// AcademicYear describes one entry of the fixed year table.
type AcademicYear struct {
	Tag     YearTag `json:"tag"`
	Label   string  `json:"label"`
	RawFile string  `json:"raw_file"`
}

// academicYears is ordered chronologically. Adding a survey year is a data change here.
var academicYears = buildAcademicYears(2008, 2022)

func buildAcademicYears(firstStart, lastStart int) []AcademicYear {
	years := make([]AcademicYear, 0, lastStart-firstStart+1)
	for start := firstStart; start <= lastStart; start++ {
		end := start + 1
		var tag string
		if start >= 2021 {
			tag = fmt.Sprintf("%02d%02d", start%100, end%100)
		} else {
			tag = fmt.Sprintf("%d", end)
		}
		years = append(years, AcademicYear{
			Tag:     YearTag(tag),
			Label:   fmt.Sprintf("%d-%02d", start, end%100),
			RawFile: fmt.Sprintf("finaid_%d_%02d.csv", start, end%100),
		})
	}
	return years
}

// AcademicYears returns a copy of the known years, oldest first.
func AcademicYears() []AcademicYear {
	out := make([]AcademicYear, len(academicYears))
	copy(out, academicYears)
	return out
}

// ParseYearTag accepts either a tag ("2223") or a display label ("2022-23").
func ParseYearTag(s string) (YearTag, bool) {
	s = strings.TrimSpace(s)
	for _, y := range academicYears {
		if string(y.Tag) == s || y.Label == s {
			return y.Tag, true
		}
	}
	return "", false
}

// Valid reports whether the tag is one of the known academic years.
func (t YearTag) Valid() bool {
	_, ok := t.Year()
	return ok
}

// Year returns the table entry for the tag.
func (t YearTag) Year() (AcademicYear, bool) {
	for _, y := range academicYears {
		if y.Tag == t {
			return y, true
		}
	}
	return AcademicYear{}, false
}

// Label returns the display label, or the raw tag when unknown.
func (t YearTag) Label() string {
	if y, ok := t.Year(); ok {
		return y.Label
	}
	return string(t)
}

func (t YearTag) String() string {
	return string(t)
}

// RecordKind is one of the three record kinds the pipeline understands.
type RecordKind string

const (
	KindAward       RecordKind = "award"
	KindInstitution RecordKind = "institution"
	KindGradRate    RecordKind = "grad_rate"
)

// Singleton reports whether the kind is regenerated wholesale on every run
// instead of being stored once per year.
func (k RecordKind) Singleton() bool {
	return k == KindInstitution || k == KindGradRate
}

func (k RecordKind) String() string {
	return string(k)
}
