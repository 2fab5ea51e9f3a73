package dataprocessing

import (
	"log/slog"
	"sort"
	"strings"

	"ipedsprep/pkg/contracts/domain"
)

// Attribute names one of the five categorical institution attributes
type Attribute string

const (
	AttrControl        Attribute = "control"
	AttrSector         Attribute = "sector"
	AttrLevel          Attribute = "level"
	AttrDegreeGranting Attribute = "degree_granting"
	AttrTitleIV        Attribute = "title_iv"
)

// Attributes lists the categorical attributes in column order
var Attributes = []Attribute{AttrControl, AttrSector, AttrLevel, AttrDegreeGranting, AttrTitleIV}

const (
	NotAvailable    = "Not available"
	SectorUnknown   = "Sector unknown (not active)"
	AdminUnitSector = "Administrative Unit"
)

// codeTable is an immutable code to label lookup with a fallback label.
type codeTable struct {
	labels   map[int32]string
	sentinel string
}

var codeTables = map[Attribute]codeTable{
	AttrControl: {
		labels: map[int32]string{
			1:  "Public",
			2:  "Private not-for-profit",
			3:  "Private for-profit",
			-3: NotAvailable,
		},
		sentinel: NotAvailable,
	},
	AttrSector: {
		labels: map[int32]string{
			0:  AdminUnitSector,
			1:  "Public, 4-year or above",
			2:  "Private not-for-profit, 4-year or above",
			3:  "Private for-profit, 4-year or above",
			4:  "Public, 2-year",
			5:  "Private not-for-profit, 2-year",
			6:  "Private for-profit, 2-year",
			7:  "Public, less-than 2-year",
			8:  "Private not-for-profit, less-than 2-year",
			9:  "Private for-profit, less-than 2-year",
			99: SectorUnknown,
		},
		sentinel: SectorUnknown,
	},
	AttrLevel: {
		labels: map[int32]string{
			1:  "Four or more years",
			2:  "At least 2 but less than 4 years",
			3:  "Less than 2 years",
			-3: NotAvailable,
		},
		sentinel: NotAvailable,
	},
	AttrDegreeGranting: {
		labels: map[int32]string{
			1:  "Degree-granting",
			2:  "Nondegree-granting",
			-3: NotAvailable,
		},
		sentinel: NotAvailable,
	},
	AttrTitleIV: {
		labels: map[int32]string{
			1: "Title IV postsecondary",
			2: "Non-Title IV postsecondary",
			3: "Title IV not primarily postsecondary",
			4: "Non-Title IV not primarily postsecondary",
			5: "Title IV postsecondary (not public)",
			6: "Non-Title IV postsecondary (not public)",
			9: "Not active",
		},
		sentinel: NotAvailable,
	},
}

// Decode returns the label for a code. Missing and unknown codes yield the
// attribute's sentinel; it never fails.
func Decode(attr Attribute, code *int32) string {
	table, ok := codeTables[attr]
	if !ok {
		return NotAvailable
	}
	if code == nil {
		return table.sentinel
	}
	if label, ok := table.labels[*code]; ok {
		return label
	}
	return table.sentinel
}

// LabelSet returns the closed, sorted set of labels an attribute can decode to.
func LabelSet(attr Attribute) []string {
	table, ok := codeTables[attr]
	if !ok {
		return nil
	}
	seen := map[string]struct{}{table.sentinel: {}}
	for _, label := range table.labels {
		seen[label] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for label := range seen {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// DecodeSummary counts decoded labels per attribute
type DecodeSummary map[Attribute]map[string]int

// Decoder turns raw institution rows into decoded records
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder creates a decoder that logs a value-count summary per attribute
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger.With("component", "decoder")}
}

// DecodeInstitutions decodes every categorical attribute and trims the
// name, state and city fields. The input is not modified.
func (d *Decoder) DecodeInstitutions(raw []domain.RawInstitution) ([]domain.InstitutionRecord, DecodeSummary) {
	summary := make(DecodeSummary, len(Attributes))
	for _, attr := range Attributes {
		summary[attr] = make(map[string]int)
	}
	count := func(attr Attribute, code *int32) string {
		label := Decode(attr, code)
		summary[attr][label]++
		return label
	}

	out := make([]domain.InstitutionRecord, len(raw))
	for i, r := range raw {
		out[i] = domain.InstitutionRecord{
			UnitID:          r.UnitID,
			InstitutionName: strings.TrimSpace(r.InstitutionName),
			State:           strings.TrimSpace(r.State),
			City:            strings.TrimSpace(r.City),
			Control:         count(AttrControl, r.Control),
			Sector:          count(AttrSector, r.Sector),
			Level:           count(AttrLevel, r.Level),
			DegreeGranting:  count(AttrDegreeGranting, r.DegreeGranting),
			TitleIV:         count(AttrTitleIV, r.TitleIV),
			OPEID:           r.OPEID,
		}
	}

	for _, attr := range Attributes {
		d.logger.Info("Decoded categorical attribute",
			slog.String("attribute", string(attr)),
			slog.Any("distribution", summary[attr]))
	}
	return out, summary
}
