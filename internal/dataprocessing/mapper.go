package dataprocessing

import (
	"fmt"
	"strings"

	apperrors "ipedsprep/internal/errors"
	"ipedsprep/pkg/contracts/domain"
)

// HeaderMapping pairs a raw extract header with its canonical column name
type HeaderMapping struct {
	Raw       string
	Canonical string
}

// InstitutionHeaders is the name-based mapping for the institution extract,
// in output order.
var InstitutionHeaders = []HeaderMapping{
	{"UnitID", "unit_id"},
	{"Institution Name", "institution_name"},
	{"State abbreviation (HD2023)", "state"},
	{"City location of institution (HD2023)", "city"},
	{"Control of institution (HD2023)", "control"},
	{"Sector of institution (HD2023)", "sector"},
	{"Level of institution (HD2023)", "level"},
	{"Degree-granting status (HD2023)", "degree_granting"},
	{"Postsecondary and Title IV institution indicator (HD2023)", "title_iv"},
	{"Office of Postsecondary Education (OPE) ID Number (HD2023)", "ope_id"},
}

// GradRateHeaders is the name-based mapping for the graduation-rate extract.
// The double space in the rate header is how the source spells it.
var GradRateHeaders = []HeaderMapping{
	{"UnitID", "unit_id"},
	{"Institution Name", "institution_name"},
	{"Graduation rate  total cohort (DRVGR2023)", "grad_rate_2023"},
}

// ColumnMapping is the result of resolving a raw header: Columns[i] is read
// from raw column Sources[i].
type ColumnMapping struct {
	Kind    domain.RecordKind
	Columns []string
	Sources []int
}

func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
}

// meaningfulHeader reports whether a header names a real column. Blank headers
// and the "Unnamed: N" placeholders left by spreadsheet exports do not.
func meaningfulHeader(h string) bool {
	h = normalizeHeader(h)
	return h != "" && !strings.HasPrefix(h, "Unnamed")
}

// ResolveAwardColumns maps the award extract by position over the
// meaningful columns. Extra trailing columns are dropped.
func ResolveAwardColumns(header []string) (ColumnMapping, error) {
	kept := make([]int, 0, len(header))
	for i, h := range header {
		if meaningfulHeader(h) {
			kept = append(kept, i)
		}
	}
	if len(kept) < len(domain.AwardColumns) {
		return ColumnMapping{}, apperrors.NewSchemaMismatchError(
			fmt.Sprintf("award extract has %d usable columns, need %d", len(kept), len(domain.AwardColumns)),
			len(domain.AwardColumns), len(kept),
		).WithContext(apperrors.CtxKind, string(domain.KindAward))
	}

	columns := make([]string, len(domain.AwardColumns))
	copy(columns, domain.AwardColumns)
	return ColumnMapping{
		Kind:    domain.KindAward,
		Columns: columns,
		Sources: kept[:len(domain.AwardColumns)],
	}, nil
}

// resolveByName maps columns by exact header after trimming. Every absent
// header is listed in the error.
func resolveByName(kind domain.RecordKind, header []string, mappings []HeaderMapping) (ColumnMapping, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if !meaningfulHeader(h) {
			continue
		}
		if _, dup := index[normalizeHeader(h)]; !dup {
			index[normalizeHeader(h)] = i
		}
	}

	m := ColumnMapping{Kind: kind}
	var missing []string
	for _, hm := range mappings {
		i, ok := index[hm.Raw]
		if !ok {
			missing = append(missing, hm.Raw)
			continue
		}
		m.Columns = append(m.Columns, hm.Canonical)
		m.Sources = append(m.Sources, i)
	}
	if len(missing) > 0 {
		return ColumnMapping{}, apperrors.NewSchemaMismatchError(
			fmt.Sprintf("%s extract is missing %d required column(s)", kind, len(missing)),
			len(mappings), len(mappings)-len(missing),
		).WithContext(apperrors.CtxKind, string(kind)).
			WithContext(apperrors.CtxMissing, missing)
	}
	return m, nil
}

// ResolveInstitutionColumns maps the institution extract by header name
func ResolveInstitutionColumns(header []string) (ColumnMapping, error) {
	return resolveByName(domain.KindInstitution, header, InstitutionHeaders)
}

// ResolveGradRateColumns maps the graduation-rate extract by header name
func ResolveGradRateColumns(header []string) (ColumnMapping, error) {
	return resolveByName(domain.KindGradRate, header, GradRateHeaders)
}

func unitIDAt(t *RawTable, m ColumnMapping, row int) (int64, error) {
	cell := t.Rows[row][m.Sources[0]]
	id, err := parseUnitID(cell)
	if err != nil || id <= 0 {
		// header is row 1 of the file
		return 0, apperrors.NewSchemaMismatchError(
			"unit_id is not a positive integer", "integer", cell,
		).WithContext(apperrors.CtxRow, row+2).
			WithContext(apperrors.CtxColumn, t.Header[m.Sources[0]]).
			WithContext(apperrors.CtxPath, t.Path)
	}
	return id, nil
}

// MapAwards converts a raw award extract into typed records, one per row.
func MapAwards(t *RawTable) ([]domain.AwardRecord, error) {
	m, err := ResolveAwardColumns(t.Header)
	if err != nil {
		return nil, withPath(err, t.Path)
	}

	records := make([]domain.AwardRecord, len(t.Rows))
	for r, row := range t.Rows {
		id, err := unitIDAt(t, m, r)
		if err != nil {
			return nil, err
		}
		rec := &records[r]
		rec.UnitID = id
		rec.InstitutionName = row[m.Sources[1]]
		for i, dst := range rec.Measures() {
			*dst = parseMeasure(row[m.Sources[i+2]])
		}
	}
	return records, nil
}

// MapInstitutions converts a raw institution extract into undecoded records.
func MapInstitutions(t *RawTable) ([]domain.RawInstitution, error) {
	m, err := ResolveInstitutionColumns(t.Header)
	if err != nil {
		return nil, withPath(err, t.Path)
	}

	records := make([]domain.RawInstitution, len(t.Rows))
	for r, row := range t.Rows {
		id, err := unitIDAt(t, m, r)
		if err != nil {
			return nil, err
		}
		records[r] = domain.RawInstitution{
			UnitID:          id,
			InstitutionName: row[m.Sources[1]],
			State:           row[m.Sources[2]],
			City:            row[m.Sources[3]],
			Control:         parseCode(row[m.Sources[4]]),
			Sector:          parseCode(row[m.Sources[5]]),
			Level:           parseCode(row[m.Sources[6]]),
			DegreeGranting:  parseCode(row[m.Sources[7]]),
			TitleIV:         parseCode(row[m.Sources[8]]),
			OPEID:           row[m.Sources[9]],
		}
	}
	return records, nil
}

// MapGradRates converts a raw graduation-rate extract. Unparseable rates are nil.
func MapGradRates(t *RawTable) ([]domain.GradRateRecord, error) {
	m, err := ResolveGradRateColumns(t.Header)
	if err != nil {
		return nil, withPath(err, t.Path)
	}

	records := make([]domain.GradRateRecord, len(t.Rows))
	for r, row := range t.Rows {
		id, err := unitIDAt(t, m, r)
		if err != nil {
			return nil, err
		}
		records[r] = domain.GradRateRecord{
			UnitID:          id,
			InstitutionName: row[m.Sources[1]],
			GradRate2023:    parseNumeric(row[m.Sources[2]]),
		}
	}
	return records, nil
}

func withPath(err error, path string) error {
	if appErr, ok := err.(*apperrors.AppError); ok && path != "" {
		return appErr.WithContext(apperrors.CtxPath, path)
	}
	return err
}
