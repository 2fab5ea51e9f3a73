package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ipedsprep/internal/errors"
	"ipedsprep/pkg/contracts/domain"
)

func awardHeader() []string {
	return []string{
		"UnitID", "Institution Name", "Total undergraduates",
		"Number Pell", "Percent Pell", "Total Pell", "Average Pell",
		"Number loans", "Percent loans", "Total loans", "Average loans",
	}
}

func institutionHeader() []string {
	h := make([]string, len(InstitutionHeaders))
	for i, m := range InstitutionHeaders {
		h[i] = m.Raw
	}
	return h
}

func TestResolveAwardColumns(t *testing.T) {
	tests := []struct {
		name        string
		header      []string
		wantSources []int
		wantErr     bool
	}{
		{
			name:        "exact width",
			header:      awardHeader(),
			wantSources: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		{
			name:        "unnamed and blank columns stripped",
			header:      append([]string{"Unnamed: 0", "UnitID", " "}, awardHeader()[1:]...),
			wantSources: []int{1, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		},
		{
			name:        "extra trailing columns dropped",
			header:      append(awardHeader(), "Extra A", "Extra B"),
			wantSources: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		{
			name:    "too few usable columns",
			header:  append(awardHeader()[:10], "Unnamed: 10"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ResolveAwardColumns(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrSchemaMismatch))
				var appErr *apperrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, 11, appErr.Context[apperrors.CtxExpected])
				assert.Equal(t, 10, appErr.Context[apperrors.CtxFound])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.AwardColumns, m.Columns)
			assert.Equal(t, tt.wantSources, m.Sources)
		})
	}
}

func TestMapAwards(t *testing.T) {
	header := append([]string{"Unnamed: 0"}, awardHeader()...)
	header = append(header, "Trailing")
	table := &RawTable{
		Path:   "raw/finaid_2022_23.csv",
		Header: header,
		Rows: [][]string{
			{"0", "100654", "Alabama A & M University", "5,196", "3,325", "64", "$17,006,000", "5,114", "3,030", "58", "22,800,000", "7,524", "ignored"},
			{"1", "100663.0", "UAB", "", "-1", "x", "1000", "", "", "", "2000", "", ""},
		},
	}

	records, err := MapAwards(table)
	require.NoError(t, err)
	require.Len(t, records, len(table.Rows))

	first := records[0]
	assert.Equal(t, int64(100654), first.UnitID)
	assert.Equal(t, "Alabama A & M University", first.InstitutionName)
	assert.Equal(t, floatPtr(5196), first.TotalUndergrad)
	assert.Equal(t, floatPtr(64), first.PctPellGrant)
	assert.Equal(t, floatPtr(17006000), first.TotalPellAmount)
	assert.Equal(t, floatPtr(7524), first.AvgLoanAmount)

	second := records[1]
	assert.Equal(t, int64(100663), second.UnitID)
	assert.Nil(t, second.TotalUndergrad)
	assert.Nil(t, second.NumPellGrant, "negative values become null")
	assert.Nil(t, second.PctPellGrant, "unparseable values become null")
	assert.Equal(t, floatPtr(1000), second.TotalPellAmount)
	assert.Equal(t, floatPtr(2000), second.TotalLoanAmount)
}

func TestMapAwards_RowCountMatchesInput(t *testing.T) {
	for _, n := range []int{0, 1, 17} {
		table := &RawTable{Header: awardHeader()}
		for i := 0; i < n; i++ {
			row := make([]string, 11)
			row[0] = "1000"
			table.Rows = append(table.Rows, row)
		}
		records, err := MapAwards(table)
		require.NoError(t, err)
		assert.Len(t, records, n)
	}
}

func TestMapAwards_BadUnitID(t *testing.T) {
	table := &RawTable{
		Path:   "raw/finaid_2019_20.csv",
		Header: awardHeader(),
		Rows: [][]string{
			{"100654", "A", "", "", "", "", "", "", "", "", ""},
			{"Total", "", "", "", "", "", "", "", "", "", ""},
		},
	}
	_, err := MapAwards(table)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeSchemaMismatch, appErr.Type)
	assert.Equal(t, 3, appErr.Context[apperrors.CtxRow])
	assert.Equal(t, "UnitID", appErr.Context[apperrors.CtxColumn])
	assert.Equal(t, "raw/finaid_2019_20.csv", appErr.Context[apperrors.CtxPath])
}

func TestMapInstitutions(t *testing.T) {
	// shuffled order plus an unrelated column
	header := append([]string{"Extra column"}, institutionHeader()...)
	header[1], header[5] = header[5], header[1]
	header[2] = "  " + header[2] + " "

	row := make([]string, len(header))
	set := func(raw, v string) {
		for i, h := range header {
			if normalizeHeader(h) == raw {
				row[i] = v
			}
		}
	}
	set("UnitID", "100654")
	set("Institution Name", " Alabama A & M University ")
	set("State abbreviation (HD2023)", "AL")
	set("City location of institution (HD2023)", "Normal")
	set("Control of institution (HD2023)", "1")
	set("Sector of institution (HD2023)", "1")
	set("Level of institution (HD2023)", "1")
	set("Degree-granting status (HD2023)", "1")
	set("Postsecondary and Title IV institution indicator (HD2023)", "1")
	set("Office of Postsecondary Education (OPE) ID Number (HD2023)", "00100200")

	records, err := MapInstitutions(&RawTable{Header: header, Rows: [][]string{row}})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, int64(100654), r.UnitID)
	assert.Equal(t, " Alabama A & M University ", r.InstitutionName, "trimming happens after decoding")
	assert.Equal(t, "AL", r.State)
	require.NotNil(t, r.Sector)
	assert.Equal(t, int32(1), *r.Sector)
	assert.Equal(t, "00100200", r.OPEID)

	m, err := ResolveInstitutionColumns(header)
	require.NoError(t, err)
	assert.Equal(t, domain.InstitutionColumns, m.Columns)
}

func TestMapInstitutions_MissingHeaders(t *testing.T) {
	header := institutionHeader()
	header = append(header[:2], header[4:]...) // drop state and city

	_, err := MapInstitutions(&RawTable{Path: "raw/institutions.csv", Header: header})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeSchemaMismatch, appErr.Type)
	assert.Equal(t, []string{"State abbreviation (HD2023)", "City location of institution (HD2023)"}, appErr.Context[apperrors.CtxMissing])
	assert.Equal(t, 10, appErr.Context[apperrors.CtxExpected])
	assert.Equal(t, 8, appErr.Context[apperrors.CtxFound])
	assert.Equal(t, "raw/institutions.csv", appErr.Context[apperrors.CtxPath])
}

func TestMapGradRates(t *testing.T) {
	table := &RawTable{
		Header: []string{"Unnamed: 0", "UnitID", "Institution Name", "Graduation rate  total cohort (DRVGR2023)"},
		Rows: [][]string{
			{"0", "100654", "A", "27"},
			{"1", "100663", "B", ""},
			{"2", "100690", "C", "not reported"},
			{"3", "100706", "D", "64.5"},
		},
	}
	records, err := MapGradRates(table)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, floatPtr(27), records[0].GradRate2023)
	assert.Nil(t, records[1].GradRate2023)
	assert.Nil(t, records[2].GradRate2023)
	assert.Equal(t, floatPtr(64.5), records[3].GradRate2023)
}

func TestMapGradRates_SingleSpaceHeaderIsMissing(t *testing.T) {
	table := &RawTable{Header: []string{"UnitID", "Institution Name", "Graduation rate total cohort (DRVGR2023)"}}
	_, err := MapGradRates(table)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeSchemaMismatch))
}
