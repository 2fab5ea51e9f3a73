package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcademicYears(t *testing.T) {
	years := AcademicYears()
	require.Len(t, years, 15)

	assert.Equal(t, AcademicYear{Tag: "2009", Label: "2008-09", RawFile: "finaid_2008_09.csv"}, years[0])
	assert.Equal(t, AcademicYear{Tag: "2021", Label: "2020-21", RawFile: "finaid_2020_21.csv"}, years[12])
	assert.Equal(t, AcademicYear{Tag: "2122", Label: "2021-22", RawFile: "finaid_2021_22.csv"}, years[13])
	assert.Equal(t, AcademicYear{Tag: "2223", Label: "2022-23", RawFile: "finaid_2022_23.csv"}, years[14])

	years[0].Tag = "mutated"
	assert.Equal(t, YearTag("2009"), AcademicYears()[0].Tag)
}

func TestParseYearTag(t *testing.T) {
	tests := []struct {
		in   string
		want YearTag
		ok   bool
	}{
		{"2223", "2223", true},
		{"2022-23", "2223", true},
		{" 2019-20 ", "2020", true},
		{"2010", "2010", true},
		{"2008", "", false},
		{"2324", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseYearTag(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYearTagLabel(t *testing.T) {
	assert.Equal(t, "2017-18", YearTag("2018").Label())
	assert.Equal(t, "bogus", YearTag("bogus").Label())
	assert.True(t, YearTag("2122").Valid())
	assert.False(t, YearTag("bogus").Valid())
}

func TestRecordKindSingleton(t *testing.T) {
	assert.False(t, KindAward.Singleton())
	assert.True(t, KindInstitution.Singleton())
	assert.True(t, KindGradRate.Singleton())
}

func TestMergedRecordTotalAid(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		rec  MergedRecord
		want *float64
	}{
		{"both", MergedRecord{TotalPellAmount: f(1000), TotalLoanAmount: f(2000)}, f(3000)},
		{"pell only", MergedRecord{TotalPellAmount: f(1000)}, f(1000)},
		{"loan only", MergedRecord{TotalLoanAmount: f(2000)}, f(2000)},
		{"neither", MergedRecord{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.TotalAid())
		})
	}
}
