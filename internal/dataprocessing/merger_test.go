package dataprocessing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipedsprep/pkg/contracts/domain"
)

func strPtr(s string) *string { return &s }

func TestMerge_Example(t *testing.T) {
	awards := []domain.AwardRecord{{UnitID: 1, InstitutionName: "award copy", TotalPellAmount: floatPtr(1000), TotalLoanAmount: floatPtr(2000)}}
	institutions := []domain.InstitutionRecord{{UnitID: 1, InstitutionName: "A", Sector: "Public, 4-year or above"}}

	merged := Merge(awards, institutions, nil)
	require.Len(t, merged, 1)

	row := merged[0]
	assert.Equal(t, strPtr("A"), row.InstitutionName)
	assert.Equal(t, strPtr("Public, 4-year or above"), row.Sector)
	assert.Nil(t, row.GradRate2023)
	assert.Equal(t, floatPtr(3000), row.TotalAid())
}

func TestMerge_LeftJoin(t *testing.T) {
	awards := []domain.AwardRecord{
		{UnitID: 3, TotalUndergrad: floatPtr(30)},
		{UnitID: 1, TotalUndergrad: floatPtr(10)},
		{UnitID: 2},
	}
	institutions := []domain.InstitutionRecord{
		{UnitID: 1, InstitutionName: "One", State: "AL", Sector: "Public, 2-year", DegreeGranting: "Degree-granting", Control: "Public", Level: "Less than 2 years"},
		{UnitID: 1, InstitutionName: "Duplicate"},
		{UnitID: 9, InstitutionName: "No awards"},
	}
	gradRates := []domain.GradRateRecord{
		{UnitID: 1, GradRate2023: floatPtr(55)},
		{UnitID: 2, GradRate2023: nil},
		{UnitID: 3, GradRate2023: floatPtr(70)},
	}

	merged := Merge(awards, institutions, gradRates)

	want := []domain.MergedRecord{
		{UnitID: 3, TotalUndergrad: floatPtr(30), GradRate2023: floatPtr(70)},
		{
			UnitID: 1, TotalUndergrad: floatPtr(10),
			InstitutionName: strPtr("One"), State: strPtr("AL"), Sector: strPtr("Public, 2-year"),
			DegreeGranting: strPtr("Degree-granting"), Control: strPtr("Public"), Level: strPtr("Less than 2 years"),
			GradRate2023: floatPtr(55),
		},
		{UnitID: 2},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	awards := []domain.AwardRecord{{UnitID: 1, TotalPellAmount: floatPtr(1)}}
	gradRates := []domain.GradRateRecord{{UnitID: 1, GradRate2023: floatPtr(2)}}

	merged := Merge(awards, nil, gradRates)
	*merged[0].TotalPellAmount = 100
	*merged[0].GradRate2023 = 200

	assert.Equal(t, 1.0, *awards[0].TotalPellAmount)
	assert.Equal(t, 2.0, *gradRates[0].GradRate2023)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil, nil, nil))
}

func TestCloneMerged(t *testing.T) {
	assert.Nil(t, CloneMerged(nil))

	in := []domain.MergedRecord{{UnitID: 1, Sector: strPtr("Public, 2-year"), GradRate2023: floatPtr(1)}}
	out := CloneMerged(in)
	assert.Empty(t, cmp.Diff(in, out))

	*out[0].Sector = "changed"
	assert.Equal(t, "Public, 2-year", *in[0].Sector)
}
