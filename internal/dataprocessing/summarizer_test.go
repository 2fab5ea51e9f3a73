package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipedsprep/pkg/contracts/domain"
)

func TestSummarizeAwards(t *testing.T) {
	records := []domain.AwardRecord{
		{UnitID: 1, TotalUndergrad: floatPtr(100), TotalPellAmount: floatPtr(10)},
		{UnitID: 2, TotalUndergrad: floatPtr(300)},
		{UnitID: 2},
	}

	s := SummarizeAwards(records)
	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 2, s.DistinctUnitIDs)
	require.Len(t, s.Columns, 9)

	undergrad := s.Columns[0]
	assert.Equal(t, "total_undergrad", undergrad.Column)
	assert.Equal(t, 2, undergrad.NonNull)
	assert.Equal(t, 1, undergrad.Nulls)
	assert.Equal(t, floatPtr(100), undergrad.Min)
	assert.Equal(t, floatPtr(300), undergrad.Max)
	assert.Equal(t, floatPtr(200), undergrad.Mean)

	loans := s.Columns[7]
	assert.Equal(t, "total_loan_amount", loans.Column)
	assert.Equal(t, 3, loans.Nulls)
	assert.Nil(t, loans.Min)
	assert.Nil(t, loans.Mean)
}
