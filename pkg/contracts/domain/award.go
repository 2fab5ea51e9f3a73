package domain

// AwardColumns is the canonical, ordered column list of a yearly award table.
// Raw award extracts are mapped onto it by position.
var AwardColumns = []string{
	"unit_id",
	"institution_name",
	"total_undergrad",
	"num_pell_grant",
	"pct_pell_grant",
	"total_pell_amount",
	"avg_pell_amount",
	"num_fed_loan",
	"pct_fed_loan",
	"total_loan_amount",
	"avg_loan_amount",
}

// AwardRecord is one institution's Pell grant and federal loan figures for one
// academic year. Numeric fields are nil when the source cell was empty,
// unparseable or negative.
type AwardRecord struct {
	UnitID          int64    `json:"unit_id" parquet:"unit_id" validate:"gt=0"`
	InstitutionName string   `json:"institution_name" parquet:"institution_name"`
	TotalUndergrad  *float64 `json:"total_undergrad" parquet:"total_undergrad" validate:"omitempty,min=0"`
	NumPellGrant    *float64 `json:"num_pell_grant" parquet:"num_pell_grant" validate:"omitempty,min=0"`
	PctPellGrant    *float64 `json:"pct_pell_grant" parquet:"pct_pell_grant" validate:"omitempty,min=0"`
	TotalPellAmount *float64 `json:"total_pell_amount" parquet:"total_pell_amount" validate:"omitempty,min=0"`
	AvgPellAmount   *float64 `json:"avg_pell_amount" parquet:"avg_pell_amount" validate:"omitempty,min=0"`
	NumFedLoan      *float64 `json:"num_fed_loan" parquet:"num_fed_loan" validate:"omitempty,min=0"`
	PctFedLoan      *float64 `json:"pct_fed_loan" parquet:"pct_fed_loan" validate:"omitempty,min=0"`
	TotalLoanAmount *float64 `json:"total_loan_amount" parquet:"total_loan_amount" validate:"omitempty,min=0"`
	AvgLoanAmount   *float64 `json:"avg_loan_amount" parquet:"avg_loan_amount" validate:"omitempty,min=0"`
}

// Measures returns pointers to the nine numeric fields in canonical column order
// (total_undergrad .. avg_loan_amount).
func (r *AwardRecord) Measures() []**float64 {
	return []**float64{
		&r.TotalUndergrad,
		&r.NumPellGrant,
		&r.PctPellGrant,
		&r.TotalPellAmount,
		&r.AvgPellAmount,
		&r.NumFedLoan,
		&r.PctFedLoan,
		&r.TotalLoanAmount,
		&r.AvgLoanAmount,
	}
}
