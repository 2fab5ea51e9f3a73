package domain

// MergedRecord is one row of the joined reporting dataset for a year: the award
// figures, the institution attributes and the graduation rate. Every attribute
// that comes from a joined table is nullable.
type MergedRecord struct {
	UnitID          int64    `json:"unit_id"`
	TotalUndergrad  *float64 `json:"total_undergrad"`
	NumPellGrant    *float64 `json:"num_pell_grant"`
	PctPellGrant    *float64 `json:"pct_pell_grant"`
	TotalPellAmount *float64 `json:"total_pell_amount"`
	AvgPellAmount   *float64 `json:"avg_pell_amount"`
	NumFedLoan      *float64 `json:"num_fed_loan"`
	PctFedLoan      *float64 `json:"pct_fed_loan"`
	TotalLoanAmount *float64 `json:"total_loan_amount"`
	AvgLoanAmount   *float64 `json:"avg_loan_amount"`

	InstitutionName *string `json:"institution_name"`
	State           *string `json:"state"`
	Sector          *string `json:"sector"`
	DegreeGranting  *string `json:"degree_granting"`
	Control         *string `json:"control"`
	Level           *string `json:"level"`

	GradRate2023 *float64 `json:"grad_rate_2023"`
}

// MergedColumns is the column order used when a merged dataset is exported.
var MergedColumns = []string{
	"unit_id",
	"total_undergrad",
	"num_pell_grant",
	"pct_pell_grant",
	"total_pell_amount",
	"avg_pell_amount",
	"num_fed_loan",
	"pct_fed_loan",
	"total_loan_amount",
	"avg_loan_amount",
	"institution_name",
	"state",
	"sector",
	"degree_granting",
	"control",
	"level",
	"grad_rate_2023",
}

// TotalAid is Pell plus federal loan dollars. A missing side counts as zero
// unless both are missing, in which case the result is nil.
func (m MergedRecord) TotalAid() *float64 {
	if m.TotalPellAmount == nil && m.TotalLoanAmount == nil {
		return nil
	}
	var total float64
	if m.TotalPellAmount != nil {
		total += *m.TotalPellAmount
	}
	if m.TotalLoanAmount != nil {
		total += *m.TotalLoanAmount
	}
	return &total
}
