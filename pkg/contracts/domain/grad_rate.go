package domain

// GradRateColumns is the canonical column order of the graduation-rate table.
var GradRateColumns = []string{"unit_id", "institution_name", "grad_rate_2023"}

// GradRateRecord carries the single reporting year's overall graduation rate.
type GradRateRecord struct {
	UnitID          int64    `json:"unit_id" parquet:"unit_id" validate:"gt=0"`
	InstitutionName string   `json:"institution_name" parquet:"institution_name"`
	GradRate2023    *float64 `json:"grad_rate_2023" parquet:"grad_rate_2023"`
}
