package domain

// InstitutionColumns is the canonical column order of the institution table.
var InstitutionColumns = []string{
	"unit_id",
	"institution_name",
	"state",
	"city",
	"control",
	"sector",
	"level",
	"degree_granting",
	"title_iv",
	"ope_id",
}

// InstitutionRecord is the year-independent reference row for one institution.
// Categorical fields hold decoded labels, never raw codes.
type InstitutionRecord struct {
	UnitID          int64  `json:"unit_id" parquet:"unit_id" validate:"gt=0"`
	InstitutionName string `json:"institution_name" parquet:"institution_name"`
	State           string `json:"state" parquet:"state"`
	City            string `json:"city" parquet:"city"`
	Control         string `json:"control" parquet:"control" validate:"required"`
	Sector          string `json:"sector" parquet:"sector" validate:"required"`
	Level           string `json:"level" parquet:"level" validate:"required"`
	DegreeGranting  string `json:"degree_granting" parquet:"degree_granting" validate:"required"`
	TitleIV         string `json:"title_iv" parquet:"title_iv" validate:"required"`
	OPEID           string `json:"ope_id" parquet:"ope_id"`
}

// RawInstitution is an institution row after column mapping but before
// categorical decoding. A nil code means the source cell was empty or not an
// integer.
type RawInstitution struct {
	UnitID          int64
	InstitutionName string
	State           string
	City            string
	Control         *int32
	Sector          *int32
	Level           *int32
	DegreeGranting  *int32
	TitleIV         *int32
	OPEID           string
}
