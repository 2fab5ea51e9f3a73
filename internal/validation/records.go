package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "ipedsprep/internal/errors"
)

// maxReported caps how many offending rows an error lists
const maxReported = 5

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	// Report canonical column names rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRecords runs struct-tag validation over every record. The first
// failing row is reported as a SchemaMismatch naming the column and the
// violated rule.
func ValidateRecords[T any](records []T) error {
	for i := range records {
		err := structValidator.Struct(&records[i])
		if err == nil {
			continue
		}
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok || len(fieldErrs) == 0 {
			return fmt.Errorf("failed to validate row %d: %w", i, err)
		}
		fe := fieldErrs[0]
		return apperrors.NewSchemaMismatchError(
			fmt.Sprintf("row %d: %s", i, formatFieldError(fe)),
			fe.Tag()+fe.Param(),
			fe.Value(),
		).WithContext(apperrors.CtxRow, i).WithContext(apperrors.CtxColumn, fe.Field())
	}
	return nil
}

// CheckUniqueKeys fails with SchemaMismatch when any key appears more than once.
// Up to five duplicated keys are listed.
func CheckUniqueKeys[T any](records []T, key func(T) int64) error {
	seen := make(map[int64]int, len(records))
	var dups []int64
	for _, r := range records {
		k := key(r)
		seen[k]++
		if seen[k] == 2 && len(dups) < maxReported {
			dups = append(dups, k)
		}
	}
	if len(dups) == 0 {
		return nil
	}
	total := 0
	for _, n := range seen {
		if n > 1 {
			total++
		}
	}
	return apperrors.NewSchemaMismatchError(
		fmt.Sprintf("%d duplicate unit_id values", total),
		"unique unit_id",
		dups,
	).WithContext(apperrors.CtxColumn, "unit_id")
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
