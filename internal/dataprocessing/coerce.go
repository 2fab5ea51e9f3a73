package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// missingMarkers are cell values treated as empty
var missingMarkers = map[string]struct{}{
	"":     {},
	".":    {},
	"-":    {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"NULL": {},
}

// trimExcelInteger drops the ".0" that spreadsheet exports append to integers
func trimExcelInteger(s string) string {
	if i := strings.IndexByte(s, '.'); i > 0 && strings.Trim(s[i+1:], "0") == "" {
		return s[:i]
	}
	return s
}

// parseUnitID parses a required integer identifier
func parseUnitID(s string) (int64, error) {
	return strconv.ParseInt(trimExcelInteger(strings.TrimSpace(s)), 10, 64)
}

// parseNumeric parses a numeric cell, accepting thousands separators and
// currency or percent signs. Anything unparseable is nil.
func parseNumeric(s string) *float64 {
	s = strings.TrimSpace(s)
	if _, missing := missingMarkers[s]; missing {
		return nil
	}
	s = strings.NewReplacer(",", "", "$", "", "%", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseMeasure is parseNumeric with negative values treated as missing.
// Survey extracts use negative codes for suppressed or not-applicable figures.
func parseMeasure(s string) *float64 {
	v := parseNumeric(s)
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

// parseCode parses a categorical code; out of range or non-integer is nil
func parseCode(s string) *int32 {
	s = trimExcelInteger(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil
	}
	code := int32(v)
	return &code
}
