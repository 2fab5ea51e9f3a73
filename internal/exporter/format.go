package exporter

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind selects how FormatValue renders a number
type ValueKind string

const (
	KindCurrency   ValueKind = "currency"
	KindNumber     ValueKind = "number"
	KindPercentage ValueKind = "percentage"
)

// FormatValue renders a nullable value for display. Null is "". Currency,
// number and percentage truncate toward zero: 1234.9 is "$1,234".
func FormatValue(v *float64, kind ValueKind) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	switch kind {
	case KindCurrency:
		return "$" + groupThousands(truncate(*v))
	case KindNumber:
		return groupThousands(truncate(*v))
	case KindPercentage:
		return strconv.FormatInt(truncate(*v), 10) + "%"
	default:
		return strconv.FormatFloat(*v, 'g', -1, 64)
	}
}

func truncate(f float64) int64 {
	if math.IsInf(f, 0) {
		if f > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return int64(f)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatCell renders a nullable value for CSV output without grouping
func formatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
