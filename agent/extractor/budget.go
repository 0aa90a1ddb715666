package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

var budgetPattern = regexp.MustCompile(`([\d,.]+)\s*([kKmM]?)`)

// ParseBudget normalizes a budget value to an absolute amount. Strings accept
// thousands separators and a case-insensitive k/m suffix ("25k" -> 25000,
// "1.2M" -> 1200000); plain numbers pass through; anything unparseable is nil.
func ParseBudget(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case string:
		return parseBudgetString(t)
	default:
		return nil
	}
}

func parseBudgetString(s string) *float64 {
	m := budgetPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}

	switch strings.ToLower(m[2]) {
	case "k":
		num *= 1_000
	case "m":
		num *= 1_000_000
	}
	return &num
}
