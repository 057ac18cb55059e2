package dataset

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NumberFormat controls locale-aware numeric parsing.
type NumberFormat struct {
	// Decimal separator. If 0, it is detected per value.
	Decimal rune
	// Thousands separator. If 0, the common separators (',' '.' space) that
	// differ from the decimal separator are stripped.
	Thousands rune
}

// Digits grouped in threes by a single separator kind. A lone comma group
// such as "1,234" is read as thousands unless it starts with zero ("0,125");
// dots need two groups since "1.234" is an ordinary decimal.
var (
	commaGroups = regexp.MustCompile(`^[-+]?[1-9]\d{0,2}(,\d{3})+$`)
	dotGroups   = regexp.MustCompile(`^[-+]?[1-9]\d{0,2}(\.\d{3}){2,}$`)
)

// ParseNumber parses a cell as a number. Percent signs, non-breaking spaces
// and thousands separators are tolerated, so "1.000,5" and "12.5%" both parse.
func ParseNumber(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\u00A0", " "))

	dec, thou := nf.Decimal, nf.Thousands
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0 && commaGroups.MatchString(raw):
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		case dotGroups.MatchString(raw):
			dec, thou = ',', '.'
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// ParseTime tries the date layouts commonly found in exported spreadsheets.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool accepts the spellings spreadsheets and pandas exports use.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "t":
		return true, true
	case "false", "no", "n", "f":
		return false, true
	}
	return false, false
}

// IsMissing reports whether a cell counts as a missing value.
func IsMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<nil>":
		return true
	}
	return false
}
