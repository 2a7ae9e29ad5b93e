// Package numfmt decides whether a number format renders a date, time, or
// duration, shared by both workbook adapters so XLSX and XLSB apply the
// same temporal heuristic (spec.md §3 "temporal flag").
package numfmt

import (
	"regexp"
	"strings"
)

// BuiltinTemporal is the set of built-in numFmtIds that represent a date,
// time, or duration, per ECMA-376's built-in format table. Grounded on
// original_source/rxls/reader/xlsb.py's TEMPORAL_STYLES.
var BuiltinTemporal = map[int]bool{
	0x0E: true, 0x0F: true, 0x10: true, 0x11: true, 0x12: true,
	0x13: true, 0x14: true, 0x15: true, 0x16: true,
	0x2D: true, 0x2E: true, 0x2F: true,
}

var reQuotedLiteral = regexp.MustCompile(`".*?"`)

// IsTemporal reports whether a cell's number format represents a
// date/time/duration: true for any built-in temporal numFmtId, or for a
// custom format code containing an unescaped date/time letter outside
// quoted literals and non-elapsed-time bracketed sections. Go's RE2 lacks
// lookbehind, so the escape check is done by hand (grounded on xlsb.py's
// re_dt/re_xt heuristic).
func IsTemporal(builtinID int, customCode string) bool {
	if BuiltinTemporal[builtinID] {
		return true
	}
	if customCode == "" {
		return false
	}
	stripped := reQuotedLiteral.ReplaceAllString(customCode, "")
	stripped = stripNonTimeBrackets(stripped)
	for i := 0; i < len(stripped); i++ {
		switch stripped[i] {
		case 'd', 'm', 'h', 'y', 's', 'D', 'M', 'H', 'Y', 'S':
			if i == 0 || stripped[i-1] != '\\' {
				return true
			}
		}
	}
	return false
}

func stripNonTimeBrackets(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '[' {
			b.WriteByte(s[i])
			continue
		}
		end := strings.IndexByte(s[i:], ']')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		end += i
		inner := strings.ToLower(s[i+1 : end])
		if inner == "h" || inner == "hh" || inner == "m" || inner == "mm" || inner == "s" || inner == "ss" {
			b.WriteString(s[i : end+1])
		}
		i = end
	}
	return b.String()
}
