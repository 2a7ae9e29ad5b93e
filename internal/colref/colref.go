// Package colref converts between spreadsheet column letters ("A", "AA")
// and 0-based column indices.
package colref

import (
	"fmt"
	"strings"
)

// ToName converts a 0-based column index to its spreadsheet letter form.
func ToName(col int) string {
	if col < 0 {
		return ""
	}
	var b strings.Builder
	col++
	for col > 0 {
		col--
		b.WriteByte(byte('A' + col%26))
		col /= 26
	}
	s := b.String()
	// digits were appended least-significant first
	runes := []byte(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// ToIndex converts a spreadsheet column letter to a 0-based index.
func ToIndex(name string) (int, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return 0, fmt.Errorf("colref: empty column name")
	}
	col := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("colref: invalid column name %q", name)
		}
		col = col*26 + int(c-'A'+1)
	}
	return col - 1, nil
}
