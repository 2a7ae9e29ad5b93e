// Package header resolves the header band at the top of a sheet into final
// column names, per spec.md §4.4.
package header

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/javajack/xlgrid/internal/rawcell"
)

// Mode selects which of the three header specifiers (spec.md §4.4) applies.
type Mode int

const (
	ModeAbsent Mode = iota
	ModePresent
	ModeExplicit
)

// Spec configures header resolution for one read.
type Spec struct {
	Mode  Mode
	Rows  int      // ModePresent: N >= 1
	Names []string // ModeExplicit

	LookupHead    *regexp.Regexp // ModePresent, optional
	LookupHeadCol int            // ModePresent, optional; -1 if unset
	LookupSize    int            // default 30
}

// DefaultLookupSize matches spec.md §4.4's default.
const DefaultLookupSize = 30

// LookupError reports that no header start was found within lookup_size
// rows (spec.md §4.4 step 4, §7 HeaderLookupError).
type LookupError struct {
	Sheet      string
	LookupSize int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("xlgrid: sheet %q: no header row matched lookup_head within %d rows", e.Sheet, e.LookupSize)
}

// MismatchError reports an Explicit header whose name count doesn't match
// the surviving column count (spec.md §4.4 step 1, §7 HeaderMismatchError).
type MismatchError struct {
	Sheet    string
	Got      int
	Expected int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("xlgrid: sheet %q: header has %d names, expected %d columns", e.Sheet, e.Got, e.Expected)
}

// Rows is one row of the header band across surviving columns, indexed by
// column position (not raw spreadsheet column index).
type Rows [][]rawcell.RawCell

// asString renders a header cell for matching/concatenation purposes.
func asString(c rawcell.RawCell, resolveShared func(uint64) string) string {
	return c.AsString(resolveShared)
}

func rowIsBlank(row []rawcell.RawCell, resolveShared func(uint64) string) bool {
	for _, c := range row {
		if c.Kind == rawcell.KindBlank {
			continue
		}
		if strings.TrimSpace(asString(c, resolveShared)) != "" {
			return false
		}
	}
	return true
}

// LocateResult describes where the header band sits relative to the window
// of rows LocateBand was given, in row offsets within that window.
type LocateResult struct {
	StartOffset int
	EndOffset   int // exclusive; StartOffset+Rows for Present, StartOffset for Absent/Explicit
}

// LocateBand finds the header start within a window of candidate rows
// (spec.md §4.4 steps 2-4). window must be at least LookupSize rows when
// LookupHead is set, or at least Rows rows otherwise; callers size the
// window accordingly from post skip_rows data.
func LocateBand(spec Spec, window Rows, sheet string, resolveShared func(uint64) string) (LocateResult, error) {
	switch spec.Mode {
	case ModeExplicit, ModeAbsent:
		return LocateResult{StartOffset: 0, EndOffset: 0}, nil
	}

	lookupSize := spec.LookupSize
	if lookupSize <= 0 {
		lookupSize = DefaultLookupSize
	}

	if spec.LookupHead == nil && spec.LookupHeadCol < 0 {
		// Step 3: first N non-empty rows from the top.
		start := 0
		horizon := lookupSize
		if horizon > len(window) {
			horizon = len(window)
		}
		for start < horizon && rowIsBlank(window[start], resolveShared) {
			start++
		}
		if start >= horizon {
			start = 0
		}
		return LocateResult{StartOffset: start, EndOffset: start + spec.Rows}, nil
	}

	// Step 4: scan up to lookup_size rows for a pattern or integer-column match.
	horizon := lookupSize
	if horizon > len(window) {
		horizon = len(window)
	}
	for i := 0; i < horizon; i++ {
		if matchesHeaderStart(spec, window[i], resolveShared) {
			return LocateResult{StartOffset: i, EndOffset: i + spec.Rows}, nil
		}
	}
	return LocateResult{}, &LookupError{Sheet: sheet, LookupSize: lookupSize}
}

func matchesHeaderStart(spec Spec, row []rawcell.RawCell, resolveShared func(uint64) string) bool {
	if spec.LookupHeadCol >= 0 {
		if spec.LookupHeadCol >= len(row) {
			return false
		}
		return row[spec.LookupHeadCol].Kind != rawcell.KindBlank
	}
	for _, c := range row {
		if spec.LookupHead.MatchString(asString(c, resolveShared)) {
			return true
		}
	}
	return false
}

// Resolve produces final column names for numCols surviving columns, given
// the header band rows already sliced out by the caller (band has
// spec.Rows rows for ModePresent, is empty for ModeAbsent/ModeExplicit).
func Resolve(spec Spec, band Rows, numCols int, sheet string, resolveShared func(uint64) string) ([]string, error) {
	switch spec.Mode {
	case ModeExplicit:
		if len(spec.Names) != numCols {
			return nil, &MismatchError{Sheet: sheet, Got: len(spec.Names), Expected: numCols}
		}
		out := make([]string, numCols)
		copy(out, spec.Names)
		return out, nil
	case ModeAbsent:
		out := make([]string, numCols)
		for i := range out {
			out[i] = fmt.Sprintf("Unnamed: %d", i)
		}
		return out, nil
	default: // ModePresent
		return resolvePresent(band, numCols, resolveShared), nil
	}
}

func resolvePresent(band Rows, numCols int, resolveShared func(uint64) string) []string {
	// Horizontal fill (spec.md §4.4 step 5), before vertical
	// concatenation: only the band's top-most row fills blanks from its
	// left neighbor's value in that row (simulating a merged header cell);
	// blanks in every other row stay empty.
	filled := make(Rows, len(band))
	for r, row := range band {
		filledRow := make([]string, numCols)
		left := ""
		for col := 0; col < numCols; col++ {
			v := ""
			if col < len(row) {
				v = strings.TrimSpace(asString(row[col], resolveShared))
			}
			if v == "" {
				if r == 0 {
					v = left
				}
			} else {
				left = v
			}
			filledRow[col] = v
		}
		filled[r] = rowFromStrings(filledRow)
	}

	names := make([]string, numCols)
	for col := 0; col < numCols; col++ {
		var parts []string
		for r := range filled {
			v := asString(filled[r][col], nil)
			if v != "" {
				parts = append(parts, v)
			}
		}
		names[col] = strings.Join(parts, ", ")
	}
	return names
}

func rowFromStrings(ss []string) []rawcell.RawCell {
	out := make([]rawcell.RawCell, len(ss))
	for i, s := range ss {
		out[i] = rawcell.InlineString(s)
	}
	return out
}
