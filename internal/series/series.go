// Package series implements ColumnSeries: one column's ordered chunk list
// plus header text and metadata (spec.md §3, §4.2).
package series

import (
	"github.com/javajack/xlgrid/internal/chunk"
	"github.com/javajack/xlgrid/internal/rawcell"
)

// ColumnSeries is one spreadsheet column's chunk list as it is read, and
// (after prepare) its materialized typed array.
type ColumnSeries struct {
	ColIndex     int
	Header       string
	Chunks       []*chunk.Chunk
	everNonBlank bool
	lastRow      int // -1 = nothing recorded yet
	sealed       bool
}

// New starts an empty series for the given spreadsheet column index.
func New(colIndex int) *ColumnSeries {
	return &ColumnSeries{ColIndex: colIndex, lastRow: -1}
}

// Record appends a cell at the given (already column-local) row, opening a
// new chunk at shape boundaries and inserting a NullRun for any skipped
// rows (spec.md §4.2). Cells for rows already seen are ignored, mirroring
// the "first write wins" behavior of the reference implementation.
func (s *ColumnSeries) Record(row int, raw rawcell.RawCell) {
	if s.sealed || row <= s.lastRow {
		return
	}
	if raw.Kind != rawcell.KindBlank {
		s.everNonBlank = true
	}

	if row > s.lastRow+1 {
		s.appendNullGap(row - s.lastRow - 1)
	}

	shape, temporal := raw.Shape()
	var cur *chunk.Chunk
	if n := len(s.Chunks); n > 0 {
		cur = s.Chunks[n-1]
	}
	if cur == nil || !cur.CanAppend(shape, temporal) {
		cur = chunk.New(row, shape, temporal)
		s.Chunks = append(s.Chunks, cur)
	}
	cur.Append(raw)
	s.lastRow = row
}

func (s *ColumnSeries) appendNullGap(gap int) {
	if gap <= 0 {
		return
	}
	if n := len(s.Chunks); n > 0 && s.Chunks[n-1].Shape == rawcell.ShapeNull {
		s.Chunks[n-1].NullCount += gap
		return
	}
	s.Chunks = append(s.Chunks, chunk.NewNull(s.lastRow+1, gap))
}

// PadTo extends the series with a trailing NullRun so its length reaches
// n, for columns whose last real cell came before the sheet's last row.
func (s *ColumnSeries) PadTo(n int) {
	if n <= s.lastRow+1 {
		return
	}
	s.appendNullGap(n - s.lastRow - 1)
	s.lastRow = n - 1
}

// Seal marks the series closed; further Record calls are no-ops.
func (s *ColumnSeries) Seal() { s.sealed = true }

// Len returns the number of rows recorded (including gap-filled nulls).
func (s *ColumnSeries) Len() int {
	if s.lastRow < 0 {
		return 0
	}
	return s.lastRow + 1
}

// WasEverNonBlank reports whether any admitted cell was non-blank; empty
// columns (never non-blank, no header) are dropped by the caller (spec.md
// §3 ColumnSeries).
func (s *ColumnSeries) WasEverNonBlank() bool { return s.everNonBlank }

// Elements materializes every row as a rawcell.RawCell, reconstructed from
// chunk storage. The read pipeline calls it on every surviving column over
// the whole sheet to build the header window and the row-gate's blank
// test, and DropRows uses it to rebuild the series.
func (s *ColumnSeries) Elements() []rawcell.RawCell {
	out := make([]rawcell.RawCell, s.Len())
	row := 0
	for _, c := range s.Chunks {
		n := c.Len()
		for i := 0; i < n; i++ {
			switch c.Shape {
			case rawcell.ShapeF64:
				out[row] = rawcell.Number(c.Floats[i], c.Temporal)
			case rawcell.ShapeRk32:
				out[row] = rawcell.RkNumber(c.Rks[i])
			case rawcell.ShapeInlineStr:
				out[row] = rawcell.InlineString(c.Strings[i])
			case rawcell.ShapeSharedIdx:
				out[row] = rawcell.SharedStringRef(c.SharedIdx[i])
			case rawcell.ShapeNull:
				out[row] = rawcell.Blank()
			}
			row++
		}
	}
	return out
}

// DropRows rebuilds the series keeping only rows absent from dropped,
// renumbered contiguously from 0, so surviving rows form contiguous runs
// with adjacent nulls coalesced (spec.md §4.2). Used to elide the header
// region and rows rejected by the row-gate before prepare ever sees them.
func (s *ColumnSeries) DropRows(dropped map[int]bool) {
	elems := s.Elements()
	fresh := New(s.ColIndex)
	fresh.Header = s.Header
	newRow := 0
	for row, e := range elems {
		if dropped[row] {
			continue
		}
		fresh.Record(newRow, e)
		newRow++
	}
	*s = *fresh
}

// DominantShape returns the chunk logical type with the greatest element
// count, ties broken numeric > temporal > string > null (spec.md §4.2).
func (s *ColumnSeries) DominantShape() chunk.LogicalType {
	counts := map[chunk.LogicalType]int{}
	for _, c := range s.Chunks {
		counts[c.LogicalType()] += c.Len()
	}
	order := []chunk.LogicalType{
		chunk.LogicalNumeric,
		chunk.LogicalTemporal,
		chunk.LogicalString,
		chunk.LogicalNull,
	}
	best := chunk.LogicalNull
	bestCount := -1
	for _, lt := range order {
		if counts[lt] > bestCount {
			bestCount = counts[lt]
			best = lt
		}
	}
	return best
}
