// Package chunk implements the run of consecutive, same-shape cells that
// backs one stretch of a column (spec.md §3, §4.1).
package chunk

import (
	"github.com/javajack/xlgrid/internal/rawcell"
	"github.com/javajack/xlgrid/internal/sst"
	"github.com/javajack/xlgrid/internal/typedarray"
)

// LogicalType is the coarse type family a chunk belongs to once P1/P2 have
// run — the granularity spec.md §4.5 P4 conflict resolution reasons about.
type LogicalType int

const (
	LogicalNull LogicalType = iota
	LogicalNumeric
	LogicalTemporal
	LogicalString
)

// Chunk is a contiguous run of cells sharing storage shape (and, for
// numeric shapes, the temporal flag). See spec.md §3 Invariants.
type Chunk struct {
	Origin   int
	Shape    rawcell.Shape
	Temporal bool

	Floats    []float64 // ShapeF64
	Rks       []uint32  // ShapeRk32
	Strings   []string  // ShapeInlineStr
	SharedIdx []uint64  // ShapeSharedIdx
	NullCount int       // ShapeNull
}

// New starts an empty chunk of the given shape at origin row.
func New(origin int, shape rawcell.Shape, temporal bool) *Chunk {
	return &Chunk{Origin: origin, Shape: shape, Temporal: temporal}
}

// NewNull builds a sealed null run directly (used for gap-filling).
func NewNull(origin, count int) *Chunk {
	return &Chunk{Origin: origin, Shape: rawcell.ShapeNull, NullCount: count}
}

// Len returns the number of elements the chunk currently holds.
func (c *Chunk) Len() int {
	switch c.Shape {
	case rawcell.ShapeF64:
		return len(c.Floats)
	case rawcell.ShapeRk32:
		return len(c.Rks)
	case rawcell.ShapeInlineStr:
		return len(c.Strings)
	case rawcell.ShapeSharedIdx:
		return len(c.SharedIdx)
	case rawcell.ShapeNull:
		return c.NullCount
	default:
		return 0
	}
}

// CanAppend reports whether a cell reducing to (shape, temporal) belongs to
// this chunk, per the boundary rule in spec.md §4.1: same storage shape,
// and for numeric shapes (F64 or Rk32) the same temporal flag.
func (c *Chunk) CanAppend(shape rawcell.Shape, temporal bool) bool {
	if c.Shape != shape {
		return false
	}
	switch shape {
	case rawcell.ShapeF64, rawcell.ShapeRk32:
		return c.Temporal == temporal
	default:
		return true
	}
}

// Append extends the chunk with a cell already known (via CanAppend, or as
// the first cell of a new chunk) to match this chunk's shape.
func (c *Chunk) Append(raw rawcell.RawCell) {
	switch c.Shape {
	case rawcell.ShapeF64:
		c.Floats = append(c.Floats, raw.Num)
	case rawcell.ShapeRk32:
		c.Rks = append(c.Rks, raw.Rk)
	case rawcell.ShapeInlineStr:
		c.Strings = append(c.Strings, raw.AsString(nil))
	case rawcell.ShapeSharedIdx:
		c.SharedIdx = append(c.SharedIdx, raw.SharedIdx)
	case rawcell.ShapeNull:
		c.NullCount++
	}
}

// AppendShared extends a ShapeSharedIdx chunk with a bare index, without
// wrapping it in a rawcell.RawCell. The read pipeline itself appends
// shared-string cells (from either adapter) through Append.
func (c *Chunk) AppendShared(idx uint64) {
	c.SharedIdx = append(c.SharedIdx, idx)
}

// TruncateTo keeps only the first n elements, discarding the rest. Used by
// the row-gate to roll back cells optimistically appended to a chunk for a
// row later found inadmissible (spec.md §4.1, §4.3).
func (c *Chunk) TruncateTo(n int) {
	if n < 0 {
		n = 0
	}
	switch c.Shape {
	case rawcell.ShapeF64:
		if n < len(c.Floats) {
			c.Floats = c.Floats[:n]
		}
	case rawcell.ShapeRk32:
		if n < len(c.Rks) {
			c.Rks = c.Rks[:n]
		}
	case rawcell.ShapeInlineStr:
		if n < len(c.Strings) {
			c.Strings = c.Strings[:n]
		}
	case rawcell.ShapeSharedIdx:
		if n < len(c.SharedIdx) {
			c.SharedIdx = c.SharedIdx[:n]
		}
	case rawcell.ShapeNull:
		if n < c.NullCount {
			c.NullCount = n
		}
	}
}

// LogicalType classifies the chunk for P4 conflict detection.
func (c *Chunk) LogicalType() LogicalType {
	switch c.Shape {
	case rawcell.ShapeNull:
		return LogicalNull
	case rawcell.ShapeF64, rawcell.ShapeRk32:
		if c.Temporal {
			return LogicalTemporal
		}
		return LogicalNumeric
	default:
		return LogicalString
	}
}

// Prepare runs P1 expansion (RkNumber -> float64, SharedIdx -> string) and,
// for numeric-temporal chunks, P2 Windows-epoch normalization, yielding a
// homogeneous typedarray.Array. Non-temporal numeric and plain string
// chunks pass through unchanged in kind.
func (c *Chunk) Prepare(shared *sst.Table) typedarray.Array {
	switch c.Shape {
	case rawcell.ShapeNull:
		return typedarray.Nulls(typedarray.KindNull, c.NullCount)
	case rawcell.ShapeInlineStr:
		return stringsToArray(c.Strings)
	case rawcell.ShapeSharedIdx:
		strs := make([]string, len(c.SharedIdx))
		for i, idx := range c.SharedIdx {
			strs[i] = shared.Get(idx)
		}
		return stringsToArray(strs)
	case rawcell.ShapeRk32:
		floats := make([]float64, len(c.Rks))
		for i, v := range c.Rks {
			floats[i] = RkToFloat64(v)
		}
		return c.floatsToArray(floats)
	case rawcell.ShapeF64:
		return c.floatsToArray(c.Floats)
	default:
		return typedarray.Nulls(typedarray.KindNull, 0)
	}
}

func stringsToArray(strs []string) typedarray.Array {
	out := typedarray.Nulls(typedarray.KindString, len(strs))
	for i, s := range strs {
		out.Valid[i] = true
		out.Strings[i] = s
	}
	return out
}

func (c *Chunk) floatsToArray(floats []float64) typedarray.Array {
	if c.Temporal {
		out := typedarray.Nulls(typedarray.KindTimestampMs, len(floats))
		for i, v := range floats {
			out.Valid[i] = true
			out.TimesMs[i] = FloatToMsWindowsEpoch(v)
		}
		return out
	}
	out := typedarray.Nulls(typedarray.KindFloat64, len(floats))
	for i, v := range floats {
		out.Valid[i] = true
		out.Floats[i] = v
	}
	return out
}
