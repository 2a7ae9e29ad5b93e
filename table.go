package xlgrid

import "github.com/javajack/xlgrid/internal/typedarray"

// Column is one named, homogeneous, nullable column of a Table.
type Column struct {
	Name  string
	DType DType
	array typedarray.Array
}

// Len returns the column's row count.
func (c *Column) Len() int { return c.array.Len() }

// IsNull reports whether row i is null.
func (c *Column) IsNull(i int) bool { return !c.array.Valid[i] }

// Float64 returns row i as a float64. Valid only when DType == DTypeFloat64.
func (c *Column) Float64(i int) float64 { return c.array.Floats[i] }

// Int64 returns row i as an int64. Valid only when DType == DTypeInt64.
func (c *Column) Int64(i int) int64 { return c.array.Ints[i] }

// TimestampMs returns row i as Unix milliseconds. Valid only when
// DType == DTypeTimestampMs.
func (c *Column) TimestampMs(i int) int64 { return c.array.TimesMs[i] }

// String returns row i as a string. Valid only when DType == DTypeString.
func (c *Column) String(i int) string { return c.array.Strings[i] }

// AsString renders row i for display regardless of DType; null renders "".
func (c *Column) AsString(i int) string { return c.array.AsStringAt(i) }

// Table is the columnar result of a Read/ReadFile call (spec.md §4.6).
type Table struct {
	Sheet   string
	Columns []*Column

	// Warnings collects non-fatal P4 conflict-resolution fallbacks (a
	// column asked for one strategy but fell back to stringifying),
	// keyed by nothing in particular — read them for diagnostics only.
	Warnings []string
}

// Len returns the table's row count (0 if the table has no columns).
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Column looks up a column by name, returning nil if absent.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func dtypeFromKind(k typedarray.Kind) DType {
	switch k {
	case typedarray.KindInt64:
		return DTypeInt64
	case typedarray.KindTimestampMs:
		return DTypeTimestampMs
	case typedarray.KindString:
		return DTypeString
	case typedarray.KindNull:
		return DTypeNull
	default:
		return DTypeFloat64
	}
}

func kindFromDType(t DType) typedarray.Kind {
	switch t {
	case DTypeInt64:
		return typedarray.KindInt64
	case DTypeTimestampMs:
		return typedarray.KindTimestampMs
	case DTypeString:
		return typedarray.KindString
	case DTypeNull:
		return typedarray.KindNull
	default:
		return typedarray.KindFloat64
	}
}
