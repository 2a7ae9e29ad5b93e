// Package sst holds the workbook's shared-strings table: a read-only,
// deduplicated string list resolved once per read and referenced by every
// SharedIdxRun chunk until prepare consumes it (spec.md §3 Ownership).
package sst

// Table is the shared-strings table for one read call.
type Table struct {
	values []string
}

// New wraps an already-decoded shared-strings list (e.g. from an XLSB
// sharedStrings.bin part).
func New(values []string) *Table {
	return &Table{values: values}
}

// Get resolves a shared-string index. Out-of-range indices return "";
// they are not reported as an error, here or by the read pipeline.
func (t *Table) Get(idx uint64) string {
	if t == nil || idx >= uint64(len(t.values)) {
		return ""
	}
	return t.values[idx]
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// Builder incrementally dedupes strings as an adapter reads them, for
// formats (like our XLSX adapter, which consumes excelize's already
// resolved cell values) that don't expose the workbook's on-disk shared
// string index directly. It reproduces the same "shared-strings loaded
// once, referenced by index" indirection described in spec.md §9 rather
// than storing full strings per cell.
type Builder struct {
	index  map[string]uint64
	values []string
}

func NewBuilder() *Builder {
	return &Builder{index: make(map[string]uint64)}
}

// Intern returns the shared-string index for s, adding it to the table if
// this is the first time it has been seen.
func (b *Builder) Intern(s string) uint64 {
	if idx, ok := b.index[s]; ok {
		return idx
	}
	idx := uint64(len(b.values))
	b.values = append(b.values, s)
	b.index[s] = idx
	return idx
}

// Build finalizes the interned strings into a read-only Table.
func (b *Builder) Build() *Table {
	return New(append([]string(nil), b.values...))
}

// Get resolves an index interned so far. Safe to call mid-read since
// indices, once assigned, never change.
func (b *Builder) Get(idx uint64) string {
	if idx >= uint64(len(b.values)) {
		return ""
	}
	return b.values[idx]
}
