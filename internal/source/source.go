// Package source defines the adapter boundary between a workbook format
// (XLSX, XLSB) and the row-gate/series pipeline (spec.md §2 item 1,
// out-of-scope external collaborator).
package source

import (
	"github.com/javajack/xlgrid/internal/rawcell"
	"github.com/javajack/xlgrid/internal/sst"
)

// Event is one cell observed in row-major order.
type Event struct {
	Row, Col int
	Cell     rawcell.RawCell
}

// Adapter emits a linear stream of cell events for one sheet, plus the
// workbook's shared-strings resolver.
type Adapter interface {
	// Next returns the next cell event in row-major order. ok=false with a
	// nil error means the sheet stream is exhausted.
	Next() (Event, bool, error)

	// ResolveShared resolves a shared-string index for stringification of
	// header/filter cells prior to prepare (adapters that resolve shared
	// strings eagerly, like the XLSX adapter, can implement this as a
	// lookup into their own already-built table).
	ResolveShared(idx uint64) string

	// SharedTable returns the sheet's shared-strings table, finalized as of
	// the call (safe to call only once the sheet has been fully consumed:
	// an adapter that interns strings incrementally, like the XLSX
	// adapter, freezes its table at this point).
	SharedTable() *sst.Table

	Close() error
}
