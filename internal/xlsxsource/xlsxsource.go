// Package xlsxsource implements the source.Adapter for the XLSX (packaged
// ZIP+XML) workbook format, delegating container and XML handling entirely
// to excelize (spec.md §1 "out of scope... the XLSX ZIP/XML tokenizer").
// Grounded on the teacher's own excelize usage in goxls/excelize_tx.go.
package xlsxsource

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/javajack/xlgrid/internal/colref"
	"github.com/javajack/xlgrid/internal/numfmt"
	"github.com/javajack/xlgrid/internal/rawcell"
	"github.com/javajack/xlgrid/internal/source"
	"github.com/javajack/xlgrid/internal/sst"
)

// Workbook wraps an opened excelize.File for sheet addressing.
type Workbook struct {
	f *excelize.File
}

// Open reads an XLSX workbook from r.
func Open(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsxsource: %w", err)
	}
	return &Workbook{f: f}, nil
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string { return w.f.GetSheetList() }

// OpenSheetIndex opens the sheet at the given zero-based position.
func (w *Workbook) OpenSheetIndex(index int) (*Adapter, error) {
	names := w.f.GetSheetList()
	if index < 0 || index >= len(names) {
		return nil, fmt.Errorf("xlsxsource: sheet index %d out of range", index)
	}
	return w.openSheet(names[index])
}

// OpenSheetName opens the sheet with the given exact name.
func (w *Workbook) OpenSheetName(name string) (*Adapter, error) {
	for _, n := range w.f.GetSheetList() {
		if n == name {
			return w.openSheet(n)
		}
	}
	return nil, fmt.Errorf("xlsxsource: sheet %q not found", name)
}

func (w *Workbook) openSheet(name string) (*Adapter, error) {
	rows, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsxsource: reading sheet %q: %w", name, err)
	}
	return &Adapter{
		f:     w.f,
		sheet: name,
		rows:  rows,
		sst:   sst.NewBuilder(),
	}, nil
}

// Adapter streams (row, col, cell) events for one worksheet, implementing
// source.Adapter. excelize resolves shared strings to text eagerly (it
// never exposes the workbook's on-disk shared-string index), so this
// adapter re-interns them through its own sst.Builder to reproduce the
// index-run indirection spec.md §3 describes.
type Adapter struct {
	f     *excelize.File
	sheet string
	rows  [][]string
	sst   *sst.Builder
	frozen *sst.Table

	rowIdx, colIdx int
}

// Next implements source.Adapter.
func (a *Adapter) Next() (source.Event, bool, error) {
	for {
		if a.rowIdx >= len(a.rows) {
			return source.Event{}, false, nil
		}
		row := a.rows[a.rowIdx]
		if a.colIdx >= len(row) {
			a.rowIdx++
			a.colIdx = 0
			continue
		}
		col := a.colIdx
		raw := row[col]
		a.colIdx++

		cellName := colref.ToName(col) + strconv.Itoa(a.rowIdx+1)
		cell, err := a.decodeCell(cellName, raw)
		if err != nil {
			return source.Event{}, false, fmt.Errorf("xlsxsource: cell %s!%s: %w", a.sheet, cellName, err)
		}
		return source.Event{Row: a.rowIdx, Col: col, Cell: cell}, true, nil
	}
}

func (a *Adapter) decodeCell(cellName, raw string) (rawcell.RawCell, error) {
	if raw == "" {
		return rawcell.Blank(), nil
	}

	ct, err := a.f.GetCellType(a.sheet, cellName)
	if err != nil {
		return rawcell.RawCell{}, err
	}

	switch ct {
	case excelize.CellTypeBool:
		return rawcell.Boolean(raw == "1" || strings.EqualFold(raw, "TRUE")), nil
	case excelize.CellTypeSharedString:
		return rawcell.SharedStringRef(a.sst.Intern(raw)), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		// A cell with no type attribute is numeric by default in XLSX, and
		// excelize reports it as CellTypeUnset.
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if ct == excelize.CellTypeUnset {
				return rawcell.InlineString(raw), nil
			}
			return rawcell.RawCell{}, fmt.Errorf("parsing numeric value %q: %w", raw, err)
		}
		temporal, err := a.isTemporalCell(cellName)
		if err != nil {
			return rawcell.RawCell{}, err
		}
		return rawcell.Number(v, temporal), nil
	default:
		// Inline strings, formula results, and error codes all arrive as
		// excelize's already-rendered string (spec.md §4.1: Boolean and
		// ErrorCode collapse onto the same InlineStrRun anyway).
		return rawcell.InlineString(raw), nil
	}
}

func (a *Adapter) isTemporalCell(cellName string) (bool, error) {
	styleID, err := a.f.GetCellStyle(a.sheet, cellName)
	if err != nil {
		return false, fmt.Errorf("style for %s: %w", cellName, err)
	}
	style, err := a.f.GetStyle(styleID)
	if err != nil {
		return false, fmt.Errorf("style id %d: %w", styleID, err)
	}
	custom := ""
	if style.CustomNumFmt != nil {
		custom = *style.CustomNumFmt
	}
	return numfmt.IsTemporal(style.NumFmt, custom), nil
}

// ResolveShared implements source.Adapter.
func (a *Adapter) ResolveShared(idx uint64) string { return a.sst.Get(idx) }

// SharedTable implements source.Adapter, freezing the incrementally
// interned table built while Next was consumed.
func (a *Adapter) SharedTable() *sst.Table {
	if a.frozen == nil {
		a.frozen = a.sst.Build()
	}
	return a.frozen
}

// Close implements source.Adapter.
func (a *Adapter) Close() error { return a.f.Close() }
