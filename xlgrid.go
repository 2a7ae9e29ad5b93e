// Package xlgrid reads a single worksheet out of an XLSX or XLSB workbook
// into a columnar, typed Table without loading the sheet twice or shelling
// out to a spreadsheet application (spec.md §1 Overview).
//
// A minimal read looks like:
//
//	table, err := xlgrid.ReadFile("report.xlsx", xlgrid.SheetIndex(0))
//
// Header discovery, row filtering, and type conversion are all controlled
// through Option values passed to ReadFile/Read.
package xlgrid

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/javajack/xlgrid/internal/assemble"
	"github.com/javajack/xlgrid/internal/convert"
	"github.com/javajack/xlgrid/internal/header"
	"github.com/javajack/xlgrid/internal/rawcell"
	"github.com/javajack/xlgrid/internal/rowgate"
	"github.com/javajack/xlgrid/internal/series"
	"github.com/javajack/xlgrid/internal/source"
	"github.com/javajack/xlgrid/internal/xlsbsource"
	"github.com/javajack/xlgrid/internal/xlsxsource"
)

// ReadFile opens path, detects its container format, and reads sheet into
// a Table.
func ReadFile(path string, sheet Sheet, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Read(f, st.Size(), sheet, opts...)
}

// Read detects r's container format (XLSX or XLSB) and reads sheet into a
// Table. r must support random access since both formats are ZIP archives.
func Read(r io.ReaderAt, size int64, sheet Sheet, opts ...Option) (*Table, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	wb, err := openWorkbook(r, size)
	if err != nil {
		return nil, err
	}

	var adapter source.Adapter
	var sheetName string
	if sheet.byName {
		sheetName = sheet.name
		adapter, err = wb.OpenSheetName(sheet.name)
	} else {
		names := wb.SheetNames()
		if sheet.index < 0 || sheet.index >= len(names) {
			return nil, &SheetNotFoundError{Requested: sheet.String()}
		}
		sheetName = names[sheet.index]
		adapter, err = wb.OpenSheetIndex(sheet.index)
	}
	if err != nil {
		return nil, &SheetNotFoundError{Requested: sheet.String()}
	}
	defer adapter.Close()

	return readSheet(adapter, sheetName, o)
}

// wbHandle unifies the two format-specific workbook types behind one
// surface the format-detection step can pick between.
type wbHandle interface {
	SheetNames() []string
	OpenSheetIndex(i int) (source.Adapter, error)
	OpenSheetName(name string) (source.Adapter, error)
}

type xlsbHandle struct{ wb *xlsbsource.Workbook }

func (h xlsbHandle) SheetNames() []string { return h.wb.SheetNames() }
func (h xlsbHandle) OpenSheetIndex(i int) (source.Adapter, error) {
	return h.wb.OpenSheetIndex(i)
}
func (h xlsbHandle) OpenSheetName(name string) (source.Adapter, error) {
	return h.wb.OpenSheetName(name)
}

type xlsxHandle struct{ wb *xlsxsource.Workbook }

func (h xlsxHandle) SheetNames() []string { return h.wb.SheetNames() }
func (h xlsxHandle) OpenSheetIndex(i int) (source.Adapter, error) {
	return h.wb.OpenSheetIndex(i)
}
func (h xlsxHandle) OpenSheetName(name string) (source.Adapter, error) {
	return h.wb.OpenSheetName(name)
}

// openWorkbook sniffs the container to tell an XLSB workbook (xl/workbook.bin)
// from an XLSX workbook (xl/workbook.xml) — both are ZIP archives, so the
// distinguishing part is the only reliable signal (spec.md §2 "format
// detection is not a public concern; callers just get a Table").
func openWorkbook(r io.ReaderAt, size int64) (wbHandle, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &FormatError{Sheet: "", Err: err}
	}

	var hasBin, hasXML bool
	for _, f := range zr.File {
		switch f.Name {
		case "xl/workbook.bin":
			hasBin = true
		case "xl/workbook.xml":
			hasXML = true
		}
	}

	switch {
	case hasBin:
		wb, err := xlsbsource.Open(r, size)
		if err != nil {
			return nil, &FormatError{Sheet: "", Err: err}
		}
		return xlsbHandle{wb: wb}, nil
	case hasXML:
		wb, err := xlsxsource.Open(io.NewSectionReader(r, 0, size))
		if err != nil {
			return nil, &FormatError{Sheet: "", Err: err}
		}
		return xlsxHandle{wb: wb}, nil
	default:
		return nil, &FormatError{Sheet: "", Err: fmt.Errorf("neither xl/workbook.bin nor xl/workbook.xml found")}
	}
}

// readSheet runs the full read pipeline over one already-opened sheet
// adapter: raw series construction, header resolution, row-gate admission,
// prepare/convert, dtype overrides, and final assembly (spec.md §5).
func readSheet(adapter source.Adapter, sheetName string, o *options) (*Table, error) {
	colSeries, sheetLen, err := buildRawSeries(adapter, sheetName, o)
	if err != nil {
		return nil, err
	}

	cols := make([]int, 0, len(colSeries))
	for c := range colSeries {
		cols = append(cols, c)
	}
	sort.Ints(cols)

	var survivors []*series.ColumnSeries
	for _, c := range cols {
		s := colSeries[c]
		s.PadTo(sheetLen)
		s.Seal()
		if s.WasEverNonBlank() {
			survivors = append(survivors, s)
		}
	}

	if len(survivors) == 0 {
		return &Table{Sheet: sheetName}, nil
	}
	numCols := len(survivors)

	elementsPerCol := make([][]rawcell.RawCell, numCols)
	for i, s := range survivors {
		elementsPerCol[i] = s.Elements()
	}

	resolveShared := adapter.ResolveShared

	window := make(header.Rows, sheetLen)
	for r := 0; r < sheetLen; r++ {
		row := make([]rawcell.RawCell, numCols)
		for c := 0; c < numCols; c++ {
			row[c] = elementsPerCol[c][r]
		}
		window[r] = row
	}

	hspec := header.Spec{
		Mode:          o.header,
		Rows:          o.headerCfg.rows,
		Names:         o.headerCfg.explicit,
		LookupHead:    o.lookupHead,
		LookupHeadCol: o.lookupHeadCol,
		LookupSize:    o.lookupSize,
	}

	loc, err := header.LocateBand(hspec, window, sheetName, resolveShared)
	if err != nil {
		return nil, wrapHeaderErr(err, sheetName)
	}

	var band header.Rows
	if hspec.Mode == header.ModePresent && loc.StartOffset < len(window) {
		end := loc.EndOffset
		if end > len(window) {
			end = len(window)
		}
		band = window[loc.StartOffset:end]
	}

	names, err := header.Resolve(hspec, band, numCols, sheetName, resolveShared)
	if err != nil {
		return nil, wrapHeaderErr(err, sheetName)
	}

	filterCols, err := rowgate.ResolveFilterColumns(o.rowFilters, names)
	if err != nil {
		return nil, wrapConfigErr(err, sheetName)
	}
	if o.rowFiltersStrategy == rowgate.StrategyPerPair {
		if err := rowgate.ValidatePerPair(o.rowFiltersPerPair, len(o.rowFilters)); err != nil {
			return nil, wrapConfigErr(err, sheetName)
		}
	}

	isBlank := func(row, col int) bool {
		return elementsPerCol[col][row].Kind == rawcell.KindBlank
	}

	cfg := rowgate.Config{
		BodyStart:  loc.EndOffset + o.skipRowsAfterHeader,
		KeepEmpty:  !o.takeRowsNonEmpty,
		FilterCols: filterCols,
		Strategy:   o.rowFiltersStrategy,
		PerPair:    o.rowFiltersPerPair,
		TakeRows:   o.takeRows,
	}

	res, err := runRowGate(cfg, sheetLen, numCols, isBlank, o.rowCallback, sheetName)
	if err != nil {
		return nil, err
	}

	for _, s := range survivors {
		s.DropRows(res.Dropped)
	}

	shared := adapter.SharedTable()
	convOpts := convert.Options{
		FloatPrecision:  o.floatPrecision,
		DatetimeFormats: o.datetimeFormats,
		ConflictResolve: o.conflictResolve,
	}

	results := make([]assemble.ColumnResult, numCols)
	dtypes := make([]DType, numCols)
	warningsPerCol := make([][]string, numCols)
	castErrs := make([]error, numCols)

	// Independent columns prepare concurrently (spec.md §5): a bounded
	// worker pool sized to GOMAXPROCS, one column per task, results
	// written to their own slot so output order never depends on
	// scheduling.
	workers := runtime.GOMAXPROCS(0)
	if workers > numCols {
		workers = numCols
	}
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s := survivors[i]
				arr, warnings := convert.Column(s, shared, convOpts)

				if target := resolveDType(o, i, names[i]); target != nil {
					kind := kindFromDType(*target)
					cast, err := arr.Cast(kind)
					if err != nil {
						castErrs[i] = &DTypeCastError{Sheet: sheetName, Column: names[i], Target: kind.String(), Err: err}
						continue
					}
					arr = cast
				}

				results[i] = assemble.ColumnResult{Name: names[i], Array: arr}
				dtypes[i] = dtypeFromKind(arr.Kind)
				warningsPerCol[i] = warnings
			}
		}()
	}
	for i := range survivors {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range castErrs {
		if err != nil {
			return nil, err
		}
	}

	if err := assemble.Validate(results); err != nil {
		return nil, err
	}

	var warnings []string
	for _, ws := range warningsPerCol {
		warnings = append(warnings, ws...)
	}

	table := &Table{Sheet: sheetName, Columns: make([]*Column, numCols), Warnings: warnings}
	for i, r := range results {
		table.Columns[i] = &Column{Name: r.Name, DType: dtypes[i], array: r.Array}
	}
	return table, nil
}

// buildRawSeries streams every cell event into per-column series, applying
// skip_cols, skip_rows, and null_values before any chunk ever sees the cell
// (spec.md §4.6, §6).
func buildRawSeries(adapter source.Adapter, sheetName string, o *options) (map[int]*series.ColumnSeries, int, error) {
	colSeries := map[int]*series.ColumnSeries{}
	maxAdjRow := -1

	for {
		ev, ok, err := adapter.Next()
		if err != nil {
			return nil, 0, &FormatError{Sheet: sheetName, Err: err}
		}
		if !ok {
			break
		}
		if ev.Row < o.skipRows {
			continue
		}
		if o.skipCols[ev.Col] {
			continue
		}
		adjRow := ev.Row - o.skipRows

		cs, exists := colSeries[ev.Col]
		if !exists {
			cs = series.New(ev.Col)
			colSeries[ev.Col] = cs
		}
		cs.Record(adjRow, applyNullValues(ev.Cell, adapter.ResolveShared, o))
		if adjRow > maxAdjRow {
			maxAdjRow = adjRow
		}
	}

	sheetLen := maxAdjRow + 1
	return colSeries, sheetLen, nil
}

// applyNullValues blanks a string-shaped cell whose resolved text matches
// the configured null_values set or predicate (spec.md §6 `null_values`).
func applyNullValues(c rawcell.RawCell, resolveShared func(uint64) string, o *options) rawcell.RawCell {
	if o.nullValues == nil && o.nullPredicate == nil {
		return c
	}
	switch c.Kind {
	case rawcell.KindInlineString:
		if o.isNull(c.Str) {
			return rawcell.Blank()
		}
	case rawcell.KindSharedStringRef:
		if o.isNull(resolveShared(c.SharedIdx)) {
			return rawcell.Blank()
		}
	}
	return c
}

// runRowGate runs the row-gate decision, recovering a row_callback panic
// into a CancelledError (spec.md §5 Cancellation).
func runRowGate(cfg rowgate.Config, sheetLen, numCols int, isBlank func(row, col int) bool, rowCallback func(), sheetName string) (res rowgate.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = &CancelledError{Sheet: sheetName, Err: e}
			} else {
				err = &CancelledError{Sheet: sheetName, Err: fmt.Errorf("%v", r)}
			}
		}
	}()
	res = rowgate.Decide(cfg, sheetLen, numCols, isBlank, rowCallback)
	return res, nil
}

// resolveDType applies P5's override priority: by-name beats by-index
// beats the blanket dtype (spec.md §4.5 P5).
func resolveDType(o *options, index int, name string) *DType {
	if t, ok := o.dtypeByName[name]; ok {
		return &t
	}
	if t, ok := o.dtypeByIndex[index]; ok {
		return &t
	}
	return o.dtypeBlanket
}

func wrapHeaderErr(err error, sheetName string) error {
	switch e := err.(type) {
	case *header.LookupError:
		return &HeaderLookupError{Sheet: sheetName, LookupSize: e.LookupSize}
	case *header.MismatchError:
		return &HeaderMismatchError{Sheet: sheetName, Got: e.Got, Expected: e.Expected}
	default:
		return err
	}
}

func wrapConfigErr(err error, sheetName string) error {
	if e, ok := err.(*rowgate.ConfigError); ok {
		return &ConfigError{Sheet: sheetName, Reason: e.Reason}
	}
	return err
}
