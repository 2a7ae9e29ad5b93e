package xlsbsource

import (
	"archive/zip"
	"fmt"
	"io"
	"math"

	"github.com/javajack/xlgrid/internal/rawcell"
	"github.com/javajack/xlgrid/internal/source"
	"github.com/javajack/xlgrid/internal/sst"
)

// Workbook holds the parts of an XLSB archive shared across sheets: the
// sheet directory, the shared-strings table, and the style-to-temporal
// lookup (spec.md §2 item 1, §5 "shared-strings table is read-only after
// load").
type Workbook struct {
	zr      *zip.Reader
	sheets  []sheetRef
	shared  *sst.Table
	styles  styleTable
}

// Open reads the archive's fixed parts (sheet directory, shared strings,
// styles) eagerly, matching the reference implementation's cached
// properties, but without the caller needing a context manager.
func Open(r io.ReaderAt, size int64) (*Workbook, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("xlsbsource: %w", err)
	}

	wbFile, err := zr.Open("xl/workbook.bin")
	if err != nil {
		return nil, fmt.Errorf("xlsbsource: not an xlsb workbook: %w", err)
	}
	sheetEntries, err := loadSheetList(wbFile)
	wbFile.Close()
	if err != nil {
		return nil, fmt.Errorf("xlsbsource: reading workbook.bin: %w", err)
	}

	relsFile, err := zr.Open("xl/_rels/workbook.bin.rels")
	if err != nil {
		return nil, fmt.Errorf("xlsbsource: %w", err)
	}
	rels, err := loadRelationships(relsFile)
	relsFile.Close()
	if err != nil {
		return nil, fmt.Errorf("xlsbsource: reading workbook.bin.rels: %w", err)
	}

	sheets := make([]sheetRef, 0, len(sheetEntries))
	for _, e := range sheetEntries {
		target, ok := rels[e.RelID]
		if !ok {
			continue
		}
		sheets = append(sheets, sheetRef{Name: e.Name, Path: "xl/" + target})
	}

	var sharedValues []string
	if f, err := zr.Open("xl/sharedStrings.bin"); err == nil {
		sharedValues, err = loadSharedStrings(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("xlsbsource: reading sharedStrings.bin: %w", err)
		}
	}

	var styles styleTable
	if f, err := zr.Open("xl/styles.bin"); err == nil {
		styles, err = loadStyles(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("xlsbsource: reading styles.bin: %w", err)
		}
	}

	return &Workbook{
		zr:     zr,
		sheets: sheets,
		shared: sst.New(sharedValues),
		styles: styles,
	}, nil
}

// SheetNames returns declared sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name
	}
	return names
}

// OpenSheetIndex opens the sheet at the given zero-based position.
func (w *Workbook) OpenSheetIndex(index int) (*Adapter, error) {
	if index < 0 || index >= len(w.sheets) {
		return nil, fmt.Errorf("xlsbsource: sheet index %d out of range", index)
	}
	return w.openSheet(w.sheets[index])
}

// OpenSheetName opens the sheet with the given exact name.
func (w *Workbook) OpenSheetName(name string) (*Adapter, error) {
	for _, s := range w.sheets {
		if s.Name == name {
			return w.openSheet(s)
		}
	}
	return nil, fmt.Errorf("xlsbsource: sheet %q not found", name)
}

func (w *Workbook) openSheet(ref sheetRef) (*Adapter, error) {
	f, err := w.zr.Open(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("xlsbsource: opening sheet %q: %w", ref.Name, err)
	}
	return &Adapter{
		rc:      f,
		scanner: newRecordScanner(f, cellRecordIDs),
		shared:  w.shared,
		styles:  w.styles,
		curRow:  -1,
	}, nil
}

var cellRecordIDs = map[int]bool{
	recRow: true, recBlank: true, recNum: true, recBoolErr: true,
	recBool: true, recFloat: true, recInlineStr: true, recSharedStr: true,
	recFormulaString: true, recFormulaFloat: true, recFormulaBool: true,
	recFormulaBoolErr: true, recSheetDataEnd: true,
}

// Adapter streams (row, col, cell) events for one already-opened worksheet
// part, implementing source.Adapter.
type Adapter struct {
	rc      io.ReadCloser
	scanner *recordScanner
	shared  *sst.Table
	styles  styleTable
	curRow  int
	done    bool
}

// Next implements source.Adapter.
func (a *Adapter) Next() (source.Event, bool, error) {
	if a.done {
		return source.Event{}, false, nil
	}
	for {
		rec, ok, err := a.scanner.next()
		if err != nil {
			return source.Event{}, false, fmt.Errorf("xlsbsource: %w", err)
		}
		if !ok || rec.id == recSheetDataEnd {
			a.done = true
			return source.Event{}, false, nil
		}
		if rec.id == recRow {
			if len(rec.data) >= 4 {
				a.curRow = int(le32(rec.data[0:4]))
			}
			continue
		}
		if len(rec.data) < 6 {
			continue
		}
		col := int(le32(rec.data[0:4]))
		styleIdx := le16(rec.data[4:6])
		temporal := a.styles.isTemporal(styleIdx)

		cell, ok, err := decodeCell(rec, temporal)
		if err != nil {
			return source.Event{}, false, fmt.Errorf("xlsbsource: row %d col %d: %w", a.curRow, col, err)
		}
		if !ok {
			continue
		}
		return source.Event{Row: a.curRow, Col: col, Cell: cell}, true, nil
	}
}

func decodeCell(rec record, temporal bool) (rawcell.RawCell, bool, error) {
	switch rec.id {
	case recBlank:
		return rawcell.Blank(), true, nil
	case recFloat, recFormulaFloat:
		if len(rec.data) < 16 {
			return rawcell.RawCell{}, false, fmt.Errorf("truncated float cell")
		}
		bits := le64(rec.data[8:16])
		return rawcell.Number(math.Float64frombits(bits), temporal), true, nil
	case recBool, recFormulaBool:
		if len(rec.data) < 9 {
			return rawcell.RawCell{}, false, fmt.Errorf("truncated bool cell")
		}
		return rawcell.Boolean(rec.data[8] != 0), true, nil
	case recBoolErr, recFormulaBoolErr:
		if len(rec.data) < 9 {
			return rawcell.RawCell{}, false, fmt.Errorf("truncated error cell")
		}
		return rawcell.ErrorCode(rec.data[8]), true, nil
	case recSharedStr:
		if len(rec.data) < 12 {
			return rawcell.RawCell{}, false, fmt.Errorf("truncated shared-string cell")
		}
		return rawcell.SharedStringRef(uint64(le32(rec.data[8:12]))), true, nil
	case recInlineStr, recFormulaString:
		if len(rec.data) < 12 {
			return rawcell.RawCell{}, false, fmt.Errorf("truncated string cell")
		}
		n := le32(rec.data[8:12])
		end := 12 + int(n)*2
		if end > len(rec.data) {
			end = len(rec.data)
		}
		s, err := decodeUTF16LE(rec.data[12:end])
		if err != nil {
			return rawcell.RawCell{}, false, err
		}
		return rawcell.InlineString(s), true, nil
	case recNum:
		// RK-packed numeric. Per spec, RK always expands to a non-temporal
		// F64Run during P1, so no temporal flag is carried here.
		if len(rec.data) < 12 {
			return rawcell.RawCell{}, false, fmt.Errorf("truncated rk cell")
		}
		return rawcell.RkNumber(le32(rec.data[8:12])), true, nil
	default:
		return rawcell.RawCell{}, false, nil
	}
}

// ResolveShared implements source.Adapter.
func (a *Adapter) ResolveShared(idx uint64) string { return a.shared.Get(idx) }

// SharedTable implements source.Adapter. The XLSB shared-strings part is
// loaded once at Open, so the table never changes across the read.
func (a *Adapter) SharedTable() *sst.Table { return a.shared }

// Close implements source.Adapter.
func (a *Adapter) Close() error { return a.rc.Close() }
