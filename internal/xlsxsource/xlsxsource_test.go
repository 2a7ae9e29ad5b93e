package xlsxsource

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/javajack/xlgrid/internal/rawcell"
)

func newWorkbookBytes(t *testing.T, fill func(f *excelize.File, sheet string)) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	fill(f, sheet)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestOpen_SheetNamesAndIndexLookup(t *testing.T) {
	r := newWorkbookBytes(t, func(f *excelize.File, sheet string) {
		f.SetCellValue(sheet, "A1", "hello")
	})
	wb, err := Open(r)
	require.NoError(t, err)
	defer wb.f.Close()

	names := wb.SheetNames()
	require.Len(t, names, 1)

	a, err := wb.OpenSheetIndex(0)
	require.NoError(t, err)
	assert.Equal(t, names[0], a.sheet)

	_, err = wb.OpenSheetIndex(5)
	assert.Error(t, err)

	_, err = wb.OpenSheetName("nope")
	assert.Error(t, err)
}

func TestAdapter_Next_StreamsCellsInRowMajorOrder(t *testing.T) {
	r := newWorkbookBytes(t, func(f *excelize.File, sheet string) {
		f.SetCellValue(sheet, "A1", "alice")
		f.SetCellValue(sheet, "B1", 42)
	})
	wb, err := Open(r)
	require.NoError(t, err)
	defer wb.f.Close()

	a, err := wb.OpenSheetIndex(0)
	require.NoError(t, err)

	ev, ok, err := a.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, ev.Row)
	assert.Equal(t, 0, ev.Col)

	ev, ok, err = a.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, ev.Col)

	_, ok, err = a.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeCell_EmptyRawIsBlank(t *testing.T) {
	r := newWorkbookBytes(t, func(f *excelize.File, sheet string) {
		f.SetCellValue(sheet, "A1", "x")
	})
	wb, err := Open(r)
	require.NoError(t, err)
	defer wb.f.Close()
	a, err := wb.OpenSheetIndex(0)
	require.NoError(t, err)

	c, err := a.decodeCell("Z99", "")
	require.NoError(t, err)
	assert.Equal(t, rawcell.KindBlank, c.Kind)
}

func TestDecodeCell_NumberDispatchesOnCellType(t *testing.T) {
	r := newWorkbookBytes(t, func(f *excelize.File, sheet string) {
		f.SetCellValue(sheet, "A1", 3.5)
	})
	wb, err := Open(r)
	require.NoError(t, err)
	defer wb.f.Close()
	a, err := wb.OpenSheetIndex(0)
	require.NoError(t, err)

	c, err := a.decodeCell("A1", "3.5")
	require.NoError(t, err)
	assert.Equal(t, rawcell.KindNumber, c.Kind)
	assert.InDelta(t, 3.5, c.Num, 1e-9)
}

func TestDecodeCell_BoolDispatch(t *testing.T) {
	r := newWorkbookBytes(t, func(f *excelize.File, sheet string) {
		f.SetCellValue(sheet, "A1", true)
	})
	wb, err := Open(r)
	require.NoError(t, err)
	defer wb.f.Close()
	a, err := wb.OpenSheetIndex(0)
	require.NoError(t, err)

	c, err := a.decodeCell("A1", "1")
	require.NoError(t, err)
	assert.True(t, c.Bool)
}

func TestSharedTable_FreezesAndCaches(t *testing.T) {
	r := newWorkbookBytes(t, func(f *excelize.File, sheet string) {
		f.SetCellValue(sheet, "A1", "alice")
	})
	wb, err := Open(r)
	require.NoError(t, err)
	defer wb.f.Close()
	a, err := wb.OpenSheetIndex(0)
	require.NoError(t, err)

	for {
		_, ok, err := a.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}

	tbl1 := a.SharedTable()
	tbl2 := a.SharedTable()
	assert.Same(t, tbl1, tbl2)
}

func TestIsTemporalCell_PlainNumberIsNotTemporal(t *testing.T) {
	r := newWorkbookBytes(t, func(f *excelize.File, sheet string) {
		f.SetCellValue(sheet, "A1", 42)
	})
	wb, err := Open(r)
	require.NoError(t, err)
	defer wb.f.Close()
	a, err := wb.OpenSheetIndex(0)
	require.NoError(t, err)

	temporal, err := a.isTemporalCell("A1")
	require.NoError(t, err)
	assert.False(t, temporal)
}
