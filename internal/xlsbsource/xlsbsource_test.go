package xlsbsource

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/xlgrid/internal/rawcell"
	"github.com/javajack/xlgrid/internal/sst"
)

func TestDecodeCell_Blank(t *testing.T) {
	c, ok, err := decodeCell(record{id: recBlank}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rawcell.KindBlank, c.Kind)
}

func TestDecodeCell_Float(t *testing.T) {
	data := make([]byte, 16)
	bits := math.Float64bits(3.125)
	for i := 0; i < 8; i++ {
		data[8+i] = byte(bits >> (8 * i))
	}
	c, ok, err := decodeCell(record{id: recFloat, data: data}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rawcell.KindNumber, c.Kind)
	assert.InDelta(t, 3.125, c.Num, 1e-9)
}

func TestDecodeCell_Bool(t *testing.T) {
	data := make([]byte, 9)
	data[8] = 1
	c, ok, err := decodeCell(record{id: recBool, data: data}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rawcell.KindBoolean, c.Kind)
	assert.True(t, c.Bool)
}

func TestDecodeCell_SharedString(t *testing.T) {
	data := make([]byte, 12)
	data[8] = 7 // shared-string index 7, little-endian
	c, ok, err := decodeCell(record{id: recSharedStr, data: data}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rawcell.KindSharedStringRef, c.Kind)
	assert.Equal(t, uint64(7), c.SharedIdx)
}

func TestDecodeCell_InlineString(t *testing.T) {
	data := []byte{0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 'h', 0, 'i', 0}
	c, ok, err := decodeCell(record{id: recInlineStr, data: data}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rawcell.KindInlineString, c.Kind)
	assert.Equal(t, "hi", c.Str)
}

func TestDecodeCell_RkNumber(t *testing.T) {
	data := make([]byte, 12)
	// Integer RK: value 10, flags 0b10 packed in the low bits.
	rk := uint32(10<<2 | 0b10)
	data[8] = byte(rk)
	data[9] = byte(rk >> 8)
	data[10] = byte(rk >> 16)
	data[11] = byte(rk >> 24)
	c, ok, err := decodeCell(record{id: recNum, data: data}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rawcell.KindRkNumber, c.Kind)
}

func TestDecodeCell_TruncatedFloatErrors(t *testing.T) {
	_, _, err := decodeCell(record{id: recFloat, data: []byte{1, 2, 3}}, false)
	assert.Error(t, err)
}

func TestDecodeCell_UnknownIDYieldsNotOK(t *testing.T) {
	_, ok, err := decodeCell(record{id: 0x9999}, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

// rowRecord and floatCellRecord build the minimal byte framing Adapter.Next
// expects: BrtRowHdr carries the row index, BrtCellReal a column index,
// style index, and an 8-byte float.
func rowRecord(rowIdx uint32) []byte {
	data := []byte{byte(rowIdx), byte(rowIdx >> 8), byte(rowIdx >> 16), byte(rowIdx >> 24)}
	return rec(recRow, data)
}

func floatCellRecord(col int, styleIdx uint16, v float64) []byte {
	bits := math.Float64bits(v)
	data := make([]byte, 16)
	data[0] = byte(col)
	data[1] = byte(col >> 8)
	data[2] = byte(col >> 16)
	data[3] = byte(col >> 24)
	data[4] = byte(styleIdx)
	data[5] = byte(styleIdx >> 8)
	for i := 0; i < 8; i++ {
		data[8+i] = byte(bits >> (8 * i))
	}
	return rec(recFloat, data)
}

func TestAdapter_Next_StreamsRowAndColFromRecords(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(rowRecord(0))
	buf.Write(floatCellRecord(0, 0, 42))
	buf.Write(rec(recSheetDataEnd, nil))

	a := &Adapter{
		rc:      io.NopCloser(&buf),
		scanner: newRecordScanner(&buf, cellRecordIDs),
		shared:  sst.New(nil),
		styles:  styleTable{},
		curRow:  -1,
	}

	ev, ok, err := a.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, ev.Row)
	assert.Equal(t, 0, ev.Col)
	assert.Equal(t, rawcell.KindNumber, ev.Cell.Kind)
	assert.InDelta(t, 42, ev.Cell.Num, 1e-9)

	_, ok, err = a.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}
