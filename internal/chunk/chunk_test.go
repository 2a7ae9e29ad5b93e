package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/xlgrid/internal/rawcell"
	"github.com/javajack/xlgrid/internal/sst"
)

func TestCanAppend_SameShapeSameTemporal(t *testing.T) {
	c := New(0, rawcell.ShapeF64, true)
	assert.True(t, c.CanAppend(rawcell.ShapeF64, true))
	assert.False(t, c.CanAppend(rawcell.ShapeF64, false))
	assert.False(t, c.CanAppend(rawcell.ShapeRk32, true))
}

func TestCanAppend_NonNumericShapesIgnoreTemporal(t *testing.T) {
	c := New(0, rawcell.ShapeInlineStr, false)
	assert.True(t, c.CanAppend(rawcell.ShapeInlineStr, true))
}

func TestAppendAndLen(t *testing.T) {
	c := New(0, rawcell.ShapeF64, false)
	c.Append(rawcell.Number(1.5, false))
	c.Append(rawcell.Number(2.5, false))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []float64{1.5, 2.5}, c.Floats)
}

func TestTruncateTo(t *testing.T) {
	c := New(0, rawcell.ShapeInlineStr, false)
	c.Append(rawcell.InlineString("a"))
	c.Append(rawcell.InlineString("b"))
	c.Append(rawcell.InlineString("c"))
	c.TruncateTo(1)
	assert.Equal(t, []string{"a"}, c.Strings)

	null := NewNull(0, 5)
	null.TruncateTo(2)
	assert.Equal(t, 2, null.NullCount)
}

func TestLogicalType(t *testing.T) {
	assert.Equal(t, LogicalNull, NewNull(0, 3).LogicalType())
	assert.Equal(t, LogicalNumeric, New(0, rawcell.ShapeF64, false).LogicalType())
	assert.Equal(t, LogicalTemporal, New(0, rawcell.ShapeF64, true).LogicalType())
	assert.Equal(t, LogicalString, New(0, rawcell.ShapeInlineStr, false).LogicalType())
}

func TestPrepare_RkExpandsNonTemporal(t *testing.T) {
	c := New(0, rawcell.ShapeRk32, false)
	c.Append(rawcell.RkNumber(0)) // 0 encodes float64(0)
	arr := c.Prepare(sst.New(nil))
	require.Equal(t, 1, arr.Len())
	assert.True(t, arr.Valid[0])
	assert.Equal(t, 0.0, arr.Floats[0])
}

func TestPrepare_SharedIdxResolvesThroughTable(t *testing.T) {
	shared := sst.New([]string{"foo", "bar"})
	c := New(0, rawcell.ShapeSharedIdx, false)
	c.Append(rawcell.SharedStringRef(1))
	arr := c.Prepare(shared)
	require.Equal(t, 1, arr.Len())
	assert.Equal(t, "bar", arr.Strings[0])
}

func TestPrepare_TemporalFloatConvertsToTimestamp(t *testing.T) {
	c := New(0, rawcell.ShapeF64, true)
	c.Append(rawcell.Number(44562, true)) // serial date
	arr := c.Prepare(sst.New(nil))
	require.Equal(t, 1, arr.Len())
	assert.True(t, arr.Valid[0])
	assert.NotZero(t, arr.TimesMs[0])
}

func TestPrepare_NullRunProducesAllInvalid(t *testing.T) {
	c := NewNull(0, 3)
	arr := c.Prepare(sst.New(nil))
	require.Equal(t, 3, arr.Len())
	for _, v := range arr.Valid {
		assert.False(t, v)
	}
}
