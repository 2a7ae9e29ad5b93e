package xlsbsource

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordScanner_OneByteIDAndSize(t *testing.T) {
	// id=0x01 (high bit clear so 1 byte), size=3, payload "xyz".
	buf := []byte{0x01, 0x03, 'x', 'y', 'z'}
	sc := newRecordScanner(bytes.NewReader(buf), nil)
	rec, ok, err := sc.next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, rec.id)
	assert.Equal(t, []byte("xyz"), rec.data)

	_, ok, err = sc.next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordScanner_TwoByteID(t *testing.T) {
	// First byte high bit set => a second id byte follows; id = b0 | b1<<8.
	buf := []byte{0x9C, 0x01, 0x00}
	sc := newRecordScanner(bytes.NewReader(buf), nil)
	rec, ok, err := sc.next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0x9C|0x01<<8, rec.id)
	assert.Len(t, rec.data, 0)
}

func TestRecordScanner_MultiByteSize(t *testing.T) {
	// size = 200 needs two varint bytes: 200 = 0xC8 -> low7=0x48 with
	// continuation bit set, then high byte 0x01 (200 = 0x48 | 1<<7).
	payload := bytes.Repeat([]byte{'a'}, 200)
	buf := append([]byte{0x01, 0xC8, 0x01}, payload...)
	sc := newRecordScanner(bytes.NewReader(buf), nil)
	rec, ok, err := sc.next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 200, len(rec.data))
}

func TestRecordScanner_FilterSkipsUnwantedRecords(t *testing.T) {
	// Record 0x02 (skipped) then record 0x01 (wanted), each with payload.
	buf := []byte{0x02, 0x01, 'n', 0x01, 0x01, 'y'}
	sc := newRecordScanner(bytes.NewReader(buf), map[int]bool{0x01: true})
	rec, ok, err := sc.next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, rec.id)
	assert.Equal(t, []byte("y"), rec.data)
}

func TestRecordScanner_EmptyStreamEndsCleanly(t *testing.T) {
	sc := newRecordScanner(bytes.NewReader(nil), nil)
	_, ok, err := sc.next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseXstr_DecodesAndAdvancesOffset(t *testing.T) {
	// "hi" as XLWideString: 4-byte length (2), then UTF-16LE code units.
	data := []byte{2, 0, 0, 0, 'h', 0, 'i', 0}
	s, off, err := parseXstr(data, 0)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	assert.Equal(t, 8, off)
}

func TestParseXstr_NullSentinel(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	s, off, err := parseXstr(data, 0)
	require.NoError(t, err)
	assert.Equal(t, "", s)
	assert.Equal(t, 4, off)
}

func TestParseXstr_TruncatedHeaderErrors(t *testing.T) {
	_, _, err := parseXstr([]byte{1, 2}, 0)
	assert.Error(t, err)
}
