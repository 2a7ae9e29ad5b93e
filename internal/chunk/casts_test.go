package chunk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRkToFloat64_PlainDouble(t *testing.T) {
	// 2.0 as float64 has its high 32 bits directly encodable as RK with the
	// low two flag bits cleared.
	high := uint32(math.Float64bits(2.0) >> 32)
	got := RkToFloat64(high)
	assert.Equal(t, 2.0, got)
}

func TestRkToFloat64_IntegerEncoding(t *testing.T) {
	// bit1 set => remaining bits (shifted left 2) are a plain int32.
	v := RkToFloat64(uint32(10<<2 | 0b10))
	assert.Equal(t, 10.0, v)
}

func TestRkToFloat64_Div100(t *testing.T) {
	v := RkToFloat64(uint32(1234<<2 | 0b11)) // int-encoded, div100
	assert.Equal(t, 12.34, v)
}

func TestFloatToMsWindowsEpoch_SerialDate(t *testing.T) {
	ms := FloatToMsWindowsEpoch(25569) // epoch day itself -> 1970-01-01
	assert.Equal(t, int64(0), ms)
}

func TestFloatToMsWindowsEpoch_TimeOfDayOnly(t *testing.T) {
	ms := FloatToMsWindowsEpoch(0.5) // noon
	assert.Equal(t, int64(12*60*60*1000), ms)
}

func TestFloatIsIntegerAt(t *testing.T) {
	assert.True(t, FloatIsIntegerAt([]float64{1.0, 2.0, 3.0}, 6))
	assert.False(t, FloatIsIntegerAt([]float64{1.5, 2.0}, 6))
	assert.True(t, FloatIsIntegerAt([]float64{1.0000001}, 3))
}
