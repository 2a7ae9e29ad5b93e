package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/xlgrid/internal/typedarray"
)

func TestValidate_Empty(t *testing.T) {
	require.NoError(t, Validate(nil))
}

func TestValidate_EqualLengthsPass(t *testing.T) {
	cols := []ColumnResult{
		{Name: "a", Array: typedarray.Array{Kind: typedarray.KindInt64, Valid: []bool{true, true}, Ints: []int64{1, 2}}},
		{Name: "b", Array: typedarray.Array{Kind: typedarray.KindString, Valid: []bool{true, true}, Strings: []string{"x", "y"}}},
	}
	require.NoError(t, Validate(cols))
}

func TestValidate_MismatchReportsOffendingColumn(t *testing.T) {
	cols := []ColumnResult{
		{Name: "a", Array: typedarray.Array{Kind: typedarray.KindInt64, Valid: []bool{true, true}, Ints: []int64{1, 2}}},
		{Name: "b", Array: typedarray.Array{Kind: typedarray.KindString, Valid: []bool{true}, Strings: []string{"x"}}},
	}
	err := Validate(cols)
	require.Error(t, err)
	var mismatch *LengthMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "b", mismatch.Name)
	assert.Equal(t, 1, mismatch.Got)
	assert.Equal(t, 2, mismatch.Expected)
}
