package rowgate

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFilterColumns_FirstMatchWins(t *testing.T) {
	names := []string{"id", "status_a", "status_b"}
	cols, err := ResolveFilterColumns([]*regexp.Regexp{regexp.MustCompile(`^status`)}, names)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, cols)
}

func TestResolveFilterColumns_NoMatchIsConfigError(t *testing.T) {
	_, err := ResolveFilterColumns([]*regexp.Regexp{regexp.MustCompile(`^zzz$`)}, []string{"id"})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestValidatePerPair_LengthMismatch(t *testing.T) {
	err := ValidatePerPair([]bool{true}, 3)
	require.Error(t, err)
}

func TestValidatePerPair_ExactLengthOK(t *testing.T) {
	assert.NoError(t, ValidatePerPair([]bool{true, false}, 3))
	assert.NoError(t, ValidatePerPair(nil, 0))
}

func mkIsBlank(blank map[[2]int]bool) func(int, int) bool {
	return func(row, col int) bool { return blank[[2]int{row, col}] }
}

func TestDecide_DefaultNonEmptyCriterion(t *testing.T) {
	// 3 rows, col 0 blank on row 1 only.
	blank := map[[2]int]bool{{1, 0}: true}
	cfg := Config{BodyStart: 0}
	res := Decide(cfg, 3, 1, mkIsBlank(blank), nil)
	assert.True(t, res.Dropped[1])
	assert.False(t, res.Dropped[0])
	assert.False(t, res.Dropped[2])
	assert.Equal(t, 2, res.Admitted)
}

func TestDecide_BodyStartDropsLeadingRows(t *testing.T) {
	cfg := Config{BodyStart: 2}
	res := Decide(cfg, 4, 1, mkIsBlank(nil), nil)
	assert.True(t, res.Dropped[0])
	assert.True(t, res.Dropped[1])
	assert.False(t, res.Dropped[2])
	assert.False(t, res.Dropped[3])
}

func TestDecide_AndStrategy(t *testing.T) {
	// row 0: both cols present, row 1: only col0, row 2: only col1.
	blank := map[[2]int]bool{
		{1, 1}: true,
		{2, 0}: true,
	}
	cfg := Config{FilterCols: []int{0, 1}, Strategy: StrategyAnd}
	res := Decide(cfg, 3, 2, mkIsBlank(blank), nil)
	assert.False(t, res.Dropped[0])
	assert.True(t, res.Dropped[1])
	assert.True(t, res.Dropped[2])
}

func TestDecide_OrStrategy(t *testing.T) {
	blank := map[[2]int]bool{
		{1, 1}: true,
		{2, 0}: true,
		{2, 1}: true,
	}
	cfg := Config{FilterCols: []int{0, 1}, Strategy: StrategyOr}
	res := Decide(cfg, 3, 2, mkIsBlank(blank), nil)
	assert.False(t, res.Dropped[0])
	assert.False(t, res.Dropped[1]) // col0 present
	assert.True(t, res.Dropped[2])  // both blank
}

func TestDecide_TakeRowsCountsAdmittedRows(t *testing.T) {
	// 5 candidate rows, row 1 is blank and would be rejected by the
	// default non-empty criterion; take_rows=2 should count only
	// admitted rows, so row 2 (the 2nd admitted row) should still pass.
	blank := map[[2]int]bool{{1, 0}: true}
	cfg := Config{TakeRows: 2}
	res := Decide(cfg, 5, 1, mkIsBlank(blank), nil)
	assert.False(t, res.Dropped[0])
	assert.True(t, res.Dropped[1]) // blank, rejected regardless
	assert.False(t, res.Dropped[2])
	assert.True(t, res.Dropped[3]) // cap reached after 2 admissions
	assert.True(t, res.Dropped[4])
	assert.Equal(t, 2, res.Admitted)
}

func TestDecide_CallbackInvokedOncePerAdmittedRow(t *testing.T) {
	count := 0
	cfg := Config{}
	res := Decide(cfg, 3, 1, mkIsBlank(nil), func() { count++ })
	assert.Equal(t, res.Admitted, count)
	assert.Equal(t, 3, count)
}

func TestDecide_KeepEmptyAdmitsBlankRows(t *testing.T) {
	blank := map[[2]int]bool{{0, 0}: true, {1, 0}: true}
	cfg := Config{KeepEmpty: true}
	res := Decide(cfg, 2, 1, mkIsBlank(blank), nil)
	assert.Equal(t, 2, res.Admitted)
}
