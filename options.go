package xlgrid

import (
	"regexp"

	"github.com/javajack/xlgrid/internal/convert"
	"github.com/javajack/xlgrid/internal/header"
	"github.com/javajack/xlgrid/internal/rowgate"
)

// Sheet addresses a worksheet by zero-based index or by exact name (spec.md
// §6 Sheet addressing).
type Sheet struct {
	byName bool
	index  int
	name   string
}

// SheetIndex addresses a worksheet by its zero-based position.
func SheetIndex(i int) Sheet { return Sheet{index: i} }

// SheetName addresses a worksheet by its exact name.
func SheetName(name string) Sheet { return Sheet{byName: true, name: name} }

func (s Sheet) String() string {
	if s.byName {
		return s.name
	}
	return "#" + itoa(s.index)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	p := len(buf)
	for i > 0 {
		p--
		buf[p] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		p--
		buf[p] = '-'
	}
	return string(buf[p:])
}

// DType names a final column type for a P5 dtype override.
type DType int

const (
	DTypeFloat64 DType = iota
	DTypeInt64
	DTypeTimestampMs
	DTypeString
	DTypeNull
)

// headerConfig captures the header option (spec.md §6 `header`) before it
// is resolved into a header.Spec.
type headerConfig struct {
	set      bool
	present  bool
	rows     int
	explicit []string
}

// options is the resolved configuration for one Read/ReadFile call.
type options struct {
	header header.Mode
	headerCfg headerConfig

	dtypeBlanket *DType
	dtypeByIndex map[int]DType
	dtypeByName  map[string]DType

	skipCols map[int]bool

	skipRows            int
	skipRowsAfterHeader int
	takeRows            int
	takeRowsNonEmpty     bool

	lookupHead    *regexp.Regexp
	lookupHeadCol int
	lookupSize    int

	rowFilters         []*regexp.Regexp
	rowFiltersStrategy rowgate.Strategy
	rowFiltersPerPair  []bool

	floatPrecision  int
	datetimeFormats []string
	conflictResolve convert.Strategy

	nullValues    map[string]bool
	nullPredicate func(string) bool

	rowCallback func()
}

func defaultOptions() *options {
	return &options{
		header:              header.ModePresent,
		headerCfg:           headerConfig{set: true, present: true, rows: 1},
		skipCols:            map[int]bool{},
		takeRows:            0,
		takeRowsNonEmpty:    true,
		lookupHeadCol:       -1,
		lookupSize:          header.DefaultLookupSize,
		rowFiltersStrategy:  rowgate.StrategyAnd,
		floatPrecision:      6,
		conflictResolve:     convert.StrategyNo,
	}
}

// Option configures a Read/ReadFile call.
type Option func(*options)

// WithHeader configures a single-row (or N-row, via WithHeaderRows) present
// header. This is the `header=true` case of spec.md §6.
func WithHeader() Option {
	return func(o *options) {
		o.header = header.ModePresent
		o.headerCfg = headerConfig{set: true, present: true, rows: 1}
	}
}

// WithHeaderRows configures a present header spanning N rows (N>=1). N==0
// is equivalent to WithNoHeader.
func WithHeaderRows(n int) Option {
	return func(o *options) {
		if n <= 0 {
			o.header = header.ModeAbsent
			o.headerCfg = headerConfig{set: true}
			return
		}
		o.header = header.ModePresent
		o.headerCfg = headerConfig{set: true, present: true, rows: n}
	}
}

// WithNoHeader configures the Absent case: columns are named
// "Unnamed: 0".."Unnamed: k-1".
func WithNoHeader() Option {
	return func(o *options) {
		o.header = header.ModeAbsent
		o.headerCfg = headerConfig{set: true}
	}
}

// WithExplicitHeader assigns names directly, skipping header discovery
// entirely. Fails at read time with HeaderMismatchError if the count
// differs from the surviving column count.
func WithExplicitHeader(names ...string) Option {
	return func(o *options) {
		o.header = header.ModeExplicit
		o.headerCfg = headerConfig{set: true, explicit: append([]string(nil), names...)}
	}
}

// WithDType sets a blanket dtype applied to every column (spec.md §6
// `dtypes`).
func WithDType(t DType) Option {
	return func(o *options) { o.dtypeBlanket = &t }
}

// WithDTypeByIndex overrides a single column's dtype by 0-based surviving
// column position.
func WithDTypeByIndex(index int, t DType) Option {
	return func(o *options) {
		if o.dtypeByIndex == nil {
			o.dtypeByIndex = map[int]DType{}
		}
		o.dtypeByIndex[index] = t
	}
}

// WithDTypeByName overrides a single column's dtype by its resolved header
// name.
func WithDTypeByName(name string, t DType) Option {
	return func(o *options) {
		if o.dtypeByName == nil {
			o.dtypeByName = map[string]DType{}
		}
		o.dtypeByName[name] = t
	}
}

// WithSkipCols omits the given 0-based spreadsheet column indices entirely;
// their cells never enter any chunk.
func WithSkipCols(indices ...int) Option {
	return func(o *options) {
		for _, i := range indices {
			o.skipCols[i] = true
		}
	}
}

// WithSkipRows discards the given number of rows at the very top, before
// header lookup begins.
func WithSkipRows(n int) Option {
	return func(o *options) { o.skipRows = n }
}

// WithSkipRowsAfterHeader discards rows after the header, before the body.
func WithSkipRowsAfterHeader(n int) Option {
	return func(o *options) { o.skipRowsAfterHeader = n }
}

// WithTakeRows caps the number of rows admitted to the body.
func WithTakeRows(n int) Option {
	return func(o *options) { o.takeRows = n }
}

// WithTakeRowsNonEmpty controls whether blank-only rows are rejected by the
// default non-empty gate when no row filters are configured. Default true;
// pass false to admit blank rows too.
func WithTakeRowsNonEmpty(nonEmpty bool) Option {
	return func(o *options) { o.takeRowsNonEmpty = nonEmpty }
}

// WithLookupHead sets a regex pattern used to locate the header's start row
// (spec.md §4.4 step 4).
func WithLookupHead(pattern *regexp.Regexp) Option {
	return func(o *options) {
		o.lookupHead = pattern
		o.lookupHeadCol = -1
	}
}

// WithLookupHeadColumn sets an integer column used to locate the header's
// start row: the first non-empty cell in that column.
func WithLookupHeadColumn(col int) Option {
	return func(o *options) {
		o.lookupHead = nil
		o.lookupHeadCol = col
	}
}

// WithLookupSize sets the header-lookup horizon (default 30).
func WithLookupSize(n int) Option {
	return func(o *options) { o.lookupSize = n }
}

// WithRowFilters sets one or more regexes naming columns whose cells must
// be non-blank for a row to be admitted.
func WithRowFilters(patterns ...*regexp.Regexp) Option {
	return func(o *options) { o.rowFilters = patterns }
}

// WithRowFiltersAnd requires every row filter to match (default).
func WithRowFiltersAnd() Option {
	return func(o *options) { o.rowFiltersStrategy = rowgate.StrategyAnd }
}

// WithRowFiltersOr requires at least one row filter to match.
func WithRowFiltersOr() Option {
	return func(o *options) { o.rowFiltersStrategy = rowgate.StrategyOr }
}

// WithRowFiltersPerPair folds filters left-to-right, combining filter i and
// i+1 with AND when perPair[i] is true, OR otherwise. len(perPair) must
// equal len(filters)-1 or the read fails with ConfigError.
func WithRowFiltersPerPair(perPair ...bool) Option {
	return func(o *options) {
		o.rowFiltersStrategy = rowgate.StrategyPerPair
		o.rowFiltersPerPair = perPair
	}
}

// WithFloatPrecision sets the number of decimals for P3 float-to-int
// narrowing. Negative disables narrowing ("unset").
func WithFloatPrecision(prec int) Option {
	return func(o *options) { o.floatPrecision = prec }
}

// WithDatetimeFormats sets the strftime-like patterns tried in order when
// parsing strings as timestamps (P4 temporal/all strategies).
func WithDatetimeFormats(formats ...string) Option {
	return func(o *options) { o.datetimeFormats = formats }
}

// WithConflictResolve sets the P4 conflict-resolution strategy.
func WithConflictResolve(strategy convert.Strategy) Option {
	return func(o *options) { o.conflictResolve = strategy }
}

// WithNullValues lists literal strings that should become Blank during
// reading, in addition to genuinely empty cells.
func WithNullValues(values ...string) Option {
	return func(o *options) {
		if o.nullValues == nil {
			o.nullValues = map[string]bool{}
		}
		for _, v := range values {
			o.nullValues[v] = true
		}
	}
}

// WithNullValuesFunc sets a predicate used alongside (or instead of)
// WithNullValues to decide whether a string cell becomes Blank.
func WithNullValuesFunc(pred func(string) bool) Option {
	return func(o *options) { o.nullPredicate = pred }
}

// WithRowCallback registers a zero-arg callback invoked once per admitted
// body row. The callback may panic to cancel the read; the panic is
// recovered and surfaced as CancelledError.
func WithRowCallback(cb func()) Option {
	return func(o *options) { o.rowCallback = cb }
}

func (o *options) isNull(s string) bool {
	if o.nullValues != nil && o.nullValues[s] {
		return true
	}
	if o.nullPredicate != nil {
		return o.nullPredicate(s)
	}
	return false
}
