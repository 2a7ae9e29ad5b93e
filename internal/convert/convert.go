// Package convert implements the prepare/convert engine: per-column type
// reconciliation, temporal conversion, RkNumber expansion, shared-string
// materialization, and conflict resolution (spec.md §4.5 P1-P4).
package convert

import (
	"fmt"
	"strconv"
	"time"

	"github.com/javajack/xlgrid/internal/chunk"
	"github.com/javajack/xlgrid/internal/series"
	"github.com/javajack/xlgrid/internal/sst"
	"github.com/javajack/xlgrid/internal/typedarray"
)

// Strategy is the P4 conflict-resolve policy (spec.md §4.5 P4).
type Strategy string

const (
	StrategyNo       Strategy = "no"
	StrategyTemporal Strategy = "temporal"
	StrategyNumeric  Strategy = "numeric"
	StrategyAll      Strategy = "all"
)

// Options configures P3 narrowing and P4 conflict resolution for one read.
type Options struct {
	// FloatPrecision < 0 disables P3 narrowing ("unset", spec.md §4.5 P3).
	// The default (matching the reference implementation) is 6.
	FloatPrecision  int
	DatetimeFormats []string
	ConflictResolve Strategy
}

// DefaultOptions matches the reference implementation's defaults.
func DefaultOptions() Options {
	return Options{FloatPrecision: 6, ConflictResolve: StrategyNo}
}

// preparedChunk pairs a materialized chunk array with its logical type, so
// P4 can group by type without re-deriving it from the array's Kind (a
// temporal chunk and a plain numeric chunk both land in KindFloat64/
// KindTimestampMs territory, but the grouping happens on the *source*
// chunk's type per spec.md §4.5 P4, before any coercion runs).
type preparedChunk struct {
	arr  typedarray.Array
	kind chunk.LogicalType
}

// Column runs P1-P4 over one column's sealed chunk list and returns the
// materialized, homogeneous array plus any recovered warnings (P4 fallback
// to "no" is recovered locally per spec.md §7, never an error).
func Column(s *series.ColumnSeries, shared *sst.Table, opts Options) (typedarray.Array, []string) {
	if len(s.Chunks) == 0 {
		return typedarray.Nulls(typedarray.KindNull, 0), nil
	}

	prepared := make([]preparedChunk, len(s.Chunks))
	for i, c := range s.Chunks {
		prepared[i] = preparedChunk{arr: c.Prepare(shared), kind: c.LogicalType()}
	}

	var hasNumeric, hasTemporal, hasString bool
	for _, p := range prepared {
		switch p.kind {
		case chunk.LogicalNumeric:
			hasNumeric = true
		case chunk.LogicalTemporal:
			hasTemporal = true
		case chunk.LogicalString:
			hasString = true
		}
	}

	distinct := boolCount(hasNumeric, hasTemporal, hasString)
	var warnings []string

	if distinct <= 1 {
		// No conflict: every non-null chunk already shares one logical
		// type; just concatenate (casting null chunks to match). The
		// target type is the column's dominant_shape (spec.md §4.2); when
		// null runs outnumber the values, the one non-null type present is
		// used instead, so only an entirely-null column gets the null type.
		dominant := s.DominantShape()
		if dominant == chunk.LogicalNull {
			switch {
			case hasNumeric:
				dominant = chunk.LogicalNumeric
			case hasTemporal:
				dominant = chunk.LogicalTemporal
			case hasString:
				dominant = chunk.LogicalString
			}
		}
		return finishNoConflict(prepared, dominant, opts), warnings
	}

	resolved, ok, warn := resolveConflict(prepared, opts)
	if warn != "" {
		warnings = append(warnings, warn)
	}
	if !ok {
		return stringifyAll(prepared), warnings
	}
	return resolved, warnings
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// logicalToKind maps a chunk's coarse P1/P2 type family to the typedarray
// Kind it prepares into, so finishNoConflict can target dominant_shape
// directly rather than rediscovering it from the prepared arrays.
func logicalToKind(lt chunk.LogicalType) typedarray.Kind {
	switch lt {
	case chunk.LogicalNumeric:
		return typedarray.KindFloat64
	case chunk.LogicalTemporal:
		return typedarray.KindTimestampMs
	case chunk.LogicalString:
		return typedarray.KindString
	default:
		return typedarray.KindNull
	}
}

func finishNoConflict(prepared []preparedChunk, dominant chunk.LogicalType, opts Options) typedarray.Array {
	targetKind := logicalToKind(dominant)
	if targetKind == typedarray.KindNull {
		// Entirely-null column: final type is the dedicated null type
		// (spec.md §4.5 Null handling).
		arrs := make([]typedarray.Array, len(prepared))
		for i, p := range prepared {
			arrs[i] = p.arr
		}
		return typedarray.Concat(arrs)
	}
	arrs := make([]typedarray.Array, len(prepared))
	for i, p := range prepared {
		if p.arr.Kind == targetKind {
			arrs[i] = p.arr
			continue
		}
		cast, err := p.arr.Cast(targetKind)
		if err != nil {
			// Null chunks always cast cleanly; a non-null mismatch here
			// would mean distinct > 1, which this path never sees.
			cast = typedarray.Nulls(targetKind, p.arr.Len())
		}
		arrs[i] = cast
	}
	out := typedarray.Concat(arrs)
	if targetKind == typedarray.KindFloat64 {
		out = maybeNarrow(out, opts)
	}
	return out
}

func stringifyAll(prepared []preparedChunk) typedarray.Array {
	arrs := make([]typedarray.Array, len(prepared))
	for i, p := range prepared {
		arrs[i] = stringifyChunk(p)
	}
	return typedarray.Concat(arrs)
}

// stringifyChunk renders a prepared chunk as strings for the P4 "no"
// fallback, formatting timestamps as date-only when their time-of-day
// component is zero (grounded on the reference implementation's
// dt_has_t/dt_has_d helpers).
func stringifyChunk(p preparedChunk) typedarray.Array {
	if p.arr.Kind != typedarray.KindTimestampMs {
		return p.arr.ToStrings()
	}
	out := typedarray.Nulls(typedarray.KindString, p.arr.Len())
	for i := 0; i < p.arr.Len(); i++ {
		if !p.arr.Valid[i] {
			continue
		}
		out.Valid[i] = true
		out.Strings[i] = formatTimestampMs(p.arr.TimesMs[i])
	}
	return out
}

func formatTimestampMs(ms int64) string {
	t := time.UnixMilli(ms).UTC()
	if ms%86_400_000 == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func maybeNarrow(a typedarray.Array, opts Options) typedarray.Array {
	if opts.FloatPrecision < 0 || a.Kind != typedarray.KindFloat64 {
		return a
	}
	valid := make([]float64, 0, a.Len())
	for i, ok := range a.Valid {
		if ok {
			valid = append(valid, a.Floats[i])
		}
	}
	if len(valid) == 0 || !chunk.FloatIsIntegerAt(valid, opts.FloatPrecision) {
		return a
	}
	return a.ToInt64()
}

// resolveConflict implements spec.md §4.5 P4's temporal/numeric/all rows.
// ok=false means the whole column must fall back to "no" (stringify).
func resolveConflict(prepared []preparedChunk, opts Options) (typedarray.Array, bool, string) {
	switch opts.ConflictResolve {
	case StrategyTemporal:
		return resolveTemporal(prepared, opts, false)
	case StrategyNumeric:
		return resolveNumeric(prepared, opts)
	case StrategyAll:
		hasTemporal := false
		for _, p := range prepared {
			if p.kind == chunk.LogicalTemporal {
				hasTemporal = true
				break
			}
		}
		if hasTemporal {
			return resolveTemporal(prepared, opts, true)
		}
		return resolveNumeric(prepared, opts)
	default: // "no", or a strategy that doesn't apply to this conflict shape
		return typedarray.Array{}, false, ""
	}
}

func resolveTemporal(prepared []preparedChunk, opts Options, twoStep bool) (typedarray.Array, bool, string) {
	hasTemporal := false
	for _, p := range prepared {
		if p.kind == chunk.LogicalTemporal {
			hasTemporal = true
			break
		}
	}
	if !hasTemporal {
		return typedarray.Array{}, false, ""
	}

	formats := opts.DatetimeFormats
	if len(formats) == 0 {
		formats = defaultDatetimeFormats
	}

	arrs := make([]typedarray.Array, len(prepared))
	for i, p := range prepared {
		switch p.kind {
		case chunk.LogicalTemporal, chunk.LogicalNull:
			cast, err := p.arr.Cast(typedarray.KindTimestampMs)
			if err != nil {
				return typedarray.Array{}, false, fmt.Sprintf("column: temporal cast failed: %v", err)
			}
			arrs[i] = cast
		case chunk.LogicalNumeric:
			// Bare numeric chunks are treated as Excel serial values and
			// converted directly (spec.md §4.5 P4 "coerce numeric chunks
			// via P2").
			out := typedarray.Nulls(typedarray.KindTimestampMs, p.arr.Len())
			for j := 0; j < p.arr.Len(); j++ {
				if !p.arr.Valid[j] {
					continue
				}
				out.Valid[j] = true
				out.TimesMs[j] = chunk.FloatToMsWindowsEpoch(p.arr.Floats[j])
			}
			arrs[i] = out
		case chunk.LogicalString:
			out, err := parseTemporalStrings(p.arr, formats, twoStep)
			if err != nil {
				return typedarray.Array{}, false, fmt.Sprintf("column: %v", err)
			}
			arrs[i] = out
		}
	}
	return typedarray.Concat(arrs), true, ""
}

func parseTemporalStrings(a typedarray.Array, formats []string, twoStep bool) (typedarray.Array, error) {
	out := typedarray.Nulls(typedarray.KindTimestampMs, a.Len())
	for i := 0; i < a.Len(); i++ {
		if !a.Valid[i] {
			continue
		}
		ms, err := parseOneTemporal(a.Strings[i], formats)
		if err != nil {
			if twoStep {
				if v, ferr := parseFloatStrict(a.Strings[i]); ferr == nil {
					out.Valid[i] = true
					out.TimesMs[i] = chunk.FloatToMsWindowsEpoch(v)
					continue
				}
			}
			return typedarray.Array{}, fmt.Errorf("cannot parse %q as a datetime: %w", a.Strings[i], err)
		}
		out.Valid[i] = true
		out.TimesMs[i] = ms
	}
	return out, nil
}

func parseOneTemporal(s string, formats []string) (int64, error) {
	var lastErr error
	for _, f := range formats {
		if t, err := time.Parse(goLayout(f), s); err == nil {
			return t.UnixMilli(), nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no datetime_formats configured")
	}
	return 0, lastErr
}

func resolveNumeric(prepared []preparedChunk, opts Options) (typedarray.Array, bool, string) {
	hasNumeric := false
	for _, p := range prepared {
		if p.kind == chunk.LogicalNumeric {
			hasNumeric = true
			break
		}
	}
	if !hasNumeric {
		return typedarray.Array{}, false, ""
	}

	arrs := make([]typedarray.Array, len(prepared))
	for i, p := range prepared {
		switch p.kind {
		case chunk.LogicalNumeric, chunk.LogicalNull:
			cast, err := p.arr.Cast(typedarray.KindFloat64)
			if err != nil {
				return typedarray.Array{}, false, fmt.Sprintf("column: %v", err)
			}
			arrs[i] = cast
		case chunk.LogicalString:
			cast, err := p.arr.Cast(typedarray.KindFloat64)
			if err != nil {
				return typedarray.Array{}, false, fmt.Sprintf("column: %v", err)
			}
			arrs[i] = cast
		default:
			return typedarray.Array{}, false, ""
		}
	}
	out := typedarray.Concat(arrs)
	return maybeNarrow(out, opts), true, ""
}

func parseFloatStrict(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
