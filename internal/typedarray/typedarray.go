// Package typedarray holds the homogeneous, materialized column arrays
// produced by the prepare/convert engine (spec.md §4.5) and consumed by the
// table assembler (spec.md §4.6).
package typedarray

import (
	"fmt"
	"strconv"
	"time"
)

// Kind is the final logical type of a materialized column.
type Kind int

const (
	KindNull Kind = iota
	KindFloat64
	KindInt64
	KindTimestampMs
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFloat64:
		return "float64"
	case KindInt64:
		return "int64"
	case KindTimestampMs:
		return "timestamp[ms]"
	case KindString:
		return "utf8"
	default:
		return "null"
	}
}

// Array is a single homogeneous, nullable column array.
type Array struct {
	Kind    Kind
	Valid   []bool // len == Len(); false means null regardless of Kind
	Floats  []float64
	Ints    []int64
	TimesMs []int64
	Strings []string
}

// Len returns the array's element count.
func (a Array) Len() int { return len(a.Valid) }

// Nulls builds an all-null array of the given kind and length.
func Nulls(kind Kind, n int) Array {
	a := Array{Kind: kind, Valid: make([]bool, n)}
	switch kind {
	case KindFloat64:
		a.Floats = make([]float64, n)
	case KindInt64:
		a.Ints = make([]int64, n)
	case KindTimestampMs:
		a.TimesMs = make([]int64, n)
	case KindString:
		a.Strings = make([]string, n)
	}
	return a
}

// Concat concatenates same-kind arrays into one (table assembler, spec.md
// §4.6). All input arrays must share Kind; callers are responsible for
// casting mismatched chunks to a common kind first (P1-P4 of prepare).
func Concat(arrays []Array) Array {
	if len(arrays) == 0 {
		return Array{Kind: KindNull}
	}
	kind := arrays[0].Kind
	total := 0
	for _, a := range arrays {
		total += a.Len()
	}
	out := Nulls(kind, 0)
	out.Valid = make([]bool, 0, total)
	switch kind {
	case KindFloat64:
		out.Floats = make([]float64, 0, total)
	case KindInt64:
		out.Ints = make([]int64, 0, total)
	case KindTimestampMs:
		out.TimesMs = make([]int64, 0, total)
	case KindString:
		out.Strings = make([]string, 0, total)
	}
	for _, a := range arrays {
		out.Valid = append(out.Valid, a.Valid...)
		switch kind {
		case KindFloat64:
			out.Floats = append(out.Floats, a.Floats...)
		case KindInt64:
			out.Ints = append(out.Ints, a.Ints...)
		case KindTimestampMs:
			out.TimesMs = append(out.TimesMs, a.TimesMs...)
		case KindString:
			out.Strings = append(out.Strings, a.Strings...)
		}
	}
	return out
}

// Cast converts the array to the requested kind (P5 user dtype override).
// It never modifies a in place.
func (a Array) Cast(kind Kind) (Array, error) {
	if a.Kind == kind {
		return a, nil
	}
	switch kind {
	case KindString:
		return a.ToStrings(), nil
	case KindFloat64:
		return a.ToFloat64()
	case KindInt64:
		f, err := a.ToFloat64()
		if err != nil {
			return Array{}, err
		}
		return f.ToInt64(), nil
	case KindTimestampMs:
		f, err := a.ToFloat64()
		if err != nil {
			return Array{}, err
		}
		out := Nulls(KindTimestampMs, f.Len())
		for i := 0; i < f.Len(); i++ {
			if !f.Valid[i] {
				continue
			}
			out.Valid[i] = true
			out.TimesMs[i] = int64(f.Floats[i])
		}
		return out, nil
	case KindNull:
		return Nulls(KindNull, a.Len()), nil
	default:
		return Array{}, fmt.Errorf("typedarray: unsupported cast target %s", kind)
	}
}

// AsStringAt renders element i for stringification (P4 "no" fallback) and
// for user-facing display; null elements render as "".
func (a Array) AsStringAt(i int) string {
	if !a.Valid[i] {
		return ""
	}
	switch a.Kind {
	case KindFloat64:
		return strconv.FormatFloat(a.Floats[i], 'g', -1, 64)
	case KindInt64:
		return strconv.FormatInt(a.Ints[i], 10)
	case KindTimestampMs:
		return time.UnixMilli(a.TimesMs[i]).UTC().Format("2006-01-02 15:04:05")
	case KindString:
		return a.Strings[i]
	default:
		return ""
	}
}

// ToStrings converts the whole array to a KindString array (P4 "no"
// conflict-resolve strategy: "stringify every non-null chunk").
func (a Array) ToStrings() Array {
	if a.Kind == KindString {
		return a
	}
	out := Nulls(KindString, a.Len())
	for i := 0; i < a.Len(); i++ {
		if !a.Valid[i] {
			continue
		}
		out.Valid[i] = true
		out.Strings[i] = a.AsStringAt(i)
	}
	return out
}

// ToInt64 narrows a float64 array to int64 (P3). Callers must already have
// verified FloatIsIntegerAt; this does not re-check.
func (a Array) ToInt64() Array {
	out := Nulls(KindInt64, a.Len())
	for i := 0; i < a.Len(); i++ {
		if !a.Valid[i] {
			continue
		}
		out.Valid[i] = true
		out.Ints[i] = int64(a.Floats[i])
	}
	return out
}

// ToFloat64 attempts to coerce every valid element to float64. Used by P4's
// numeric conflict-resolve strategy on string chunks; the first
// unparseable value fails the whole conversion (caller falls back to "no").
func (a Array) ToFloat64() (Array, error) {
	if a.Kind == KindFloat64 {
		return a, nil
	}
	out := Nulls(KindFloat64, a.Len())
	for i := 0; i < a.Len(); i++ {
		if !a.Valid[i] {
			continue
		}
		switch a.Kind {
		case KindInt64:
			out.Valid[i] = true
			out.Floats[i] = float64(a.Ints[i])
		case KindTimestampMs:
			out.Valid[i] = true
			out.Floats[i] = float64(a.TimesMs[i])
		case KindString:
			v, err := strconv.ParseFloat(a.Strings[i], 64)
			if err != nil {
				return Array{}, fmt.Errorf("typedarray: cannot parse %q as float64: %w", a.Strings[i], err)
			}
			out.Valid[i] = true
			out.Floats[i] = v
		default:
			return Array{}, fmt.Errorf("typedarray: cannot coerce %s to float64", a.Kind)
		}
	}
	return out, nil
}
