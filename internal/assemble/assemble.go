// Package assemble concatenates prepared per-column arrays into the final
// table, in source column order (spec.md §4.6).
package assemble

import (
	"fmt"

	"github.com/javajack/xlgrid/internal/typedarray"
)

// ColumnResult is one column's name and prepared array, in source order.
type ColumnResult struct {
	Name  string
	Array typedarray.Array
}

// LengthMismatchError reports that prepared columns disagree on row count.
type LengthMismatchError struct {
	Name     string
	Got      int
	Expected int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("xlgrid: column %q has length %d, expected %d", e.Name, e.Got, e.Expected)
}

// Validate checks that every column has the same length (spec.md §4.6).
func Validate(cols []ColumnResult) error {
	if len(cols) == 0 {
		return nil
	}
	want := cols[0].Array.Len()
	for _, c := range cols[1:] {
		if c.Array.Len() != want {
			return &LengthMismatchError{Name: c.Name, Got: c.Array.Len(), Expected: want}
		}
	}
	return nil
}
