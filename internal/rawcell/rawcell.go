// Package rawcell defines the sum-type cell value that adapters produce
// and the storage-shape reduction chunks use to decide run boundaries.
package rawcell

// Kind discriminates the RawCell variants from spec.md §3.
type Kind int

const (
	KindNumber Kind = iota
	KindRkNumber
	KindInlineString
	KindSharedStringRef
	KindBoolean
	KindErrorCode
	KindBlank
)

// Shape is the storage shape a cell reduces to inside a Chunk.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeF64
	ShapeRk32
	ShapeInlineStr
	ShapeSharedIdx
	ShapeNull
)

func (s Shape) String() string {
	switch s {
	case ShapeF64:
		return "f64"
	case ShapeRk32:
		return "rk32"
	case ShapeInlineStr:
		return "inline_str"
	case ShapeSharedIdx:
		return "shared_idx"
	case ShapeNull:
		return "null"
	default:
		return "none"
	}
}

// RawCell is the value an adapter hands to a ColumnSeries for one cell.
type RawCell struct {
	Kind Kind

	Num      float64 // KindNumber
	Temporal bool    // KindNumber: style says date/time/duration

	Rk uint32 // KindRkNumber: packed XLSB numeric encoding

	Str string // KindInlineString

	SharedIdx uint64 // KindSharedStringRef

	Bool bool // KindBoolean

	ErrCode uint8 // KindErrorCode: BIFF error byte
}

func Number(v float64, temporal bool) RawCell {
	return RawCell{Kind: KindNumber, Num: v, Temporal: temporal}
}

func RkNumber(v uint32) RawCell { return RawCell{Kind: KindRkNumber, Rk: v} }

func InlineString(s string) RawCell { return RawCell{Kind: KindInlineString, Str: s} }

func SharedStringRef(idx uint64) RawCell { return RawCell{Kind: KindSharedStringRef, SharedIdx: idx} }

func Boolean(b bool) RawCell { return RawCell{Kind: KindBoolean, Bool: b} }

func ErrorCode(code uint8) RawCell { return RawCell{Kind: KindErrorCode, ErrCode: code} }

func Blank() RawCell { return RawCell{Kind: KindBlank} }

// Shape reduces the cell to the storage shape a chunk groups it under, and
// reports the temporal flag (meaningful only for ShapeF64).
func (c RawCell) Shape() (Shape, bool) {
	switch c.Kind {
	case KindNumber:
		return ShapeF64, c.Temporal
	case KindRkNumber:
		return ShapeRk32, false
	case KindInlineString, KindBoolean, KindErrorCode:
		// Boolean and ErrorCode collapse onto the inline-string run (spec.md §4.1).
		return ShapeInlineStr, false
	case KindSharedStringRef:
		return ShapeSharedIdx, false
	case KindBlank:
		return ShapeNull, false
	default:
		return ShapeNone, false
	}
}

// ErrorCodeString renders the eight built-in Excel error codes.
func ErrorCodeString(code uint8) string {
	switch code {
	case 0x00:
		return "#NULL!"
	case 0x07:
		return "#DIV/0!"
	case 0x0F:
		return "#VALUE!"
	case 0x17:
		return "#REF!"
	case 0x1D:
		return "#NAME?"
	case 0x24:
		return "#NUM!"
	case 0x2A:
		return "#N/A"
	case 0x2B:
		return "#GETTING_DATA"
	default:
		return "#ERR!"
	}
}

// AsString renders a cell's value for the purposes of stringification
// (P4 "no" conflict-resolve strategy, and header lookup pattern matching).
func (c RawCell) AsString(resolveShared func(uint64) string) string {
	switch c.Kind {
	case KindInlineString:
		return c.Str
	case KindSharedStringRef:
		if resolveShared != nil {
			return resolveShared(c.SharedIdx)
		}
		return ""
	case KindBoolean:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindErrorCode:
		return ErrorCodeString(c.ErrCode)
	case KindBlank:
		return ""
	default:
		return ""
	}
}
