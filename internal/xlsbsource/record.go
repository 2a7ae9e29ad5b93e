// Package xlsbsource implements the source.Adapter for the XLSB (BIFF12)
// binary workbook format: a variable-length record stream inside a ZIP
// container, grounded on the reference implementation's biff.py record
// scanner and xlsb.py worksheet/style readers.
package xlsbsource

import "io"

// record is one decoded BIFF12 record: a type id and its raw payload.
type record struct {
	id   int
	data []byte
}

// recordScanner reads the variable-length record framing used throughout
// BIFF12 parts (record ID, then record size, both variable-width, then
// that many payload bytes). Ported from biff.py's scan_biff.
type recordScanner struct {
	r    io.Reader
	only map[int]bool // nil means "yield every record"
}

func newRecordScanner(r io.Reader, only map[int]bool) *recordScanner {
	return &recordScanner{r: r, only: only}
}

// next returns the next record matching the scanner's filter, or ok=false
// at end of stream.
func (s *recordScanner) next() (record, bool, error) {
	for {
		id, ok, err := s.readID()
		if err != nil || !ok {
			return record{}, false, err
		}
		sz, err := s.readSize()
		if err != nil {
			return record{}, false, err
		}
		if s.only != nil && !s.only[id] {
			if sz > 0 {
				if _, err := io.CopyN(io.Discard, s.r, int64(sz)); err != nil {
					return record{}, false, err
				}
			}
			continue
		}
		data := make([]byte, sz)
		if sz > 0 {
			if _, err := io.ReadFull(s.r, data); err != nil {
				return record{}, false, err
			}
		}
		return record{id: id, data: data}, true, nil
	}
}

func (s *recordScanner) readByte() (byte, bool, error) {
	var b [1]byte
	_, err := io.ReadFull(s.r, b[:])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return b[0], true, nil
}

// readID decodes a record's 1-or-2-byte type id: a second byte follows iff
// the first byte's high bit is set, and the id is the little-endian
// combination of the two — not a masked 7-bit varint.
func (s *recordScanner) readID() (int, bool, error) {
	b0, ok, err := s.readByte()
	if err != nil || !ok {
		return 0, false, err
	}
	id := int(b0)
	if b0&0x80 != 0 {
		b1, ok, err := s.readByte()
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, io.ErrUnexpectedEOF
		}
		id = int(b0) | int(b1)<<8
	}
	return id, true, nil
}

// readSize decodes a record's 1-to-4-byte length as a 7-bit-per-byte
// little-endian varint with a continuation bit at 0x80/0x4000/0x200000.
func (s *recordScanner) readSize() (int, error) {
	b0, ok, err := s.readByte()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	sz := int(b0)
	if sz&0x80 == 0 {
		return sz, nil
	}
	b1, ok, err := s.readByte()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	sz = (sz &^ 0x80) | (int(b1) << 7)
	if sz&0x4000 == 0 {
		return sz, nil
	}
	b2, ok, err := s.readByte()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	sz = (sz &^ 0x4000) | (int(b2) << 14)
	if sz&0x200000 == 0 {
		return sz, nil
	}
	b3, ok, err := s.readByte()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	sz = (sz &^ 0x200000) | (int(b3) << 21)
	return sz, nil
}

// Record type ids used by this adapter. Grounded on
// other_examples/TsubasaBE-go-xlsb__records.go for the workbook/style
// records and on original_source/rxls/reader/xlsb.py's worksheet record
// dispatch for the cell-value record ids, which that constants file does
// not enumerate.
const (
	recRow            = 0x0000 // BrtRowHdr
	recBlank          = 0x0001 // BrtCellBlank
	recNum            = 0x0002 // BrtCellRk (packed RK number)
	recBoolErr        = 0x0003 // BrtCellError
	recBool           = 0x0004 // BrtCellBool
	recFloat          = 0x0005 // BrtCellReal
	recInlineStr      = 0x0006 // BrtCellSt
	recSharedStr      = 0x0007 // BrtCellIsst
	recFormulaString  = 0x0008
	recFormulaFloat   = 0x0009
	recFormulaBool    = 0x000A
	recFormulaBoolErr = 0x000B
	recSheetDataEnd   = 0x0192 // BrtEndSheetData

	recSi        = 0x0013 // shared-string entry
	recNumFmt    = 0x002C // BrtFmt
	recXf        = 0x002F // BrtXF
	recCellXfs   = 0x04E9
	recCellXfsEnd = 0x04EA
	recBundleSh  = 0x019C // sheet entry in workbook.bin
)
