package xlsbsource

import (
	"io"
	"strings"

	"github.com/javajack/xlgrid/internal/numfmt"
)

// styleTable maps a cell's style (XF) index, as found in cell records, to
// whether that style renders a date/time/duration.
type styleTable struct {
	temporal []bool
}

func (t styleTable) isTemporal(xfIdx uint16) bool {
	return int(xfIdx) < len(t.temporal) && t.temporal[xfIdx]
}

// loadStyles scans xl/styles.bin: BrtFmt records supply custom numFmtId ->
// format-code text; BrtXF records within the CellXfs collection supply,
// in order, each cell style's numFmtId. That order is the cell-style index
// referenced by worksheet cell records.
func loadStyles(r io.Reader) (styleTable, error) {
	sc := newRecordScanner(r, map[int]bool{recNumFmt: true, recXf: true, recCellXfs: true, recCellXfsEnd: true})

	customFmts := map[uint16]string{}
	var temporal []bool
	inCellXfs := false

	for {
		rec, ok, err := sc.next()
		if err != nil {
			return styleTable{}, err
		}
		if !ok {
			break
		}
		switch rec.id {
		case recCellXfs:
			inCellXfs = true
		case recCellXfsEnd:
			inCellXfs = false
		case recNumFmt:
			if len(rec.data) < 6 {
				continue
			}
			id := le16(rec.data[0:2])
			n := le32(rec.data[2:6])
			end := 6 + int(n)*2
			if end > len(rec.data) {
				end = len(rec.data)
			}
			name, err := decodeUTF16LE(rec.data[6:end])
			if err == nil {
				if semi := strings.IndexByte(name, ';'); semi >= 0 {
					name = name[:semi]
				}
				customFmts[id] = name
			}
		case recXf:
			if !inCellXfs || len(rec.data) < 4 {
				continue
			}
			fmtID := le16(rec.data[2:4])
			temporal = append(temporal, numfmt.IsTemporal(int(fmtID), customFmts[fmtID]))
		}
	}
	return styleTable{temporal: temporal}, nil
}
