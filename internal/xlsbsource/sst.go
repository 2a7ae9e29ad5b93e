package xlsbsource

import "io"

// loadSharedStrings scans xl/sharedStrings.bin, returning entries in
// declared order (their index is the SharedStringRef used by BrtCellIsst
// cell records). Grounded on xlsb.py's `shared` cached_property.
func loadSharedStrings(r io.Reader) ([]string, error) {
	sc := newRecordScanner(r, map[int]bool{recSi: true})
	var out []string
	for {
		rec, ok, err := sc.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if len(rec.data) < 5 {
			out = append(out, "")
			continue
		}
		n := le32(rec.data[1:5])
		end := 5 + int(n)*2
		if end > len(rec.data) {
			end = len(rec.data)
		}
		s, err := decodeUTF16LE(rec.data[5:end])
		if err != nil {
			s = ""
		}
		out = append(out, s)
	}
	return out, nil
}
