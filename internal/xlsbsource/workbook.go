package xlsbsource

import (
	"encoding/xml"
	"fmt"
	"io"
)

// sheetRef is one worksheet's declared name and its part path inside the
// ZIP archive.
type sheetRef struct {
	Name string
	Path string
}

// parseXstr reads one BIFF12 XLWideString (4-byte length in UTF-16 code
// units, 0xFFFFFFFF meaning null, else that many code units) starting at
// offset, returning the decoded string and the offset immediately after.
func parseXstr(data []byte, offset int) (string, int, error) {
	if offset+4 > len(data) {
		return "", offset, fmt.Errorf("xlsbsource: truncated string header")
	}
	n := le32(data[offset : offset+4])
	offset += 4
	if n == 0xFFFFFFFF {
		return "", offset, nil
	}
	end := offset + int(n)*2
	if end > len(data) {
		end = len(data)
	}
	s, err := decodeUTF16LE(data[offset:end])
	return s, end, err
}

// loadSheetList scans xl/workbook.bin for BrtBundleSh records, returning
// each sheet's name and its relationship id. Grounded on biff_recs.py's
// BrtBundleSh layout: hsState(u32), iTabID(u32), strRelID, strName.
func loadSheetList(r io.Reader) ([]struct{ RelID, Name string }, error) {
	sc := newRecordScanner(r, map[int]bool{recBundleSh: true})
	var out []struct{ RelID, Name string }
	for {
		rec, ok, err := sc.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if len(rec.data) < 8 {
			continue
		}
		relID, off, err := parseXstr(rec.data, 8)
		if err != nil {
			return nil, err
		}
		name, _, err := parseXstr(rec.data, off)
		if err != nil {
			return nil, err
		}
		out = append(out, struct{ RelID, Name string }{RelID: relID, Name: name})
	}
	return out, nil
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// loadRelationships parses an OPC .rels part into an Id -> Target map.
func loadRelationships(r io.Reader) (map[string]string, error) {
	var doc relationshipsXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		out[rel.ID] = rel.Target
	}
	return out, nil
}
