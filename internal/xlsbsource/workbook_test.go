package xlsbsource

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xstr(s string) []byte {
	units := []byte{}
	for _, r := range s {
		units = append(units, byte(r), 0)
	}
	n := len(s)
	return append([]byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}, units...)
}

func bundleShRecord(relID, name string) []byte {
	data := append([]byte{0, 0, 0, 0, 0, 0, 0, 0}, xstr(relID)...)
	data = append(data, xstr(name)...)
	return rec(recBundleSh, data)
}

func TestLoadSheetList_ParsesRelIDAndName(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(bundleShRecord("rId1", "Sheet1"))
	buf.Write(bundleShRecord("rId2", "Data"))

	sheets, err := loadSheetList(&buf)
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "rId1", sheets[0].RelID)
	assert.Equal(t, "Sheet1", sheets[0].Name)
	assert.Equal(t, "rId2", sheets[1].RelID)
	assert.Equal(t, "Data", sheets[1].Name)
}

func TestLoadSheetList_ShortRecordSkipped(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(rec(recBundleSh, []byte{0, 0}))
	sheets, err := loadSheetList(&buf)
	require.NoError(t, err)
	assert.Empty(t, sheets)
}

func TestLoadRelationships_MapsIDToTarget(t *testing.T) {
	xmlDoc := `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.bin"/>
  <Relationship Id="rId2" Type="worksheet" Target="worksheets/sheet2.bin"/>
</Relationships>`
	rels, err := loadRelationships(strings.NewReader(xmlDoc))
	require.NoError(t, err)
	assert.Equal(t, "worksheets/sheet1.bin", rels["rId1"])
	assert.Equal(t, "worksheets/sheet2.bin", rels["rId2"])
}
