package minio

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParseMatrix_Float64(t *testing.T) {
	var buf bytes.Buffer
	dense := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, npyio.Write(&buf, dense))

	matrix, err := parseMatrix(&buf)
	require.NoError(t, err)

	assert.Equal(t, 2, matrix.Rows)
	assert.Equal(t, 3, matrix.Cols)
	assert.Equal(t, []float32{1, 2, 3}, matrix.Data[0])
	assert.Equal(t, []float32{4, 5, 6}, matrix.Data[1])
}

func TestParseMatrix_RejectsWrongDimensions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, []float32{1, 2, 3}))

	_, err := parseMatrix(&buf)

	assert.ErrorIs(t, err, e.ErrBadEmbeddingsFile)
}

// fortranNpy собирает заголовок .npy с fortran_order=True вручную:
// npyio такие файлы не пишет
func fortranNpy(t *testing.T) []byte {
	t.Helper()

	hdr := "{'descr': '<f8', 'fortran_order': True, 'shape': (2, 2), }"
	total := 10 + len(hdr) + 1
	if pad := (16 - total%16) % 16; pad > 0 {
		hdr += strings.Repeat(" ", pad)
	}
	hdr += "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(hdr))))
	buf.WriteString(hdr)
	buf.Write(make([]byte, 4*8))

	return buf.Bytes()
}

func TestParseMatrix_RejectsFortranOrder(t *testing.T) {
	_, err := parseMatrix(bytes.NewReader(fortranNpy(t)))

	assert.ErrorIs(t, err, e.ErrBadEmbeddingsFile)
}

func TestParseMatrix_NotNpy(t *testing.T) {
	_, err := parseMatrix(strings.NewReader("definitely not numpy"))

	assert.Error(t, err)
}

func TestParseProductIDs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, []int64{15970, 39386, 59263}))

	ids, err := parseProductIDs(&buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"15970", "39386", "59263"}, ids)
}

func TestParseCatalog(t *testing.T) {
	csvData := strings.Join([]string{
		"id,gender,masterCategory,subCategory,articleType,baseColour,season,year,usage,productDisplayName",
		"15970,Men,Apparel,Topwear,Shirts,Navy Blue,Fall,2011,Casual,Turtle Check Men Navy Blue Shirt",
		"39386,Men,Apparel,Bottomwear,Jeans,Blue,Summer,2012,Casual,Peter England Men Party Blue Jeans",
	}, "\n")

	catalog, err := parseCatalog(strings.NewReader(csvData))
	require.NoError(t, err)

	require.Len(t, catalog, 2)
	rec := catalog.Lookup("15970")
	assert.Equal(t, "Turtle Check Men Navy Blue Shirt", rec.DisplayName)
	assert.Equal(t, "Apparel", rec.MasterCategory)
}

func TestParseCatalog_SkipsMalformedRows(t *testing.T) {
	// Строка без id пропускается, а не валит загрузку
	csvData := strings.Join([]string{
		"id,masterCategory,productDisplayName",
		"15970,Apparel,Navy Blue Shirt",
		",Apparel,Row Without ID",
		"39386,Apparel,Valid Row",
	}, "\n")

	catalog, err := parseCatalog(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Len(t, catalog, 2)
}

func TestParseCatalog_MissingValuesGetPlaceholders(t *testing.T) {
	csvData := strings.Join([]string{
		"id,masterCategory,productDisplayName",
		"15970,,",
	}, "\n")

	catalog, err := parseCatalog(strings.NewReader(csvData))
	require.NoError(t, err)

	rec := catalog.Lookup("15970")
	assert.Equal(t, domain.PlaceholderValue, rec.MasterCategory)
	assert.Equal(t, domain.PlaceholderValue, rec.DisplayName)
}

func TestParseCatalog_MissingIDColumn(t *testing.T) {
	csvData := "gender,masterCategory\nMen,Apparel\n"

	_, err := parseCatalog(strings.NewReader(csvData))

	assert.ErrorIs(t, err, e.ErrBadCatalogFile)
}
