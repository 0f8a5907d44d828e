package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"patient-journey/internal/models"
)

func TestWriteWorkbook(t *testing.T) {
	code := "A01"
	patient := "12345678"
	op := "OP123"

	wish := []models.WishRecord{{
		ID:        1,
		EventCode: &code,
		PatientID: &patient,
		Source:    "U/I",
		UnitCode:  "310",
	}}
	orline := []models.ORRecord{{
		ID:          2,
		OperationID: &op,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, wish, orline))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{wishSheet, orlineSheet}, f.GetSheetList())

	rows, err := f.GetRows(wishSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "A01", rows[1][3])
	assert.Equal(t, "12345678", rows[1][5])

	orRows, err := f.GetRows(orlineSheet)
	require.NoError(t, err)
	require.Len(t, orRows, 2)
	assert.Equal(t, "OP123", orRows[1][3])
}

func TestWriteWorkbook_EmptyStillHasHeaders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(wishSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, wishHeaders, rows[0])
}
