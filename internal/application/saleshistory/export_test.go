package saleshistory

import (
	"bytes"
	"testing"
	"time"

	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	first := txn("TX-0002", refTime, "108.00")
	first.CustomerName = strPtr("Jane")
	second := txn("TX-0001", refTime.Add(-time.Hour), "49.00")
	second.Voided = true

	data, err := ExportXLSX([]entity.Transaction{first, second}, time.UTC)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "TX-0002", rows[1][0])
	assert.Equal(t, "2024-03-15 14:30", rows[1][1])
	assert.Equal(t, "Jane", rows[1][2])
	assert.Equal(t, "Cash", rows[1][4])
	assert.Equal(t, "108", rows[1][9])
	assert.Equal(t, "TX-0001", rows[2][0])
	assert.Equal(t, "TRUE", rows[2][11])
}

func TestExportXLSX_Empty(t *testing.T) {
	data, err := ExportXLSX(nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
