package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/pvoil/internal/domain/models"
)

func TestWriteXLSX(t *testing.T) {
	records := []models.PriceRecord{
		{Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), ItemName: "Xăng E5 RON 92-II", Price: 22470},
		{Date: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), ItemName: "Dầu DO 0,05S-II", Price: 20110},
	}

	path := filepath.Join(t.TempDir(), "out", "prices.xlsx")
	require.NoError(t, WriteXLSX(records, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Ngày", "Mặt hàng", "Giá (VND)"},
		{"01/01/2024", "Xăng E5 RON 92-II", "22470"},
		{"02/01/2024", "Dầu DO 0,05S-II", "20110"},
	}, rows)

	cellType, err := f.GetCellType(SheetName, "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)
}

func TestWriteXLSXEmptyLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.xlsx")
	require.NoError(t, WriteXLSX(nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
