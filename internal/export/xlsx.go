package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/pvoil/internal/domain/models"
	"github.com/mamadbah2/pvoil/internal/repository/ledger"
)

// SheetName is the worksheet holding the exported ledger.
const SheetName = "Prices"

// BuildWorkbook lays the ledger out as a single worksheet: the ledger header
// on row 1, then one row per record with the price as a numeric cell.
func BuildWorkbook(records []models.PriceRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, 0, len(ledger.Header))
	for _, h := range ledger.Header {
		header = append(header, h)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		row := []interface{}{models.FormatDate(rec.Date), rec.ItemName, rec.Price}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "B", "B", 32); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

// WriteXLSX exports the ledger records to an .xlsx file at path.
func WriteXLSX(records []models.PriceRecord, path string) error {
	f, err := BuildWorkbook(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
