package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sanvivo/price-dashboard/internal/types"
)

// SheetName is the worksheet holding exported rows.
const SheetName = "Prices"

// ErrNothingToExport is returned when there are no rows to write.
var ErrNothingToExport = errors.New("no rows to export")

// PriceRowsXLSX writes rows into a single-sheet workbook with the same
// columns as the CSV export. Prices are stored as numbers.
func PriceRowsXLSX(rows []types.PriceRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(types.PriceRowFields))
	for i, name := range types.PriceRowFields {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cell: %w", err)
		}
		values := []any{
			row.ID,
			row.Sorte,
			row.Kultivar,
			row.PharmacyID,
			row.Price.InexactFloat64(),
			string(row.Trend),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
