package report

import (
	"fmt"
	"io"

	"alyasmeen-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sales"

// Column order is the export contract: one row per sale, newest first, in
// whatever order the caller hands them over.
var headers = []string{
	"Date", "Product", "Quantity", "Unit Price", "Total",
	"Cost Total", "Net Profit", "Customer Name", "Phone", "Address",
}

// WriteSalesXLSX renders the sales into a spreadsheet with a header row
// followed by one data row per sale.
func WriteSalesXLSX(w io.Writer, sales []models.Sale) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheetName)

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, s := range sales {
		row := i + 2
		values := []any{
			s.SoldAt.Format("2006-01-02 15:04"),
			s.ProductName,
			s.Quantity,
			s.UnitSell,
			s.Total,
			s.CostTotal,
			s.NetProfit,
			s.CustomerName,
			s.CustomerPhone,
			s.CustomerAddress,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
