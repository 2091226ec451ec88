package analytics

import (
	"github.com/xuri/excelize/v2"
)

const commissionSheet = "Commission"

// CommissionXLSX renders the per-staff report as a spreadsheet.
func CommissionXLSX(lines []StaffStats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	index, err := f.NewSheet(commissionSheet)
	if err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	header := []string{"Staff ID", "Name", "Services", "Products", "Top-ups", "Total Sales", "Commission"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(commissionSheet, cell, v); err != nil {
			return nil, err
		}
	}
	for r, l := range lines {
		values := []any{l.StaffID, l.Name, l.ServiceCount, l.ProductCount, l.TopUpCount, l.TotalSales, l.TotalCommission}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(commissionSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(commissionSheet, "A", "A", 10)
	_ = f.SetColWidth(commissionSheet, "B", "B", 18)
	_ = f.SetColWidth(commissionSheet, "C", "G", 14)
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#8B7355"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetCellStyle(commissionSheet, "A1", "G1", style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
