package exporter

import (
	"bytes"
	"fmt"

	"menu_needs_backend/internal/models"

	"github.com/xuri/excelize/v2"
)

// NeedsSheetName is the worksheet holding the exported needs.
const NeedsSheetName = "Necessidades"

// XLSXContentType is the MIME type of the generated workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BuildNeedsWorkbook writes the labelled rows into a single-sheet workbook.
func BuildNeedsWorkbook(rows []models.NeedExportRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", NeedsSheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	for i, h := range models.NeedExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(NeedsSheetName, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing header %s: %w", h, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		_ = f.SetRowStyle(NeedsSheetName, 1, 1, headerStyle)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row.Values()
		if err := f.SetSheetRow(NeedsSheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(NeedsSheetName, "A", "A", 12)
	_ = f.SetColWidth(NeedsSheetName, "B", "M", 22)
	_ = f.SetColWidth(NeedsSheetName, "N", "P", 14)
	_ = f.SetPanes(NeedsSheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	return f, nil
}

// WriteNeedsWorkbook renders the workbook into memory.
func WriteNeedsWorkbook(rows []models.NeedExportRow) ([]byte, error) {
	f, err := BuildNeedsWorkbook(rows)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
