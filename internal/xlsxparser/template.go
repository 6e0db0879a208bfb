package xlsxparser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Abyblackmouth/XmlCreator40/internal/schema"
)

// TemplateFileName is the download name of the blank submission workbook.
const TemplateFileName = "plantilla_UIF.xlsx"

// WriteTemplate writes a blank submission workbook to w: one sheet per
// required sheet, each with its header row and a bold header style.
func WriteTemplate(w io.Writer) error {
	f, err := newTemplate()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}

// SaveTemplate writes the blank submission workbook to path.
func SaveTemplate(path string) error {
	f, err := newTemplate()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save template %s: %w", path, err)
	}
	return nil
}

func newTemplate() (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range schema.All() {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
		}

		columns := sheet.Columns()
		header := make([]interface{}, len(columns))
		for j, c := range columns {
			header[j] = c
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header of %s: %w", sheet.Name, err)
		}

		lastCell, err := excelize.CoordinatesToCellName(len(columns), 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(sheet.Name, "A1", lastCell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header of %s: %w", sheet.Name, err)
		}

		lastCol, err := excelize.ColumnNumberToName(len(columns))
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(sheet.Name, "A", lastCol, 24); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}
