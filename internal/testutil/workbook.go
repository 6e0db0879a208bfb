// Package testutil builds submission workbooks for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Abyblackmouth/XmlCreator40/internal/schema"
)

// SheetData is one sheet of a fixture workbook: a header row followed by
// data rows, each addressed by column name. Columns absent from a row map are
// written as blank cells.
type SheetData struct {
	Name    string
	Columns []string
	Rows    []map[string]interface{}
}

// WriteWorkbook saves the given sheets, in order, to path.
func WriteWorkbook(t testing.TB, path string, sheets ...SheetData) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("new sheet %s: %v", sheet.Name, err)
		}

		header := make([]interface{}, len(sheet.Columns))
		for j, c := range sheet.Columns {
			header[j] = c
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			t.Fatalf("write header of %s: %v", sheet.Name, err)
		}

		for r, data := range sheet.Rows {
			for c, column := range sheet.Columns {
				value, ok := data[column]
				if !ok || value == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+2)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
					t.Fatalf("set %s!%s: %v", sheet.Name, cell, err)
				}
			}
		}
	}

	if len(sheets) == 0 {
		// Leave the default sheet so the file is still a valid workbook.
		_ = f.SetCellValue(defaultSheet, "A1", "vacío")
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// HeaderRow returns a complete encabezado row.
func HeaderRow() map[string]interface{} {
	return map[string]interface{}{
		"mes_reportado":         3,
		"clave_sujeto_obligado": "ABC123456789",
		"clave_actividad":       "TCV",
		"referencia_aviso":      "REF001",
		"prioridad":             1,
		"tipo_alerta":           100,
	}
}

// EntityRow returns a complete persona_moral row.
func EntityRow() map[string]interface{} {
	return map[string]interface{}{
		"denominacion_razon":             "ACME S.A. DE C.V.",
		"fecha_constitucion":             20100115,
		"rfc":                            "AAA100115XX1",
		"pais_nacionalidad":              "MX",
		"giro_mercantil":                 1234567,
		"nombre_representante":           "JUAN",
		"apellido_paterno_representante": "PEREZ",
		"apellido_materno_representante": "LOPEZ",
		"fecha_nacimiento_representante": 19800101,
		"rfc_representante":              "PELJ800101AB1",
		"curp_representante":             "PELJ800101HDFRPN09",
		"colonia":                        "CENTRO",
		"calle":                          "REFORMA",
		"numero_exterior":                123,
		"codigo_postal":                  5000,
		"clave_pais":                     52,
		"numero_telefono":                5512345678,
		"correo_electronico":             "contacto@acme.mx",
	}
}

// OperationRow returns a complete operaciones row with the given type and amount.
func OperationRow(operationType, amount interface{}) map[string]interface{} {
	return map[string]interface{}{
		"fecha_operacion":            20240301,
		"tipo_operacion":             operationType,
		"instrumento_monetario":      1,
		"moneda":                     1,
		"monto_operacion":            amount,
		"tipo_servicio":              1,
		"fecha_recepcion":            20240301,
		"codigo_postal_recepcion":    6600,
		"fecha_inicio_custodia":      20240301,
		"fecha_fin_custodia":         20240315,
		"codigo_postal_sucursal":     6700,
		"fecha_entrega":              20240316,
		"codigo_postal_entrega":      6800,
		"destinatario_persona_aviso": "si",
	}
}

// HeaderSheet returns the encabezado sheet with all declared columns.
func HeaderSheet(rows ...map[string]interface{}) SheetData {
	return SheetData{Name: schema.Header.Name, Columns: schema.Header.Columns(), Rows: rows}
}

// EntitySheet returns the persona_moral sheet with all declared columns.
func EntitySheet(rows ...map[string]interface{}) SheetData {
	return SheetData{Name: schema.Entity.Name, Columns: schema.Entity.Columns(), Rows: rows}
}

// OperationsSheet returns the operaciones sheet with all declared columns.
func OperationsSheet(rows ...map[string]interface{}) SheetData {
	return SheetData{Name: schema.Operations.Name, Columns: schema.Operations.Columns(), Rows: rows}
}

// WithoutColumns returns a copy of sheet with the named columns removed.
func WithoutColumns(sheet SheetData, drop ...string) SheetData {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := SheetData{Name: sheet.Name, Rows: sheet.Rows}
	for _, c := range sheet.Columns {
		if !skip[c] {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}

// ValidWorkbook writes a complete workbook with one custody (1003) and one
// plain (1001) operation into dir and returns its path.
func ValidWorkbook(t testing.TB, dir string) string {
	t.Helper()
	return WriteWorkbook(t, filepath.Join(dir, "datos.xlsx"),
		HeaderSheet(HeaderRow()),
		EntitySheet(EntityRow()),
		OperationsSheet(OperationRow(1003.0, 150), OperationRow(1001.0, "abc")),
	)
}
