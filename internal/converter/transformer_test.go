package converter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abyblackmouth/XmlCreator40/internal/reporterror"
	"github.com/Abyblackmouth/XmlCreator40/internal/schema"
	"github.com/Abyblackmouth/XmlCreator40/internal/types"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name string
		cell types.Cell
		want string
	}{
		{"integral float", types.NumberCell(1003.0), "1003"},
		{"fractional float", types.NumberCell(12.75), "12"},
		{"numeric text with .0", types.TextCell("1003.0"), "1003"},
		{"plain text", types.TextCell("TCV"), "TCV"},
		{"non-numeric text with dot", types.TextCell("A.1"), "A.1"},
		{"leading dot", types.TextCell(".5"), "0"},
		{"negative", types.TextCell("-3.5"), "-3"},
		{"exponent with fraction", types.TextCell("1.5e3"), "1500"},
		{"exponent without dot", types.TextCell("2E2"), "200"},
		{"small exponent", types.TextCell("7.5e-1"), "0"},
		{"hex float stays text", types.TextCell("0x1.8p1"), "0x1.8p1"},
		{"integer text unchanged", types.TextCell(" 42 "), " 42 "},
		{"empty", types.Cell{}, ""},
		{"date", types.DateCell(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "20240301"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCode(tt.cell))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name          string
		cell          types.Cell
		want          string
		wantDefaulted bool
	}{
		{"integer", types.NumberCell(150), "150.00", false},
		{"one decimal", types.NumberCell(99.5), "99.50", false},
		{"rounds to cents", types.NumberCell(10.456), "10.46", false},
		{"numeric text", types.TextCell(" 1200.1 "), "1200.10", false},
		{"negative", types.NumberCell(-5), "-5.00", false},
		{"not a number", types.TextCell("abc"), "0.00", true},
		{"thousands separator", types.TextCell("1,000"), "0.00", true},
		{"empty", types.Cell{}, "0.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defaulted := FormatAmount(tt.cell)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDefaulted, defaulted)
		})
	}
}

func TestApplyTransformation(t *testing.T) {
	tests := []struct {
		name    string
		cell    types.Cell
		mapping schema.FieldMapping
		want    string
	}{
		{"padded postal code", types.NumberCell(5000), schema.FieldMapping{Kind: schema.Code, PadTo: 5}, "05000"},
		{"padded postal code from text float", types.TextCell("5000.0"), schema.FieldMapping{Kind: schema.Code, PadTo: 5}, "05000"},
		{"long postal code untouched", types.NumberCell(123456), schema.FieldMapping{Kind: schema.Code, PadTo: 5}, "123456"},
		{"empty postal code not padded", types.Cell{}, schema.FieldMapping{Kind: schema.Code, PadTo: 5}, ""},
		{"flag upper-cased", types.TextCell("si"), schema.FieldMapping{Kind: schema.Flag}, "SI"},
		{"text untouched", types.TextCell("Av. Reforma 1.5"), schema.FieldMapping{Kind: schema.Text}, "Av. Reforma 1.5"},
		{"numeric text field", types.NumberCell(5512345678), schema.FieldMapping{Kind: schema.Text}, "5512345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ApplyTransformation(tt.cell, tt.mapping)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformer_Transform(t *testing.T) {
	tr := NewTransformer(schema.Operations)
	row := types.NewRow(4, map[string]types.Cell{
		"tipo_operacion":  types.NumberCell(1003),
		"monto_operacion": types.TextCell("abc"),
	})

	value, defaulted, err := tr.Transform(row, "tipo_operacion")
	require.NoError(t, err)
	assert.Equal(t, "1003", value)
	assert.False(t, defaulted)

	value, defaulted, err = tr.Transform(row, "monto_operacion")
	require.NoError(t, err)
	assert.Equal(t, "0.00", value)
	assert.True(t, defaulted)

	value, _, err = tr.Transform(row, "fecha_inicio_custodia")
	require.NoError(t, err, "optional columns may be absent")
	assert.Equal(t, "", value)

	_, _, err = tr.Transform(row, "moneda")
	var rowErr *reporterror.RowAccessError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, "operaciones", rowErr.Sheet)
	assert.Equal(t, 4, rowErr.Row)
	assert.Equal(t, "moneda", rowErr.Field)

	_, _, err = tr.Transform(row, "columna_inventada")
	require.Error(t, err)
	assert.Equal(t, reporterror.KindUnexpected, reporterror.KindOf(err))
}

func TestPadLeft(t *testing.T) {
	assert.Equal(t, "00042", PadLeft("42", 5, '0'))
	assert.Equal(t, "12345", PadLeft("12345", 5, '0'))
	assert.Equal(t, "0ñ", PadLeft("ñ", 2, '0'))
}
