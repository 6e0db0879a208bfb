package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abyblackmouth/XmlCreator40/internal/converter"
	"github.com/Abyblackmouth/XmlCreator40/internal/logging"
	"github.com/Abyblackmouth/XmlCreator40/internal/testutil"
)

func TestInspect_GeneratedReport(t *testing.T) {
	dir := t.TempDir()
	input := testutil.ValidWorkbook(t, dir)

	result := converter.New(converter.WithLogger(logging.NewMockLogger())).Convert(input, filepath.Join(dir, "out"))
	require.NoError(t, result.Error)

	summary, err := Inspect(result.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "3", summary.Month)
	assert.Equal(t, "ABC123456789", summary.ObligorKey)
	assert.Equal(t, "REF001", summary.NoticeReference)
	assert.Equal(t, "ACME S.A. DE C.V.", summary.Entity)
	assert.Equal(t, "AAA100115XX1", summary.RFC)
	assert.Equal(t, 2, summary.Operations)
	assert.Equal(t, 1, summary.CustodyOperations)
	assert.Equal(t, "150.00", summary.Total.StringFixed(2))

	out := summary.String()
	assert.Contains(t, out, "Operations:         2")
	assert.Contains(t, out, "Total amount:       150.00")
}

func TestInspectReader(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<archivo xmlns="http://www.uif.shcp.gob.mx/recepcion/tcv">
  <informe>
    <mes_reportado>202403</mes_reportado>
    <aviso>
      <detalle_operaciones>
        <datos_operacion>
          <tipo_bien><datos_efectivo_instrumentos><monto_operacion>10.10</monto_operacion></datos_efectivo_instrumentos></tipo_bien>
        </datos_operacion>
        <datos_operacion>
          <tipo_bien><datos_efectivo_instrumentos><monto_operacion>0.20</monto_operacion></datos_efectivo_instrumentos></tipo_bien>
          <custodia/>
        </datos_operacion>
        <datos_operacion/>
      </detalle_operaciones>
    </aviso>
  </informe>
</archivo>`

	summary, err := InspectReader(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "202403", summary.Month)
	assert.Equal(t, "", summary.Entity)
	assert.Equal(t, 3, summary.Operations)
	assert.Equal(t, 1, summary.CustodyOperations)
	assert.Equal(t, "10.30", summary.Total.StringFixed(2), "decimal sum has no float drift")
}

func TestInspect_Errors(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.xml"))
	assert.ErrorContains(t, err, "failed to open report")

	_, err = InspectReader(strings.NewReader("<other><x/></other>"))
	assert.ErrorIs(t, err, ErrNotReport)

	_, err = InspectReader(strings.NewReader("not xml <"))
	assert.Error(t, err)

	bad := `<archivo><informe><aviso><detalle_operaciones><datos_operacion><tipo_bien><datos_efectivo_instrumentos><monto_operacion>abc</monto_operacion></datos_efectivo_instrumentos></tipo_bien></datos_operacion></detalle_operaciones></aviso></informe></archivo>`
	path := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))
	_, err = Inspect(path)
	assert.ErrorContains(t, err, "invalid monto_operacion")
}
