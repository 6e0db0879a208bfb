// Package report reads generated tcv reports back for inspection.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/xmlpath.v2"
)

// ErrNotReport is returned when the document root is not an archivo element.
var ErrNotReport = errors.New("document is not a tcv report")

// Paths match on local names, so the default namespace of the report is
// ignored.
var (
	rootPath      = xmlpath.MustCompile("/archivo")
	monthPath     = xmlpath.MustCompile("/archivo/informe/mes_reportado")
	obligorPath   = xmlpath.MustCompile("/archivo/informe/sujeto_obligado/clave_sujeto_obligado")
	referencePath = xmlpath.MustCompile("/archivo/informe/aviso/referencia_aviso")
	entityPath    = xmlpath.MustCompile("/archivo/informe/aviso/persona_aviso/tipo_persona/persona_moral/denominacion_razon")
	rfcPath       = xmlpath.MustCompile("/archivo/informe/aviso/persona_aviso/tipo_persona/persona_moral/rfc")
	operationPath = xmlpath.MustCompile("/archivo/informe/aviso/detalle_operaciones/datos_operacion")
	amountPath    = xmlpath.MustCompile("tipo_bien/datos_efectivo_instrumentos/monto_operacion")
	custodyPath   = xmlpath.MustCompile("custodia")
)

// Summary describes one generated report.
type Summary struct {
	Month             string
	ObligorKey        string
	NoticeReference   string
	Entity            string
	RFC               string
	Operations        int
	CustodyOperations int
	Total             decimal.Decimal
}

// Inspect parses the report at path.
func Inspect(path string) (*Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer file.Close()

	return InspectReader(file)
}

// InspectReader parses a report from r.
func InspectReader(r io.Reader) (*Summary, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if !rootPath.Exists(root) {
		return nil, ErrNotReport
	}

	s := &Summary{
		Month:           text(monthPath, root),
		ObligorKey:      text(obligorPath, root),
		NoticeReference: text(referencePath, root),
		Entity:          text(entityPath, root),
		RFC:             text(rfcPath, root),
		Total:           decimal.Zero,
	}

	iter := operationPath.Iter(root)
	for iter.Next() {
		op := iter.Node()
		s.Operations++
		if custodyPath.Exists(op) {
			s.CustodyOperations++
		}

		raw := text(amountPath, op)
		if raw == "" {
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("operation %d: invalid monto_operacion %q: %w", s.Operations, raw, err)
		}
		s.Total = s.Total.Add(amount)
	}

	return s, nil
}

func text(path *xmlpath.Path, node *xmlpath.Node) string {
	value, _ := path.String(node)
	return strings.TrimSpace(value)
}

// String renders the summary as aligned label/value lines.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reported month:     %s\n", s.Month)
	fmt.Fprintf(&b, "Obligor key:        %s\n", s.ObligorKey)
	fmt.Fprintf(&b, "Notice reference:   %s\n", s.NoticeReference)
	fmt.Fprintf(&b, "Entity:             %s\n", s.Entity)
	fmt.Fprintf(&b, "RFC:                %s\n", s.RFC)
	fmt.Fprintf(&b, "Operations:         %d\n", s.Operations)
	fmt.Fprintf(&b, "Custody operations: %d\n", s.CustodyOperations)
	fmt.Fprintf(&b, "Total amount:       %s\n", s.Total.StringFixed(2))
	return b.String()
}
