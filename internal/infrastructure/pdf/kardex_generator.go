// Package pdf genera el kardex (historial de movimientos de material) en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + generado por   │  Fecha de generación      │
//	│  FILTROS: material / bodega / obra / rango                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Fecha | Tipo | Material | Bodega | Cant | Antes | Después
//	│         detalle: obra / trabajador / motivo                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: ingresos / salidas / costo total / página          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ inventory.KardexGenerator = (*KardexGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorIn      = &props.Color{Red: 0, Green: 110, Blue: 50}
	colorOut     = &props.Color{Red: 160, Green: 30, Blue: 30}
)

// KardexGenerator implementa inventory.KardexGenerator usando Maroto v2.
type KardexGenerator struct{}

// NewKardexGenerator construye el generador.
func NewKardexGenerator() *KardexGenerator { return &KardexGenerator{} }

// GenerateKardexPDF genera el PDF de la página del historial y devuelve sus bytes.
func (g *KardexGenerator) GenerateKardexPDF(_ context.Context, report inventory.KardexReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(report.Title, true).
		WithAuthor(nonEmpty(report.GeneratedBy, "materiales-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(filterRow(report.Filter))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(report.Rows) {
		m.AddRows(r)
	}
	if len(report.Rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos para los filtros indicados.", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report inventory.KardexReport) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(report.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado por: "+nonEmpty(report.GeneratedBy, "—"), props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New(report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 2,
			}),
		),
	)
}

func filterRow(f repository.MovementFilter) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New("Filtros: "+describeFilter(f), props.Text{Size: 7, Color: colorGray, Top: 1}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Left),
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Material", 2, align.Left),
		h("Bodega", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Antes", 1, align.Right),
		h("Después", 1, align.Right),
	)
}

// tableRows una fila por movimiento más una línea de detalle cuando hay obra, trabajador o motivo.
func tableRows(rows []inventory.KardexRow) []core.Row {
	result := make([]core.Row, 0, len(rows)*2)
	for _, r := range rows {
		mv := r.Movement
		qtyColor := colorIn
		if mv.Type.Sign() < 0 {
			qtyColor = colorOut
		}
		cell := func(a align.Type) props.Text {
			return props.Text{Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1}
		}
		qty := cell(align.Right)
		qty.Color = qtyColor

		result = append(result, row.New(6).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", mv.ID), cell(align.Left))),
			col.New(2).Add(text.New(mv.CreatedAt.Format("02/01/2006 15:04"), cell(align.Left))),
			col.New(2).Add(text.New(typeLabel(mv.Type), cell(align.Left))),
			col.New(2).Add(text.New(r.MaterialName, cell(align.Left))),
			col.New(2).Add(text.New(r.WarehouseName, cell(align.Left))),
			col.New(1).Add(text.New(signed(mv)+" "+r.Unit, qty)),
			col.New(1).Add(text.New(mv.StockBefore.String(), cell(align.Right))),
			col.New(1).Add(text.New(mv.StockAfter.String(), cell(align.Right))),
		))
		if detail := movementDetail(mv); detail != "" {
			result = append(result, row.New(4).Add(
				col.New(1),
				col.New(11).Add(text.New(detail, props.Text{Size: 6.5, Color: colorGray, Left: 1})),
			))
		}
	}
	return result
}

func summaryRow(report inventory.KardexReport) core.Row {
	in, out, cost := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range report.Rows {
		if r.Movement.Type.Sign() > 0 {
			in = in.Add(r.Movement.Quantity)
		} else {
			out = out.Add(r.Movement.Quantity)
		}
		cost = cost.Add(r.Movement.TotalCost)
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 8, Align: align.Right, Right: 1})
	}
	from := report.Filter.Offset + 1
	to := report.Filter.Offset + len(report.Rows)
	if len(report.Rows) == 0 {
		from = 0
	}
	return row.New(22).Add(
		col.New(6).Add(text.New(
			fmt.Sprintf("Movimientos %d-%d de %d", from, to, report.Total),
			props.Text{Size: 8, Color: colorGray, Top: 1},
		)),
		col.New(3).Add(
			label("Ingresos:"),
			label("Salidas:"),
			label("Costo total:"),
		),
		col.New(3).Add(
			value(in.String()),
			value(out.String()),
			value("$"+formatMoney(cost.StringFixed(0))),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func typeLabel(t entity.MovementType) string {
	switch t {
	case entity.MovementIngreso:
		return "Ingreso"
	case entity.MovementEntrega:
		return "Entrega"
	case entity.MovementAjusteNegativo:
		return "Ajuste negativo"
	}
	return t.String()
}

func signed(m *entity.Movement) string {
	q := m.SignedQuantity()
	if q.IsPositive() {
		return "+" + q.String()
	}
	return q.String()
}

func movementDetail(m *entity.Movement) string {
	var parts []string
	if m.ProjectID != "" {
		parts = append(parts, "Obra: "+m.ProjectID)
	}
	if m.WorkerID != "" {
		parts = append(parts, "Trabajador: "+m.WorkerID)
	}
	if m.Reason != "" {
		parts = append(parts, "Motivo: "+m.Reason)
	}
	if m.Consumed {
		parts = append(parts, "Consumido")
	}
	parts = append(parts, "Registró: "+m.DeliveredBy)
	return strings.Join(parts, "   |   ")
}

func describeFilter(f repository.MovementFilter) string {
	var parts []string
	add := func(label, v string) {
		if v != "" {
			parts = append(parts, label+" "+v)
		}
	}
	add("material", f.MaterialID)
	add("bodega", f.WarehouseID)
	add("obra", f.ProjectID)
	add("trabajador", f.WorkerID)
	add("registró", f.DeliveredBy)
	if f.Type != 0 {
		add("tipo", f.Type.String())
	}
	if f.From != nil {
		add("desde", f.From.Format("02/01/2006"))
	}
	if f.To != nil {
		add("hasta", f.To.Format("02/01/2006"))
	}
	if len(parts) == 0 {
		return "ninguno"
	}
	return strings.Join(parts, ", ")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
