// Package pdf genera el comprobante de atención de un pedido de tienda.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Centro de distribución │ N° Pedido + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TIENDA + PRODUCTO (EAN / referencia)                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Cantidad | Atendido por | Notas              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Solicitado / Entregado / Pendiente / Estado        │
//	│  FOOTER: QR con el id del pedido                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const dateLayout = "02/01/2006 15:04"

// Receipt datos del comprobante: el pedido con su producto y el historial de atenciones.
type Receipt struct {
	Order        entity.OrderView
	Fulfillments []*entity.Fulfillment
	Issuer       string
	GeneratedAt  time.Time
}

// ReceiptGenerator arma el PDF con Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// Generate devuelve los bytes del PDF.
func (g *ReceiptGenerator) Generate(_ context.Context, r Receipt) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de atención "+r.Order.ID, true).
		WithAuthor(nonEmpty(r.Issuer, "CD"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(orderRow(r.Order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(historyRows(r.Fulfillments)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(r.Order))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(r.Order.ID))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(r Receipt) core.Row {
	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(r.Issuer, "Centro de Distribución"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Comprobante de atención de pedido", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PEDIDO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(r.Order.ID, props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+generated.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func orderRow(o entity.OrderView) core.Row {
	return row.New(20).Add(
		col.New(6).Add(
			text.New("TIENDA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(o.Store, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Solicitado por %s el %s",
				nonEmpty(o.RequestedBy, "-"), o.CreatedAt.Format(dateLayout)),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
		col.New(6).Add(
			text.New("PRODUCTO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(o.ProductName, o.ProductID), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("EAN: %s   |   Ref.: %s", nonEmpty(o.EAN, "-"), nonEmpty(o.Reference, "-")),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Cantidad", 2, align.Center),
		h("Atendido por", 3, align.Left),
		h("Notas", 4, align.Left),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func historyRows(history []*entity.Fulfillment) []core.Row {
	if len(history) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Sin atenciones registradas.", props.Text{Size: 8, Top: 1, Color: colorGray, Align: align.Center}),
		))}
	}
	rows := make([]core.Row, 0, len(history))
	for _, f := range history {
		rows = append(rows, row.New(7).Add(
			col.New(3).Add(text.New(f.CreatedAt.Format(dateLayout), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(strconv.Itoa(f.FulfilledQuantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(nonEmpty(f.FulfilledBy, "-"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(nonEmpty(f.Notes, ""), props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return rows
}

func totalsRow(o entity.OrderView) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Solicitado:"),
			text.New("Entregado:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
			text.New("Pendiente:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 10}),
			text.New("Estado:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 16, Color: colorPrimary}),
		),
		col.New(3).Add(
			value(strconv.Itoa(o.RequestedQuantity), 0),
			value(strconv.Itoa(o.DeliveredQuantity), 5),
			value(strconv.Itoa(o.Pending()), 10),
			text.New(string(o.Status), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 16, Color: colorPrimary}),
		),
	)
}

func footerRow(orderID string) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(orderID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Escanee el código para consultar el pedido en el sistema.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Conserve este comprobante como soporte de la entrega.", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 14, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
