// Package pdf genera el comprobante imprimible de una corrección de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + Ubicación │  Referencia + Estado          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Motivo / Documento origen / Creado / Decidido        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Lote | Unidad | Cantidad                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  NOTAS + FIRMAS                                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

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

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain/entity"
)

var _ ports.CorrectionPDFRenderer = (*MarotoCorrectionRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var reasonLabels = map[string]string{
	entity.ReasonPurchaseError:    "Error en compra",
	entity.ReasonTransferError:    "Error en traslado",
	entity.ReasonExpired:          "Producto vencido",
	entity.ReasonDamaged:          "Producto dañado",
	entity.ReasonManualAdjustment: "Ajuste manual",
}

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoCorrectionRenderer implementa ports.CorrectionPDFRenderer con Maroto v2.
type MarotoCorrectionRenderer struct{}

// NewMarotoCorrectionRenderer construye el renderer.
func NewMarotoCorrectionRenderer() *MarotoCorrectionRenderer { return &MarotoCorrectionRenderer{} }

// RenderCorrection genera el PDF y devuelve sus bytes.
func (g *MarotoCorrectionRenderer) RenderCorrection(ctx context.Context, v ports.CorrectionVoucher) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := v.Correction
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Corrección de stock "+c.Reference, true).
		WithAuthor(v.CompanyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(detailsRow(c))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(v)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if c.Notes != "" {
		m.AddRows(row.New(14).Add(col.New(12).Add(
			text.New("NOTAS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(c.Notes, props.Text{Size: 8, Top: 6, Color: colorGray}),
		)))
	}
	m.AddRows(row.New(20))
	m.AddRows(signatureRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa y ubicación (izq), referencia y estado (der).
func headerRow(v ports.CorrectionVoucher) core.Row {
	c := v.Correction
	kind := "Tienda"
	if c.StoreID != "" {
		kind = "Bodega"
	}
	statusColor := colorPrimary
	if c.Status == entity.CorrectionRejected {
		statusColor = colorRed
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(v.CompanyName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(kind+": "+nonEmpty(v.LocationName, "—"), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("CORRECCIÓN DE STOCK", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(c.Reference, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New(c.Status, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 14, Color: statusColor}),
		),
	)
}

// detailsRow: motivo, documento origen y trazabilidad.
func detailsRow(c dto.StockCorrectionResponse) core.Row {
	source := "—"
	switch {
	case c.PurchaseID != "":
		source = "Compra " + c.PurchaseID
	case c.TransferID != "":
		source = "Traslado " + c.TransferID
	}
	decided := "Pendiente"
	switch {
	case c.ApprovedAt != nil:
		decided = "Aprobada por " + c.ApprovedBy + " el " + formatDate(*c.ApprovedAt)
	case c.RejectedAt != nil:
		decided = "Rechazada por " + c.RejectedBy + " el " + formatDate(*c.RejectedAt)
	}
	return row.New(20).Add(
		col.New(6).Add(
			text.New("Motivo: "+nonEmpty(reasonLabels[c.Reason], c.Reason), props.Text{Size: 8, Top: 1}),
			text.New("Documento origen: "+source, props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
		col.New(6).Add(
			text.New("Creada por "+c.CreatedBy+" el "+formatDate(c.CreatedAt), props.Text{Size: 8, Top: 1, Align: align.Right}),
			text.New(decided, props.Text{Size: 8, Top: 7, Align: align.Right, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 5, align.Left),
		h("Lote", 3, align.Left),
		h("Unidad", 2, align.Center),
		h("Cantidad", 2, align.Right),
	)
}

// itemRows una fila por ítem; los ajustes negativos en rojo.
func itemRows(v ports.CorrectionVoucher) []core.Row {
	rows := make([]core.Row, 0, len(v.Correction.Items))
	for _, it := range v.Correction.Items {
		qtyColor := colorPrimary
		if it.Quantity.IsNegative() {
			qtyColor = colorRed
		}
		rows = append(rows, row.New(7).Add(
			col.New(5).Add(text.New(nonEmpty(v.ProductNames[it.ProductID], it.ProductID), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(nonEmpty(v.BatchNumbers[it.BatchID], "Sin asignar"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(v.UnitNames[it.UnitOfMeasureID], "—"), props.Text{Size: 8, Top: 1, Align: align.Center})),
			col.New(2).Add(text.New(formatQuantity(it.Quantity.String()), props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1, Color: qtyColor})),
		))
	}
	return rows
}

func signatureRow() core.Row {
	sign := func(label string) core.Col {
		return col.New(5).Add(
			line.New(props.Line{Color: colorGray, Thickness: 0.3}),
			text.New(label, props.Text{Size: 8, Top: 2, Align: align.Center, Color: colorGray}),
		)
	}
	return row.New(12).Add(sign("Elaboró"), col.New(2), sign("Aprobó"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// formatQuantity antepone "+" a los ajustes positivos.
func formatQuantity(s string) string {
	if s == "" || s[0] == '-' || s == "0" {
		return s
	}
	return "+" + s
}
