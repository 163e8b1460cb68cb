// Package xlsx exporta el ledger de stock a hojas de cálculo con excelize.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/ports"
)

var _ ports.LedgerExporter = (*LedgerExporter)(nil)

const ledgerSheet = "Ledger"

var ledgerHeaders = []string{
	"Fecha", "Tipo", "Cantidad", "Lote", "Producto", "Tipo ubicación", "Ubicación",
	"Referencia", "Origen", "ID origen", "Usuario",
}

// LedgerExporter implementa ports.LedgerExporter.
type LedgerExporter struct{}

// NewLedgerExporter construye el exportador.
func NewLedgerExporter() *LedgerExporter { return &LedgerExporter{} }

// ExportLedger escribe una fila por entrada, con encabezado fijo y autofiltro.
func (e *LedgerExporter) ExportLedger(ctx context.Context, rows []dto.LedgerEntryResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &ledgerHeaders); err != nil {
		return nil, fmt.Errorf("xlsx: encabezado: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(ledgerHeaders))
	if err := f.SetCellStyle(ledgerSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		qty, _ := r.Quantity.Float64()
		values := []any{
			r.MovementDate, r.MovementType, qty, r.BatchID, r.ProductID, r.LocationType, r.LocationID,
			r.Reference, r.SourceType, r.SourceID, r.UserID,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ledgerSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(ledgerSheet, "A", "A", 20); err != nil {
		return nil, fmt.Errorf("xlsx: ancho: %w", err)
	}
	if err := f.AutoFilter(ledgerSheet, fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1), nil); err != nil {
		return nil, fmt.Errorf("xlsx: autofiltro: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
