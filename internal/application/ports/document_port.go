package ports

import (
	"context"

	"github.com/jhoicas/stock-api/internal/application/dto"
)

// CorrectionVoucher datos que necesita el comprobante imprimible de una corrección.
type CorrectionVoucher struct {
	CompanyName  string
	LocationName string
	Correction   dto.StockCorrectionResponse
	ProductNames map[string]string
	BatchNumbers map[string]string
	UnitNames    map[string]string
}

// CorrectionPDFRenderer genera el comprobante PDF de una corrección de stock.
type CorrectionPDFRenderer interface {
	RenderCorrection(ctx context.Context, v CorrectionVoucher) ([]byte, error)
}

// LedgerExporter serializa entradas del ledger a una hoja de cálculo descargable.
type LedgerExporter interface {
	ExportLedger(ctx context.Context, rows []dto.LedgerEntryResponse) ([]byte, error)
}
