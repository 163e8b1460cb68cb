package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// LedgerUseCase consulta y exportación del ledger de stock.
type LedgerUseCase struct {
	repos    Repos
	exporter ports.LedgerExporter
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(repos Repos, exporter ports.LedgerExporter) *LedgerUseCase {
	return &LedgerUseCase{repos: repos, exporter: exporter}
}

func ledgerFilter(companyID string, q *dto.LedgerQuery) (repository.LedgerFilter, error) {
	if q.MovementType != "" && !entity.IsValidMovementType(q.MovementType) {
		return repository.LedgerFilter{}, domain.NewValidationError("movement_type", "tipo de movimiento inválido")
	}
	dr, err := ParseDateRange(q.From, q.To)
	if err != nil {
		return repository.LedgerFilter{}, err
	}
	return repository.LedgerFilter{
		CompanyID:    companyID,
		BatchID:      q.BatchID,
		ProductID:    q.ProductID,
		LocationType: q.LocationType,
		LocationID:   q.LocationID,
		MovementType: q.MovementType,
		SourceType:   q.SourceType,
		Date:         dr,
	}, nil
}

// List lista entradas del ledger, más recientes primero.
func (uc *LedgerUseCase) List(ctx context.Context, companyID string, q dto.LedgerQuery) (dto.ListResponse[dto.LedgerEntryResponse], error) {
	f, err := ledgerFilter(companyID, &q)
	if err != nil {
		return dto.ListResponse[dto.LedgerEntryResponse]{}, err
	}
	page := ToPage(&q.PageRequest)
	list, total, err := uc.repos.Ledger.List(ctx, f, page)
	if err != nil {
		return dto.ListResponse[dto.LedgerEntryResponse]{}, err
	}
	return dto.NewListResponse(toLedgerResponses(list), total, q.PageRequest), nil
}

// Export genera la hoja de cálculo con todas las entradas que cumplen el filtro (sin paginar).
// Devuelve el contenido y un nombre de archivo sugerido.
func (uc *LedgerUseCase) Export(ctx context.Context, companyID string, q dto.LedgerQuery) ([]byte, string, error) {
	f, err := ledgerFilter(companyID, &q)
	if err != nil {
		return nil, "", err
	}
	list, err := uc.repos.Ledger.ListAll(ctx, f)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.exporter.ExportLedger(ctx, toLedgerResponses(list))
	if err != nil {
		return nil, "", err
	}
	return data, "stock-ledger-" + time.Now().UTC().Format("20060102-150405") + ".xlsx", nil
}

func toLedgerResponses(list []*entity.StockLedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.LedgerEntryResponse{
			ID:           e.ID,
			BatchID:      e.BatchID,
			ProductID:    e.ProductID,
			LocationType: e.LocationType,
			LocationID:   e.LocationID,
			MovementType: e.MovementType,
			Quantity:     e.Quantity,
			Reference:    e.Reference,
			SourceType:   e.SourceType,
			SourceID:     e.SourceID,
			UserID:       e.UserID,
			MovementDate: e.MovementDate,
		})
	}
	return out
}
