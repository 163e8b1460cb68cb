package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain/inventory"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// ReconciliationUseCase verifica la identidad Σ ledger == stock por lote y ubicación.
type ReconciliationUseCase struct {
	repos Repos
	log   *logger.Logger
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(repos Repos, log *logger.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{repos: repos, log: log}
}

// Check compara el ledger con el snapshot de stock. batchID vacío revisa toda la empresa.
func (uc *ReconciliationUseCase) Check(ctx context.Context, companyID, batchID string) (*dto.ReconciliationResponse, error) {
	sums, err := uc.repos.Ledger.Sums(ctx, companyID, batchID)
	if err != nil {
		return nil, err
	}
	snapshot, err := uc.repos.Stock.Snapshot(ctx, companyID, batchID)
	if err != nil {
		return nil, err
	}
	diffs := inventory.Reconcile(sums, snapshot)
	out := &dto.ReconciliationResponse{
		CheckedAt:     time.Now().UTC(),
		Consistent:    len(diffs) == 0,
		Discrepancies: make([]dto.DiscrepancyResponse, 0, len(diffs)),
	}
	for _, d := range diffs {
		out.Discrepancies = append(out.Discrepancies, dto.DiscrepancyResponse{
			BatchID:        d.Key.BatchID,
			LocationType:   d.Key.LocationType,
			LocationID:     d.Key.LocationID,
			LedgerQuantity: d.LedgerQuantity,
			StockQuantity:  d.StockQuantity,
			Difference:     d.Difference,
		})
	}
	if !out.Consistent {
		uc.log.Warn().Str("company_id", companyID).Int("discrepancies", len(diffs)).Msg("ledger y stock no cuadran")
	}
	return out, nil
}
