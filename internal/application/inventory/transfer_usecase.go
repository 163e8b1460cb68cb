package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// TransferUseCase traslados de lotes entre ubicaciones, aplicados al instante y en una sola tx.
type TransferUseCase struct {
	tx     TxRunner
	repos  Repos
	engine *StockEngine
	log    *logger.Logger
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(tx TxRunner, repos Repos, engine *StockEngine, log *logger.Logger) *TransferUseCase {
	return &TransferUseCase{tx: tx, repos: repos, engine: engine, log: log}
}

// Create registra el traslado: por ítem, TRANSFER negativo en origen y positivo en destino.
func (uc *TransferUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	from := entity.LocationRef{Type: in.FromLocationType, ID: in.FromLocationID}
	to := entity.LocationRef{Type: in.ToLocationType, ID: in.ToLocationID}
	if from.Key() == to.Key() {
		return nil, domain.NewValidationError("to_location_id", "origen y destino deben ser distintos")
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "se requiere al menos un ítem")
	}
	for i, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor a cero")
		}
	}

	now := time.Now().UTC()
	t := &entity.Transfer{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		Reference:        in.Reference,
		FromLocationType: from.Type,
		FromLocationID:   from.ID,
		ToLocationType:   to.Type,
		ToLocationID:     to.ID,
		Notes:            in.Notes,
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	if t.Reference == "" {
		t.Reference = NewReference("TR", now)
	}
	movs := make([]Movement, 0, 2*len(in.Items))
	for _, it := range in.Items {
		t.Items = append(t.Items, entity.TransferItem{BatchID: it.BatchID, Quantity: it.Quantity})
		movs = append(movs,
			Movement{BatchID: it.BatchID, Location: from, Type: entity.MovementTRANSFER, Quantity: it.Quantity.Neg(),
				Reference: t.Reference, SourceType: entity.SourceTransfer, SourceID: t.ID},
			Movement{BatchID: it.BatchID, Location: to, Type: entity.MovementTRANSFER, Quantity: it.Quantity,
				Reference: t.Reference, SourceType: entity.SourceTransfer, SourceID: t.ID},
		)
	}

	err := uc.tx.Run(ctx, func(r Repos) error {
		if err := r.Transfers.Create(ctx, t); err != nil {
			return err
		}
		return uc.engine.Apply(ctx, r, companyID, userID, now, movs)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", t.ID).Str("reference", t.Reference).
		Str("from", from.Key()).Str("to", to.Key()).Int("items", len(t.Items)).Msg("traslado registrado")
	out := ToTransferResponse(t)
	return &out, nil
}

// GetByID obtiene un traslado.
func (uc *TransferUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.TransferResponse, error) {
	t, err := uc.repos.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || t.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	out := ToTransferResponse(t)
	return &out, nil
}

// List lista traslados (filtro de ubicación: origen o destino).
func (uc *TransferUseCase) List(ctx context.Context, companyID string, q dto.DocumentQuery) (dto.ListResponse[dto.TransferResponse], error) {
	f, page, err := BuildDocumentFilter(companyID, &q)
	if err != nil {
		return dto.ListResponse[dto.TransferResponse]{}, err
	}
	list, total, err := uc.repos.Transfers.List(ctx, f, page)
	if err != nil {
		return dto.ListResponse[dto.TransferResponse]{}, err
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, ToTransferResponse(t))
	}
	return dto.NewListResponse(out, total, q.PageRequest), nil
}

// BuildDocumentFilter arma filtro y página de los listados de documentos.
func BuildDocumentFilter(companyID string, q *dto.DocumentQuery) (repository.DocumentFilter, repository.Page, error) {
	page := ToPage(&q.PageRequest)
	dr, err := ParseDateRange(q.From, q.To)
	if err != nil {
		return repository.DocumentFilter{}, page, err
	}
	return repository.DocumentFilter{
		CompanyID:    companyID,
		LocationType: q.LocationType,
		LocationID:   q.LocationID,
		Created:      dr,
	}, page, nil
}

// ToTransferResponse mapea un traslado.
func ToTransferResponse(t *entity.Transfer) dto.TransferResponse {
	out := dto.TransferResponse{
		ID:               t.ID,
		Reference:        t.Reference,
		FromLocationType: t.FromLocationType,
		FromLocationID:   t.FromLocationID,
		ToLocationType:   t.ToLocationType,
		ToLocationID:     t.ToLocationID,
		Notes:            t.Notes,
		CreatedBy:        t.CreatedBy,
		CreatedAt:        t.CreatedAt,
		Items:            make([]dto.TransferItemRequest, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransferItemRequest{BatchID: it.BatchID, Quantity: it.Quantity})
	}
	return out
}
