package repository

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// StockCorrectionRepository persistencia de correcciones de stock con sus ítems.
// GetByID/GetForUpdate devuelven (nil, nil) si no existe.
type StockCorrectionRepository interface {
	Create(ctx context.Context, correction *entity.StockCorrection) error
	GetByID(ctx context.Context, id string) (*entity.StockCorrection, error)
	// GetForUpdate bloquea la cabecera de la corrección hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.StockCorrection, error)
	// Update reescribe cabecera e ítems.
	Update(ctx context.Context, correction *entity.StockCorrection) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter CorrectionFilter, page Page) ([]*entity.StockCorrection, int, error)
}

// SellStockCorrectionRepository persistencia de correcciones de venta.
type SellStockCorrectionRepository interface {
	Create(ctx context.Context, correction *entity.SellStockCorrection) error
	GetByID(ctx context.Context, id string) (*entity.SellStockCorrection, error)
	GetForUpdate(ctx context.Context, id string) (*entity.SellStockCorrection, error)
	// Update persiste estado, revisión y estado por ítem. Las cantidades no cambian tras crear.
	Update(ctx context.Context, correction *entity.SellStockCorrection) error
	ListBySell(ctx context.Context, sellID string) ([]*entity.SellStockCorrection, error)
	List(ctx context.Context, filter SellCorrectionFilter, page Page) ([]*entity.SellStockCorrection, int, error)
}
