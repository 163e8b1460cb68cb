package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockCorrectionItemRequest delta firmado en la unidad indicada. BatchID puede quedar vacío
// mientras la corrección esté pendiente, pero es obligatorio para aprobarla.
type StockCorrectionItemRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	BatchID         string          `json:"batch_id"`
	UnitOfMeasureID string          `json:"unit_of_measure_id" validate:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
}

// StockCorrectionRequest alta o reemplazo de una corrección de stock.
type StockCorrectionRequest struct {
	Reference  string                       `json:"reference" validate:"omitempty,max=60"`
	Reason     string                       `json:"reason" validate:"required,oneof=PURCHASE_ERROR TRANSFER_ERROR EXPIRED DAMAGED MANUAL_ADJUSTMENT"`
	PurchaseID string                       `json:"purchase_id"`
	TransferID string                       `json:"transfer_id"`
	StoreID    string                       `json:"store_id"`
	ShopID     string                       `json:"shop_id"`
	Notes      string                       `json:"notes" validate:"max=1000"`
	Items      []StockCorrectionItemRequest `json:"items" validate:"required,min=1,dive"`
}

// StockCorrectionItemResponse ítem de corrección.
type StockCorrectionItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	BatchID         string          `json:"batch_id,omitempty"`
	UnitOfMeasureID string          `json:"unit_of_measure_id"`
	Quantity        decimal.Decimal `json:"quantity"`
}

// StockCorrectionResponse salida de una corrección de stock.
type StockCorrectionResponse struct {
	ID         string                        `json:"id"`
	Reference  string                        `json:"reference"`
	Reason     string                        `json:"reason"`
	Status     string                        `json:"status"`
	PurchaseID string                        `json:"purchase_id,omitempty"`
	TransferID string                        `json:"transfer_id,omitempty"`
	StoreID    string                        `json:"store_id,omitempty"`
	ShopID     string                        `json:"shop_id,omitempty"`
	Notes      string                        `json:"notes"`
	Items      []StockCorrectionItemResponse `json:"items"`
	CreatedBy  string                        `json:"created_by"`
	ApprovedBy string                        `json:"approved_by,omitempty"`
	ApprovedAt *time.Time                    `json:"approved_at,omitempty"`
	RejectedBy string                        `json:"rejected_by,omitempty"`
	RejectedAt *time.Time                    `json:"rejected_at,omitempty"`
	CreatedAt  time.Time                     `json:"created_at"`
	UpdatedAt  time.Time                     `json:"updated_at"`
}

// StockCorrectionQuery filtros de GET /api/stock-corrections.
type StockCorrectionQuery struct {
	PageRequest
	Status       string `query:"status"`
	Reason       string `query:"reason"`
	LocationType string `query:"location_type"`
	LocationID   string `query:"location_id"`
	From         string `query:"from"`
	To           string `query:"to"`
}

// SellCorrectionBatchDTO delta firmado sobre un lote de la venta.
type SellCorrectionBatchDTO struct {
	BatchID  string          `json:"batch_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SellCorrectionItemRequest ítem de corrección de venta. Quantity es opcional: si viene, debe
// coincidir con la suma de los lotes.
type SellCorrectionItemRequest struct {
	SellItemID string                   `json:"sell_item_id" validate:"required"`
	Quantity   *decimal.Decimal         `json:"quantity"`
	Batches    []SellCorrectionBatchDTO `json:"batches" validate:"required,min=1,dive"`
}

// CreateSellCorrectionRequest alta de corrección de venta. Referencia, estado y totales
// se calculan en el servidor.
type CreateSellCorrectionRequest struct {
	SellID string                      `json:"sell_id" validate:"required"`
	Notes  string                      `json:"notes" validate:"max=1000"`
	Items  []SellCorrectionItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SellCorrectionItemResponse ítem de corrección de venta.
type SellCorrectionItemResponse struct {
	ID             string                   `json:"id,omitempty"`
	SellItemID     string                   `json:"sell_item_id"`
	ProductID      string                   `json:"product_id"`
	UnitPrice      decimal.Decimal          `json:"unit_price"`
	Quantity       decimal.Decimal          `json:"quantity"`
	TotalPrice     decimal.Decimal          `json:"total_price"`
	ItemSaleStatus string                   `json:"item_sale_status"`
	Batches        []SellCorrectionBatchDTO `json:"batches"`
}

// SellCorrectionResponse salida de una corrección de venta (también usada para el borrador).
type SellCorrectionResponse struct {
	ID        string                       `json:"id,omitempty"`
	SellID    string                       `json:"sell_id"`
	Reference string                       `json:"reference"`
	Notes     string                       `json:"notes"`
	Status    string                       `json:"status"`
	Total     decimal.Decimal              `json:"total"`
	IsChecked bool                         `json:"is_checked"`
	CheckedBy string                       `json:"checked_by,omitempty"`
	CheckedAt *time.Time                   `json:"checked_at,omitempty"`
	Items     []SellCorrectionItemResponse `json:"items"`
	CreatedBy string                       `json:"created_by,omitempty"`
	DecidedBy string                       `json:"decided_by,omitempty"`
	DecidedAt *time.Time                   `json:"decided_at,omitempty"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

// ApproveSellCorrectionRequest ItemIDs vacío aprueba todos los ítems.
type ApproveSellCorrectionRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// SellCorrectionQuery filtros de GET /api/sell-stock-corrections.
type SellCorrectionQuery struct {
	PageRequest
	SellID    string `query:"sell_id"`
	Status    string `query:"status"`
	IsChecked string `query:"is_checked"`
}
