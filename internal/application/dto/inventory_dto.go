package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLocationResponse cantidad de un lote en una ubicación.
type StockLocationResponse struct {
	LocationType string          `json:"location_type"`
	LocationID   string          `json:"location_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// BatchResponse lote con su distribución por ubicación.
type BatchResponse struct {
	ID              string                  `json:"id"`
	CompanyID       string                  `json:"company_id"`
	ProductID       string                  `json:"product_id"`
	StoreID         string                  `json:"store_id"`
	PurchaseID      string                  `json:"purchase_id,omitempty"`
	BatchNumber     string                  `json:"batch_number"`
	ExpiryDate      *time.Time              `json:"expiry_date,omitempty"`
	Price           decimal.Decimal         `json:"price"`
	Stock           decimal.Decimal         `json:"stock"`
	WarningQuantity *decimal.Decimal        `json:"warning_quantity,omitempty"`
	Locations       []StockLocationResponse `json:"locations,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

// BatchListQuery filtros de GET /api/batches.
type BatchListQuery struct {
	PageRequest
	ProductID string `query:"product_id"`
	StoreID   string `query:"store_id"`
}

// LowStockResponse lote cuyo stock total está en o bajo su umbral, con la cantidad sugerida
// de reposición (umbral × 1.5 − stock).
type LowStockResponse struct {
	BatchID         string          `json:"batch_id"`
	BatchNumber     string          `json:"batch_number"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	TotalStock      decimal.Decimal `json:"total_stock"`
	WarningQuantity decimal.Decimal `json:"warning_quantity"`
	SuggestedQty    decimal.Decimal `json:"suggested_qty"`
}

// LedgerQuery filtros de GET /api/stock-ledger.
type LedgerQuery struct {
	PageRequest
	BatchID      string `query:"batch_id"`
	ProductID    string `query:"product_id"`
	LocationType string `query:"location_type"`
	LocationID   string `query:"location_id"`
	MovementType string `query:"movement_type"`
	SourceType   string `query:"source_type"`
	From         string `query:"from"`
	To           string `query:"to"`
}

// LedgerEntryResponse entrada del ledger de stock.
type LedgerEntryResponse struct {
	ID           string          `json:"id"`
	BatchID      string          `json:"batch_id"`
	ProductID    string          `json:"product_id"`
	LocationType string          `json:"location_type"`
	LocationID   string          `json:"location_id"`
	MovementType string          `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reference    string          `json:"reference"`
	SourceType   string          `json:"source_type"`
	SourceID     string          `json:"source_id"`
	UserID       string          `json:"user_id"`
	MovementDate time.Time       `json:"movement_date"`
}

// DiscrepancyResponse diferencia entre ledger y snapshot de stock.
type DiscrepancyResponse struct {
	BatchID        string          `json:"batch_id"`
	LocationType   string          `json:"location_type"`
	LocationID     string          `json:"location_id"`
	LedgerQuantity decimal.Decimal `json:"ledger_quantity"`
	StockQuantity  decimal.Decimal `json:"stock_quantity"`
	Difference     decimal.Decimal `json:"difference"`
}

// ReconciliationResponse resultado de la verificación ledger vs stock.
type ReconciliationResponse struct {
	CheckedAt     time.Time             `json:"checked_at"`
	Consistent    bool                  `json:"consistent"`
	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
}

// TransferItemRequest lote y cantidad a trasladar.
type TransferItemRequest struct {
	BatchID  string          `json:"batch_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest traslado entre dos ubicaciones.
type CreateTransferRequest struct {
	Reference        string                `json:"reference" validate:"omitempty,max=60"`
	FromLocationType string                `json:"from_location_type" validate:"required,oneof=STORE SHOP"`
	FromLocationID   string                `json:"from_location_id" validate:"required"`
	ToLocationType   string                `json:"to_location_type" validate:"required,oneof=STORE SHOP"`
	ToLocationID     string                `json:"to_location_id" validate:"required"`
	Notes            string                `json:"notes"`
	Items            []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID               string                `json:"id"`
	Reference        string                `json:"reference"`
	FromLocationType string                `json:"from_location_type"`
	FromLocationID   string                `json:"from_location_id"`
	ToLocationType   string                `json:"to_location_type"`
	ToLocationID     string                `json:"to_location_id"`
	Notes            string                `json:"notes"`
	Items            []TransferItemRequest `json:"items"`
	CreatedBy        string                `json:"created_by"`
	CreatedAt        time.Time             `json:"created_at"`
}

// PurchaseItemRequest línea de compra: crea un lote nuevo en el almacén.
type PurchaseItemRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	BatchNumber     string           `json:"batch_number" validate:"required,max=60"`
	ExpiryDate      *time.Time       `json:"expiry_date"`
	Price           decimal.Decimal  `json:"price"`
	Quantity        decimal.Decimal  `json:"quantity"`
	WarningQuantity *decimal.Decimal `json:"warning_quantity"`
}

// CreatePurchaseRequest compra recibida en un almacén (STORE).
type CreatePurchaseRequest struct {
	Reference    string                `json:"reference" validate:"omitempty,max=60"`
	SupplierName string                `json:"supplier_name" validate:"omitempty,max=200"`
	StoreID      string                `json:"store_id" validate:"required"`
	Items        []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PurchaseItemResponse línea de compra con el lote creado.
type PurchaseItemResponse struct {
	ProductID   string          `json:"product_id"`
	BatchID     string          `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// PurchaseResponse salida de una compra.
type PurchaseResponse struct {
	ID           string                 `json:"id"`
	Reference    string                 `json:"reference"`
	SupplierName string                 `json:"supplier_name"`
	StoreID      string                 `json:"store_id"`
	Items        []PurchaseItemResponse `json:"items"`
	Total        decimal.Decimal        `json:"total"`
	CreatedBy    string                 `json:"created_by"`
	CreatedAt    time.Time              `json:"created_at"`
}

// DocumentQuery filtros comunes de listados de ventas, traslados y compras.
type DocumentQuery struct {
	PageRequest
	LocationType string `query:"location_type"`
	LocationID   string `query:"location_id"`
	From         string `query:"from"`
	To           string `query:"to"`
}
