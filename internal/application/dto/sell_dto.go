package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellItemBatchDTO cantidad tomada de un lote.
type SellItemBatchDTO struct {
	BatchID  string          `json:"batch_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SellItemRequest línea de venta con su asignación explícita por lote.
type SellItemRequest struct {
	ProductID string             `json:"product_id" validate:"required"`
	UnitPrice decimal.Decimal    `json:"unit_price"`
	Batches   []SellItemBatchDTO `json:"batches" validate:"required,min=1,dive"`
}

// CreateSellRequest venta en una tienda o almacén.
type CreateSellRequest struct {
	InvoiceNo    string            `json:"invoice_no" validate:"required,max=60"`
	LocationType string            `json:"location_type" validate:"required,oneof=STORE SHOP"`
	LocationID   string            `json:"location_id" validate:"required"`
	CustomerName string            `json:"customer_name" validate:"max=200"`
	Items        []SellItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SellItemResponse línea de venta.
type SellItemResponse struct {
	ID         string             `json:"id"`
	ProductID  string             `json:"product_id"`
	UnitPrice  decimal.Decimal    `json:"unit_price"`
	Quantity   decimal.Decimal    `json:"quantity"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	Batches    []SellItemBatchDTO `json:"batches"`
}

// SellResponse salida de una venta.
type SellResponse struct {
	ID           string             `json:"id"`
	InvoiceNo    string             `json:"invoice_no"`
	LocationType string             `json:"location_type"`
	LocationID   string             `json:"location_id"`
	CustomerName string             `json:"customer_name"`
	Items        []SellItemResponse `json:"items"`
	Total        decimal.Decimal    `json:"total"`
	SoldBy       string             `json:"sold_by"`
	SoldAt       time.Time          `json:"sold_at"`
}
