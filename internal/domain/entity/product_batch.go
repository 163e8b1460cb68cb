package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductBatch lote recibido de un producto: número de lote único por producto,
// precio, vencimiento opcional y umbral de stock bajo.
// Stock es la cantidad en la bodega que lo recibió (StoreID); lo repartido a tiendas
// vive en BatchStock con LocationType SHOP.
type ProductBatch struct {
	ID              string
	CompanyID       string
	ProductID       string
	StoreID         string
	PurchaseID      string
	BatchNumber     string
	ExpiryDate      *time.Time
	Price           decimal.Decimal
	Stock           decimal.Decimal
	WarningQuantity *decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsExpired indica si el lote venció respecto a now.
func (b *ProductBatch) IsExpired(now time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(now)
}

// BatchStock cantidad actual de un lote en una ubicación (snapshot que el ledger debe explicar).
type BatchStock struct {
	BatchID      string
	LocationType string
	LocationID   string
	Quantity     decimal.Decimal
	UpdatedAt    time.Time
}

// Location devuelve la referencia de ubicación del registro.
func (s *BatchStock) Location() LocationRef {
	return LocationRef{Type: s.LocationType, ID: s.LocationID}
}
