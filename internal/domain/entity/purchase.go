package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase recepción de mercancía en una bodega; cada ítem crea un lote nuevo.
type Purchase struct {
	ID           string
	CompanyID    string
	Reference    string
	SupplierName string
	StoreID      string
	Items        []PurchaseItem
	Total        decimal.Decimal
	CreatedBy    string
	CreatedAt    time.Time
}

// PurchaseItem línea de compra; BatchID se completa al recibir.
type PurchaseItem struct {
	ProductID       string
	BatchID         string
	BatchNumber     string
	ExpiryDate      *time.Time
	Price           decimal.Decimal
	Quantity        decimal.Decimal
	WarningQuantity *decimal.Decimal
}
