package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger.
const (
	MovementIN         = "IN"
	MovementOUT        = "OUT"
	MovementTRANSFER   = "TRANSFER"
	MovementADJUSTMENT = "ADJUSTMENT"
	MovementRETURN     = "RETURN"
)

// Tipos de documento origen de un movimiento.
const (
	SourcePurchase            = "PURCHASE"
	SourceSell                = "SELL"
	SourceTransfer            = "TRANSFER"
	SourceStockCorrection     = "STOCK_CORRECTION"
	SourceSellStockCorrection = "SELL_STOCK_CORRECTION"
	SourceOpeningBalance      = "OPENING_BALANCE"
)

// StockLedgerEntry registro inmutable de un movimiento de stock por lote y ubicación.
// Quantity es con signo: positivo entra, negativo sale.
type StockLedgerEntry struct {
	ID           string
	CompanyID    string
	BatchID      string
	ProductID    string
	LocationType string
	LocationID   string
	MovementType string
	Quantity     decimal.Decimal
	Reference    string // documento legible: factura, corrección, traslado
	SourceType   string
	SourceID     string
	UserID       string
	MovementDate time.Time
	CreatedAt    time.Time
}

// IsValidMovementType valida el tipo de movimiento.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementIN, MovementOUT, MovementTRANSFER, MovementADJUSTMENT, MovementRETURN:
		return true
	}
	return false
}
