package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer traslado de cantidades de lotes entre dos ubicaciones. Se aplica al crearse.
type Transfer struct {
	ID               string
	CompanyID        string
	Reference        string
	FromLocationType string
	FromLocationID   string
	ToLocationType   string
	ToLocationID     string
	Notes            string
	Items            []TransferItem
	CreatedBy        string
	CreatedAt        time.Time
}

// TransferItem cantidad de un lote trasladada.
type TransferItem struct {
	BatchID  string
	Quantity decimal.Decimal
}

// From ubicación origen.
func (t *Transfer) From() LocationRef {
	return LocationRef{Type: t.FromLocationType, ID: t.FromLocationID}
}

// To ubicación destino.
func (t *Transfer) To() LocationRef {
	return LocationRef{Type: t.ToLocationType, ID: t.ToLocationID}
}
