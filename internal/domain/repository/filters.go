package repository

import "time"

// Page ventana de paginación (offset/limit) ya normalizada por la capa de aplicación.
type Page struct {
	Limit  int
	Offset int
}

// DateRange rango opcional [From, To] sobre la fecha de creación/movimiento.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains indica si t cae dentro del rango (extremos incluidos).
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// CorrectionFilter filtros del listado de correcciones de stock.
type CorrectionFilter struct {
	CompanyID    string
	Status       string
	Reason       string
	LocationType string
	LocationID   string
	Created      DateRange
}

// SellCorrectionFilter filtros del listado de correcciones de venta.
type SellCorrectionFilter struct {
	CompanyID string
	SellID    string
	Status    string
	IsChecked *bool
}

// LedgerFilter filtros del ledger de stock.
type LedgerFilter struct {
	CompanyID    string
	BatchID      string
	ProductID    string
	LocationType string
	LocationID   string
	MovementType string
	SourceType   string
	Date         DateRange
}

// DocumentFilter filtros comunes para ventas, traslados y compras.
type DocumentFilter struct {
	CompanyID    string
	LocationType string
	LocationID   string
	Created      DateRange
}

// BatchFilter filtros del listado de lotes.
type BatchFilter struct {
	CompanyID string
	ProductID string
	StoreID   string
}
