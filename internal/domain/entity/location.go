package entity

import "time"

// Tipos de ubicación que mantienen stock.
const (
	LocationStore = "STORE" // bodega / almacén
	LocationShop  = "SHOP"  // tienda que vende al cliente
)

// Location representa una tienda o bodega (multi-ubicación).
type Location struct {
	ID        string
	CompanyID string
	Type      string // STORE | SHOP
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationRef identifica una ubicación sin cargarla.
type LocationRef struct {
	Type string
	ID   string
}

// IsValidLocationType indica si t es STORE o SHOP.
func IsValidLocationType(t string) bool {
	return t == LocationStore || t == LocationShop
}

// Key clave estable para ordenar y agrupar.
func (l LocationRef) Key() string { return l.Type + ":" + l.ID }
