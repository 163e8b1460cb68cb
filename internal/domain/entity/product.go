package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El stock vive en los lotes (ProductBatch).
type Product struct {
	ID              string
	CompanyID       string
	SKU             string // único por empresa
	Name            string
	Description     string
	Price           decimal.Decimal // precio de venta sugerido
	UnitMeasure     string
	WarningQuantity *decimal.Decimal // umbral de stock bajo por defecto para sus lotes
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UnitOfMeasure unidad con factor de conversión a la unidad base del producto.
// Ej: "Caja x12" tiene Factor 12.
type UnitOfMeasure struct {
	ID        string
	CompanyID string
	Name      string
	Factor    decimal.Decimal
	CreatedAt time.Time
}

// ToBase convierte una cantidad expresada en esta unidad a unidades base.
// El llamador garantiza que la unidad existe; el factor siempre es positivo.
func (u UnitOfMeasure) ToBase(q decimal.Decimal) decimal.Decimal {
	return q.Mul(u.Factor)
}
