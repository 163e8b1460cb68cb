package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU             string           `json:"sku" validate:"required,min=1,max=100"`
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	UnitMeasure     string           `json:"unit_measure" validate:"omitempty,max=20"`
	WarningQuantity *decimal.Decimal `json:"warning_quantity"`
}

// UpdateProductRequest entrada para actualizar un producto (el stock se maneja vía movimientos).
type UpdateProductRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	UnitMeasure     *string          `json:"unit_measure" validate:"omitempty,max=20"`
	WarningQuantity *decimal.Decimal `json:"warning_quantity"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              string           `json:"id"`
	CompanyID       string           `json:"company_id"`
	SKU             string           `json:"sku"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	UnitMeasure     string           `json:"unit_measure"`
	WarningQuantity *decimal.Decimal `json:"warning_quantity,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CreateUnitRequest unidad de medida con su factor a unidad base.
type CreateUnitRequest struct {
	Name   string          `json:"name" validate:"required,min=1,max=50"`
	Factor decimal.Decimal `json:"factor"`
}

// UnitResponse salida de una unidad de medida.
type UnitResponse struct {
	ID        string          `json:"id"`
	CompanyID string          `json:"company_id"`
	Name      string          `json:"name"`
	Factor    decimal.Decimal `json:"factor"`
	CreatedAt time.Time       `json:"created_at"`
}
