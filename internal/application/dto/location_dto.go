package dto

import "time"

// CreateLocationRequest entrada para crear una bodega (STORE) o tienda (SHOP).
type CreateLocationRequest struct {
	Type    string `json:"type" validate:"required,oneof=STORE SHOP"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address"`
}

// UpdateLocationRequest entrada para actualizar una ubicación. El tipo no cambia.
type UpdateLocationRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
