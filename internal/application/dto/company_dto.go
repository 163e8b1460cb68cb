package dto

import "time"

// CreateCompanyRequest alta de empresa con su usuario administrador inicial.
type CreateCompanyRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=200"`
	TaxID         string `json:"tax_id" validate:"omitempty,max=40"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required,min=8"`
	AdminName     string `json:"admin_name" validate:"omitempty,max=200"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyBootstrapResponse empresa creada con su rol y usuario administrador.
type CompanyBootstrapResponse struct {
	Company CompanyResponse `json:"company"`
	Role    RoleResponse    `json:"role"`
	Admin   UserResponse    `json:"admin"`
}
