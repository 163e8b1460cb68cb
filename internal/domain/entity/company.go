package entity

import "time"

// Company organización/tenant dueña de ubicaciones, lotes y documentos.
type Company struct {
	ID        string
	Name      string
	TaxID     string
	Status    string // active, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}
