package entity

import "time"

// Estados de usuario.
const (
	UserActive    = "active"
	UserInactive  = "inactive"
	UserSuspended = "suspended"
)

// User usuario/empleado de una Company. Sus permisos vienen del Role asignado.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt, nunca plano
	Name         string
	RoleID       string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
