package entity

import "time"

// AuditLog traza de acciones sensibles (reinicios, cambios de rol).
type AuditLog struct {
	ID        string
	CompanyID string
	UserID    string
	Action    string
	Detail    string
	Accepted  bool
	CreatedAt time.Time
}
