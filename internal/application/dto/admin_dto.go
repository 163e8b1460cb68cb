package dto

import "time"

// ResetRequest reautenticación y frase de confirmación para reinicios.
type ResetRequest struct {
	Password     string `json:"password" validate:"required"`
	Confirmation string `json:"confirmation" validate:"required"`
}

// ResetResponse resumen de un reinicio ejecutado.
type ResetResponse struct {
	Kind            string    `json:"kind"`
	CompanyID       string    `json:"company_id"`
	OpeningBalances int       `json:"opening_balances"`
	ExecutedAt      time.Time `json:"executed_at"`
}
