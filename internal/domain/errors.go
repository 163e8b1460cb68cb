package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// ErrCorrectionFinalized: la corrección ya está APPROVED/REJECTED/PARTIAL y es inmutable.
	ErrCorrectionFinalized = errors.New("la corrección ya fue finalizada")
	// ErrBatchRequired: un ítem sin lote no puede aplicarse al stock.
	ErrBatchRequired = errors.New("el ítem requiere un lote para aplicarse")
	// ErrLocked: otro proceso tiene el candado de la operación.
	ErrLocked = errors.New("operación en curso por otro usuario")
)

// Códigos estables expuestos en la API.
const (
	CodeValidation          = "VALIDATION"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeCorrectionFinalized = "CORRECTION_FINALIZED"
	CodeBatchRequired       = "BATCH_REQUIRED"
	CodeConflict            = "CONFLICT"
	CodeLocked              = "LOCKED"
	CodeInternal            = "INTERNAL"
)

// CodeOf resuelve el código estable de un error con errors.Is; INTERNAL si no es de dominio.
func CodeOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrCorrectionFinalized):
		return CodeCorrectionFinalized
	case errors.Is(err, ErrBatchRequired):
		return CodeBatchRequired
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate), errors.Is(err, ErrEmailAlreadyExists):
		return CodeConflict
	case errors.Is(err, ErrLocked):
		return CodeLocked
	}
	return CodeInternal
}

// StockError describe un rechazo de stock con el detalle necesario para el cliente,
// en lugar de un mensaje que haya que interpretar por subcadenas.
type StockError struct {
	Code         string
	BatchID      string
	LocationType string
	LocationID   string
	Available    decimal.Decimal
	Requested    decimal.Decimal
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: lote %s en %s/%s disponible=%s solicitado=%s",
		ErrInsufficientStock.Error(), e.BatchID, e.LocationType, e.LocationID,
		e.Available.String(), e.Requested.String())
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError agrupa errores por campo. Unwrap devuelve ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError crea un error con un solo campo.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
