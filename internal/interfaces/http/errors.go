package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
)

// LocalError guarda el error de un 5xx para que RequestLogger lo registre.
const LocalError = "error"

var statusByCode = map[string]int{
	domain.CodeValidation:          fiber.StatusBadRequest,
	domain.CodeNotFound:            fiber.StatusNotFound,
	domain.CodeUnauthorized:        fiber.StatusUnauthorized,
	domain.CodeForbidden:           fiber.StatusForbidden,
	domain.CodeInsufficientStock:   fiber.StatusUnprocessableEntity,
	domain.CodeCorrectionFinalized: fiber.StatusConflict,
	domain.CodeBatchRequired:       fiber.StatusUnprocessableEntity,
	domain.CodeConflict:            fiber.StatusConflict,
	domain.CodeLocked:              fiber.StatusLocked,
	domain.CodeInternal:            fiber.StatusInternalServerError,
}

// StatusOf status HTTP para un código de error estable.
func StatusOf(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

// ErrorBody arma la respuesta de error. Los internos no exponen el mensaje original.
func ErrorBody(err error) dto.ErrorResponse {
	code := domain.CodeOf(err)
	out := dto.ErrorResponse{Code: code, Message: err.Error()}

	var verr *domain.ValidationError
	var serr *domain.StockError
	switch {
	case errors.As(err, &verr):
		out.Details = verr.Fields
	case errors.As(err, &serr):
		out.Details = map[string]string{
			"batch_id":      serr.BatchID,
			"location_type": serr.LocationType,
			"location_id":   serr.LocationID,
			"available":     serr.Available.String(),
			"requested":     serr.Requested.String(),
		}
	case code == domain.CodeInternal:
		out.Message = "error interno"
	}
	return out
}

// respondError responde con el status del código de dominio.
func respondError(c *fiber.Ctx, err error) error {
	body := ErrorBody(err)
	status := StatusOf(body.Code)
	if status >= fiber.StatusInternalServerError {
		c.Locals(LocalError, err)
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// FiberErrorHandler errores que escapan de los handlers (rutas inexistentes, panics recuperados).
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := domain.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = domain.CodeNotFound
		case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest:
			code = domain.CodeValidation
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return respondError(c, err)
}
