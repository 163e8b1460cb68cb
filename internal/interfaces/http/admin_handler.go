package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/admin"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain/authz"
)

// AdminHandler reinicios de la empresa. Cada intento queda auditado, también los rechazados.
type AdminHandler struct {
	uc *admin.ResetUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc *admin.ResetUseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// FactoryReset godoc
// @Summary      Borrar transacciones y datos maestros (conserva usuarios y roles)
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetRequest  true  "password y frase de confirmación"
// @Success      200   {object}  dto.ResetResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      423   {object}  dto.ErrorResponse
// @Router       /api/admin/factory-reset [post]
func (h *AdminHandler) FactoryReset(c *fiber.Ctx) error {
	return h.reset(c, h.uc.FactoryReset)
}

// YearEndReset godoc
// @Summary      Cierre de año: borra transacciones y deja el stock como saldo inicial
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetRequest  true  "password y frase de confirmación"
// @Success      200   {object}  dto.ResetResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      423   {object}  dto.ErrorResponse
// @Router       /api/admin/year-end-reset [post]
func (h *AdminHandler) YearEndReset(c *fiber.Ctx) error {
	return h.reset(c, h.uc.YearEndReset)
}

func (h *AdminHandler) reset(c *fiber.Ctx, run func(ctx context.Context, s *authz.Session, in dto.ResetRequest) (*dto.ResetResponse, error)) error {
	s, err := requireSession(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ResetRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := run(c.UserContext(), s, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
