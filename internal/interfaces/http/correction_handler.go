package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/correction"
	"github.com/jhoicas/stock-api/internal/application/dto"
)

// StockCorrectionHandler ajustes manuales de stock por ubicación.
type StockCorrectionHandler struct {
	uc *correction.StockCorrectionUseCase
}

// NewStockCorrectionHandler construye el handler.
func NewStockCorrectionHandler(uc *correction.StockCorrectionUseCase) *StockCorrectionHandler {
	return &StockCorrectionHandler{uc: uc}
}

// Create godoc
// @Summary      Crear corrección de stock pendiente
// @Tags         stock-corrections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockCorrectionRequest  true  "Ubicación, motivo e ítems"
// @Success      201   {object}  dto.StockCorrectionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock-corrections [post]
func (h *StockCorrectionHandler) Create(c *fiber.Ctx) error {
	var in dto.StockCorrectionRequest
	if handled, err := parseBody(c, &in); handled {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Reemplazar una corrección pendiente
// @Tags         stock-corrections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la corrección"
// @Param        body  body  dto.StockCorrectionRequest  true  "Ubicación, motivo e ítems"
// @Success      200   {object}  dto.StockCorrectionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-corrections/{id} [put]
func (h *StockCorrectionHandler) Update(c *fiber.Ctx) error {
	var in dto.StockCorrectionRequest
	if handled, err := parseBody(c, &in); handled {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar corrección (aplica los deltas al stock)
// @Tags         stock-corrections
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la corrección"
// @Success      200  {object}  dto.StockCorrectionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock-corrections/{id}/approve [post]
func (h *StockCorrectionHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar corrección
// @Tags         stock-corrections
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la corrección"
// @Success      200  {object}  dto.StockCorrectionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-corrections/{id}/reject [post]
func (h *StockCorrectionHandler) Reject(c *fiber.Ctx) error {
	out, err := h.uc.Reject(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *StockCorrectionHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *StockCorrectionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar correcciones de stock
// @Tags         stock-corrections
// @Security     Bearer
// @Produce      json
// @Param        status         query  string  false  "PENDING, APPROVED o REJECTED"
// @Param        reason         query  string  false  "Motivo"
// @Param        location_type  query  string  false  "STORE o SHOP"
// @Param        location_id    query  string  false  "Ubicación"
// @Param        from           query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to             query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200            {object}  dto.ListResponse[dto.StockCorrectionResponse]
// @Router       /api/stock-corrections [get]
func (h *StockCorrectionHandler) List(c *fiber.Ctx) error {
	var q dto.StockCorrectionQuery
	if handled, err := parseQuery(c, &q); handled {
		return err
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Comprobante PDF de la corrección
// @Tags         stock-corrections
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la corrección"
// @Success      200  {file}  binary
// @Router       /api/stock-corrections/{id}/pdf [get]
func (h *StockCorrectionHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.uc.PDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(data)
}

// SellCorrectionHandler correcciones de cantidades y lotes de ventas ya registradas.
type SellCorrectionHandler struct {
	uc *correction.SellCorrectionUseCase
}

// NewSellCorrectionHandler construye el handler.
func NewSellCorrectionHandler(uc *correction.SellCorrectionUseCase) *SellCorrectionHandler {
	return &SellCorrectionHandler{uc: uc}
}

// Draft godoc
// @Summary      Borrador de corrección precargado con la venta
// @Tags         sell-stock-corrections
// @Security     Bearer
// @Produce      json
// @Param        sellId  path  string  true  "ID de la venta"
// @Success      200     {object}  dto.SellCorrectionResponse
// @Router       /api/sells/{sellId}/stock-corrections/draft [get]
func (h *SellCorrectionHandler) Draft(c *fiber.Ctx) error {
	out, err := h.uc.Draft(c.UserContext(), GetCompanyID(c), c.Params("sellId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear corrección de venta
// @Tags         sell-stock-corrections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSellCorrectionRequest  true  "Venta e ítems"
// @Success      201   {object}  dto.SellCorrectionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sell-stock-corrections [post]
func (h *SellCorrectionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSellCorrectionRequest
	if handled, err := parseBody(c, &in); handled {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Approve godoc
// @Summary      Aprobar corrección de venta (todos los ítems o los indicados)
// @Tags         sell-stock-corrections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                            true   "ID de la corrección"
// @Param        body  body  dto.ApproveSellCorrectionRequest  false  "item_ids"
// @Success      200   {object}  dto.SellCorrectionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sell-stock-corrections/{id}/approve [post]
func (h *SellCorrectionHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveSellCorrectionRequest
	if len(c.Body()) > 0 {
		if handled, err := parseBody(c, &in); handled {
			return err
		}
	}
	out, err := h.uc.Approve(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in.ItemIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *SellCorrectionHandler) Reject(c *fiber.Ctx) error {
	out, err := h.uc.Reject(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarkAsChecked godoc
// @Summary      Marcar corrección de venta como revisada
// @Tags         sell-stock-corrections
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la corrección"
// @Success      200  {object}  dto.SellCorrectionResponse
// @Router       /api/sell-stock-corrections/{id}/check [post]
func (h *SellCorrectionHandler) MarkAsChecked(c *fiber.Ctx) error {
	out, err := h.uc.MarkAsChecked(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarkManyAsChecked godoc
// @Summary      Marcar varias correcciones como revisadas; resultado por ID
// @Tags         sell-stock-corrections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IDsRequest  true  "ids"
// @Success      200   {array}  dto.BatchOutcome
// @Router       /api/sell-stock-corrections/check [post]
func (h *SellCorrectionHandler) MarkManyAsChecked(c *fiber.Ctx) error {
	var in dto.IDsRequest
	if handled, err := parseBody(c, &in); handled {
		return err
	}
	return c.JSON(h.uc.MarkManyAsChecked(c.UserContext(), GetCompanyID(c), GetUserID(c), in.IDs))
}

func (h *SellCorrectionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListBySell godoc
// @Summary      Correcciones de una venta
// @Tags         sell-stock-corrections
// @Security     Bearer
// @Produce      json
// @Param        sellId  path  string  true  "ID de la venta"
// @Success      200     {array}  dto.SellCorrectionResponse
// @Router       /api/sells/{sellId}/stock-corrections [get]
func (h *SellCorrectionHandler) ListBySell(c *fiber.Ctx) error {
	out, err := h.uc.ListBySell(c.UserContext(), GetCompanyID(c), c.Params("sellId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *SellCorrectionHandler) List(c *fiber.Ctx) error {
	var q dto.SellCorrectionQuery
	if handled, err := parseQuery(c, &q); handled {
		return err
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
