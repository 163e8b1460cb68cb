package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
)

// DocumentHandler documentos que mueven stock: ventas, traslados y compras.
type DocumentHandler struct {
	sells     *inventory.SellUseCase
	transfers *inventory.TransferUseCase
	purchases *inventory.PurchaseUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(sells *inventory.SellUseCase, transfers *inventory.TransferUseCase, purchases *inventory.PurchaseUseCase) *DocumentHandler {
	return &DocumentHandler{sells: sells, transfers: transfers, purchases: purchases}
}

// CreateSell godoc
// @Summary      Registrar venta (descuenta stock de la tienda por lote)
// @Tags         sells
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSellRequest  true  "Factura, tienda e ítems con lotes"
// @Success      201   {object}  dto.SellResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sells [post]
func (h *DocumentHandler) CreateSell(c *fiber.Ctx) error {
	var in dto.CreateSellRequest
	if handled, err := parseBody(c, &in); handled {
		return err
	}
	out, err := h.sells.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *DocumentHandler) GetSell(c *fiber.Ctx) error {
	out, err := h.sells.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListSells godoc
// @Summary      Listar ventas
// @Tags         sells
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Tienda"
// @Param        from         query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200          {object}  dto.ListResponse[dto.SellResponse]
// @Router       /api/sells [get]
func (h *DocumentHandler) ListSells(c *fiber.Ctx) error {
	var q dto.DocumentQuery
	if handled, err := parseQuery(c, &q); handled {
		return err
	}
	out, err := h.sells.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateTransfer godoc
// @Summary      Trasladar lotes entre ubicaciones
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Origen, destino e ítems"
// @Success      201   {object}  dto.TransferResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *DocumentHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if handled, err := parseBody(c, &in); handled {
		return err
	}
	out, err := h.transfers.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *DocumentHandler) GetTransfer(c *fiber.Ctx) error {
	out, err := h.transfers.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *DocumentHandler) ListTransfers(c *fiber.Ctx) error {
	var q dto.DocumentQuery
	if handled, err := parseQuery(c, &q); handled {
		return err
	}
	out, err := h.transfers.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreatePurchase godoc
// @Summary      Registrar compra (crea lotes y entra stock a la bodega)
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Bodega e ítems"
// @Success      201   {object}  dto.PurchaseResponse
// @Router       /api/purchases [post]
func (h *DocumentHandler) CreatePurchase(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if handled, err := parseBody(c, &in); handled {
		return err
	}
	out, err := h.purchases.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *DocumentHandler) GetPurchase(c *fiber.Ctx) error {
	out, err := h.purchases.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *DocumentHandler) ListPurchases(c *fiber.Ctx) error {
	var q dto.DocumentQuery
	if handled, err := parseQuery(c, &q); handled {
		return err
	}
	out, err := h.purchases.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
