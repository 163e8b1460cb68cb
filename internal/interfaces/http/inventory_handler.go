package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryHandler lotes, ledger de stock y conciliación.
type InventoryHandler struct {
	batches *inventory.BatchUseCase
	ledger  *inventory.LedgerUseCase
	recon   *inventory.ReconciliationUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(batches *inventory.BatchUseCase, ledger *inventory.LedgerUseCase, recon *inventory.ReconciliationUseCase) *InventoryHandler {
	return &InventoryHandler{batches: batches, ledger: ledger, recon: recon}
}

// ListBatches godoc
// @Summary      Listar lotes con su stock por ubicación
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        store_id    query  string  false  "Solo lotes con stock en la bodega"
// @Param        page        query  int     false  "Página"
// @Param        limit       query  int     false  "Tamaño de página"
// @Success      200         {object}  dto.ListResponse[dto.BatchResponse]
// @Router       /api/batches [get]
func (h *InventoryHandler) ListBatches(c *fiber.Ctx) error {
	var q dto.BatchListQuery
	if handled, err := parseQuery(c, &q); handled {
		return err
	}
	out, err := h.batches.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetBatch godoc
// @Summary      Obtener lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *InventoryHandler) GetBatch(c *fiber.Ctx) error {
	out, err := h.batches.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Lotes en o bajo su umbral de alerta
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockResponse
// @Router       /api/batches/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.batches.LowStock(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListLedger godoc
// @Summary      Movimientos del ledger de stock
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        batch_id       query  string  false  "Lote"
// @Param        product_id     query  string  false  "Producto"
// @Param        location_type  query  string  false  "STORE o SHOP"
// @Param        location_id    query  string  false  "Ubicación"
// @Param        movement_type  query  string  false  "IN, OUT, TRANSFER_IN, TRANSFER_OUT, ADJUSTMENT"
// @Param        source_type    query  string  false  "Documento origen"
// @Param        from           query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to             query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200            {object}  dto.ListResponse[dto.LedgerEntryResponse]
// @Router       /api/stock-ledger [get]
func (h *InventoryHandler) ListLedger(c *fiber.Ctx) error {
	var q dto.LedgerQuery
	if handled, err := parseQuery(c, &q); handled {
		return err
	}
	out, err := h.ledger.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ExportLedger godoc
// @Summary      Exportar el ledger filtrado a Excel
// @Tags         ledger
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/stock-ledger/export [get]
func (h *InventoryHandler) ExportLedger(c *fiber.Ctx) error {
	var q dto.LedgerQuery
	if handled, err := parseQuery(c, &q); handled {
		return err
	}
	data, filename, err := h.ledger.Export(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment(filename)
	return c.Send(data)
}

// Reconcile godoc
// @Summary      Comparar stock materializado contra la suma del ledger
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        batch_id  query  string  false  "Limitar a un lote"
// @Success      200       {object}  dto.ReconciliationResponse
// @Router       /api/reconciliation [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.recon.Check(c.UserContext(), GetCompanyID(c), c.Query("batch_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
