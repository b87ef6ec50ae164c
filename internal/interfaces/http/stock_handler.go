package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-cd/internal/application/dto"
	"github.com/jhoicas/estoque-cd/internal/application/reconciliation"
	"github.com/jhoicas/estoque-cd/internal/application/stock"
)

// StockHandler lecturas del ledger de stock (protegido).
type StockHandler struct {
	stock  *stock.Service
	policy *reconciliation.Policy
}

// NewStockHandler construye el handler.
func NewStockHandler(svc *stock.Service, policy *reconciliation.Policy) *StockHandler {
	return &StockHandler{stock: svc, policy: policy}
}

// Available godoc
// @Summary      Productos con stock disponible
// @Description  Cantidad mayor que cero, ordenados por nombre. Es la lista del selector de pedidos.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductStockResponse
// @Router       /api/stock/available [get]
func (h *StockHandler) Available(c *fiber.Ctx) error {
	items, err := h.stock.CurrentForOrders(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProductStockResponses(items))
}

// ListAll godoc
// @Summary      Todo el stock, incluidos cero y negativos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductStockResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) ListAll(c *fiber.Ctx) error {
	items, err := h.stock.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProductStockResponses(items))
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral (por defecto el configurado)"
// @Success      200  {array}  dto.ProductStockResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.stock.LowStock(c.UserContext(), c.QueryInt("threshold", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProductStockResponses(items))
}

// Get godoc
// @Summary      Stock actual de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path      string  true  "ID del producto"
// @Success      200         {object}  dto.StockResponse
// @Failure      404         {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	id := c.Params("product_id")
	qty, err := h.stock.Current(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: id, Quantity: qty})
}

// Audit godoc
// @Summary      Auditoría del ledger de un producto
// @Description  Recalcula entradas - salidas - atenciones y lo compara con el total del ledger; también compara lo entregado en los pedidos con sus atenciones.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path      string  true  "ID del producto"
// @Success      200         {object}  dto.AuditResponse
// @Failure      404         {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id}/audit [get]
func (h *StockHandler) Audit(c *fiber.Ctx) error {
	a, err := h.policy.AuditProduct(c.UserContext(), c.Params("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AuditResponse{
		ProductID:  a.ProductID,
		Entries:    a.Entries,
		Dispatches: a.Dispatches,
		Fulfilled:  a.Fulfilled,
		Delivered:  a.Delivered,
		Expected:   a.Expected,
		Ledger:     a.Ledger,
		Balanced:   a.Balanced(),
	})
}
