package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-cd/internal/application/dto"
	"github.com/jhoicas/estoque-cd/internal/application/reconciliation"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// MovementHandler entradas y salidas del CD (protegido, cd/admin).
type MovementHandler struct {
	policy *reconciliation.Policy
}

// NewMovementHandler construye el handler.
func NewMovementHandler(policy *reconciliation.Policy) *MovementHandler {
	return &MovementHandler{policy: policy}
}

// RecordEntry godoc
// @Summary      Registrar entrada de mercancía
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecordEntryRequest  true  "supplier, product_id, quantity, unit_cost"
// @Success      201   {object}  dto.EntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/entries [post]
func (h *MovementHandler) RecordEntry(c *fiber.Ctx) error {
	var in dto.RecordEntryRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	e, err := h.policy.RecordEntry(c.UserContext(), reconciliation.EntryInput{
		Supplier:  in.Supplier,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Note:      in.Note,
		CreatedBy: GetUsername(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEntryResponse(e))
}

// RecordDispatch godoc
// @Summary      Registrar salida hacia una unidad
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecordDispatchRequest  true  "unit, product_id, quantity"
// @Success      201   {object}  dto.DispatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse  "UNKNOWN_UNIT"
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK con piso activo"
// @Router       /api/dispatches [post]
func (h *MovementHandler) RecordDispatch(c *fiber.Ctx) error {
	var in dto.RecordDispatchRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	d, err := h.policy.RecordDispatch(c.UserContext(), reconciliation.DispatchInput{
		Unit:      in.Unit,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		OutBy:     GetUsername(c),
		Note:      in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDispatchResponse(d))
}

// ListEntries godoc
// @Summary      Entradas de un producto
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto"
// @Success      200  {array}  dto.EntryResponse
// @Router       /api/entries [get]
func (h *MovementHandler) ListEntries(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el parámetro product_id es requerido"})
	}
	entries, err := h.policy.ListEntries(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return c.JSON(out)
}

// ListDispatches godoc
// @Summary      Salidas de un producto
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto"
// @Success      200  {array}  dto.DispatchResponse
// @Router       /api/dispatches [get]
func (h *MovementHandler) ListDispatches(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el parámetro product_id es requerido"})
	}
	dispatches, err := h.policy.ListDispatches(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.DispatchResponse, 0, len(dispatches))
	for _, d := range dispatches {
		out = append(out, toDispatchResponse(d))
	}
	return c.JSON(out)
}

func toEntryResponse(e *entity.Entry) dto.EntryResponse {
	return dto.EntryResponse{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Supplier:  e.Supplier,
		ProductID: e.ProductID,
		Quantity:  e.Quantity,
		UnitCost:  e.UnitCost,
		Note:      e.Note,
		CreatedBy: e.CreatedBy,
	}
}

func toDispatchResponse(d *entity.Dispatch) dto.DispatchResponse {
	return dto.DispatchResponse{
		ID:        d.ID,
		Timestamp: d.Timestamp,
		Unit:      d.UnitName,
		ProductID: d.ProductID,
		Quantity:  d.Quantity,
		OutBy:     d.OutBy,
		Note:      d.Note,
	}
}
