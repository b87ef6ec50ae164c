package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-cd/internal/application/catalog"
	"github.com/jhoicas/estoque-cd/internal/application/dto"
	"github.com/jhoicas/estoque-cd/internal/application/ordering"
	"github.com/jhoicas/estoque-cd/internal/application/reconciliation"
	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/pdf"
)

// ReceiptGenerator genera el comprobante PDF de un pedido.
type ReceiptGenerator interface {
	Generate(ctx context.Context, r pdf.Receipt) ([]byte, error)
}

// OrderHandler pedidos de tienda y sus atenciones (protegido).
type OrderHandler struct {
	orders   *ordering.Service
	catalog  *catalog.Service
	policy   *reconciliation.Policy
	receipts ReceiptGenerator
	issuer   string
}

// NewOrderHandler construye el handler. issuer es el nombre impreso en los comprobantes.
func NewOrderHandler(orders *ordering.Service, cat *catalog.Service, policy *reconciliation.Policy, receipts ReceiptGenerator, issuer string) *OrderHandler {
	return &OrderHandler{orders: orders, catalog: cat, policy: policy, receipts: receipts, issuer: issuer}
}

// Submit godoc
// @Summary      Enviar carrito de pedidos
// @Description  Crea un pedido por línea en una sola transacción. Los usuarios de tienda siempre piden para su propia tienda.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SubmitCartRequest  true  "store, items"
// @Success      201   {object}  dto.SubmitCartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitCartRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	store := in.Store
	if GetRole(c) == entity.RoleStore {
		store = GetStore(c)
		if store == "" {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el usuario no tiene tienda asignada"})
		}
	}
	cart := &ordering.Cart{Store: store, RequestedBy: GetUsername(c), Notes: in.Notes}
	for _, it := range in.Items {
		cart.Add(ordering.CartItem{
			ProductID: it.ProductID,
			Product: catalog.ProductInput{
				EAN:         it.EAN,
				Reference:   it.Reference,
				Name:        it.Name,
				Description: it.Description,
				Sector:      it.Sector,
			},
			Quantity: it.Quantity,
			Notes:    it.Notes,
		})
	}
	ids, err := h.orders.Submit(c.UserContext(), cart)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SubmitCartResponse{OrderIDs: ids})
}

// List godoc
// @Summary      Listar pedidos
// @Description  Tienda: sus propios pedidos. CD/admin: todos o filtrados por ?store=.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        store  query  string  false  "Tienda (sólo cd/admin)"
// @Success      200    {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var (
		views []entity.OrderView
		err   error
	)
	switch {
	case GetRole(c) == entity.RoleStore:
		views, err = h.orders.ListByStore(c.UserContext(), GetStore(c))
	case c.Query("store") != "":
		views, err = h.orders.ListByStore(c.UserContext(), c.Query("store"))
	default:
		views, err = h.orders.ListAll(c.UserContext())
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponses(views))
}

// Get godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	view, err := h.visibleOrder(c, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(*view))
}

// History godoc
// @Summary      Historial de atenciones del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {array}   dto.FulfillmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/fulfillments [get]
func (h *OrderHandler) History(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.visibleOrder(c, id); err != nil {
		return respondError(c, err)
	}
	out := []dto.FulfillmentResponse{}
	for f, err := range h.policy.History(c.UserContext(), id) {
		if err != nil {
			return respondError(c, err)
		}
		out = append(out, toFulfillmentResponse(f))
	}
	return c.JSON(out)
}

// Fulfill godoc
// @Summary      Registrar atención de un pedido
// @Description  Entrega parcial o total. request_id (o el header Idempotency-Key) hace la operación idempotente.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "ID del pedido"
// @Param        body  body      dto.FulfillOrderRequest  true  "quantity, notes, request_id"
// @Success      201   {object}  dto.FulfillOrderResponse
// @Success      200   {object}  dto.FulfillOrderResponse  "repetición de un request_id ya aplicado"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "EXCEEDS_PENDING incluye max_allowed"
// @Router       /api/orders/{id}/fulfillments [post]
func (h *OrderHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.FulfillOrderRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	requestID := in.RequestID
	if requestID == "" {
		requestID = c.Get("Idempotency-Key")
	}
	res, err := h.policy.FulfillOrder(c.UserContext(), reconciliation.FulfillInput{
		OrderID:     c.Params("id"),
		Quantity:    in.Quantity,
		FulfilledBy: GetUsername(c),
		Notes:       in.Notes,
		RequestID:   requestID,
	})
	if err != nil {
		return respondError(c, err)
	}
	view, err := h.withProduct(c.UserContext(), res.Order)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.FulfillOrderResponse{
		Fulfillment: toFulfillmentResponse(res.Fulfillment),
		Order:       toOrderResponse(*view),
		Stock:       res.Stock,
		Replayed:    res.Replayed,
	})
}

// Cancel godoc
// @Summary      Cancelar pedido
// @Description  Sólo pedidos Pending o Partial. Lo ya entregado no vuelve al stock.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	o, err := h.orders.Cancel(c.UserContext(), c.Params("id"), GetUsername(c))
	if err != nil {
		return respondError(c, err)
	}
	view, err := h.withProduct(c.UserContext(), o)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(*view))
}

// Receipt godoc
// @Summary      Comprobante PDF del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	view, err := h.visibleOrder(c, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	history, err := h.policy.CollectHistory(c.UserContext(), view.ID)
	if err != nil {
		return respondError(c, err)
	}
	doc, err := h.receipts.Generate(c.UserContext(), pdf.Receipt{
		Order:        *view,
		Fulfillments: history,
		Issuer:       h.issuer,
		GeneratedAt:  time.Now(),
	})
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=pedido-%s.pdf", view.ID))
	return c.Send(doc)
}

// visibleOrder carga el pedido con su producto; un usuario de tienda sólo ve los de su tienda.
func (h *OrderHandler) visibleOrder(c *fiber.Ctx, id string) (*entity.OrderView, error) {
	o, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if GetRole(c) == entity.RoleStore && o.Store != GetStore(c) {
		return nil, domain.ErrForbidden
	}
	return h.withProduct(c.UserContext(), o)
}

func (h *OrderHandler) withProduct(ctx context.Context, o *entity.Order) (*entity.OrderView, error) {
	p, err := h.catalog.Get(ctx, o.ProductID)
	if err != nil {
		return nil, err
	}
	return &entity.OrderView{Order: *o, EAN: p.EAN, Reference: p.Reference, ProductName: p.Name}, nil
}
