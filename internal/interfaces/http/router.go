package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-cd/internal/application/auth"
	"github.com/jhoicas/estoque-cd/internal/application/catalog"
	"github.com/jhoicas/estoque-cd/internal/application/ordering"
	"github.com/jhoicas/estoque-cd/internal/application/reconciliation"
	"github.com/jhoicas/estoque-cd/internal/application/stock"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Catalog   *catalog.Service
	Stock     *stock.Service
	Orders    *ordering.Service
	Policy    *reconciliation.Policy
	Receipts  ReceiptGenerator
	Issuer    string
	Metrics   *metrics.Metrics // nil = sin /metrics
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
		app.Get("/metrics", MetricsEndpoint(deps.Metrics))
	}

	api := app.Group("/api")
	staff := RequireRole(entity.RoleAdmin, entity.RoleCD)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleCD, entity.RoleStore)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), anyRole, RequireActiveUser(deps.AuthUC))

	catalogHandler := NewCatalogHandler(deps.Catalog)
	protected.Get("/sectors", catalogHandler.ListSectors)
	protected.Get("/units", catalogHandler.ListUnits)
	protected.Get("/products", catalogHandler.Find)
	protected.Post("/products/resolve", catalogHandler.Resolve)

	stockHandler := NewStockHandler(deps.Stock, deps.Policy)
	protected.Get("/stock/available", stockHandler.Available)
	protected.Get("/stock/low", stockHandler.LowStock)
	protected.Get("/stock", staff, stockHandler.ListAll)
	protected.Get("/stock/:product_id/audit", staff, stockHandler.Audit)
	protected.Get("/stock/:product_id", stockHandler.Get)

	orderHandler := NewOrderHandler(deps.Orders, deps.Catalog, deps.Policy, deps.Receipts, deps.Issuer)
	protected.Post("/orders", orderHandler.Submit)
	protected.Get("/orders", orderHandler.List)
	protected.Get("/orders/:id", orderHandler.Get)
	protected.Get("/orders/:id/fulfillments", orderHandler.History)
	protected.Get("/orders/:id/receipt", orderHandler.Receipt)
	protected.Post("/orders/:id/fulfillments", staff, orderHandler.Fulfill)
	protected.Post("/orders/:id/cancel", staff, orderHandler.Cancel)

	movementHandler := NewMovementHandler(deps.Policy)
	protected.Post("/entries", staff, movementHandler.RecordEntry)
	protected.Get("/entries", staff, movementHandler.ListEntries)
	protected.Post("/dispatches", staff, movementHandler.RecordDispatch)
	protected.Get("/dispatches", staff, movementHandler.ListDispatches)

	admin := RequireRole(entity.RoleAdmin)
	protected.Post("/users", admin, authHandler.CreateUser)
	protected.Get("/users", admin, authHandler.ListUsers)
	protected.Delete("/users/:id", admin, authHandler.DeactivateUser)
}
