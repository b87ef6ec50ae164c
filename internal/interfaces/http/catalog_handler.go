package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-cd/internal/application/catalog"
	"github.com/jhoicas/estoque-cd/internal/application/dto"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// CatalogHandler productos, sectores y unidades (protegido).
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

// ListSectors godoc
// @Summary      Listar sectores
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.NamedResponse
// @Router       /api/sectors [get]
func (h *CatalogHandler) ListSectors(c *fiber.Ctx) error {
	sectors, err := h.catalog.ListSectors(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.NamedResponse, 0, len(sectors))
	for _, s := range sectors {
		out = append(out, dto.NamedResponse{ID: s.ID, Name: s.Name})
	}
	return c.JSON(out)
}

// ListUnits godoc
// @Summary      Listar unidades (tiendas y CD)
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.NamedResponse
// @Router       /api/units [get]
func (h *CatalogHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.catalog.ListUnits(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.NamedResponse, 0, len(units))
	for _, u := range units {
		out = append(out, namedUnit(u))
	}
	return c.JSON(out)
}

func namedUnit(u entity.Unit) dto.NamedResponse { return dto.NamedResponse{ID: u.ID, Name: u.Name} }

// Find godoc
// @Summary      Productos de un sector con su stock
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        sector  query     string  true  "Nombre del sector"
// @Success      200     {array}   dto.ProductStockResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *CatalogHandler) Find(c *fiber.Ctx) error {
	sector := c.Query("sector")
	if sector == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el parámetro sector es requerido"})
	}
	items, err := h.catalog.Find(c.UserContext(), sector)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProductStockResponses(items))
}

// Resolve godoc
// @Summary      Resolver o crear producto por EAN / referencia
// @Description  Devuelve el producto existente o lo crea con stock cero. EAN y referencia de productos distintos = 409.
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ResolveProductRequest  true  "ean, reference, name, sector"
// @Success      200   {object}  dto.ResolveProductResponse
// @Success      201   {object}  dto.ResolveProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/resolve [post]
func (h *CatalogHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveProductRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.catalog.ResolveOrCreate(c.UserContext(), catalog.ProductInput{
		EAN:         in.EAN,
		Reference:   in.Reference,
		Name:        in.Name,
		Description: in.Description,
		Sector:      in.Sector,
	})
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.ResolveProductResponse{ProductID: res.ProductID, Created: res.Created})
}
