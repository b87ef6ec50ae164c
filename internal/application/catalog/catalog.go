// Package catalog resuelve claves de identidad (EAN, referencia) al producto canónico.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-cd/internal/application/retry"
	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/pkg/logger"
)

// ProductInput datos para resolver o crear un producto.
type ProductInput struct {
	EAN         string
	Reference   string
	Name        string
	Description string
	Sector      string
}

// Normalize recorta espacios de todos los campos.
func (in ProductInput) Normalize() ProductInput {
	return ProductInput{
		EAN:         strings.TrimSpace(in.EAN),
		Reference:   strings.TrimSpace(in.Reference),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Sector:      strings.TrimSpace(in.Sector),
	}
}

// Validate rechaza la entrada antes de abrir transacción.
func (in ProductInput) Validate() error {
	if in.EAN == "" && in.Reference == "" {
		return domain.Validation("se requiere EAN o referencia")
	}
	if in.Name == "" {
		return domain.Validation("el nombre del producto es obligatorio")
	}
	if in.Sector == "" {
		return domain.Validation("el sector es obligatorio")
	}
	return nil
}

// Key clave de agrupación de la entrada (ean, si no referencia).
func (in ProductInput) Key() string {
	if in.EAN != "" {
		return "ean:" + in.EAN
	}
	return "ref:" + in.Reference
}

// Resolution resultado etiquetado de ResolveOrCreate.
type Resolution struct {
	ProductID string
	Created   bool
}

// Service ProductCatalog.
type Service struct {
	txRunner repository.TxRunner
	products repository.ProductRepository
	registry repository.RegistryRepository
	retry    retry.Policy
	log      *logger.Logger
	now      func() time.Time
}

// NewService construye el catálogo. products y registry se usan para lecturas fuera de tx.
func NewService(txRunner repository.TxRunner, products repository.ProductRepository, registry repository.RegistryRepository, rp retry.Policy, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		txRunner: txRunner,
		products: products,
		registry: registry,
		retry:    rp,
		log:      log.Component("catalog"),
		now:      time.Now,
	}
}

// ResolveOrCreate devuelve el producto existente por EAN o referencia; si no existe lo crea
// junto con su StockLevel en cero, en una sola transacción.
func (s *Service) ResolveOrCreate(ctx context.Context, in ProductInput) (Resolution, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Resolution{}, err
	}
	var res Resolution
	err := s.retry.Do(ctx, "resolve_or_create", func() error {
		return s.txRunner.Run(ctx, func(tx repository.TxRepos) error {
			var err error
			res, err = ResolveInTx(ctx, tx, in, s.now())
			return err
		})
	})
	if err != nil {
		return Resolution{}, err
	}
	if res.Created {
		s.log.Info().Str("product_id", res.ProductID).Str("ean", in.EAN).Str("reference", in.Reference).Msg("producto creado")
	}
	return res, nil
}

// ResolveInTx aplica resolve_or_create con los repos de una transacción abierta por el llamador.
// in debe venir normalizado y validado.
func ResolveInTx(ctx context.Context, tx repository.TxRepos, in ProductInput, now time.Time) (Resolution, error) {
	sector, err := LookupSector(ctx, tx.Registry, in.Sector)
	if err != nil {
		return Resolution{}, err
	}

	var byEAN, byRef *entity.Product
	if in.EAN != "" {
		if byEAN, err = tx.Products.GetByEAN(ctx, in.EAN); err != nil {
			return Resolution{}, err
		}
	}
	if in.Reference != "" {
		if byRef, err = tx.Products.GetByReference(ctx, in.Reference); err != nil {
			return Resolution{}, err
		}
	}

	switch {
	case byEAN != nil && byRef != nil && byEAN.ID != byRef.ID:
		return Resolution{}, domain.IdentityConflict(in.EAN, in.Reference, byEAN.ID, byRef.ID)
	case byEAN != nil:
		return Resolution{ProductID: byEAN.ID}, nil
	case byRef != nil:
		return Resolution{ProductID: byRef.ID}, nil
	}

	p := &entity.Product{
		ID:          uuid.New().String(),
		EAN:         in.EAN,
		Reference:   in.Reference,
		Name:        in.Name,
		Description: in.Description,
		SectorID:    sector.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Products.Create(ctx, p); err != nil {
		return Resolution{}, err
	}
	if err := tx.Stock.Init(ctx, p.ID, now); err != nil {
		return Resolution{}, err
	}
	ev, err := entity.NewOutboxEvent(entity.AggregateProduct, p.ID, entity.EventProductCreated, map[string]any{
		"product_id": p.ID,
		"ean":        p.EAN,
		"reference":  p.Reference,
		"name":       p.Name,
		"sector":     sector.Name,
	}, now)
	if err != nil {
		return Resolution{}, err
	}
	if err := tx.Outbox.Append(ctx, ev); err != nil {
		return Resolution{}, err
	}
	return Resolution{ProductID: p.ID, Created: true}, nil
}

// Find lista los productos de un sector con su stock actual. Sector desconocido = NotFound.
func (s *Service) Find(ctx context.Context, sectorName string) ([]entity.ProductStock, error) {
	sector, err := LookupSector(ctx, s.registry, sectorName)
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation && strings.TrimSpace(sectorName) != "" {
			return nil, domain.NotFound("sector desconocido: %q", sectorName)
		}
		return nil, err
	}
	return s.products.ListBySector(ctx, sector.ID)
}

// Get devuelve un producto por ID.
func (s *Service) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %s no encontrado", id)
	}
	return p, nil
}

// ListSectors lista los sectores registrados.
func (s *Service) ListSectors(ctx context.Context) ([]entity.Sector, error) {
	return s.registry.ListSectors(ctx)
}

// ListUnits lista las unidades de destino registradas.
func (s *Service) ListUnits(ctx context.Context) ([]entity.Unit, error) {
	return s.registry.ListUnits(ctx)
}
