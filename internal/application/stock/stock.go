// Package stock expone las lecturas del ledger de stock.
package stock

import (
	"context"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

// Service lecturas del StockLedger. Las escrituras pasan por la política de reconciliación.
type Service struct {
	stock             repository.StockRepository
	products          repository.ProductRepository
	lowStockThreshold int
}

// NewService construye el servicio; lowStockThreshold es el umbral por defecto de LowStock.
func NewService(stock repository.StockRepository, products repository.ProductRepository, lowStockThreshold int) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &Service{stock: stock, products: products, lowStockThreshold: lowStockThreshold}
}

// Current cantidad actual del producto. Producto desconocido = NotFound.
func (s *Service) Current(ctx context.Context, productID string) (int, error) {
	lvl, err := s.stock.Get(ctx, productID)
	if err != nil {
		return 0, err
	}
	if lvl != nil {
		return lvl.TotalQuantity, nil
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, domain.NotFound("producto %s no encontrado", productID)
	}
	return 0, nil
}

// CurrentForOrders productos con cantidad > 0 ordenados por nombre (selector de pedidos).
func (s *Service) CurrentForOrders(ctx context.Context) ([]entity.ProductStock, error) {
	return s.stock.ListAvailable(ctx)
}

// ListAll todos los productos, incluidos cero y negativos (personal del CD).
func (s *Service) ListAll(ctx context.Context) ([]entity.ProductStock, error) {
	return s.stock.ListAll(ctx)
}

// LowStock productos con 0 < cantidad < threshold. threshold <= 0 usa el umbral configurado.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]entity.ProductStock, error) {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	avail, err := s.stock.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.ProductStock, 0, len(avail))
	for _, ps := range avail {
		if ps.Quantity < threshold {
			out = append(out, ps)
		}
	}
	return out, nil
}
