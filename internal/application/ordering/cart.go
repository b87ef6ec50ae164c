package ordering

import (
	"context"
	"strings"

	"github.com/jhoicas/estoque-cd/internal/application/catalog"
	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

// CartItem línea del carrito. Si ProductID está vacío el producto se resuelve (o crea) con Product.
type CartItem struct {
	ProductID string
	Product   catalog.ProductInput
	Quantity  int
	Notes     string
}

// Key clave de agrupación de la línea.
func (it CartItem) Key() string {
	if it.ProductID != "" {
		return "id:" + it.ProductID
	}
	return it.Product.Normalize().Key()
}

// Cart carrito de la sesión de una tienda. Pertenece al llamador; el núcleo no guarda estado de UI.
type Cart struct {
	Store       string
	RequestedBy string
	Notes       string
	items       []CartItem
}

// Add agrega la línea o suma la cantidad si el producto ya está en el carrito.
func (c *Cart) Add(item CartItem) {
	key := item.Key()
	for i := range c.items {
		if c.items[i].Key() == key {
			c.items[i].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

// SetQuantity fija la cantidad de una línea; qty <= 0 la elimina. Devuelve false si no existe.
func (c *Cart) SetQuantity(key string, qty int) bool {
	for i := range c.items {
		if c.items[i].Key() != key {
			continue
		}
		if qty <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity = qty
		}
		return true
	}
	return false
}

// Items copia de las líneas en orden de inserción.
func (c *Cart) Items() []CartItem {
	return append([]CartItem(nil), c.items...)
}

// Len número de líneas.
func (c *Cart) Len() int { return len(c.items) }

// Clear vacía el carrito.
func (c *Cart) Clear() { c.items = nil }

// Submit resuelve cada producto y crea un pedido por línea en una sola transacción.
// Devuelve los ids en el orden de las líneas y vacía el carrito si todo se confirmó.
func (s *Service) Submit(ctx context.Context, cart *Cart) ([]string, error) {
	if cart == nil || cart.Len() == 0 {
		return nil, domain.Validation("el carrito está vacío")
	}
	if strings.TrimSpace(cart.Store) == "" {
		return nil, domain.Validation("la tienda es obligatoria")
	}
	if strings.TrimSpace(cart.RequestedBy) == "" {
		return nil, domain.Validation("el solicitante es obligatorio")
	}
	items := cart.Items()
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, domain.InvalidQuantity(it.Quantity)
		}
		if it.ProductID == "" {
			items[i].Product = it.Product.Normalize()
			if err := items[i].Product.Validate(); err != nil {
				return nil, err
			}
		}
	}

	var ids []string
	err := s.retry.Do(ctx, "submit_cart", func() error {
		ids = ids[:0]
		return s.txRunner.Run(ctx, func(tx repository.TxRepos) error {
			now := s.now()
			for _, it := range items {
				productID := it.ProductID
				if productID == "" {
					res, err := catalog.ResolveInTx(ctx, tx, it.Product, now)
					if err != nil {
						return err
					}
					productID = res.ProductID
				} else {
					p, err := tx.Products.GetByID(ctx, productID)
					if err != nil {
						return err
					}
					if p == nil {
						return domain.NotFound("producto %s no encontrado", productID)
					}
				}
				notes := it.Notes
				if notes == "" {
					notes = cart.Notes
				}
				id, err := createInTx(ctx, tx, CreateInput{
					Store:             cart.Store,
					ProductID:         productID,
					RequestedQuantity: it.Quantity,
					RequestedBy:       cart.RequestedBy,
					Notes:             notes,
				}, now)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("store", cart.Store).Str("by", cart.RequestedBy).Int("orders", len(ids)).Msg("carrito enviado")
	cart.Clear()
	return ids, nil
}
