package entity

import "time"

// Product representa un producto del catálogo del CD.
// EAN y Reference son claves únicas opcionales; al menos una debe existir para que el
// producto sea direccionable. Una vez creado sólo Name y Description pueden cambiar.
type Product struct {
	ID          string
	EAN         string
	Reference   string
	Name        string
	Description string
	SectorID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Addressable indica si el producto tiene al menos una clave de identidad.
func (p *Product) Addressable() bool {
	return p.EAN != "" || p.Reference != ""
}

// ProductStock es un producto unido a su cantidad actual en el ledger (vista de lectura).
type ProductStock struct {
	ProductID   string
	EAN         string
	Reference   string
	Name        string
	Sector      string
	Quantity    int
	LastUpdated time.Time
}
