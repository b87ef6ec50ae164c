package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry es la recepción de mercancía en el CD (hecho inmutable, sólo se agrega).
type Entry struct {
	ID        string
	Timestamp time.Time
	Supplier  string
	ProductID string
	Quantity  int              // siempre > 0
	UnitCost  *decimal.Decimal // opcional
	Note      string
	CreatedBy string
}

// Dispatch es una salida de stock hacia una unidad que no está ligada a un pedido.
type Dispatch struct {
	ID        string
	Timestamp time.Time
	UnitID    string
	UnitName  string // sólo lectura (join con units)
	ProductID string
	Quantity  int // siempre > 0
	OutBy     string
	Note      string
}
