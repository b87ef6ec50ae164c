package entity

import "time"

// StockLevel es el contador materializado de un producto (una fila por producto).
// TotalQuantity es con signo: puede quedar negativo si salidas/atenciones superan las entradas.
type StockLevel struct {
	ProductID     string
	TotalQuantity int
	LastUpdated   time.Time
}
