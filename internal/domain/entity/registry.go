package entity

import "time"

// Sector clasifica productos (lista administrada).
type Sector struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Unit es una unidad de destino (tienda o CD) para salidas y pedidos.
type Unit struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// DefaultSectors sectores con los que se inicializa el registro.
var DefaultSectors = []string{
	"Geral", "Bijuteria", "Eletrônicos", "Conveniência", "Papelaria", "Variedades", "Utilidades",
	"Utensílios", "CaMeBa", "Brinquedos", "Decoração", "Pet", "Led", "Natal", "Carnaval",
}

// DefaultUnits tiendas y CD con los que se inicializa el registro.
var DefaultUnits = []string{
	"MDC - Carioca", "MDC - Madureira", "MDC - Bonsucesso", "MDC - Nilópolis",
	"MDC - Santa Cruz", "MDC - Mesquita", "MDC - CD",
}
