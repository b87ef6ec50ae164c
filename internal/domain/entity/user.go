package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleCD    = "cd"    // personal del centro de distribución
	RoleStore = "store" // empleado de tienda
)

// User representa un usuario del sistema. Store es la unidad a la que pertenece.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FullName     string
	Role         string
	Store        string
	Active       bool
	CreatedAt    time.Time
}

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCD, RoleStore:
		return true
	}
	return false
}
