package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica los errores del núcleo. Es estable: la capa de presentación traduce
// cada Kind a su propio mensaje/código sin parsear el texto.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindIdentityConflict    Kind = "identity_conflict"
	KindExceedsPending      Kind = "exceeds_pending"
	KindConcurrencyConflict Kind = "concurrency_conflict"
	KindPersistence         Kind = "persistence"
	KindInsufficientStock   Kind = "insufficient_stock"
	KindUnauthorized        Kind = "unauthorized"
	KindForbidden           Kind = "forbidden"
)

// Error es el error tipado del dominio. Code distingue variantes dentro de un mismo Kind
// (p. ej. INVALID_QUANTITY dentro de validation).
type Error struct {
	Kind Kind
	Code string
	Msg  string
	// MaxAllowed sólo se usa en KindExceedsPending.
	MaxAllowed int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por Kind y, si el objetivo define Code, también por Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Errores de dominio (sin dependencias externas).
var (
	ErrValidation          = &Error{Kind: KindValidation, Msg: "entrada inválida"}
	ErrInvalidQuantity     = &Error{Kind: KindValidation, Code: "INVALID_QUANTITY", Msg: "la cantidad debe ser mayor que cero"}
	ErrUnknownSector       = &Error{Kind: KindValidation, Code: "UNKNOWN_SECTOR", Msg: "sector desconocido"}
	ErrOrderCancelled      = &Error{Kind: KindValidation, Code: "ORDER_CANCELLED", Msg: "el pedido está cancelado"}
	ErrInvalidTransition   = &Error{Kind: KindValidation, Code: "INVALID_TRANSITION", Msg: "transición de estado no permitida"}
	ErrNotFound            = &Error{Kind: KindNotFound, Msg: "recurso no encontrado"}
	ErrUnknownUnit         = &Error{Kind: KindNotFound, Code: "UNKNOWN_UNIT", Msg: "unidad de destino desconocida"}
	ErrIdentityConflict    = &Error{Kind: KindIdentityConflict, Msg: "identidad de producto ambigua"}
	ErrExceedsPending      = &Error{Kind: KindExceedsPending, Msg: "excede la cantidad pendiente"}
	ErrConcurrencyConflict = &Error{Kind: KindConcurrencyConflict, Msg: "conflicto de concurrencia, reintente"}
	ErrPersistence         = &Error{Kind: KindPersistence, Msg: "fallo de almacenamiento"}
	ErrInsufficientStock   = &Error{Kind: KindInsufficientStock, Msg: "stock insuficiente"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Msg: "no autorizado"}
	ErrForbidden           = &Error{Kind: KindForbidden, Msg: "acceso denegado"}
	ErrDuplicate           = &Error{Kind: KindValidation, Code: "DUPLICATE", Msg: "recurso duplicado"}
)

// Validation crea un error de validación con detalle.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// InvalidQuantity informa la cantidad rechazada.
func InvalidQuantity(qty int) error {
	return &Error{Kind: KindValidation, Code: "INVALID_QUANTITY", Msg: fmt.Sprintf("cantidad inválida %d: debe ser mayor que cero", qty)}
}

// NotFound crea un error de recurso inexistente.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// UnknownUnit informa la unidad de destino que no existe en el registro.
func UnknownUnit(name string) error {
	return &Error{Kind: KindNotFound, Code: "UNKNOWN_UNIT", Msg: fmt.Sprintf("unidad de destino desconocida: %q", name)}
}

// UnknownSector informa el sector que no existe en el registro.
func UnknownSector(name string) error {
	return &Error{Kind: KindValidation, Code: "UNKNOWN_SECTOR", Msg: fmt.Sprintf("sector desconocido: %q", name)}
}

// IdentityConflict se produce cuando EAN y referencia apuntan a productos distintos.
func IdentityConflict(ean, reference, byEAN, byRef string) error {
	return &Error{
		Kind: KindIdentityConflict,
		Msg: fmt.Sprintf("identidad ambigua: ean %q pertenece al producto %s y referencia %q al producto %s",
			ean, byEAN, reference, byRef),
	}
}

// ExceedsPending indica el máximo permitido en el mensaje y en MaxAllowed.
func ExceedsPending(requested, remaining int) error {
	return &Error{
		Kind:       KindExceedsPending,
		MaxAllowed: remaining,
		Msg:        fmt.Sprintf("la cantidad %d excede la cantidad pendiente; máximo permitido = %d", requested, remaining),
	}
}

// InsufficientStock se usa cuando el piso de stock está activo.
func InsufficientStock(productID string, current, requested int) error {
	return &Error{
		Kind: KindInsufficientStock,
		Msg:  fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", productID, current, requested),
	}
}

// ConcurrencyConflict envuelve el error del driver que motivó el conflicto.
func ConcurrencyConflict(err error) error {
	return &Error{Kind: KindConcurrencyConflict, Msg: "conflicto de concurrencia", Err: err}
}

// Persistence envuelve un fallo de almacenamiento no recuperable localmente.
func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Msg: op, Err: err}
}

// KindOf devuelve el Kind de err o "" si no es un error de dominio.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// MaxAllowedOf devuelve el máximo permitido de un error ExceedsPending.
func MaxAllowedOf(err error) (int, bool) {
	var de *Error
	if errors.As(err, &de) && de.Kind == KindExceedsPending {
		return de.MaxAllowed, true
	}
	return 0, false
}
