package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrLockTimeout        = errors.New("tiempo de espera por locks agotado") // reintentar el lote completo es seguro
)

// InsufficientStockError indica que un movimiento de salida dejaría el stock
// en negativo. El lote completo se rechaza; se expone producto y faltante
// para que la UI pueda ofrecer despacho parcial o backorder.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

// Shortfall devuelve la cantidad faltante (solicitado - disponible).
func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}

// NegativeStockError indica que la vista materializada quedaría en negativo
// DESPUÉS de haber pasado la validación del lote. Si ocurre es un bug del
// motor: se aborta el lote y se registra como incidente de consistencia.
type NegativeStockError struct {
	ProductID string
	Result    int64
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("stock negativo detectado para producto %s: resultado %d", e.ProductID, e.Result)
}
