package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para Purchase.
type PurchaseRepository interface {
	// Create persiste cabecera e ítems.
	Create(ctx context.Context, purchase *entity.Purchase) error

	// GetByID devuelve cabecera e ítems (nil si no existe).
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)

	// UpdateStatusIf cambia el estado solo si el actual es `from`
	// (compare-and-swap). Devuelve false si no hubo cambio: es el guard de
	// idempotencia que impide emitir movimientos dos veces por la misma compra.
	UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error)

	List(ctx context.Context, status string, limit, offset int) ([]*entity.Purchase, error)
}
