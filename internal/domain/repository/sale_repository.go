package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para Sale.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)

	// UpdateStatusIf cambia el estado solo si el actual es `from`
	// (compare-and-swap). Guard de idempotencia de completar/reembolsar.
	UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error)

	List(ctx context.Context, status string, limit, offset int) ([]*entity.Sale, error)
}
