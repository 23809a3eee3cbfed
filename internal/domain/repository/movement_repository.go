package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementRepository define el puerto del almacén de movimientos (append-only).
// Los registros nunca se actualizan ni borran; el orden total por producto lo
// da la secuencia monótona asignada en Append, no el reloj de pared.
type MovementRepository interface {
	// Append persiste el movimiento, asigna ID y Seq y los devuelve en la
	// entidad. Rechaza con domain.ErrInvalidInput movimientos que violen los
	// invariantes (cantidad <= 0, snapshot inconsistente).
	Append(ctx context.Context, movement *entity.StockMovement) error

	// History lista los movimientos de un producto en orden de secuencia
	// ascendente, opcionalmente acotados por fecha de creación.
	History(ctx context.Context, productID string, since, until *time.Time) ([]*entity.StockMovement, error)

	// Latest devuelve el movimiento más reciente del producto (nil si no hay).
	Latest(ctx context.Context, productID string) (*entity.StockMovement, error)

	// ListRecent devuelve los últimos movimientos globales (feed del dashboard).
	ListRecent(ctx context.Context, limit int) ([]*entity.StockMovement, error)

	// ListByReference devuelve los movimientos originados por un documento
	// (compra o venta), en orden de secuencia.
	ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error)
}
