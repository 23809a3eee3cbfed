package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Rebuild recalcula el stock de un producto plegando su historial desde cero.
//
// Con asOf == nil es una reparación: recomputa el valor completo y lo escribe
// en la cache dentro de una transacción, tomando el mismo lock de producto
// que los escritores. Con asOf != nil es una auditoría: devuelve "stock a la
// fecha T" plegando solo los movimientos con CreatedAt <= T, sin mutar nada.
func (e *Engine) Rebuild(ctx context.Context, productID string, asOf *time.Time) (int64, error) {
	release, err := e.locks.AcquireAll(ctx, []string{productID}, e.lockTimeout)
	if err != nil {
		return 0, err
	}
	defer release()

	if asOf != nil {
		movements, err := e.movRepo.History(ctx, productID, nil, asOf)
		if err != nil {
			return 0, err
		}
		return foldMovements(movements), nil
	}

	var total int64
	err = e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		// El FOR UPDATE retiene la fila hasta el commit frente a escritores
		// que no pasen por el lock de producto.
		if _, err := stockRepo.GetForUpdate(ctx, productID); err != nil {
			return err
		}
		movements, err := movRepo.History(ctx, productID, nil, nil)
		if err != nil {
			return err
		}
		total = foldMovements(movements)
		return stockRepo.Set(ctx, productID, total)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// foldMovements pliega los deltas con signo en orden de secuencia.
func foldMovements(movements []*entity.StockMovement) int64 {
	var total int64
	for _, mov := range movements {
		total += entity.SignedDelta(mov.Direction, mov.Quantity)
	}
	return total
}
