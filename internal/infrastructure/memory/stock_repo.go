package memory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// stockRepo cache de stock por producto sobre el mapa del Store.
type stockRepo struct {
	s *Store
}

var _ repository.StockRepository = (*stockRepo)(nil)

func (r *stockRepo) Get(ctx context.Context, productID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.stock[productID], nil
}

// GetForUpdate es igual a Get: la serialización la dan el mutex de transacción
// del Store y los locks por producto del motor.
func (r *stockRepo) GetForUpdate(ctx context.Context, productID string) (int64, error) {
	return r.Get(ctx, productID)
}

func (r *stockRepo) Apply(ctx context.Context, productID string, delta int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	next := r.s.stock[productID] + delta
	if next < 0 {
		return 0, &domain.NegativeStockError{ProductID: productID, Result: next}
	}
	r.s.stock[productID] = next
	return next, nil
}

func (r *stockRepo) Set(ctx context.Context, productID string, quantity int64) error {
	if quantity < 0 {
		return &domain.NegativeStockError{ProductID: productID, Result: quantity}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stock[productID] = quantity
	return nil
}
