package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// movementRepo adaptador append-only del ledger sobre el slice del Store.
type movementRepo struct {
	s *Store
}

var _ repository.MovementRepository = (*movementRepo)(nil)

func (r *movementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if err := movement.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	movement.Seq = r.s.seq
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	stored := *movement
	r.s.movements = append(r.s.movements, &stored)
	return nil
}

func (r *movementRepo) History(ctx context.Context, productID string, since, until *time.Time) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		if since != nil && m.CreatedAt.Before(*since) {
			continue
		}
		if until != nil && m.CreatedAt.After(*until) {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

func (r *movementRepo) Latest(ctx context.Context, productID string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].ProductID == productID {
			clone := *r.s.movements[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if limit <= 0 || limit > len(r.s.movements) {
		limit = len(r.s.movements)
	}
	out := make([]*entity.StockMovement, 0, limit)
	for i := len(r.s.movements) - 1; i >= 0 && len(out) < limit; i-- {
		clone := *r.s.movements[i]
		out = append(out, &clone)
	}
	return out, nil
}

func (r *movementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.Reference == reference {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}
