package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// dashboardRepo agregaciones read-only sobre el estado vivo del Store.
type dashboardRepo struct {
	s *Store
}

var _ repository.DashboardRepository = (*dashboardRepo)(nil)

func (r *dashboardRepo) CountProducts(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, p := range r.s.products {
		if p.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *dashboardRepo) CountLowStock(ctx context.Context) (int64, error) {
	matches := r.activeWithStock(func(p *entity.Product) bool { return p.IsLowStock() })
	return int64(len(matches)), nil
}

func (r *dashboardRepo) CountOutOfStock(ctx context.Context) (int64, error) {
	matches := r.activeWithStock(func(p *entity.Product) bool { return p.IsOutOfStock() })
	return int64(len(matches)), nil
}

func (r *dashboardRepo) LowStockProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	out := r.activeWithStock(func(p *entity.Product) bool { return p.IsLowStock() })
	// más urgentes primero: menor stock relativo al mínimo
	sort.Slice(out, func(i, j int) bool {
		return out[i].CurrentStock-out[i].MinStock < out[j].CurrentStock-out[j].MinStock
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *dashboardRepo) OutOfStockProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	out := r.activeWithStock(func(p *entity.Product) bool { return p.IsOutOfStock() })
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *dashboardRepo) TotalStockValue(ctx context.Context) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for id, p := range r.s.products {
		if !p.IsActive {
			continue
		}
		qty := r.s.stock[id]
		if qty == 0 {
			continue
		}
		total = total.Add(p.CostPrice.Mul(decimal.NewFromInt(qty)))
	}
	return total, nil
}

// activeWithStock devuelve clones de los productos activos con CurrentStock
// resuelto, filtrados por pred.
func (r *dashboardRepo) activeWithStock(pred func(*entity.Product) bool) []*entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Product
	for id, p := range r.s.products {
		if !p.IsActive {
			continue
		}
		clone := *p
		clone.CurrentStock = r.s.stock[id]
		if pred(&clone) {
			out = append(out, &clone)
		}
	}
	return out
}
