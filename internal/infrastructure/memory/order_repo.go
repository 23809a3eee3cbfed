package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// purchaseRepo adaptador de compras. UpdateStatusIf es el compare-and-swap
// que usa el orquestador como guard de idempotencia.
type purchaseRepo struct {
	s *Store
}

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

func (r *purchaseRepo) Create(ctx context.Context, purchase *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.purchases[purchase.ID]; ok {
		return domain.ErrDuplicate
	}
	clone := clonePurchase(purchase)
	r.s.purchases[purchase.ID] = clone
	return nil
}

func (r *purchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.purchases[id]
	if !ok {
		return nil, fmt.Errorf("compra %s: %w", id, domain.ErrNotFound)
	}
	return clonePurchase(p), nil
}

func (r *purchaseRepo) UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.purchases[id]
	if !ok {
		return false, fmt.Errorf("compra %s: %w", id, domain.ErrNotFound)
	}
	if p.Status != from {
		return false, nil
	}
	clone := clonePurchase(p)
	clone.Status = to
	clone.UpdatedAt = time.Now()
	r.s.purchases[id] = clone
	return true, nil
}

func (r *purchaseRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Purchase
	for _, p := range r.s.purchases {
		if status != "" && p.Status != status {
			continue
		}
		all = append(all, clonePurchase(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

func clonePurchase(p *entity.Purchase) *entity.Purchase {
	clone := *p
	clone.Items = make([]entity.PurchaseItem, len(p.Items))
	copy(clone.Items, p.Items)
	return &clone
}

// saleRepo adaptador de ventas.
type saleRepo struct {
	s *Store
}

var _ repository.SaleRepository = (*saleRepo)(nil)

func (r *saleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (r *saleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sl, ok := r.s.sales[id]
	if !ok {
		return nil, fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
	}
	return cloneSale(sl), nil
}

func (r *saleRepo) UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.sales[id]
	if !ok {
		return false, fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
	}
	if sl.Status != from {
		return false, nil
	}
	clone := cloneSale(sl)
	clone.Status = to
	clone.UpdatedAt = time.Now()
	r.s.sales[id] = clone
	return true, nil
}

func (r *saleRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Sale
	for _, sl := range r.s.sales {
		if status != "" && sl.Status != status {
			continue
		}
		all = append(all, cloneSale(sl))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

func cloneSale(s *entity.Sale) *entity.Sale {
	clone := *s
	clone.Items = make([]entity.SaleItem, len(s.Items))
	copy(clone.Items, s.Items)
	return &clone
}
