package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// productRepo adaptador de productos. CurrentStock se resuelve contra la
// cache viva en cada lectura, nunca se guarda en la entidad almacenada.
type productRepo struct {
	s *Store
}

var _ repository.ProductRepository = (*productRepo)(nil)

func (r *productRepo) Create(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, p := range r.s.products {
		if p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	clone := *product
	r.s.products[product.ID] = &clone
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return r.withStock(p), nil
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			return r.withStock(p), nil
		}
	}
	return nil, fmt.Errorf("sku %s: %w", sku, domain.ErrNotFound)
}

func (r *productRepo) Update(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *product
	r.s.products[product.ID] = &clone
	return nil
}

func (r *productRepo) List(ctx context.Context, filters repository.ProductFilters, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Product
	for _, p := range r.s.products {
		withStock := r.withStock(p)
		if !matchesFilters(withStock, filters) {
			continue
		}
		all = append(all, withStock)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, limit, offset), nil
}

func (r *productRepo) Deactivate(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	clone := *p
	clone.IsActive = false
	clone.UpdatedAt = time.Now()
	r.s.products[id] = &clone
	return nil
}

// withStock clona el producto resolviendo CurrentStock desde la cache viva.
// Debe llamarse con el mutex del Store tomado.
func (r *productRepo) withStock(p *entity.Product) *entity.Product {
	clone := *p
	clone.CurrentStock = r.s.stock[p.ID]
	return &clone
}

func matchesFilters(p *entity.Product, f repository.ProductFilters) bool {
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.SupplierID != "" && p.SupplierID != f.SupplierID {
		return false
	}
	if f.LowStock && !p.IsLowStock() {
		return false
	}
	if f.OutOfStock && !p.IsOutOfStock() {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.SKU), q) &&
			!strings.Contains(strings.ToLower(p.Barcode), q) {
			return false
		}
	}
	return true
}
