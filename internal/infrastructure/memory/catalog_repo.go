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

// categoryRepo adaptador de categorías.
type categoryRepo struct {
	s *Store
}

var _ repository.CategoryRepository = (*categoryRepo)(nil)

func (r *categoryRepo) Create(ctx context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[category.ID]; ok {
		return domain.ErrDuplicate
	}
	clone := *category
	r.s.categories[category.ID] = &clone
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, fmt.Errorf("categoría %s: %w", id, domain.ErrNotFound)
	}
	clone := *c
	return &clone, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[category.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *category
	r.s.categories[category.ID] = &clone
	return nil
}

func (r *categoryRepo) List(ctx context.Context, limit, offset int) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Category
	for _, c := range r.s.categories {
		clone := *c
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, limit, offset), nil
}

func (r *categoryRepo) Deactivate(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return domain.ErrNotFound
	}
	clone := *c
	clone.IsActive = false
	clone.UpdatedAt = time.Now()
	r.s.categories[id] = &clone
	return nil
}

func (r *categoryRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, c := range r.s.categories {
		if c.IsActive {
			n++
		}
	}
	return n, nil
}

// supplierRepo adaptador de proveedores.
type supplierRepo struct {
	s *Store
}

var _ repository.SupplierRepository = (*supplierRepo)(nil)

func (r *supplierRepo) Create(ctx context.Context, supplier *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[supplier.ID]; ok {
		return domain.ErrDuplicate
	}
	clone := *supplier
	r.s.suppliers[supplier.ID] = &clone
	return nil
}

func (r *supplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sp, ok := r.s.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("proveedor %s: %w", id, domain.ErrNotFound)
	}
	clone := *sp
	return &clone, nil
}

func (r *supplierRepo) Update(ctx context.Context, supplier *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[supplier.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *supplier
	r.s.suppliers[supplier.ID] = &clone
	return nil
}

func (r *supplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Supplier
	for _, sp := range r.s.suppliers {
		clone := *sp
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, limit, offset), nil
}

func (r *supplierRepo) Deactivate(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.suppliers[id]
	if !ok {
		return domain.ErrNotFound
	}
	clone := *sp
	clone.IsActive = false
	clone.UpdatedAt = time.Now()
	r.s.suppliers[id] = &clone
	return nil
}

func (r *supplierRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, sp := range r.s.suppliers {
		if sp.IsActive {
			n++
		}
	}
	return n, nil
}

// userRepo adaptador de usuarios.
type userRepo struct {
	s *Store
}

var _ repository.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	clone := *u
	clone.LastLogin = &at
	r.s.users[id] = &clone
	return nil
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.User
	for _, u := range r.s.users {
		clone := *u
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return paginate(all, limit, offset), nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, u := range r.s.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}
