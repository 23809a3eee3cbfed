package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProductFilters filtros de listado de productos.
type ProductFilters struct {
	Search     string
	CategoryID string
	SupplierID string
	LowStock   bool // solo productos con stock bajo (0 < stock <= min_stock)
	OutOfStock bool // solo productos agotados
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// CurrentStock se resuelve con JOIN a la tabla stock en las lecturas;
// ninguna operación de este puerto lo escribe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filters ProductFilters, limit, offset int) ([]*entity.Product, error)
	Deactivate(ctx context.Context, id string) error
}
