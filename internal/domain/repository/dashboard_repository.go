package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DashboardRepository consultas read-only para el dashboard. Los predicados de
// stock bajo/agotado se evalúan contra la cache viva en cada consulta: nunca
// se persiste un booleano que pueda quedar obsoleto.
type DashboardRepository interface {
	// CountProducts cuenta productos activos.
	CountProducts(ctx context.Context) (int64, error)

	// CountLowStock cuenta productos activos con 0 < stock <= min_stock.
	CountLowStock(ctx context.Context) (int64, error)

	// CountOutOfStock cuenta productos activos con stock == 0.
	CountOutOfStock(ctx context.Context) (int64, error)

	// LowStockProducts lista los productos con stock bajo, más urgentes primero.
	LowStockProducts(ctx context.Context, limit int) ([]*entity.Product, error)

	// OutOfStockProducts lista los productos agotados.
	OutOfStockProducts(ctx context.Context, limit int) ([]*entity.Product, error)

	// TotalStockValue calcula Σ stock_actual × costo por producto activo.
	TotalStockValue(ctx context.Context) (decimal.Decimal, error)
}
