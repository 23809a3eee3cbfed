package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas read-only del dashboard sobre PostgreSQL. Todos los
// predicados de stock se evalúan contra el JOIN vivo con la tabla stock:
// nunca se lee un booleano persistido que pueda quedar obsoleto.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador del dashboard. Pasar pool o tx (Querier).
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

func (r *DashboardRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *DashboardRepo) CountLowStock(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id
		WHERE p.is_active
		  AND COALESCE(s.quantity, 0) > 0
		  AND COALESCE(s.quantity, 0) <= p.min_stock`
	var n int64
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}

func (r *DashboardRepo) CountOutOfStock(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id
		WHERE p.is_active AND COALESCE(s.quantity, 0) = 0`
	var n int64
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count out of stock: %w", err)
	}
	return n, nil
}

func (r *DashboardRepo) LowStockProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	query := productSelect + `
		WHERE p.is_active
		  AND COALESCE(s.quantity, 0) > 0
		  AND COALESCE(s.quantity, 0) <= p.min_stock
		ORDER BY COALESCE(s.quantity, 0) - p.min_stock ASC
		LIMIT $1`
	return r.queryProducts(ctx, query, limit)
}

func (r *DashboardRepo) OutOfStockProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	query := productSelect + `
		WHERE p.is_active AND COALESCE(s.quantity, 0) = 0
		ORDER BY p.name ASC
		LIMIT $1`
	return r.queryProducts(ctx, query, limit)
}

// TotalStockValue calcula Σ stock_actual × costo por producto activo.
func (r *DashboardRepo) TotalStockValue(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(s.quantity * p.cost_price), 0)
		FROM products p
		JOIN stock s ON s.product_id = p.id
		WHERE p.is_active AND s.quantity > 0`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("total stock value: %w", err)
	}
	return total, nil
}

func (r *DashboardRepo) queryProducts(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
