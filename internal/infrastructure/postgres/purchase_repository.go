package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación de PurchaseRepository sobre PostgreSQL
// (usable con pool o tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador de compras. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create persiste cabecera e ítems.
func (r *PurchaseRepo) Create(ctx context.Context, purchase *entity.Purchase) error {
	query := `
		INSERT INTO purchases (id, supplier_id, purchase_date, total_amount, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		purchase.ID, purchase.SupplierID, purchase.PurchaseDate, purchase.TotalAmount,
		purchase.Status, purchase.Notes, purchase.CreatedAt, purchase.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	for _, item := range purchase.Items {
		itemQuery := `
			INSERT INTO purchase_items (id, purchase_id, product_id, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := r.q.Exec(ctx, itemQuery,
			item.ID, item.PurchaseID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice,
		); err != nil {
			return fmt.Errorf("insert purchase item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve cabecera e ítems.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	query := `
		SELECT id, supplier_id, purchase_date, total_amount, status, notes, created_at, updated_at
		FROM purchases WHERE id = $1`
	var p entity.Purchase
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SupplierID, &p.PurchaseDate, &p.TotalAmount, &p.Status,
		&p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("compra %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

// UpdateStatusIf cambia el estado solo si el actual es `from` (compare-and-swap).
// RowsAffected == 0 significa que otro escritor ganó la carrera: el caller
// decide si eso es idempotencia o conflicto.
func (r *PurchaseRepo) UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	query := `
		UPDATE purchases SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`
	cmd, err := r.q.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update purchase status: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// List lista compras, opcionalmente filtradas por estado, más recientes primero.
func (r *PurchaseRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Purchase, error) {
	query := `
		SELECT id, supplier_id, purchase_date, total_amount, status, notes, created_at, updated_at
		FROM purchases
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []*entity.Purchase
	for rows.Next() {
		var p entity.Purchase
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.PurchaseDate, &p.TotalAmount, &p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		items, err := r.itemsFor(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}
	return out, nil
}

func (r *PurchaseRepo) itemsFor(ctx context.Context, purchaseID string) ([]entity.PurchaseItem, error) {
	query := `
		SELECT id, purchase_id, product_id, quantity, unit_price, total_price
		FROM purchase_items WHERE purchase_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()

	var items []entity.PurchaseItem
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
