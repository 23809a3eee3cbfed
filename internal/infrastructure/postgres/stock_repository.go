package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo cache de stock por producto sobre PostgreSQL (usable con pool o tx).
// La tabla stock es la vista materializada del ledger; la columna quantity
// lleva CHECK (quantity >= 0) como última línea de defensa del invariante.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get devuelve el stock actual del producto (0 si no tiene fila).
func (r *StockRepo) Get(ctx context.Context, productID string) (int64, error) {
	query := `SELECT quantity FROM stock WHERE product_id = $1`
	var qty int64
	err := r.q.QueryRow(ctx, query, productID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get stock: %w", err)
	}
	return qty, nil
}

// GetForUpdate devuelve el stock bloqueando la fila (SELECT FOR UPDATE). Si el
// producto no tiene fila aún, la crea en cero para tener qué bloquear.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (int64, error) {
	query := `SELECT quantity FROM stock WHERE product_id = $1 FOR UPDATE`
	var qty int64
	err := r.q.QueryRow(ctx, query, productID).Scan(&qty)
	if err == nil {
		return qty, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("get stock for update: %w", err)
	}
	insert := `
		INSERT INTO stock (product_id, quantity, updated_at)
		VALUES ($1, 0, now())
		ON CONFLICT (product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, productID); err != nil {
		return 0, fmt.Errorf("init stock row: %w", err)
	}
	err = r.q.QueryRow(ctx, query, productID).Scan(&qty)
	if err != nil {
		return 0, fmt.Errorf("get stock for update: %w", err)
	}
	return qty, nil
}

// Apply suma delta al stock y devuelve el valor resultante. El CHECK de la
// tabla rechaza resultados negativos; se traduce a NegativeStockError.
func (r *StockRepo) Apply(ctx context.Context, productID string, delta int64) (int64, error) {
	query := `
		INSERT INTO stock (product_id, quantity, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = stock.quantity + $2, updated_at = now()
		RETURNING quantity`
	var qty int64
	err := r.q.QueryRow(ctx, query, productID, delta).Scan(&qty)
	if err != nil {
		if isCheckViolation(err) {
			return 0, &domain.NegativeStockError{ProductID: productID, Result: delta}
		}
		return 0, fmt.Errorf("apply stock delta: %w", err)
	}
	return qty, nil
}

// Set fija el valor de la cache (usado por rebuild).
func (r *StockRepo) Set(ctx context.Context, productID string, quantity int64) error {
	if quantity < 0 {
		return &domain.NegativeStockError{ProductID: productID, Result: quantity}
	}
	query := `
		INSERT INTO stock (product_id, quantity, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, productID, quantity); err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}
