package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del almacén de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: no hay UPDATE ni DELETE;
// la secuencia monótona la asigna un BIGSERIAL al insertar.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, seq, product_id, type, direction, quantity, previous_stock, new_stock, reason, reference, user_id, created_at`

// Append inserta el movimiento y recupera el seq asignado por la base.
func (r *MovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if err := movement.Validate(); err != nil {
		return err
	}
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, type, direction, quantity, previous_stock, new_stock, reason, reference, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		movement.ID, movement.ProductID, movement.Type, movement.Direction,
		movement.Quantity, movement.PreviousStock, movement.NewStock,
		movement.Reason, movement.Reference, movement.UserID, movement.CreatedAt,
	).Scan(&movement.Seq)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// History lista movimientos de un producto en orden de secuencia ascendente.
func (r *MovementRepo) History(ctx context.Context, productID string, since, until *time.Time) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY seq ASC`
	rows, err := r.q.Query(ctx, query, productID, since, until)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// Latest devuelve el movimiento más reciente del producto (nil si no hay).
func (r *MovementRepo) Latest(ctx context.Context, productID string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY seq DESC
		LIMIT 1`
	var m entity.StockMovement
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&m.ID, &m.Seq, &m.ProductID, &m.Type, &m.Direction, &m.Quantity,
		&m.PreviousStock, &m.NewStock, &m.Reason, &m.Reference, &m.UserID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest movement: %w", err)
	}
	return &m, nil
}

// ListRecent devuelve los últimos movimientos globales (feed del dashboard).
func (r *MovementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		ORDER BY seq DESC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByReference devuelve los movimientos originados por un documento.
func (r *MovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE reference = $1
		ORDER BY seq ASC`
	rows, err := r.q.Query(ctx, query, reference)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.Seq, &m.ProductID, &m.Type, &m.Direction, &m.Quantity,
			&m.PreviousStock, &m.NewStock, &m.Reason, &m.Reference, &m.UserID, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
