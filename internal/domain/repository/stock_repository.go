package repository

import "context"

// StockRepository define el puerto de la cache de stock por producto (vista
// materializada del ledger). No es fuente de verdad: se actualiza estrictamente
// después de que el movimiento quedó persistido, dentro de la misma transacción.
type StockRepository interface {
	// Get devuelve el stock actual del producto (0 si no tiene fila).
	Get(ctx context.Context, productID string) (int64, error)

	// GetForUpdate devuelve el stock bloqueando la fila para escritura
	// (SELECT FOR UPDATE); serializa escritores concurrentes del mismo producto.
	GetForUpdate(ctx context.Context, productID string) (int64, error)

	// Apply suma delta al stock del producto y devuelve el valor resultante.
	// Único punto de aplicación del invariante de no-negatividad: si el
	// resultado fuera negativo retorna *domain.NegativeStockError sin mutar.
	Apply(ctx context.Context, productID string, delta int64) (int64, error)

	// Set fija el valor de la cache (usado por rebuild).
	Set(ctx context.Context, productID string, quantity int64) error
}
