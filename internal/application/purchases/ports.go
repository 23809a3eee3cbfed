package purchases

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye el
// repositorio de compras además de los del ledger, para que el cambio de
// estado de la cabecera y los movimientos emitidos sean una sola unidad.
type TxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		purchaseRepo repository.PurchaseRepository,
	) error) error
}
