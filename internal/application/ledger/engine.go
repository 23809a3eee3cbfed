package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// Entry una línea de un lote de movimientos a aplicar.
type Entry struct {
	ProductID string
	Type      string // IN, OUT, ADJUSTMENT, TRANSFER
	Direction string // requerido para ADJUSTMENT y TRANSFER; implícito en IN/OUT
	Quantity  int64  // siempre > 0
	Reason    string
	Reference string // ID del documento (compra/venta) que origina el movimiento
}

// Engine es el motor de consistencia del ledger: el único punto autorizado
// para crear movimientos. Valida el lote completo antes de anexar nada,
// serializa escritores por producto y mantiene la cache de stock como vista
// materializada del historial.
type Engine struct {
	txRunner    TxRunner
	movRepo     repository.MovementRepository // lecturas fuera de tx
	stockRepo   repository.StockRepository    // lecturas fuera de tx
	locks       *productLocks
	lockTimeout time.Duration
	log         *logger.Logger
}

// NewEngine construye el motor. movRepo y stockRepo son los adaptadores
// atados al pool (solo lectura); las escrituras pasan siempre por txRunner.
func NewEngine(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	lockTimeout time.Duration,
	log *logger.Logger,
) *Engine {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Engine{
		txRunner:    txRunner,
		movRepo:     movRepo,
		stockRepo:   stockRepo,
		locks:       newProductLocks(),
		lockTimeout: lockTimeout,
		log:         log,
	}
}

// ApplyBatch valida y aplica un lote de movimientos con semántica
// todo-o-nada: si cualquier línea dejaría un stock en negativo, el lote
// entero se rechaza antes de anexar nada. Devuelve los IDs de movimiento en
// el orden de las líneas.
//
// Protocolo: locks por producto en orden ascendente (espera acotada), luego
// una transacción que bloquea las filas de stock (FOR UPDATE), valida cada
// línea en orden de llegada, anexa los movimientos y aplica los deltas a la
// cache. La cancelación del caller solo surte efecto antes de tomar locks.
func (e *Engine) ApplyBatch(ctx context.Context, actorID string, entries []Entry) ([]string, error) {
	normalized, err := normalizeEntries(entries)
	if err != nil {
		return nil, err
	}

	release, err := e.locks.AcquireAll(ctx, productIDs(normalized), e.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	var ids []string
	err = e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		var applyErr error
		ids, applyErr = e.applyLocked(ctx, movRepo, stockRepo, productRepo, actorID, normalized)
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ApplyBatchInTx aplica el lote usando repositorios atados a la transacción
// del caller, para que el cambio de estado de una compra o venta y sus
// movimientos se confirmen como una sola unidad (mismo patrón que la
// integración facturación-inventario). Los locks por producto se toman igual
// que en ApplyBatch.
func (e *Engine) ApplyBatchInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	actorID string,
	entries []Entry,
) ([]string, error) {
	normalized, err := normalizeEntries(entries)
	if err != nil {
		return nil, err
	}
	release, err := e.locks.AcquireAll(ctx, productIDs(normalized), e.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()
	return e.applyLocked(ctx, movRepo, stockRepo, productRepo, actorID, normalized)
}

// applyLocked ejecuta validar-luego-aplicar con los locks ya tomados.
func (e *Engine) applyLocked(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	actorID string,
	entries []Entry,
) ([]string, error) {
	// Fase 1: bloquear las filas de stock en orden ascendente de producto y
	// verificar que cada producto exista y esté activo.
	current := make(map[string]int64)
	for _, id := range productIDs(entries) {
		product, err := productRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("producto %s inactivo: %w", id, domain.ErrInvalidInput)
		}
		qty, err := stockRepo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		current[id] = qty
	}

	// Fase 2: validar cada línea en orden de llegada sobre el valor corrido.
	// Cualquier violación rechaza el lote completo sin haber anexado nada.
	now := time.Now()
	movements := make([]*entity.StockMovement, 0, len(entries))
	for _, entry := range entries {
		prev := current[entry.ProductID]
		delta := entity.SignedDelta(entry.Direction, entry.Quantity)
		next := prev + delta
		if next < 0 {
			return nil, &domain.InsufficientStockError{
				ProductID: entry.ProductID,
				Requested: entry.Quantity,
				Available: prev,
			}
		}
		current[entry.ProductID] = next
		movements = append(movements, &entity.StockMovement{
			ProductID:     entry.ProductID,
			Type:          entry.Type,
			Direction:     entry.Direction,
			Quantity:      entry.Quantity,
			PreviousStock: prev,
			NewStock:      next,
			Reason:        entry.Reason,
			Reference:     entry.Reference,
			UserID:        actorID,
			CreatedAt:     now,
		})
	}

	// Fase 3: anexar los movimientos en el orden validado y aplicar los
	// deltas a la cache. La cache se toca estrictamente después del append.
	ids := make([]string, 0, len(movements))
	for i, mov := range movements {
		if err := movRepo.Append(ctx, mov); err != nil {
			return nil, err
		}
		ids = append(ids, mov.ID)

		delta := entity.SignedDelta(mov.Direction, mov.Quantity)
		got, err := stockRepo.Apply(ctx, mov.ProductID, delta)
		if err != nil {
			// NegativeStockError aquí es una brecha de invariante: la
			// validación ya pasó. Se registra como incidente y aborta el lote.
			var negErr *domain.NegativeStockError
			if errors.As(err, &negErr) {
				e.log.Error().
					Str("product_id", negErr.ProductID).
					Int64("result", negErr.Result).
					Msg("incidente de consistencia: stock negativo tras validación")
			}
			return nil, err
		}
		if got != mov.NewStock {
			e.log.Error().
				Str("product_id", mov.ProductID).
				Int64("expected", mov.NewStock).
				Int64("got", got).
				Int("entry", i).
				Msg("incidente de consistencia: cache desalineada del ledger")
			return nil, &domain.NegativeStockError{ProductID: mov.ProductID, Result: got}
		}
	}
	return ids, nil
}

// GetStock devuelve el stock actual del producto desde la cache.
func (e *Engine) GetStock(ctx context.Context, productID string) (int64, error) {
	return e.stockRepo.Get(ctx, productID)
}

// GetHistory devuelve el historial de movimientos del producto en orden de
// secuencia, acotado opcionalmente por fechas.
func (e *Engine) GetHistory(ctx context.Context, productID string, since, until *time.Time) ([]*entity.StockMovement, error) {
	return e.movRepo.History(ctx, productID, since, until)
}

// normalizeEntries valida la forma de las líneas y completa el sentido
// implícito de IN/OUT. No toca persistencia.
func normalizeEntries(entries []Entry) ([]Entry, error) {
	if len(entries) == 0 {
		return nil, domain.ErrInvalidInput
	}
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		if entry.ProductID == "" || entry.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		dir, err := entity.NormalizeDirection(entry.Type, entry.Direction)
		if err != nil {
			return nil, err
		}
		entry.Direction = dir
		out[i] = entry
	}
	return out, nil
}

// productIDs devuelve los IDs de producto únicos del lote, ordenados.
func productIDs(entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ProductID)
	}
	return dedupSorted(ids)
}
