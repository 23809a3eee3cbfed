package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// UseCase orquesta el ciclo de vida de las ventas:
// PENDING → COMPLETED (emite salidas al ledger) o → CANCELLED;
// COMPLETED → REFUNDED (emite entradas compensatorias).
// Si el ledger rechaza el lote por stock insuficiente, la venta permanece en
// PENDING y el error llega al caller con producto y faltante para que la UI
// decida (despacho parcial, backorder).
type UseCase struct {
	txRunner    TxRunner
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	engine      *ledger.Engine
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	engine *ledger.Engine,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		engine:      engine,
	}
}

// Create crea la venta en PENDING con sus ítems. No toca el ledger: el stock
// se descuenta al completar, no al crear.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	now := time.Now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		SaleDate:      now,
		Status:        entity.SaleStatusPending,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	total := decimal.Zero
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, domain.ErrNotFound
		}
		unitPrice := item.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.SellingPrice
		}
		if unitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt(item.Quantity))
		sale.Items = append(sale.Items, entity.SaleItem{
			ID:         uuid.New().String(),
			SaleID:     sale.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	sale.TotalAmount = total

	if err := uc.saleRepo.Create(ctx, sale); err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// GetByID devuelve la venta con sus ítems.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return toSaleResponse(sale), nil
}

// List lista ventas, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, status string, limit, offset int) ([]*dto.SaleResponse, error) {
	sales, err := uc.saleRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	return out, nil
}

// Complete pasa la venta de PENDING a COMPLETED y emite una salida OUT por
// ítem en una sola transacción. Stock insuficiente aborta todo: ningún
// movimiento queda y la venta sigue en PENDING.
func (uc *UseCase) Complete(ctx context.Context, actorID, id string) (*dto.CompleteSaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.Status != entity.SaleStatusPending {
		return nil, domain.ErrConflict
	}

	entries := saleEntries(sale, entity.MovementTypeOUT, "venta completada")
	var movementIDs []string
	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		ok, err := saleRepo.UpdateStatusIf(ctx, id, entity.SaleStatusPending, entity.SaleStatusCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrConflict
		}
		movementIDs, err = uc.engine.ApplyBatchInTx(ctx, movRepo, stockRepo, productRepo, actorID, entries)
		return err
	})
	if err != nil {
		return nil, err
	}

	sale.Status = entity.SaleStatusCompleted
	return &dto.CompleteSaleResponse{
		Sale:        *toSaleResponse(sale),
		MovementIDs: movementIDs,
	}, nil
}

// Cancel cancela una venta PENDING. Las completadas se reembolsan.
func (uc *UseCase) Cancel(ctx context.Context, id string) error {
	ok, err := uc.saleRepo.UpdateStatusIf(ctx, id, entity.SaleStatusPending, entity.SaleStatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		sale, err := uc.saleRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

// Refund pasa la venta de COMPLETED a REFUNDED y emite una entrada IN
// compensatoria por ítem, en una sola transacción.
func (uc *UseCase) Refund(ctx context.Context, actorID, id string) (*dto.CompleteSaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.Status != entity.SaleStatusCompleted {
		return nil, domain.ErrConflict
	}

	entries := saleEntries(sale, entity.MovementTypeIN, "reembolso de venta")
	var movementIDs []string
	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		ok, err := saleRepo.UpdateStatusIf(ctx, id, entity.SaleStatusCompleted, entity.SaleStatusRefunded)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrConflict
		}
		movementIDs, err = uc.engine.ApplyBatchInTx(ctx, movRepo, stockRepo, productRepo, actorID, entries)
		return err
	})
	if err != nil {
		return nil, err
	}

	sale.Status = entity.SaleStatusRefunded
	return &dto.CompleteSaleResponse{
		Sale:        *toSaleResponse(sale),
		MovementIDs: movementIDs,
	}, nil
}

// saleEntries construye el lote del ledger para los ítems de la venta.
func saleEntries(sale *entity.Sale, movType, reason string) []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(sale.Items))
	for _, item := range sale.Items {
		entries = append(entries, ledger.Entry{
			ProductID: item.ProductID,
			Type:      movType,
			Quantity:  item.Quantity,
			Reason:    reason,
			Reference: sale.ID,
		})
	}
	return entries
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return &dto.SaleResponse{
		ID:            s.ID,
		CustomerName:  s.CustomerName,
		CustomerEmail: s.CustomerEmail,
		CustomerPhone: s.CustomerPhone,
		SaleDate:      s.SaleDate,
		TotalAmount:   s.TotalAmount,
		Status:        s.Status,
		Notes:         s.Notes,
		Items:         items,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
