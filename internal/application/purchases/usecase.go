package purchases

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

// UseCase orquesta el ciclo de vida de las compras:
// PENDING → APPROVED → RECEIVED (emite entradas al ledger) o → CANCELLED.
// La recepción compone el compare-and-swap de estado y el lote de movimientos
// en una sola transacción: o ambos quedan, o ninguno.
type UseCase struct {
	txRunner     TxRunner
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	engine       *ledger.Engine
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	engine *ledger.Engine,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		engine:       engine,
	}
}

// Create crea la compra en PENDING con sus ítems. No toca el ledger.
func (uc *UseCase) Create(ctx context.Context, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	supplier, err := uc.supplierRepo.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil || !supplier.IsActive {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	purchase := &entity.Purchase{
		ID:           uuid.New().String(),
		SupplierID:   in.SupplierID,
		PurchaseDate: now,
		Status:       entity.PurchaseStatusPending,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
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
			unitPrice = product.CostPrice
		}
		if unitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt(item.Quantity))
		purchase.Items = append(purchase.Items, entity.PurchaseItem{
			ID:         uuid.New().String(),
			PurchaseID: purchase.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	purchase.TotalAmount = total

	if err := uc.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase), nil
}

// GetByID devuelve la compra con sus ítems.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	return toPurchaseResponse(purchase), nil
}

// List lista compras, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, status string, limit, offset int) ([]*dto.PurchaseResponse, error) {
	purchases, err := uc.purchaseRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseResponse(p))
	}
	return out, nil
}

// Approve pasa la compra de PENDING a APPROVED (compare-and-swap).
func (uc *UseCase) Approve(ctx context.Context, id string) error {
	return uc.transition(ctx, id, entity.PurchaseStatusPending, entity.PurchaseStatusApproved)
}

// Cancel cancela la compra. Solo válido desde PENDING o APPROVED; una compra
// RECEIVED no se cancela, se compensa con Return.
func (uc *UseCase) Cancel(ctx context.Context, id string) error {
	ok, err := uc.purchaseRepo.UpdateStatusIf(ctx, id, entity.PurchaseStatusPending, entity.PurchaseStatusCancelled)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return uc.transition(ctx, id, entity.PurchaseStatusApproved, entity.PurchaseStatusCancelled)
}

func (uc *UseCase) transition(ctx context.Context, id, from, to string) error {
	ok, err := uc.purchaseRepo.UpdateStatusIf(ctx, id, from, to)
	if err != nil {
		return err
	}
	if !ok {
		purchase, err := uc.purchaseRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if purchase == nil {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

// Receive pasa la compra de APPROVED a RECEIVED y emite una entrada IN por
// ítem, todo en una transacción. El compare-and-swap hace idempotente el
// trigger: un segundo intento no encuentra la compra en APPROVED y termina en
// ErrConflict sin emitir nada.
func (uc *UseCase) Receive(ctx context.Context, actorID, id string) (*dto.ReceiveResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	if purchase.Status != entity.PurchaseStatusApproved {
		return nil, domain.ErrConflict
	}

	entries := make([]ledger.Entry, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		entries = append(entries, ledger.Entry{
			ProductID: item.ProductID,
			Type:      entity.MovementTypeIN,
			Quantity:  item.Quantity,
			Reason:    "recepción de compra",
			Reference: purchase.ID,
		})
	}

	var movementIDs []string
	err = uc.txRunner.RunPurchase(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		purchaseRepo repository.PurchaseRepository,
	) error {
		ok, err := purchaseRepo.UpdateStatusIf(ctx, id, entity.PurchaseStatusApproved, entity.PurchaseStatusReceived)
		if err != nil {
			return err
		}
		if !ok {
			// Otro caller la recibió o canceló entre la lectura y el CAS.
			return domain.ErrConflict
		}
		movementIDs, err = uc.engine.ApplyBatchInTx(ctx, movRepo, stockRepo, productRepo, actorID, entries)
		return err
	})
	if err != nil {
		return nil, err
	}

	purchase.Status = entity.PurchaseStatusReceived
	return &dto.ReceiveResponse{
		Purchase:    *toPurchaseResponse(purchase),
		MovementIDs: movementIDs,
	}, nil
}

// Return emite el lote compensatorio OUT de una compra ya recibida
// (devolución al proveedor). No cambia el estado de la cabecera: los
// movimientos del ledger nunca se borran, se compensan.
func (uc *UseCase) Return(ctx context.Context, actorID, id, reason string) ([]string, error) {
	purchase, err := uc.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	if purchase.Status != entity.PurchaseStatusReceived {
		return nil, domain.ErrConflict
	}

	entries := make([]ledger.Entry, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		entries = append(entries, ledger.Entry{
			ProductID: item.ProductID,
			Type:      entity.MovementTypeOUT,
			Quantity:  item.Quantity,
			Reason:    reason,
			Reference: purchase.ID,
		})
	}
	return uc.engine.ApplyBatch(ctx, actorID, entries)
}

func toPurchaseResponse(p *entity.Purchase) *dto.PurchaseResponse {
	items := make([]dto.PurchaseItemResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, dto.PurchaseItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return &dto.PurchaseResponse{
		ID:           p.ID,
		SupplierID:   p.SupplierID,
		PurchaseDate: p.PurchaseDate,
		TotalAmount:  p.TotalAmount,
		Status:       p.Status,
		Notes:        p.Notes,
		Items:        items,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
