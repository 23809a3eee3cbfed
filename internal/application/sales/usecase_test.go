package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/sales"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

const actorID = "33333333-3333-4333-8333-333333333333"

type fixture struct {
	store     *memory.Store
	engine    *ledger.Engine
	uc        *sales.UseCase
	productID string
}

// newFixture arma el caso de uso sobre el store en memoria con un producto
// activo y el stock inicial indicado.
func newFixture(t *testing.T, initialStock int64) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	engine := ledger.NewEngine(store, store.Movements(), store.Stock(), 2*time.Second, log)

	categoryID := uuid.New().String()
	require.NoError(t, store.Categories().Create(ctx, &entity.Category{
		ID: categoryID, Name: "Categoría Test", IsActive: true,
	}))
	productID := uuid.New().String()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID:           productID,
		SKU:          "SKU-001",
		Name:         "Producto Test",
		CategoryID:   categoryID,
		SellingPrice: decimal.NewFromInt(12),
		IsActive:     true,
	}))
	if initialStock > 0 {
		_, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{{
			ProductID: productID,
			Type:      entity.MovementTypeIN,
			Quantity:  initialStock,
			Reason:    "carga inicial",
		}})
		require.NoError(t, err)
	}

	uc := sales.NewUseCase(store, store.Sales(), store.Products(), engine)
	return &fixture{store: store, engine: engine, uc: uc, productID: productID}
}

func (f *fixture) createSale(t *testing.T, qty int64) *dto.SaleResponse {
	t.Helper()
	sale, err := f.uc.Create(context.Background(), dto.CreateSaleRequest{
		CustomerName: "Cliente Test",
		Items:        []dto.OrderItemRequest{{ProductID: f.productID, Quantity: qty}},
	})
	require.NoError(t, err)
	return sale
}

func TestCreate_NoDescuentaStock(t *testing.T) {
	f := newFixture(t, 10)
	sale := f.createSale(t, 4)

	assert.Equal(t, entity.SaleStatusPending, sale.Status)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(48)), "4 × precio de venta 12")

	stock, err := f.engine.GetStock(context.Background(), f.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock, "el stock se descuenta al completar, no al crear")
}

func TestComplete_EmiteSalidasYDescuentaStock(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	sale := f.createSale(t, 4)

	completed, err := f.uc.Complete(ctx, actorID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, completed.Sale.Status)
	require.Len(t, completed.MovementIDs, 1)

	stock, _ := f.engine.GetStock(ctx, f.productID)
	assert.Equal(t, int64(6), stock)

	movements, err := f.store.Movements().ListByReference(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementTypeOUT, movements[0].Type)
}

func TestComplete_StockInsuficienteDejaLaVentaEnPending(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	sale := f.createSale(t, 5)

	_, err := f.uc.Complete(ctx, actorID, sale.ID)
	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, int64(2), insufficientErr.Shortfall())

	// la transacción revierte el cambio de estado junto con el lote:
	// la venta sigue en PENDING y puede reintentarse tras reponer
	got, err := f.uc.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPending, got.Status)

	stock, _ := f.engine.GetStock(ctx, f.productID)
	assert.Equal(t, int64(3), stock)
	movements, _ := f.store.Movements().ListByReference(ctx, sale.ID)
	assert.Empty(t, movements)

	// tras reponer, el mismo Complete pasa
	_, err = f.engine.ApplyBatch(ctx, actorID, []ledger.Entry{{
		ProductID: f.productID, Type: entity.MovementTypeIN, Quantity: 2, Reason: "reposición",
	}})
	require.NoError(t, err)
	_, err = f.uc.Complete(ctx, actorID, sale.ID)
	require.NoError(t, err)
	stock, _ = f.engine.GetStock(ctx, f.productID)
	assert.Equal(t, int64(0), stock)
}

func TestComplete_IdempotentePorCompareAndSwap(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	sale := f.createSale(t, 4)

	_, err := f.uc.Complete(ctx, actorID, sale.ID)
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, actorID, sale.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stock, _ := f.engine.GetStock(ctx, f.productID)
	assert.Equal(t, int64(6), stock, "sin salidas duplicadas")
}

func TestCancel_SoloDesdePending(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	pending := f.createSale(t, 1)
	require.NoError(t, f.uc.Cancel(ctx, pending.ID))

	completed := f.createSale(t, 1)
	_, err := f.uc.Complete(ctx, actorID, completed.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.uc.Cancel(ctx, completed.ID), domain.ErrConflict,
		"una venta completada se reembolsa, no se cancela")
}

func TestRefund_EmiteEntradasCompensatorias(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	sale := f.createSale(t, 4)
	_, err := f.uc.Complete(ctx, actorID, sale.ID)
	require.NoError(t, err)

	refunded, err := f.uc.Refund(ctx, actorID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusRefunded, refunded.Sale.Status)

	stock, _ := f.engine.GetStock(ctx, f.productID)
	assert.Equal(t, int64(10), stock, "el reembolso repone el stock")

	movements, _ := f.store.Movements().ListByReference(ctx, sale.ID)
	assert.Len(t, movements, 2, "la salida original y la entrada compensatoria")

	// REFUNDED es terminal
	_, err = f.uc.Refund(ctx, actorID, sale.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRefund_SoloDesdeCompleted(t *testing.T) {
	f := newFixture(t, 10)
	sale := f.createSale(t, 1)

	_, err := f.uc.Refund(context.Background(), actorID, sale.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetByID_Inexistente(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.uc.GetByID(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
