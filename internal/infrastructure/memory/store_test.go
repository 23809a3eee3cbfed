package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func TestRun_ErrorRevierteTodo(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		require.NoError(t, movRepo.Append(ctx, &entity.StockMovement{
			ProductID: "prod-1",
			Type:      entity.MovementTypeIN,
			Direction: entity.DirectionIn,
			Quantity:  5,
			NewStock:  5,
			UserID:    "user-1",
		}))
		if _, err := stockRepo.Apply(ctx, "prod-1", 5); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// ni el movimiento ni el delta sobreviven al rollback
	latest, err := store.Movements().Latest(ctx, "prod-1")
	require.NoError(t, err)
	assert.Nil(t, latest)
	stock, err := store.Stock().Get(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock)
}

func TestRun_RollbackReutilizaLaSecuencia(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	appendOne := func(movRepo repository.MovementRepository) error {
		return movRepo.Append(ctx, &entity.StockMovement{
			ProductID: "prod-1",
			Type:      entity.MovementTypeIN,
			Direction: entity.DirectionIn,
			Quantity:  1,
			NewStock:  1,
			UserID:    "user-1",
		})
	}

	failed := errors.New("abort")
	err := store.Run(ctx, func(movRepo repository.MovementRepository, _ repository.StockRepository, _ repository.ProductRepository) error {
		require.NoError(t, appendOne(movRepo))
		return failed
	})
	require.ErrorIs(t, err, failed)

	err = store.Run(ctx, func(movRepo repository.MovementRepository, _ repository.StockRepository, _ repository.ProductRepository) error {
		return appendOne(movRepo)
	})
	require.NoError(t, err)

	latest, err := store.Movements().Latest(ctx, "prod-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(1), latest.Seq, "la secuencia revertida se reutiliza")
}

func TestStock_ApplyNuncaDejaNegativo(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	_, err := store.Stock().Apply(ctx, "prod-1", -1)
	var negErr *domain.NegativeStockError
	require.ErrorAs(t, err, &negErr)
	assert.Equal(t, "prod-1", negErr.ProductID)

	got, err := store.Stock().Apply(ctx, "prod-1", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestUpdateStatusIf_EsCompareAndSwap(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Purchases().Create(ctx, &entity.Purchase{
		ID: "compra-1", SupplierID: "sup-1", Status: entity.PurchaseStatusPending,
	}))

	ok, err := store.Purchases().UpdateStatusIf(ctx, "compra-1", entity.PurchaseStatusPending, entity.PurchaseStatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	// el estado ya no es PENDING: el segundo CAS no hace nada
	ok, err = store.Purchases().UpdateStatusIf(ctx, "compra-1", entity.PurchaseStatusPending, entity.PurchaseStatusApproved)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.Purchases().GetByID(ctx, "compra-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusApproved, got.Status)
}

func TestRepos_DevuelvenClones(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Categories().Create(ctx, &entity.Category{
		ID: "cat-1", Name: "Original", IsActive: true,
	}))

	got, err := store.Categories().GetByID(ctx, "cat-1")
	require.NoError(t, err)
	got.Name = "Mutado"

	again, err := store.Categories().GetByID(ctx, "cat-1")
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Name, "mutar lo devuelto no toca el store")
}
