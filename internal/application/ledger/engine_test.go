package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

const actorID = "11111111-1111-4111-8111-111111111111"

func newTestEngine(t *testing.T) (*ledger.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	engine := ledger.NewEngine(store, store.Movements(), store.Stock(), 2*time.Second, log)
	return engine, store
}

// seedProduct crea un producto activo y, si initial > 0, una entrada inicial
// vía el motor para que historial y cache queden coherentes.
func seedProduct(t *testing.T, engine *ledger.Engine, store *memory.Store, initial int64) string {
	t.Helper()
	ctx := context.Background()
	categoryID := uuid.New().String()
	require.NoError(t, store.Categories().Create(ctx, &entity.Category{
		ID: categoryID, Name: "Categoría " + categoryID[:8], IsActive: true,
	}))
	productID := uuid.New().String()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID:         productID,
		SKU:        "SKU-" + productID[:8],
		Name:       "Producto " + productID[:8],
		CategoryID: categoryID,
		IsActive:   true,
	}))
	if initial > 0 {
		_, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{{
			ProductID: productID,
			Type:      entity.MovementTypeIN,
			Quantity:  initial,
			Reason:    "carga inicial",
		}})
		require.NoError(t, err)
	}
	return productID
}

func TestApplyBatch_EntradaYSalida(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 10)

	ids, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 4, Reason: "venta"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	stock, err := engine.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stock)

	history, err := engine.GetHistory(ctx, productID, nil, nil)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// el snapshot antes/después de cada movimiento encadena con el anterior
	assert.Equal(t, int64(0), history[0].PreviousStock)
	assert.Equal(t, int64(10), history[0].NewStock)
	assert.Equal(t, int64(10), history[1].PreviousStock)
	assert.Equal(t, int64(6), history[1].NewStock)
	assert.Equal(t, entity.DirectionOut, history[1].Direction)
	assert.Equal(t, actorID, history[1].UserID)
	assert.Greater(t, history[1].Seq, history[0].Seq)
}

func TestApplyBatch_StockInsuficienteRechazaConFaltante(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 10)

	_, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 12},
	})

	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, productID, insufficientErr.ProductID)
	assert.Equal(t, int64(12), insufficientErr.Requested)
	assert.Equal(t, int64(10), insufficientErr.Available)
	assert.Equal(t, int64(2), insufficientErr.Shortfall())

	// nada se anexó y la cache no cambió
	stock, err := engine.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock)
	history, err := engine.GetHistory(ctx, productID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, history, 1, "solo la carga inicial")
}

func TestApplyBatch_LoteAtomico(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productA := seedProduct(t, engine, store, 20)
	productB := seedProduct(t, engine, store, 3)

	// la primera línea es válida, la segunda dejaría B en negativo:
	// el lote entero se rechaza sin anexar nada
	_, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: productA, Type: entity.MovementTypeOUT, Quantity: 5},
		{ProductID: productB, Type: entity.MovementTypeOUT, Quantity: 4},
	})
	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, productB, insufficientErr.ProductID)

	stockA, _ := engine.GetStock(ctx, productA)
	stockB, _ := engine.GetStock(ctx, productB)
	assert.Equal(t, int64(20), stockA, "la línea válida tampoco se aplica")
	assert.Equal(t, int64(3), stockB)
}

func TestApplyBatch_ValidaSobreElValorCorrido(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 5)

	// dos salidas de 3 sobre stock 5: la primera deja 2, la segunda no cabe
	_, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 3},
		{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 3},
	})
	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, int64(2), insufficientErr.Available)
	assert.Equal(t, int64(1), insufficientErr.Shortfall())

	// una entrada intercalada sí permite la segunda salida
	_, err = engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 3},
		{ProductID: productID, Type: entity.MovementTypeIN, Quantity: 1},
		{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 3},
	})
	require.NoError(t, err)
	stock, _ := engine.GetStock(ctx, productID)
	assert.Equal(t, int64(0), stock)
}

func TestApplyBatch_ProductoInexistente(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.ApplyBatch(context.Background(), actorID, []ledger.Entry{
		{ProductID: uuid.New().String(), Type: entity.MovementTypeIN, Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyBatch_ProductoInactivo(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 5)
	require.NoError(t, store.Products().Deactivate(ctx, productID))

	_, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyBatch_EntradasInvalidas(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 5)

	_, err := engine.ApplyBatch(ctx, actorID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "lote vacío")

	_, err = engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: productID, Type: entity.MovementTypeIN, Quantity: 0},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad no positiva")

	_, err = engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: productID, Type: entity.MovementTypeADJUSTMENT, Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ajuste sin sentido explícito")
}

func TestApplyBatch_TrasladoComoParExplicito(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	origin := seedProduct(t, engine, store, 8)
	destination := seedProduct(t, engine, store, 0)

	reference := uuid.New().String()
	ids, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: origin, Type: entity.MovementTypeTRANSFER, Direction: entity.DirectionOut, Quantity: 3, Reference: reference},
		{ProductID: destination, Type: entity.MovementTypeTRANSFER, Direction: entity.DirectionIn, Quantity: 3, Reference: reference},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	originStock, _ := engine.GetStock(ctx, origin)
	destStock, _ := engine.GetStock(ctx, destination)
	assert.Equal(t, int64(5), originStock)
	assert.Equal(t, int64(3), destStock)

	// ambas patas comparten la referencia
	movements, err := store.Movements().ListByReference(ctx, reference)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestApplyBatch_ConcurrenciaProductosSolapados(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productA := seedProduct(t, engine, store, 1000)
	productB := seedProduct(t, engine, store, 1000)

	// lotes concurrentes con los productos en órdenes opuestos: el orden
	// canónico de adquisición de locks evita el interbloqueo
	const workers = 8
	const iterations = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers*iterations)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		first, second := productA, productB
		if w%2 == 0 {
			first, second = productB, productA
		}
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{
					{ProductID: first, Type: entity.MovementTypeOUT, Quantity: 1},
					{ProductID: second, Type: entity.MovementTypeIN, Quantity: 1},
				})
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// mismo número de entradas y salidas por producto: el neto es el inicial
	stockA, _ := engine.GetStock(ctx, productA)
	stockB, _ := engine.GetStock(ctx, productB)
	assert.Equal(t, int64(1000), stockA)
	assert.Equal(t, int64(1000), stockB)
}

func TestApplyBatch_ConcurrenciaNoSobreVende(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 10)

	// 20 salidas de 1 contra stock 10: exactamente 10 deben pasar
	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{
				{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 1},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		var insufficientErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &insufficientErr)
		rejected++
	}
	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, rejected)

	stock, _ := engine.GetStock(ctx, productID)
	assert.Equal(t, int64(0), stock)
}

func TestRebuild_ReparaCacheCorrupta(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 10)
	_, err := engine.ApplyBatch(ctx, actorID, []ledger.Entry{
		{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 3},
	})
	require.NoError(t, err)

	// corromper la cache a propósito; el historial es la fuente de verdad
	require.NoError(t, store.Stock().Set(ctx, productID, 999))

	total, err := engine.Rebuild(ctx, productID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	stock, err := engine.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stock)
}

func TestRebuild_AsOfNoMuta(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 0)

	// historial con fechas controladas, anexado directo al repositorio
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendAt := func(day int, direction string, qty, prev, next int64) {
		movType := entity.MovementTypeIN
		if direction == entity.DirectionOut {
			movType = entity.MovementTypeOUT
		}
		require.NoError(t, store.Movements().Append(ctx, &entity.StockMovement{
			ProductID:     productID,
			Type:          movType,
			Direction:     direction,
			Quantity:      qty,
			PreviousStock: prev,
			NewStock:      next,
			UserID:        actorID,
			CreatedAt:     base.AddDate(0, 0, day),
		}))
	}
	appendAt(0, entity.DirectionIn, 10, 0, 10)
	appendAt(1, entity.DirectionOut, 4, 10, 6)
	appendAt(2, entity.DirectionIn, 5, 6, 11)
	require.NoError(t, store.Stock().Set(ctx, productID, 11))

	cutoff := base.AddDate(0, 0, 1)
	asOf, err := engine.Rebuild(ctx, productID, &cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(6), asOf, "stock al día 1: 10 - 4")

	// la auditoría no toca la cache
	stock, err := engine.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), stock)
}

func TestRebuild_ProductoSinHistorial(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 0)

	total, err := engine.Rebuild(ctx, productID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestGetHistory_FiltraPorFechas(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	productID := seedProduct(t, engine, store, 0)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Movements().Append(ctx, &entity.StockMovement{
			ProductID:     productID,
			Type:          entity.MovementTypeIN,
			Direction:     entity.DirectionIn,
			Quantity:      1,
			PreviousStock: int64(i),
			NewStock:      int64(i + 1),
			Reason:        fmt.Sprintf("entrada %d", i),
			UserID:        actorID,
			CreatedAt:     base.AddDate(0, 0, i),
		}))
	}

	since := base.AddDate(0, 0, 1)
	until := base.AddDate(0, 0, 1)
	history, err := engine.GetHistory(ctx, productID, &since, &until)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "entrada 1", history[0].Reason)
}
