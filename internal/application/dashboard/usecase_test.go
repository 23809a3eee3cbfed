package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dashboard"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/internal/infrastructure/redis"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Categories().Create(ctx, &entity.Category{
		ID: "cat-1", Name: "Portátiles", IsActive: true,
	}))
	require.NoError(t, store.Suppliers().Create(ctx, &entity.Supplier{
		ID: "sup-1", Name: "Proveedor", IsActive: true,
	}))

	// tres productos: sano, stock bajo y agotado
	products := []struct {
		id       string
		minStock int64
		stock    int64
		cost     int64
	}{
		{"prod-sano", 2, 10, 100},
		{"prod-bajo", 5, 3, 50},
		{"prod-agotado", 2, 0, 30},
	}
	for _, p := range products {
		require.NoError(t, store.Products().Create(ctx, &entity.Product{
			ID:         p.id,
			SKU:        "SKU-" + p.id,
			Name:       p.id,
			CategoryID: "cat-1",
			MinStock:   p.minStock,
			CostPrice:  decimal.NewFromInt(p.cost),
			IsActive:   true,
		}))
		require.NoError(t, store.Stock().Set(ctx, p.id, p.stock))
	}
	return store
}

func newUseCase(t *testing.T, store *memory.Store, cache dashboard.Cache, ttl time.Duration) *dashboard.UseCase {
	t.Helper()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return dashboard.NewUseCase(
		store.Dashboard(), store.Movements(), store.Categories(),
		store.Suppliers(), store.Users(), cache, ttl, log,
	)
}

func newRedisCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewCache(client), mr
}

func TestStats_DerivacionesVivas(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(t, store, nil, 0)
	ctx := context.Background()

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.TotalCategories)
	assert.Equal(t, int64(1), stats.TotalSuppliers)
	assert.Equal(t, int64(1), stats.LowStockProducts, "solo prod-bajo: 0 < 3 <= 5")
	assert.Equal(t, int64(1), stats.OutOfStockProducts, "agotado no cuenta como bajo")
	// 10×100 + 3×50 + 0×30
	assert.True(t, stats.TotalStockValue.Equal(decimal.NewFromInt(1150)),
		"valor total %s", stats.TotalStockValue)

	// los conteos siguen al stock vivo sin ningún paso de refresco
	require.NoError(t, store.Stock().Set(ctx, "prod-agotado", 1))
	stats, err = uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.LowStockProducts)
	assert.Equal(t, int64(0), stats.OutOfStockProducts)
}

func TestStats_SirveDesdeCacheDentroDelTTL(t *testing.T) {
	store := newStore(t)
	cache, _ := newRedisCache(t)
	uc := newUseCase(t, store, cache, time.Minute)
	ctx := context.Background()

	first, err := uc.Stats(ctx)
	require.NoError(t, err)

	// un cambio posterior no se ve hasta invalidar o expirar
	require.NoError(t, store.Stock().Set(ctx, "prod-sano", 0))
	cached, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.OutOfStockProducts, cached.OutOfStockProducts)

	uc.InvalidateStats(ctx)
	fresh, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.OutOfStockProducts)
}

func TestStats_ExpiracionDelTTL(t *testing.T) {
	store := newStore(t)
	cache, mr := newRedisCache(t)
	uc := newUseCase(t, store, cache, time.Minute)
	ctx := context.Background()

	_, err := uc.Stats(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Stock().Set(ctx, "prod-sano", 0))

	// miniredis avanza el reloj; el TTL vence y la siguiente lectura recalcula
	mr.FastForward(2 * time.Minute)
	fresh, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.OutOfStockProducts)
}

func TestLowStock_MasUrgentesPrimero(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(t, store, nil, 0)
	ctx := context.Background()

	// otro producto bajo, más cerca de su mínimo que prod-bajo (3-5 = -2)
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "prod-critico", SKU: "SKU-critico", Name: "crítico",
		CategoryID: "cat-1", MinStock: 10, IsActive: true,
	}))
	require.NoError(t, store.Stock().Set(ctx, "prod-critico", 1))

	list, err := uc.LowStock(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "prod-critico", list.Products[0].ID, "1-10 = -9 va antes que 3-5 = -2")
	assert.True(t, list.Products[0].LowStock)
}

func TestOutOfStock_SoloAgotados(t *testing.T) {
	store := newStore(t)
	uc := newUseCase(t, store, nil, 0)

	list, err := uc.OutOfStock(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "prod-agotado", list.Products[0].ID)
	assert.True(t, list.Products[0].OutOfStock)
}
