package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

const statsCacheKey = "dashboard:stats"

// Cache puerto de cache de respuestas del dashboard. nil = sin cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// UseCase agregador del dashboard. Todas las métricas son derivaciones vivas
// del lado de lectura: consultan la cache de stock al momento y no persisten
// ningún estado propio.
type UseCase struct {
	dashRepo     repository.DashboardRepository
	movRepo      repository.MovementRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	userRepo     repository.UserRepository
	cache        Cache
	cacheTTL     time.Duration
	log          *logger.Logger
}

// NewUseCase construye el agregador. cache puede ser nil.
func NewUseCase(
	dashRepo repository.DashboardRepository,
	movRepo repository.MovementRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	userRepo repository.UserRepository,
	cache Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		dashRepo:     dashRepo,
		movRepo:      movRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		userRepo:     userRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		log:          log,
	}
}

// Stats arma el snapshot del dashboard. Las consultas corren en paralelo; si
// hay cache configurada la respuesta se sirve desde ahí dentro del TTL.
func (uc *UseCase) Stats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	if uc.cache != nil {
		if raw, ok, err := uc.cache.Get(ctx, statsCacheKey); err == nil && ok {
			var cached dto.DashboardStatsDTO
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var stats dto.DashboardStatsDTO
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := uc.dashRepo.CountProducts(gctx)
		stats.TotalProducts = n
		return err
	})
	g.Go(func() error {
		n, err := uc.categoryRepo.Count(gctx)
		stats.TotalCategories = n
		return err
	})
	g.Go(func() error {
		n, err := uc.supplierRepo.Count(gctx)
		stats.TotalSuppliers = n
		return err
	})
	g.Go(func() error {
		n, err := uc.userRepo.Count(gctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := uc.dashRepo.CountLowStock(gctx)
		stats.LowStockProducts = n
		return err
	})
	g.Go(func() error {
		n, err := uc.dashRepo.CountOutOfStock(gctx)
		stats.OutOfStockProducts = n
		return err
	})
	g.Go(func() error {
		v, err := uc.dashRepo.TotalStockValue(gctx)
		stats.TotalStockValue = v
		return err
	})
	g.Go(func() error {
		movements, err := uc.movRepo.ListRecent(gctx, 10)
		if err != nil {
			return err
		}
		stats.RecentMovements = toMovementResponses(movements)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(&stats); err == nil {
			if err := uc.cache.Set(ctx, statsCacheKey, raw, uc.cacheTTL); err != nil {
				uc.log.Warn().Err(err).Msg("no se pudo cachear stats del dashboard")
			}
		}
	}
	return &stats, nil
}

// LowStock lista los productos con stock bajo, más urgentes primero.
func (uc *UseCase) LowStock(ctx context.Context, limit int) (*dto.LowStockListDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	products, err := uc.dashRepo.LowStockProducts(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toLowStockList(products), nil
}

// OutOfStock lista los productos agotados.
func (uc *UseCase) OutOfStock(ctx context.Context, limit int) (*dto.LowStockListDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	products, err := uc.dashRepo.OutOfStockProducts(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toLowStockList(products), nil
}

// InvalidateStats borra el snapshot cacheado; se llama tras escrituras que
// cambian stock para que el dashboard no sirva datos más viejos que el TTL.
func (uc *UseCase) InvalidateStats(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, statsCacheKey); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar cache del dashboard")
	}
}

func toLowStockList(products []*entity.Product) *dto.LowStockListDTO {
	out := &dto.LowStockListDTO{Products: make([]dto.ProductResponse, 0, len(products))}
	for _, p := range products {
		out.Products = append(out.Products, *usecase.ToProductResponse(p))
	}
	out.Total = len(out.Products)
	return out
}

func toMovementResponses(movements []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:            m.ID,
			Seq:           m.Seq,
			ProductID:     m.ProductID,
			Type:          m.Type,
			Direction:     m.Direction,
			Quantity:      m.Quantity,
			PreviousStock: m.PreviousStock,
			NewStock:      m.NewStock,
			Reason:        m.Reason,
			Reference:     m.Reference,
			UserID:        m.UserID,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}
