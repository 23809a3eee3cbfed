package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// productLocks mantiene un lock exclusivo por producto. Los lotes adquieren
// todos sus locks en orden de productID ascendente, lo que elimina la
// inversión de orden entre lotes concurrentes con productos solapados.
type productLocks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func newProductLocks() *productLocks {
	return &productLocks{sems: make(map[string]*semaphore.Weighted)}
}

// sem devuelve el semáforo del producto, creándolo si no existe. El mapa crece
// acotado por la cantidad de productos; no se desaloja.
func (l *productLocks) sem(productID string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[productID]
	if !ok {
		s = semaphore.NewWeighted(1)
		l.sems[productID] = s
	}
	return s
}

// AcquireAll toma los locks de todos los productos indicados (deduplicados y
// ordenados) con espera acotada por timeout. Devuelve la función de
// liberación. Si la espera se agota retorna domain.ErrLockTimeout y no deja
// ningún lock tomado; la cancelación del ctx del caller también aborta aquí,
// antes de tocar el ledger.
func (l *productLocks) AcquireAll(ctx context.Context, productIDs []string, timeout time.Duration) (func(), error) {
	ids := dedupSorted(productIDs)

	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	acquired := make([]*semaphore.Weighted, 0, len(ids))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Release(1)
		}
	}
	for _, id := range ids {
		s := l.sem(id)
		if err := s.Acquire(acquireCtx, 1); err != nil {
			release()
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, domain.ErrLockTimeout
			}
			return nil, err
		}
		acquired = append(acquired, s)
	}
	return release, nil
}

// dedupSorted devuelve los IDs únicos en orden ascendente.
func dedupSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
