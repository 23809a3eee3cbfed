package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
)

func TestProductLocks_AdquiereYLibera(t *testing.T) {
	locks := newProductLocks()
	ctx := context.Background()

	release, err := locks.AcquireAll(ctx, []string{"b", "a", "a", "c"}, time.Second)
	require.NoError(t, err)
	release()

	// tras liberar, otro lote con los mismos productos entra sin esperar
	release, err = locks.AcquireAll(ctx, []string{"a", "b", "c"}, 50*time.Millisecond)
	require.NoError(t, err)
	release()
}

func TestProductLocks_TimeoutNoDejaLocksTomados(t *testing.T) {
	locks := newProductLocks()
	ctx := context.Background()

	holdRelease, err := locks.AcquireAll(ctx, []string{"b"}, time.Second)
	require.NoError(t, err)

	// el lote a+b se atasca en b; al agotar la espera debe soltar también a
	_, err = locks.AcquireAll(ctx, []string{"a", "b"}, 50*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrLockTimeout)

	release, err := locks.AcquireAll(ctx, []string{"a"}, 50*time.Millisecond)
	require.NoError(t, err, "a quedó libre tras el timeout")
	release()

	holdRelease()
}

func TestProductLocks_CancelacionDelCaller(t *testing.T) {
	locks := newProductLocks()

	holdRelease, err := locks.AcquireAll(context.Background(), []string{"a"}, time.Second)
	require.NoError(t, err)
	defer holdRelease()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locks.AcquireAll(ctx, []string{"a"}, time.Second)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrLockTimeout, "cancelación no es timeout")
}

func TestProductLocks_OrdenCanonicoEvitaInterbloqueo(t *testing.T) {
	locks := newProductLocks()
	ctx := context.Background()

	// dos grupos piden a+b y b+a muchas veces; sin orden canónico esto
	// se interbloquearía en pocas iteraciones
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		ids := []string{"a", "b"}
		if w%2 == 0 {
			ids = []string{"b", "a"}
		}
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				release, err := locks.AcquireAll(ctx, ids, 5*time.Second)
				if !assert.NoError(t, err) {
					return
				}
				release()
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("posible interbloqueo: los lotes no terminaron")
	}
}

func TestDedupSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupSorted([]string{"c", "a", "b", "a", "c"}))
	assert.Empty(t, dedupSorted(nil))
}
