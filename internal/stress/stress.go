// Package stress drives many independent heaps under concurrent load, the
// way internal/packagemanager.Manager.ResolveAndFetch fans fetches out
// across a bounded errgroup: each worker owns its own heap.Heap, so the
// allocator's single-threaded contract is never crossed, while the harness
// itself exercises many heaps at once.
package stress

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/kestrel-systems/heapd/internal/heap"
)

// Config controls a Run.
type Config struct {
	// Heaps is how many independent heaps to drive.
	Heaps int

	// Ops is how many alloc/free operations each heap's workload performs.
	Ops int

	// Concurrency caps how many heaps run at once. Zero uses concurrency().
	Concurrency int

	// Seed seeds the per-heap workload RNGs; heap i uses Seed+int64(i).
	Seed int64
}

// Result reports one heap's final usage after its workload completed.
type Result struct {
	HeapIndex int
	Stats     heap.Stats
}

// Run drives cfg.Heaps independent heaps through a randomized alloc/free
// workload and returns each heap's final Stats. It returns the first error
// any worker hits (including ctx cancellation), cancelling the rest.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	if cfg.Heaps <= 0 {
		return nil, nil
	}

	limit := cfg.Concurrency
	if limit <= 0 {
		limit = concurrency()
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, limit)
	results := make([]Result, cfg.Heaps)

	for i := 0; i < cfg.Heaps; i++ {
		i := i

		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			h := heap.New()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))

			if err := workload(gctx, h, rng, cfg.Ops); err != nil {
				return fmt.Errorf("heap %d: %w", i, err)
			}

			results[i] = Result{HeapIndex: i, Stats: h.Stats()}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// workload repeatedly allocates and frees against h, biasing toward
// allocation while the live set is small and toward freeing once it grows,
// then frees whatever remains live at the end so Run's Stats reflect a
// heap that has fully unwound.
func workload(ctx context.Context, h *heap.Heap, rng *rand.Rand, ops int) error {
	live := make([]unsafe.Pointer, 0, 64)

	for n := 0; n < ops; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if len(live) == 0 || rng.Intn(3) != 0 {
			size := uintptr(rng.Intn(512) + 1)

			ptr := h.Alloc(size)
			if ptr == nil {
				return fmt.Errorf("alloc of %d bytes failed after %d ops", size, n)
			}

			live = append(live, ptr)

			continue
		}

		idx := rng.Intn(len(live))
		h.Free(live[idx])
		live[idx] = live[len(live)-1]
		live = live[:len(live)-1]
	}

	for _, ptr := range live {
		h.Free(ptr)
	}

	return nil
}

// concurrency returns the worker cap for a stress Run. It reads
// HEAPD_STRESS_CONCURRENCY if set, otherwise uses GOMAXPROCS*8.
func concurrency() int {
	if v := os.Getenv("HEAPD_STRESS_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > 1024 {
				return 1024
			}

			return n
		}
	}

	c := runtime.GOMAXPROCS(0) * 8
	if c < 4 {
		c = 4
	}

	if c > 1024 {
		c = 1024
	}

	return c
}
