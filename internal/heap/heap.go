package heap

import (
	"fmt"
	"io"
	"unsafe"
)

// Config controls the tunables of a Heap: the OS-extension chunk
// granularity and how much address space is reserved up front. Mirrors the
// teacher's Config/Option pattern (internal/allocator.Config).
type Config struct {
	ChunkSize   uintptr
	Reservation uintptr
}

// Option configures a Heap at construction time.
type Option func(*Config)

// WithChunkSize overrides the granularity in which the region cursor
// extends its backing memory (default 1024 bytes, per spec.md §4.A).
func WithChunkSize(n uintptr) Option {
	return func(c *Config) { c.ChunkSize = n }
}

// WithInitialReservation overrides how much address space is reserved for
// the heap to grow into (default 1GiB).
func WithInitialReservation(n uintptr) Option {
	return func(c *Config) { c.Reservation = n }
}

func defaultConfig() *Config {
	return &Config{ChunkSize: defaultChunkSize, Reservation: defaultReservation}
}

// counters tracks the bookkeeping a caller can observe via Stats; it has no
// bearing on the core algorithm.
type counters struct {
	live       uintptr
	allocCount uint64
	freeCount  uint64
}

// Heap is a single-threaded, coalescing, best-fit allocator over one
// contiguous, monotonically-growable region of memory. The zero value is
// not usable; construct with New. Per spec.md §5, a Heap carries no
// internal synchronization — a program sharing a Heap across goroutines
// must hold an external mutex across every method call.
type Heap struct {
	region *region
	free   list
	counters
}

// New constructs a Heap backed by the platform's default Grower (mmap +
// mprotect on unix, a plain slice elsewhere).
func New(opts ...Option) *Heap {
	return NewWithGrower(defaultGrower(), opts...)
}

// NewWithGrower constructs a Heap backed by an arbitrary Grower, letting
// tests substitute a fake OS-extension collaborator (see heapmock).
func NewWithGrower(g Grower, opts ...Option) *Heap {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Heap{region: newRegion(g, cfg.Reservation, cfg.ChunkSize)}
}

// Alloc returns a pointer to an n-byte region, or nil on failure. Content
// is indeterminate. The returned block is never split on allocate (spec.md
// §4.F): any surplus inside a reused block stays until a future Realloc or
// Free discovers it.
func (h *Heap) Alloc(n uintptr) unsafe.Pointer {
	bs, ok := roundUp(n)
	if !ok {
		return nil
	}

	block, pred := h.free.findBySize(bs)
	if block != nil {
		h.free.eraseAfter(pred)
	} else {
		ptr, err := h.region.grow(uintptr(headerSize) + uintptr(bs))
		if err != nil {
			return nil
		}

		block = (*header)(ptr)
		block.size = bs
	}

	block.setNext(nil)
	h.allocCount++
	h.live += uintptr(block.size)

	return payloadOf(block)
}

// Calloc allocates num*size bytes and zeroes the full rounded block
// (including internal fragmentation), matching the C calloc contract. An
// overflowing num*size is treated as out-of-memory rather than wrapping.
func (h *Heap) Calloc(num, size uintptr) unsafe.Pointer {
	if num != 0 && size > (^uintptr(0))/num {
		return nil
	}

	ptr := h.Alloc(num * size)
	if ptr == nil {
		return nil
	}

	block := headerOf(ptr)
	clear(unsafe.Slice((*byte)(ptr), block.size))

	return ptr
}

// Free returns ptr's block to the free list, coalescing with any adjacent
// free neighbors. A no-op on nil.
func (h *Heap) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	block := headerOf(ptr)
	h.freeCount++
	h.live -= uintptr(block.size)
	h.free.insert(block, nil, h.region)
}

// Realloc resizes ptr's block to n bytes, preserving min(n, old size)
// bytes of content, and returns the (possibly new) pointer.
//
// n == 0 frees ptr and returns nil — the documented realloc contract
// ("deallocated as if a call to free"), resolving the contradiction the
// original C source left open (see DESIGN.md).
func (h *Heap) Realloc(ptr unsafe.Pointer, n uintptr) unsafe.Pointer {
	if n == 0 {
		h.Free(ptr)
		return nil
	}

	if ptr == nil {
		return h.Alloc(n)
	}

	block := headerOf(ptr)

	bs, ok := roundUp(n)
	if !ok {
		return nil
	}

	oldSize := block.size

	if bs <= oldSize {
		split(&h.free, h.region, block, bs)
		h.live -= uintptr(oldSize - block.size)

		return ptr
	}

	if expand(&h.free, h.region, block, bs) {
		h.live += uintptr(block.size - oldSize)

		return ptr
	}

	newPtr := h.Alloc(n)
	if newPtr == nil {
		return nil
	}

	copySize := n
	if uintptr(oldSize) < copySize {
		copySize = uintptr(oldSize)
	}

	copy(unsafe.Slice((*byte)(newPtr), copySize), unsafe.Slice((*byte)(ptr), copySize))
	h.Free(ptr)

	return newPtr
}

// Stats is the read-only observability surface every allocator variant in
// the teacher package exposes (AllocatorStats/PoolStats), adapted to what
// a coalescing heap can report without per-allocation tracking overhead.
type Stats struct {
	LiveBytes      uintptr
	AllocCount     uint64
	FreeCount      uint64
	FreeListLength int
}

// Stats reports current heap usage.
func (h *Heap) Stats() Stats {
	length := 0
	for iter := h.free.head; iter != nil; iter = iter.nextBlock() {
		length++
	}

	return Stats{
		LiveBytes:      h.live,
		AllocCount:     h.allocCount,
		FreeCount:      h.freeCount,
		FreeListLength: length,
	}
}

// DebugDump walks the free list from head to tail, printing each block's
// address, size and successor, mirroring the original C source's
// printFree/printBlock debug helpers.
func (h *Heap) DebugDump(w io.Writer) {
	for iter := h.free.head; iter != nil; iter = iter.nextBlock() {
		fmt.Fprintf(w, "%p 0x%x %p\n", iter, iter.size, iter.nextBlock())
	}

	fmt.Fprintf(w, "%p end\n\n", h.free.tail)
}

// defaultHeap is the package-level convenience heap, in the spirit of the
// teacher's GlobalAllocator singleton (internal/allocator.GlobalAllocator).
// Construction is cheap: the backing region is only reserved lazily on the
// first Grow, so there is no eager OS allocation at package init time.
var defaultHeap = New()

// Alloc allocates from the package-level default heap.
func Alloc(n uintptr) unsafe.Pointer { return defaultHeap.Alloc(n) }

// Calloc allocates zeroed memory from the package-level default heap.
func Calloc(num, size uintptr) unsafe.Pointer { return defaultHeap.Calloc(num, size) }

// Free returns ptr to the package-level default heap.
func Free(ptr unsafe.Pointer) { defaultHeap.Free(ptr) }

// Realloc resizes ptr on the package-level default heap.
func Realloc(ptr unsafe.Pointer, n uintptr) unsafe.Pointer { return defaultHeap.Realloc(ptr, n) }
