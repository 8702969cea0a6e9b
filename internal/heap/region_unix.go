//go:build unix

package heap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// osGrower is the default Grower on unix targets. It mirrors the pattern
// the teacher's internal/runtime/asyncio unix files use for direct
// golang.org/x/sys/unix syscalls: reserve the full address range once with
// PROT_NONE so no other mapping can land inside it, then commit growing
// prefixes with mprotect as the heap asks for more space. This is the
// closest honest Go analog of sbrk extending the data segment: reservation
// is virtual-memory bookkeeping, not physical pages, and only the
// mprotect'd prefix actually costs memory.
type osGrower struct {
	mapping []byte
}

func newOSGrower() *osGrower {
	return &osGrower{}
}

func (g *osGrower) Reserve(size uintptr) (uintptr, error) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, fmt.Errorf("mmap reservation: %w", err)
	}

	g.mapping = b

	return uintptr(unsafe.Pointer(&b[0])), nil
}

func (g *osGrower) Extend(base, upto uintptr) error {
	page := uintptr(unix.Getpagesize())
	length := (upto - base + page - 1) &^ (page - 1)

	if int(length) > len(g.mapping) {
		length = uintptr(len(g.mapping))
	}

	if err := unix.Mprotect(g.mapping[:length], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("mprotect commit: %w", err)
	}

	return nil
}

func defaultGrower() Grower {
	return newOSGrower()
}
