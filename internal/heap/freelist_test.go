package heap

import (
	"testing"
	"unsafe"
)

// makeBlocks carves count blocks of the given size out of backing, spaced
// with a one-granule gap so they are never physically adjacent, and
// returns their headers in address order.
func makeBlocks(backing []byte, size uint32, count int) []*header {
	stride := uint32(headerSize) + size + uint32(headerSize) // one-granule gap
	blocks := make([]*header, count)

	for i := 0; i < count; i++ {
		h := (*header)(unsafe.Pointer(&backing[uint32(i)*stride]))
		h.size = size
		h.next = 0
		blocks[i] = h
	}

	return blocks
}

func chain(l *list, blocks ...*header) {
	l.head = blocks[0]
	l.tail = blocks[len(blocks)-1]

	for i := 0; i < len(blocks)-1; i++ {
		blocks[i].setNext(blocks[i+1])
	}

	blocks[len(blocks)-1].setNext(nil)
}

func TestLocateByAddressEmpty(t *testing.T) {
	var l list

	backing := make([]byte, 64)
	target := (*header)(unsafe.Pointer(&backing[0]))

	pred, at := l.locateByAddress(target)
	if pred != nil || at != nil {
		t.Fatalf("locateByAddress on empty list = (%p, %p), want (nil, nil)", pred, at)
	}
}

func TestLocateByAddressBeyondTail(t *testing.T) {
	backing := make([]byte, 256)
	blocks := makeBlocks(backing, 8, 2)

	var l list

	chain(&l, blocks[0])

	target := blocks[1]

	pred, at := l.locateByAddress(target)
	if pred != blocks[0] || at != nil {
		t.Fatalf("locateByAddress(beyond tail) = (%p, %p), want (%p, nil)", pred, at, blocks[0])
	}
}

func TestLocateByAddressAtTail(t *testing.T) {
	backing := make([]byte, 256)
	blocks := makeBlocks(backing, 8, 3)

	var l list

	chain(&l, blocks[0], blocks[1], blocks[2])

	pred, at := l.locateByAddress(blocks[2])
	if pred != blocks[1] || at != blocks[2] {
		t.Fatalf("locateByAddress(tail) = (%p, %p), want (%p, %p)", pred, at, blocks[1], blocks[2])
	}
}

func TestLocateByAddressInterior(t *testing.T) {
	backing := make([]byte, 256)
	blocks := makeBlocks(backing, 8, 3)

	var l list

	chain(&l, blocks[0], blocks[1], blocks[2])

	probe := (*header)(unsafe.Pointer(uintptr(unsafe.Pointer(blocks[0])) + 1))

	pred, at := l.locateByAddress(probe)
	if pred != blocks[0] || at != blocks[1] {
		t.Fatalf("locateByAddress(interior) = (%p, %p), want (%p, %p)", pred, at, blocks[0], blocks[1])
	}
}

func TestFindBySizeBestFit(t *testing.T) {
	backing := make([]byte, 512)
	blocks := makeBlocks(backing, 8, 3)
	blocks[0].size = 40
	blocks[1].size = 16
	blocks[2].size = 24

	var l list

	chain(&l, blocks[0], blocks[1], blocks[2])

	best, pred := l.findBySize(20)
	if best != blocks[2] || pred != blocks[1] {
		t.Fatalf("findBySize(20) picked %p (pred %p), want %p (pred %p)", best, pred, blocks[2], blocks[1])
	}
}

func TestFindBySizeExactFitShortCircuits(t *testing.T) {
	backing := make([]byte, 512)
	blocks := makeBlocks(backing, 8, 3)
	blocks[0].size = 16
	blocks[1].size = 8
	blocks[2].size = 40

	var l list

	chain(&l, blocks[0], blocks[1], blocks[2])

	best, pred := l.findBySize(8)
	if best != blocks[1] || pred != blocks[0] {
		t.Fatalf("findBySize(8) = %p (pred %p), want exact fit %p (pred %p)", best, pred, blocks[1], blocks[0])
	}
}

func TestFindBySizeNoCandidate(t *testing.T) {
	backing := make([]byte, 256)
	blocks := makeBlocks(backing, 8, 1)

	var l list

	chain(&l, blocks[0])

	best, pred := l.findBySize(1000)
	if best != nil || pred != nil {
		t.Fatalf("findBySize with no candidate = (%p, %p), want (nil, nil)", best, pred)
	}
}

func TestEraseAfterHeadAndTail(t *testing.T) {
	backing := make([]byte, 512)
	blocks := makeBlocks(backing, 8, 3)

	var l list

	chain(&l, blocks[0], blocks[1], blocks[2])

	victim := l.eraseAfter(nil)
	if victim != blocks[0] || l.head != blocks[1] {
		t.Fatalf("eraseAfter(nil) head now %p, want %p", l.head, blocks[1])
	}

	victim = l.eraseAfter(blocks[1])
	if victim != blocks[2] || l.tail != blocks[1] || blocks[1].nextBlock() != nil {
		t.Fatalf("eraseAfter(pred=tail-1) left tail=%p next=%p", l.tail, blocks[1].nextBlock())
	}

	victim = l.eraseAfter(nil)
	if victim != blocks[1] || l.head != nil || l.tail != nil {
		t.Fatal("erasing the last block should empty the list")
	}
}
