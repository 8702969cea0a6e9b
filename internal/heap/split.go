package heap

import "unsafe"

// minBlockSize is the minimum payload a block may carry: one granule,
// equal to headerSize.
const minBlockSize = uint32(headerSize)

// split trims block so its payload is exactly newSize bytes, inserting the
// freed tail (if any) back into the free list. A no-op if the remainder
// would be smaller than a valid block (spec.md §4.E).
func split(l *list, r *region, block *header, newSize uint32) {
	oldSize := block.size
	if uint64(newSize)+uint64(headerSize)+uint64(minBlockSize) > uint64(oldSize) {
		return
	}

	block.size = newSize

	tail := (*header)(unsafe.Pointer(uintptr(unsafe.Pointer(block)) + uintptr(headerSize) + uintptr(newSize)))
	tail.size = oldSize - newSize - uint32(headerSize)
	tail.next = 0

	l.insert(tail, nil, r)
}

// expand grows block in place to newSize bytes. If block is the last
// block it absorbs fresh space from the region cursor (always succeeds,
// subject to the OS grow primitive). Otherwise it tries to absorb the
// physical successor, but only if that successor is free and large enough;
// any surplus beyond newSize is released back via split. Returns false
// (leaving the heap unchanged) if neither applies.
func expand(l *list, r *region, block *header, newSize uint32) bool {
	if adjacent(block, r.extraStartPtr()) {
		if _, err := r.grow(uintptr(newSize - block.size)); err != nil {
			return false
		}

		block.size = newSize

		return true
	}

	next := (*header)(physicalNext(block))

	if uint64(block.size)+uint64(headerSize)+uint64(next.size) < uint64(newSize) {
		return false
	}

	pred, at := l.locateByAddress(next)
	if at != next {
		return false
	}

	l.eraseAfter(pred)

	block.size += uint32(headerSize) + next.size
	block.setNext(next.nextBlock())

	split(l, r, block, newSize)

	return true
}
