package heap

import "unsafe"

// insert is the central routine of the heap manager (spec.md §4.D): given a
// freed block and an optional predecessor hint, it links the block into
// the free list, merging with any physically adjacent neighbor so that the
// "no two free blocks are adjacent" invariant (I1) is preserved by every
// branch.
func (l *list) insert(block, predHint *header, r *region) {
	// 1. Last-block case: return the block straight to the unclaimed
	// suffix instead of the free list.
	if adjacent(block, r.extraStartPtr()) {
		r.shrink(unsafe.Pointer(block))

		if l.tail != nil && adjacent(l.tail, r.extraStartPtr()) {
			tail := l.tail
			pred, _ := l.locateByAddress(tail)
			l.eraseAfter(pred)
			r.shrink(unsafe.Pointer(tail))
		}

		// No two free blocks are adjacent, so one cascade step is enough.
		if l.tail != nil && adjacent(l.tail, r.extraStartPtr()) {
			panic("heap: free-list tail still adjacent to the region cursor after the last-block cascade")
		}

		return
	}

	switch {
	// 2. Empty list.
	case l.head == nil:
		l.head = block
		l.tail = block
		block.setNext(nil)

	// 3. New head.
	case addr(block) < addr(l.head):
		if adjacent(block, unsafe.Pointer(l.head)) {
			block.size += uint32(headerSize) + l.head.size
			block.setNext(l.head.nextBlock())

			if l.head == l.tail {
				block.setNext(nil)
				l.tail = block
			}
		} else {
			block.setNext(l.head)
		}

		l.head = block

	// 4. New tail.
	case addr(block) > addr(l.tail):
		if adjacent(l.tail, unsafe.Pointer(block)) {
			l.tail.size += uint32(headerSize) + block.size
			l.tail.setNext(block.nextBlock())
		} else {
			l.tail.setNext(block)
			block.setNext(nil)
			l.tail = block
		}

	// 5. Interior.
	default:
		pred := predHint

		var after *header

		if pred != nil {
			after = pred.nextBlock()
		} else {
			pred, after = l.locateByAddress(block)
		}

		if adjacent(block, unsafe.Pointer(after)) {
			block.size += uint32(headerSize) + after.size
			block.setNext(after.nextBlock())

			if after == l.tail {
				block.setNext(nil)
				l.tail = block
			}
		} else {
			block.setNext(after)
		}

		if adjacent(pred, unsafe.Pointer(block)) {
			pred.size += uint32(headerSize) + block.size
			pred.setNext(block.nextBlock())

			if block == l.tail {
				pred.setNext(nil)
				l.tail = pred
			}
		} else {
			pred.setNext(block)
		}
	}
}
