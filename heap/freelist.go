package heap

import "github.com/mkendrick/segalloc/internal/word"

// defaultClassUpper is the doubling bracket table from the data model: class
// i holds free regular blocks with size <= defaultClassUpper[i], and the
// last class (index len(defaultClassUpper)) holds everything larger.
func defaultClassUpper() []uint64 {
	return []uint64{32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768, 65536, 131072, 262144}
}

// numClasses returns the number of size-class buckets, one more than the
// number of upper bounds (the last class is the open-ended catch-all).
func (h *Heap) numClasses() int { return len(h.classUpper) + 1 }

// classOf maps size to its bucket index. It is pure and monotone
// non-decreasing in size, as required by §4.3.
func (h *Heap) classOf(size uint64) int {
	for i, upper := range h.classUpper {
		if size <= upper {
			return i
		}
	}
	return len(h.classUpper)
}

// Regular (doubly-linked) free list. The next pointer lives at payload+0,
// the prev pointer at payload+8, the first 16 bytes of a free regular
// block's payload, exactly as the data model describes.

func (h *Heap) nextOf(b block) block    { return block(word.ReadPtr(h.bytes(), uint64(b)+8)) }
func (h *Heap) setNextOf(b, n block)    { word.WritePtr(h.bytes(), uint64(b)+8, uint64(n)) }
func (h *Heap) prevOf(b block) block    { return block(word.ReadPtr(h.bytes(), uint64(b)+16)) }
func (h *Heap) setPrevOf(b, p block)    { word.WritePtr(h.bytes(), uint64(b)+16, uint64(p)) }

// insertRegular pushes b onto the head of its size class's list (LIFO).
func (h *Heap) insertRegular(b block) {
	c := h.classOf(h.size(b))
	head := block(h.classHeads[c])
	h.setPrevOf(b, 0)
	h.setNextOf(b, head)
	if head != 0 {
		h.setPrevOf(head, b)
	}
	h.classHeads[c] = uint64(b)
}

// removeRegular unlinks b from its size class's list. b must currently be a
// member of that list.
func (h *Heap) removeRegular(b block) {
	c := h.classOf(h.size(b))
	p := h.prevOf(b)
	n := h.nextOf(b)
	if p != 0 {
		h.setNextOf(p, n)
	} else {
		h.classHeads[c] = uint64(n)
	}
	if n != 0 {
		h.setPrevOf(n, p)
	}
}

// Mini (singly-linked) free list. Mini blocks have only 8 payload bytes, not
// enough room for a prev pointer, so they never touch the regular lists.

func (h *Heap) miniNextOf(b block) block { return block(word.ReadPtr(h.bytes(), uint64(b)+8)) }
func (h *Heap) setMiniNextOf(b, n block) { word.WritePtr(h.bytes(), uint64(b)+8, uint64(n)) }

// insertMini pushes b onto the head of the mini free list (LIFO).
func (h *Heap) insertMini(b block) {
	h.setMiniNextOf(b, block(h.miniHead))
	h.miniHead = uint64(b)
}

// removeMini walks the mini free list to find b's predecessor and unlinks
// it. O(n) in the mini list's length, which is acceptable because mini
// blocks churn in and out of the list frequently but the list itself stays
// short in practice.
func (h *Heap) removeMini(b block) {
	if block(h.miniHead) == b {
		h.miniHead = uint64(h.miniNextOf(b))
		return
	}
	for cur := block(h.miniHead); cur != 0; cur = h.miniNextOf(cur) {
		if next := h.miniNextOf(cur); next == b {
			h.setMiniNextOf(cur, h.miniNextOf(b))
			return
		}
	}
}

// findFit locates a free block of at least asize bytes, or returns 0 if
// none exists in any list. Mini requests prefer the mini list outright;
// regular requests first-fit their exact class, then fall back to a
// best-fit search over larger classes bounded by bestFitCap examinations
// per class — the throughput/utilization compromise described in §4.3.
func (h *Heap) findFit(asize uint64) block {
	if asize <= word.AlignQuantum && h.miniHead != 0 {
		return block(h.miniHead)
	}

	c := h.classOf(asize)
	for b := block(h.classHeads[c]); b != 0; b = h.nextOf(b) {
		if h.size(b) >= asize {
			return b
		}
	}

	for cc := c + 1; cc < h.numClasses(); cc++ {
		var best block
		var bestSize uint64
		examined := 0
		for b := block(h.classHeads[cc]); b != 0 && examined < h.bestFitCap; b, examined = h.nextOf(b), examined+1 {
			sz := h.size(b)
			if sz >= asize && (best == 0 || sz < bestSize) {
				best, bestSize = b, sz
			}
		}
		if best != 0 {
			return best
		}
	}

	return 0
}
