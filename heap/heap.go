package heap

import (
	"fmt"
	"io"

	"github.com/mkendrick/segalloc/internal/arena"
	"github.com/mkendrick/segalloc/internal/word"
)

const (
	defaultChunkSize  = 4096
	defaultBestFitCap = 10
)

// Stats tracks cumulative allocator activity: calls, bytes moved, and how
// often the splitter and coalescer fired.
type Stats struct {
	AllocCalls       int
	FreeCalls        int
	GrowCalls        int
	GrowBytes        int64
	BytesAllocated   int64
	BytesFreed       int64
	SplitCount       int
	CoalesceForward  int
	CoalesceBackward int
}

// Utilization reports how much of the current heap is live versus free.
type Utilization struct {
	HeapBytes uint64
	LiveBytes uint64
	FreeBytes uint64
}

// Heap is a single-threaded, general-purpose dynamic memory allocator. The
// zero value is not usable; construct one with New. A Heap owns all of its
// process-wide allocator state (size-class heads, the mini list head, and
// the current heap bounds), so multiple independent heaps can coexist.
type Heap struct {
	arena *arena.Arena

	initialized bool
	epilogueOff uint64

	classUpper []uint64
	classHeads []uint64
	miniHead   uint64

	chunkSize  uint64
	bestFitCap int

	debugChecks bool
	debugOut    io.Writer

	stats Stats
}

// Option configures a Heap at construction time.
type Option func(*Heap)

// WithChunkSize overrides the minimum number of bytes requested from the
// arena on each heap-growth call (default 4096, matching §4.6).
func WithChunkSize(n uint64) Option {
	return func(h *Heap) { h.chunkSize = word.Align16(n) }
}

// WithBestFitCap overrides how many blocks the bounded best-fit search
// examines per size class above the exact match (default 10, per §4.3).
func WithBestFitCap(n int) Option {
	return func(h *Heap) { h.bestFitCap = n }
}

// WithClassRanges overrides the size-class bracket table. upper[i] is the
// inclusive upper bound of class i; anything larger than upper[len(upper)-1]
// falls into one final catch-all class. Defaults to the doubling table from
// §3.
func WithClassRanges(upper []uint64) Option {
	return func(h *Heap) { h.classUpper = append([]uint64(nil), upper...) }
}

// WithDebugChecks runs the heap checker before and after every public call
// when enabled, writing a diagnostic to the configured debug writer (or
// discarding it if none is set) instead of aborting the process.
func WithDebugChecks(enabled bool) Option {
	return func(h *Heap) { h.debugChecks = enabled }
}

// WithDebugOutput sets where diagnostics from WithDebugChecks are written.
func WithDebugOutput(w io.Writer) Option {
	return func(h *Heap) { h.debugOut = w }
}

// New constructs a Heap. The underlying arena is not grown until the first
// Alloc call (lazy initialization, per §5).
func New(opts ...Option) *Heap {
	h := &Heap{
		arena:      arena.New(),
		chunkSize:  defaultChunkSize,
		bestFitCap: defaultBestFitCap,
		classUpper: defaultClassUpper(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.classHeads = make([]uint64, h.numClasses())
	return h
}

// Close releases the heap's underlying arena. The Heap must not be used
// afterward.
func (h *Heap) Close() error {
	return h.arena.Close()
}

// init performs the one-time heap construction: grab chunkSize bytes from
// the arena, lay down the prologue, a single free block spanning the rest
// of the chunk, and the epilogue.
func (h *Heap) init() error {
	if _, err := h.arena.Grow(h.chunkSize); err != nil {
		return err
	}

	word.WriteWord(h.bytes(), 0, word.Prologue())

	firstBlock := block(8)
	firstSize := h.chunkSize - 16
	h.writeBlock(firstBlock, firstSize, false, true, false)

	h.epilogueOff = uint64(firstBlock) + firstSize
	word.WriteWord(h.bytes(), h.epilogueOff, word.Epilogue(false, false))

	h.writeNextFlags(firstBlock)
	h.insertIntoList(firstBlock)
	h.initialized = true
	return nil
}

// allocSize normalizes a requested payload size to the block size that
// must be carved out of the heap, per §4.7. It returns 0 if n is so large
// that adding the header and rounding up to 16 would overflow.
func allocSize(n uint64) uint64 {
	if n <= 8 {
		return word.AlignQuantum
	}
	if n > ^uint64(0)-8-word.AlignQuantum+1 {
		return 0
	}
	asize := word.Align16(n + 8)
	if asize < 32 {
		asize = 32
	}
	return asize
}

// Alloc returns a pointer to a writable region of at least n bytes, aligned
// to 16 bytes, or 0 if n is 0 or the request cannot be satisfied even after
// growing the heap.
func (h *Heap) Alloc(n uint64) Ptr {
	h.debugCheck("before Alloc")
	defer h.debugCheck("after Alloc")

	if n == 0 {
		return 0
	}
	asize := allocSize(n)
	if asize == 0 {
		return 0
	}
	if !h.initialized {
		if err := h.init(); err != nil {
			return 0
		}
	}

	b := h.findFit(asize)
	if b == 0 {
		if _, err := h.extend(asize); err != nil {
			return 0
		}
		b = h.findFit(asize)
		if b == 0 {
			return 0
		}
	}

	var result block
	if h.isMini(b) {
		h.removeMini(b)
		h.writeBlock(b, word.AlignQuantum, true, h.prevAlloc(b), h.prevMini(b))
		h.writeNextFlags(b)
		result = b
	} else {
		h.removeRegular(b)
		result = h.split(b, asize)
	}

	h.stats.AllocCalls++
	h.stats.BytesAllocated += int64(asize)
	return payloadOf(result)
}

// Free returns the block backing p to the heap. Freeing a null pointer is a
// well-defined no-op; freeing an already-free or interior pointer is
// undefined, matching §7.
func (h *Heap) Free(p Ptr) {
	h.debugCheck("before Free")
	defer h.debugCheck("after Free")

	if p == 0 {
		return
	}

	b := headerOf(p)
	sz := h.size(b)
	h.writeBlock(b, sz, false, h.prevAlloc(b), h.prevMini(b))

	merged := h.coalesce(b)
	h.insertIntoList(merged)

	h.stats.FreeCalls++
	h.stats.BytesFreed += int64(sz)
}

// Realloc resizes the allocation at p to n bytes, preserving the leading
// min(n, old payload size) bytes. A null p behaves like Alloc(n); n == 0
// behaves like Free(p).
func (h *Heap) Realloc(p Ptr, n uint64) Ptr {
	if p == 0 {
		return h.Alloc(n)
	}
	if n == 0 {
		h.Free(p)
		return 0
	}

	b := headerOf(p)
	oldPayloadSize := h.size(b) - 8

	newP := h.Alloc(n)
	if newP == 0 {
		return 0
	}

	copyLen := n
	if oldPayloadSize < copyLen {
		copyLen = oldPayloadSize
	}
	arena.BytewiseCopy(h.spanAt(newP, copyLen), h.spanAt(p, copyLen))

	h.Free(p)
	return newP
}

// Calloc allocates space for count objects of size bytes each and zeroes
// the result. Returns 0 if either argument is 0, if count*size overflows,
// or if the underlying allocation fails.
func (h *Heap) Calloc(count, size uint64) Ptr {
	if count == 0 || size == 0 {
		return 0
	}
	total := count * size
	if total/count != size {
		return 0
	}

	p := h.Alloc(total)
	if p == 0 {
		return 0
	}
	arena.BytewiseFill(h.spanAt(p, total), 0)
	return p
}

// spanAt returns the n-byte slice of arena bytes starting at payload
// pointer p.
func (h *Heap) spanAt(p Ptr, n uint64) []byte {
	return h.bytes()[uint64(p) : uint64(p)+n]
}

// Stats returns a snapshot of cumulative allocator activity.
func (h *Heap) Stats() Stats { return h.stats }

// Utilization reports the current split between live and free bytes across
// the whole heap.
func (h *Heap) Utilization() Utilization {
	u := Utilization{HeapBytes: h.arena.Len()}
	if !h.initialized {
		return u
	}
	for cur := block(8); h.size(cur) != 0; cur = h.findNext(cur) {
		if h.alloc(cur) {
			u.LiveBytes += h.size(cur)
		} else {
			u.FreeBytes += h.size(cur)
		}
	}
	return u
}

// DumpBlocks writes one line per block to w, in address order: offset,
// size, and allocation state. Intended for interactive diagnosis.
func (h *Heap) DumpBlocks(w io.Writer) {
	if !h.initialized {
		return
	}
	for cur := block(8); h.size(cur) != 0; cur = h.findNext(cur) {
		state := "free"
		if h.alloc(cur) {
			state = "alloc"
		}
		fmt.Fprintf(w, "0x%08x size=%-6d %s\n", uint64(cur), h.size(cur), state)
	}
}

// debugCheck runs the heap checker and writes a diagnostic if it fails,
// when WithDebugChecks is enabled. It never aborts the process.
func (h *Heap) debugCheck(when string) {
	if !h.debugChecks {
		return
	}
	if ok, msg := h.CheckHeap(); !ok && h.debugOut != nil {
		fmt.Fprintf(h.debugOut, "heap: invariant violated %s: %s\n", when, msg)
	}
}
