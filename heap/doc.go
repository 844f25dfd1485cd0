// Package heap implements a 64-bit general-purpose dynamic memory allocator
// over a single contiguous arena obtained from a monotonic, grow-only
// primitive (package arena). It manages allocated and free blocks with
// boundary-tag headers, a segregated free-list index with a dedicated
// singly-linked list for 16-byte mini blocks, constant-time coalescing, and
// a bounded best-fit search across size classes.
//
// A Heap is not safe for concurrent use; callers that share one across
// goroutines must serialize access with their own lock.
package heap
