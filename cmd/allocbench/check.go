package main

import (
	"fmt"

	"github.com/mkendrick/segalloc/heap"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Allocate and free a fixed pattern, then validate heap invariants",
		Long: `The check command exercises the mini-block and split/coalesce paths
with a small fixed pattern and reports whether every heap invariant holds
afterward. It is meant as a quick smoke test, not a fuzzer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck()
		},
	})
}

func runCheck() error {
	h := heap.New()
	defer h.Close()

	a := h.Alloc(8)
	b := h.Alloc(8)
	c := h.Alloc(8)
	d := h.Alloc(4080)

	h.Free(b)
	h.Free(a)
	h.Free(c)
	h.Free(d)

	ok, issue := h.CheckHeap()
	if !ok {
		printInfo("check FAILED: %s\n", issue)
		return fmt.Errorf("heap invariant violated: %s", issue)
	}
	printInfo("check OK: %d heap bytes, %d free bytes\n", h.Utilization().HeapBytes, h.Utilization().FreeBytes)
	return nil
}
