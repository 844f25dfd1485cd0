package main

import (
	"os"

	"github.com/mkendrick/segalloc/heap"
	"github.com/spf13/cobra"
)

var statsAllocs int

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Allocate a fixed number of blocks and dump the resulting heap layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
	cmd.Flags().IntVar(&statsAllocs, "allocs", 20, "Number of sequential allocations to make before dumping")
	rootCmd.AddCommand(cmd)
}

func runStats() error {
	h := heap.New()
	defer h.Close()

	for i := 0; i < statsAllocs; i++ {
		size := uint64(16 * (1 + i%8))
		h.Alloc(size)
	}

	printInfo("Block layout after %d allocations:\n", statsAllocs)
	h.DumpBlocks(os.Stdout)

	u := h.Utilization()
	printInfo("\nHeap bytes: %d  Live: %d  Free: %d\n", u.HeapBytes, u.LiveBytes, u.FreeBytes)
	return nil
}
