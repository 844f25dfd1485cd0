package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/mkendrick/segalloc/heap"
	"github.com/spf13/cobra"
)

var (
	runOps     int
	runMaxSize int
	runSeed    int64
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVar(&runOps, "ops", 10000, "Number of alloc/free operations to perform")
	cmd.Flags().IntVar(&runMaxSize, "max-size", 4096, "Maximum payload size requested per allocation")
	cmd.Flags().Int64Var(&runSeed, "seed", 1, "Random seed for the workload generator")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a randomized alloc/free workload against a fresh heap",
		Long: `The run command drives a segalloc heap through a mix of Alloc
and Free calls with randomized sizes, then reports the resulting
statistics and utilization.

Example:
  allocbench run --ops 50000 --max-size 8192
  allocbench run --seed 42 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkload()
		},
	}
}

type workloadResult struct {
	Ops         int             `json:"ops"`
	Live        int             `json:"live_allocations"`
	Stats       heap.Stats      `json:"stats"`
	Utilization heap.Utilization `json:"utilization"`
	HeapOK      bool            `json:"heap_ok"`
	HeapIssue   string          `json:"heap_issue,omitempty"`
}

func runWorkload() error {
	rng := rand.New(rand.NewSource(runSeed))
	h := heap.New(heap.WithDebugChecks(true), heap.WithDebugOutput(os.Stderr))
	defer h.Close()

	live := make([]heap.Ptr, 0, runOps)

	for i := 0; i < runOps; i++ {
		switch {
		case len(live) == 0 || rng.Intn(3) != 0:
			n := uint64(rng.Intn(runMaxSize) + 1)
			if p := h.Alloc(n); p != 0 {
				live = append(live, p)
			}
		default:
			idx := rng.Intn(len(live))
			h.Free(live[idx])
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		}
		printVerbose("op %d: %d live allocations\n", i, len(live))
	}

	ok, issue := h.CheckHeap()
	result := workloadResult{
		Ops:         runOps,
		Live:        len(live),
		Stats:       h.Stats(),
		Utilization: h.Utilization(),
		HeapOK:      ok,
		HeapIssue:   issue,
	}

	if jsonOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printInfo("Workload complete: %d ops, %d live allocations\n", result.Ops, result.Live)
	printInfo("Heap OK: %v\n", result.HeapOK)
	if !result.HeapOK {
		printInfo("  issue: %s\n", result.HeapIssue)
	}
	printInfo("Alloc calls:   %d\n", result.Stats.AllocCalls)
	printInfo("Free calls:    %d\n", result.Stats.FreeCalls)
	printInfo("Grow calls:    %d (%d bytes)\n", result.Stats.GrowCalls, result.Stats.GrowBytes)
	printInfo("Splits:        %d\n", result.Stats.SplitCount)
	printInfo("Coalesce fwd:  %d\n", result.Stats.CoalesceForward)
	printInfo("Coalesce back: %d\n", result.Stats.CoalesceBackward)
	printInfo("Heap bytes:    %d\n", result.Utilization.HeapBytes)
	printInfo("Live bytes:    %d\n", result.Utilization.LiveBytes)
	printInfo("Free bytes:    %d\n", result.Utilization.FreeBytes)
	if result.Utilization.HeapBytes > 0 {
		printInfo("Utilization:   %.1f%%\n", float64(result.Utilization.LiveBytes)*100/float64(result.Utilization.HeapBytes))
	}

	if !result.HeapOK {
		return fmt.Errorf("heap invariant violated: %s", result.HeapIssue)
	}
	return nil
}
