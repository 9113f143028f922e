package cpu

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Count returns the number of usable logical cores on the host.
func Count() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Cores returns the ordered list of core identifiers available for pinning.
func Cores() []int {
	ids := make([]int, Count())
	for i := range ids {
		ids[i] = i
	}
	return ids
}
