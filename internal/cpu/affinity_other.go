//go:build !linux

package cpu

// Mask is the thread affinity state captured by Pin, restored by Unpin.
type Mask struct{}

// Pin is a no-op on platforms without thread affinity support.
func Pin(id int) Mask { return Mask{} }

// Unpin is a no-op on platforms without thread affinity support.
func Unpin(prev Mask) {}
