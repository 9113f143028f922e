//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Mask is the thread affinity state captured by Pin, restored by Unpin.
type Mask struct {
	set   unix.CPUSet
	valid bool
}

// Pin binds the calling goroutine's OS thread to the given core and returns
// the thread's previous affinity mask. Pinning is a placement hint: errors
// are discarded and the caller stays correct without affinity, only cache
// locality is lost.
func Pin(id int) Mask {
	runtime.LockOSThread()
	var prev Mask
	prev.valid = unix.SchedGetaffinity(0, &prev.set) == nil

	var set unix.CPUSet
	set.Zero()
	set.Set(id)
	_ = unix.SchedSetaffinity(0, &set)
	return prev
}

// Unpin restores the affinity mask captured by Pin and releases the thread
// binding, so the narrowed mask never leaks into the runtime's reused
// thread pool.
func Unpin(prev Mask) {
	if prev.valid {
		_ = unix.SchedSetaffinity(0, &prev.set)
	}
	runtime.UnlockOSThread()
}
