//go:build linux

package cpu

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestUnpinRestoresAffinity(t *testing.T) {
	// Hold the thread so the before/after reads observe the same one.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var before unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &before))

	Unpin(Pin(0))

	var after unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &after))
	require.Equal(t, before, after, "Unpin must restore the mask Pin narrowed")
}
