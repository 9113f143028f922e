package worker

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/drillforge/ore-cpu-miner/internal/drill"
	"github.com/drillforge/ore-cpu-miner/pkg/progress"
	"github.com/drillforge/ore-cpu-miner/pkg/types"
)

// HashFn evaluates the hash primitive for one nonce. Production code uses
// drill.HashWithMemory; tests inject synthetic schedules and failures.
type HashFn func(mem *drill.Memory, challenge [drill.ChallengeLen]byte, nonce []byte) (drill.Hash, error)

// Worker scans one contiguous nonce sub-range for a single search call
type Worker struct {
	config   *types.WorkerConfig
	attempts *int64
	hashFn   HashFn

	// Pre-allocated scratch, owned exclusively by this worker
	memory   *drill.Memory
	nonceBuf [drill.NonceLen]byte
}

// NewWorker creates a new worker bound to the shared search inputs
func NewWorker(config *types.WorkerConfig, attempts *int64) *Worker {
	return &Worker{
		config:   config,
		attempts: attempts,
		hashFn:   drill.HashWithMemory,
		memory:   drill.NewMemory(),
	}
}

// SetHashFn replaces the hash primitive. Must be called before Search.
func (w *Worker) SetHashFn(fn HashFn) {
	w.hashFn = fn
}

// Search scans nonces from start through end (inclusive) until the shared
// stop flag is set, the target difficulty is reached, or the range is
// exhausted. Cancellation is cooperative: the flag is checked once per
// iteration, so a sibling's stop signal takes effect after at most one more
// hash evaluation.
//
// A hash error for a given nonce skips that nonce and continues; it never
// terminates the scan.
func (w *Worker) Search(start, end uint64, stop *atomic.Bool, sink progress.Sink) types.WorkerResult {
	best := types.WorkerResult{Nonce: start}
	for nonce := start; ; nonce++ {
		if stop.Load() {
			break
		}
		binary.LittleEndian.PutUint64(w.nonceBuf[:], nonce)
		hx, err := w.hashFn(w.memory, w.config.Challenge, w.nonceBuf[:])
		atomic.AddInt64(w.attempts, 1)
		if err == nil {
			if difficulty := hx.Difficulty(); difficulty > best.Difficulty {
				best.Nonce = nonce
				best.Difficulty = difficulty
				best.Hash = hx
			}
			sink.Observe(best.Difficulty)
			if best.Difficulty >= w.config.MinDifficulty {
				stop.Store(true)
				break
			}
		}
		if nonce == end {
			break
		}
	}
	return best
}
