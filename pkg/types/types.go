package types

import (
	"time"

	"github.com/drillforge/ore-cpu-miner/internal/drill"
)

// Solution is the winning digest plus the little-endian encoding of the
// nonce that produced it. Exactly one Solution is produced per search call.
type Solution struct {
	Digest [drill.DigestLen]byte
	Nonce  [drill.NonceLen]byte
}

// Result represents the outcome of one full search call
type Result struct {
	Solution   Solution
	Difficulty uint32
	Attempts   int64
	Duration   time.Duration
}

// WorkerConfig contains the shared read-only inputs for one search call.
// The challenge is immutable for the duration of the call and read by every
// worker without synchronization.
type WorkerConfig struct {
	Challenge     [drill.ChallengeLen]byte
	MinDifficulty uint32
}

// WorkerResult represents the best find of a single worker. The zero value
// is the null contribution of a skipped or failed worker.
type WorkerResult struct {
	Nonce      uint64
	Difficulty uint32
	Hash       drill.Hash
}
