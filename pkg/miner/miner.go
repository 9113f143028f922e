package miner

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr-tron/base58"

	"github.com/drillforge/ore-cpu-miner/internal/config"
	"github.com/drillforge/ore-cpu-miner/internal/cpu"
	"github.com/drillforge/ore-cpu-miner/internal/drill"
	"github.com/drillforge/ore-cpu-miner/internal/ledger"
	"github.com/drillforge/ore-cpu-miner/internal/logger"
	"github.com/drillforge/ore-cpu-miner/pkg/progress"
	"github.com/drillforge/ore-cpu-miner/pkg/types"
	"github.com/drillforge/ore-cpu-miner/pkg/worker"
)

// Miner coordinates the per-core search workers and drives the round loop
// against the ledger.
type Miner struct {
	config *config.Config
	logger *logger.Logger
	client *ledger.Client
	signer *ledger.Keypair

	// hashFn overrides the hash primitive when set. Tests only.
	hashFn worker.HashFn
}

// NewMiner creates a new miner instance
func NewMiner(cfg *config.Config, log *logger.Logger, client *ledger.Client, signer *ledger.Keypair) *Miner {
	if cfg.Cores <= 0 {
		cfg.Cores = cpu.Count()
	}
	return &Miner{
		config: cfg,
		logger: log,
		client: client,
		signer: signer,
	}
}

// FindHash runs one parallel search over the nonce space and returns the
// best result across all workers. One worker goroutine is spawned per
// enumerated core and pinned to it; cores whose index is at or beyond the
// requested worker count contribute the null result without scanning.
//
// FindHash never fails: a worker that panics counts as difficulty 0, and
// the call returns once every worker has terminated.
func (m *Miner) FindHash(challenge [drill.ChallengeLen]byte, workers uint64, minDifficulty uint32, sink progress.Sink) *types.Result {
	start := time.Now()
	stop := new(atomic.Bool)
	coreIDs := cpu.Cores()

	workerConfig := &types.WorkerConfig{
		Challenge:     challenge,
		MinDifficulty: minDifficulty,
	}

	if workers == 0 {
		workers = 1
	}
	var attempts int64
	results := make([]types.WorkerResult, len(coreIDs))

	var wg sync.WaitGroup
	for slot, id := range coreIDs {
		wg.Add(1)
		go func(slot, coreID int) {
			defer wg.Done()
			// A crashed worker leaves the null contribution in its slot.
			defer func() { _ = recover() }()

			if uint64(coreID) >= workers {
				return
			}

			prev := cpu.Pin(coreID)
			defer cpu.Unpin(prev)

			w := worker.NewWorker(workerConfig, &attempts)
			if m.hashFn != nil {
				w.SetHashFn(m.hashFn)
			}

			startNonce, endNonce := workerRange(uint64(coreID), workers)
			results[slot] = w.Search(startNonce, endNonce, stop, sink)
		}(slot, id)
	}
	wg.Wait()

	best := reduce(results)

	sink.Finish(fmt.Sprintf("Best hash: %s (difficulty: %d)",
		base58.Encode(best.Hash.D[:]), best.Difficulty))

	var sol types.Solution
	sol.Digest = best.Hash.D
	binary.LittleEndian.PutUint64(sol.Nonce[:], best.Nonce)
	return &types.Result{
		Solution:   sol,
		Difficulty: best.Difficulty,
		Attempts:   atomic.LoadInt64(&attempts),
		Duration:   time.Since(start),
	}
}

// workerRange returns the contiguous nonce sub-range assigned to worker id,
// both bounds inclusive. The ranges of workers 0..workers-1 partition the
// full 64-bit nonce space, with the last range absorbing the division
// remainder.
func workerRange(id, workers uint64) (start, end uint64) {
	rangeSize := math.MaxUint64 / workers
	start = rangeSize * id
	if id == workers-1 {
		return start, math.MaxUint64
	}
	return start, start + rangeSize - 1
}

// reduce picks the strictly best contribution; ties keep the earliest
// worker in enumeration order.
func reduce(results []types.WorkerResult) types.WorkerResult {
	var best types.WorkerResult
	for _, r := range results {
		if r.Difficulty > best.Difficulty {
			best = r
		}
	}
	return best
}

// Run drives the mining rounds until the context is cancelled.
func (m *Miner) Run(ctx context.Context) error {
	if err := m.Open(ctx); err != nil {
		return fmt.Errorf("open proof account: %w", err)
	}
	m.checkCores()

	var lastHashAt int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		boardConfig, err := m.client.GetBoardConfig(ctx)
		if err != nil {
			return fmt.Errorf("fetch config: %w", err)
		}
		proof, err := m.client.GetUpdatedProof(ctx, m.signer.Pubkey(), lastHashAt)
		if err != nil {
			return fmt.Errorf("fetch proof: %w", err)
		}
		lastHashAt = proof.LastHashAt

		m.logger.Printf("Stake: %s ORE", ledger.FormatAmount(proof.Balance))
		m.logger.Printf("  Multiplier: %.12gx", multiplier(proof.Balance, boardConfig.TopBalance))

		if cutoff, err := m.cutoff(ctx, proof); err == nil {
			m.logger.Verbosef("Round deadline in %ds", cutoff)
		}

		sink := progress.NewLogSink(m.logger, time.Duration(m.config.LogInterval)*time.Second)
		sink.SetMessage(fmt.Sprintf("Mining for difficulty >= %d...", m.config.MinDifficulty))
		result := m.FindHash(proof.Challenge, uint64(m.config.Cores), m.config.MinDifficulty, sink)
		m.logger.Verbosef("Search finished: %d hashes in %s", result.Attempts, result.Duration.Round(time.Millisecond))

		ixs := []ledger.Instruction{
			ledger.Auth(ledger.ProofAddress(m.signer.Pubkey())),
		}
		if reset, err := m.shouldReset(ctx, boardConfig); err == nil && reset && rand.Intn(100) == 0 {
			ixs = append(ixs, ledger.Reset(m.signer.Pubkey()))
		}
		bus, err := m.client.FindBus(ctx)
		if err != nil {
			bus = ledger.BusAddress(uint8(rand.Intn(ledger.BusCount)))
		}
		ixs = append(ixs, ledger.Mine(m.signer.Pubkey(), bus, result.Solution.Digest, result.Solution.Nonce))

		sig, err := m.client.SendTransaction(ctx, m.signer, ixs...)
		if err != nil {
			m.logger.Warnf("submit failed: %v", err)
			continue
		}
		m.logger.Printf("Submitted: %s", sig)
	}
}

// Open creates the proof account if it does not exist yet.
func (m *Miner) Open(ctx context.Context) error {
	_, err := m.client.GetProof(ctx, m.signer.Pubkey())
	if err == nil {
		return nil
	}
	if !errors.Is(err, ledger.ErrAccountNotFound) {
		return err
	}

	m.logger.Printf("Creating proof account...")
	sig, err := m.client.SendTransaction(ctx, m.signer, ledger.Open(m.signer.Pubkey()))
	if err != nil {
		return err
	}
	m.logger.Printf("Proof account created: %s", sig)
	return nil
}

// checkCores warns when more workers are requested than the machine has.
// Non-fatal: excess workers simply never scan.
func (m *Miner) checkCores() {
	if available := cpu.Count(); m.config.Cores > available {
		m.logger.Warnf("Cannot exceed available cores (%d)", available)
	}
}

// shouldReset reports whether the reward epoch is due for a reset.
func (m *Miner) shouldReset(ctx context.Context, boardConfig *ledger.BoardConfig) (bool, error) {
	clock, err := m.client.GetClock(ctx)
	if err != nil {
		return false, err
	}
	return boardConfig.LastResetAt+ledger.EpochDuration-5 <= clock.UnixTimestamp, nil
}

// cutoff returns the seconds left before the current round's submission
// deadline, floored at zero. The value is informational: the search itself
// terminates on difficulty, never on the clock.
func (m *Miner) cutoff(ctx context.Context, proof *ledger.Proof) (int64, error) {
	clock, err := m.client.GetClock(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := proof.LastHashAt + ledger.RoundDuration - m.config.BufferTime - clock.UnixTimestamp
	if cutoff < 0 {
		cutoff = 0
	}
	return cutoff, nil
}

func multiplier(balance, topBalance uint64) float64 {
	if topBalance == 0 {
		return 1.0
	}
	m := float64(balance) / float64(topBalance)
	if m > 1.0 {
		m = 1.0
	}
	return 1.0 + m
}
