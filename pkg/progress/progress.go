package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/drillforge/ore-cpu-miner/internal/logger"
)

// Sink receives observational mining status. Implementations must be safe
// for concurrent use from worker goroutines; Observe sits on the hot path
// and must not block.
type Sink interface {
	// Observe reports a worker's best difficulty so far.
	Observe(difficulty uint32)
	// SetMessage replaces the status line prefix.
	SetMessage(msg string)
	// Finish emits the final completion message and stops the sink.
	Finish(msg string)
}

// Nop discards all updates.
type Nop struct{}

func (Nop) Observe(uint32)    {}
func (Nop) SetMessage(string) {}
func (Nop) Finish(string)     {}

// LogSink renders the best observed difficulty through the logger at a
// fixed interval instead of once per hash. Observe is an atomic max, so
// workers can call it every iteration.
type LogSink struct {
	log      *logger.Logger
	interval time.Duration
	best     atomic.Uint32
	message  atomic.Value // string
	done     chan struct{}
	once     sync.Once
}

// NewLogSink creates a sink and starts its render loop.
func NewLogSink(log *logger.Logger, interval time.Duration) *LogSink {
	s := &LogSink{
		log:      log,
		interval: interval,
		done:     make(chan struct{}),
	}
	s.message.Store("")
	go s.loop()
	return s
}

// Observe records difficulty if it beats the best seen so far.
func (s *LogSink) Observe(difficulty uint32) {
	for {
		cur := s.best.Load()
		if difficulty <= cur || s.best.CompareAndSwap(cur, difficulty) {
			return
		}
	}
}

// Best returns the highest difficulty observed so far.
func (s *LogSink) Best() uint32 {
	return s.best.Load()
}

// SetMessage replaces the status line prefix.
func (s *LogSink) SetMessage(msg string) {
	s.message.Store(msg)
}

// Finish stops the render loop and logs the final message.
func (s *LogSink) Finish(msg string) {
	s.once.Do(func() { close(s.done) })
	s.log.Printf("%s", msg)
}

func (s *LogSink) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			msg, _ := s.message.Load().(string)
			if msg == "" {
				msg = "Mining..."
			}
			s.log.Printf("%s best difficulty so far: %d", msg, s.best.Load())
		case <-s.done:
			return
		}
	}
}
