package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"PintellAPI/internal/logger"
	"PintellAPI/internal/metrics"
)

var ErrPollerRunning = errors.New("poller already running")

// CycleRunner performs one poll cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (CycleStats, error)
}

// Poller runs the device monitor on a fixed interval. Only one poll loop may
// run per Poller, so cycles never overlap.
type Poller struct {
	runner   CycleRunner
	interval time.Duration
	log      *logger.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

func NewPoller(runner CycleRunner, interval time.Duration, log *logger.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{runner: runner, interval: interval, log: log}
}

// Start launches the poll loop. The first cycle runs immediately. The loop
// stops when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrPollerRunning
	}

	p.wg.Add(1)
	go p.loop(ctx)

	p.log.Info("Poller started (interval: %v)", p.interval)
	return nil
}

// Wait blocks until the poll loop has exited.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) Running() bool {
	return p.running.Load()
}

func (p *Poller) loop(ctx context.Context) {
	defer func() {
		p.running.Store(false)
		p.wg.Done()
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("Poller stopping")
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	start := time.Now()
	stats, err := p.runner.RunCycle(ctx)
	metrics.PollDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.PollCycles.WithLabelValues("error").Inc()
		p.log.Error("Poll cycle failed: %v", err)
	case stats.Failed > 0:
		metrics.PollCycles.WithLabelValues("partial").Inc()
		p.log.Warn("Poll cycle: %d/%d devices evaluated, %d skipped", stats.Evaluated, stats.Devices, stats.Failed)
	default:
		metrics.PollCycles.WithLabelValues("ok").Inc()
		p.log.Debug("Poll cycle: %d devices evaluated in %v", stats.Evaluated, time.Since(start))
	}
}
