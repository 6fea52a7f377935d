// Package autominer seals pending degree transactions on a fixed interval.
package autominer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/degreechain/internal/ledger"
	"github.com/thanhnp/degreechain/internal/models"
)

var log = logrus.WithField("component", "autominer")

// Sealer is the part of the ledger the miner drives
type Sealer interface {
	MinePending(ctx context.Context) (models.MineResult, error)
}

// Miner periodically calls MinePending until stopped
type Miner struct {
	sealer   Sealer
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a Miner. A zero timeout lets each round run until Stop.
func New(sealer Sealer, interval, timeout time.Duration) *Miner {
	return &Miner{
		sealer:   sealer,
		interval: interval,
		timeout:  timeout,
	}
}

// Start launches the mining loop. Calling Start on a running miner is a no-op.
func (m *Miner) Start(ctx context.Context) error {
	if m.interval <= 0 {
		return errors.New("auto-mine interval must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	m.running = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go m.loop(ctx, m.done)
	log.WithField("interval", m.interval).Info("Auto-miner started")
	return nil
}

// Stop cancels any in-flight round and waits for the loop to exit
func (m *Miner) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.cancel()
	done := m.done
	m.mu.Unlock()

	<-done
	log.Info("Auto-miner stopped")
	return nil
}

func (m *Miner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.round(ctx)
		}
	}
}

// round runs one mining attempt. Empty queues and overlapping manual
// mining are expected and stay quiet.
func (m *Miner) round(ctx context.Context) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	res, err := m.sealer.MinePending(ctx)
	switch {
	case err == nil:
		log.WithFields(logrus.Fields{
			"block": res.BlockIndex,
			"txs":   res.TxCount,
			"hash":  res.Hash,
		}).Info("Auto-mined block")
	case errors.Is(err, ledger.ErrEmptyPending), errors.Is(err, ledger.ErrMiningInProgress):
		log.WithError(err).Debug("Nothing mined")
	case errors.Is(err, context.Canceled):
		// stopping
	default:
		log.WithError(err).Warn("Auto-mine round failed")
	}
}
