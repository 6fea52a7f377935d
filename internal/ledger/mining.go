package ledger

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/thanhnp/degreechain/internal/hashing"
	"github.com/thanhnp/degreechain/internal/models"
)

// cancelCheckInterval is how many nonces a worker tries between context checks
const cancelCheckInterval = 1024

// MinePending seals every pending transaction into a new block.
//
// The pending queue is snapshotted when mining starts. Submissions that
// arrive during the nonce search queue up behind the snapshot and are left
// pending when the block is appended. Only one call runs at a time; an
// overlapping call gets ErrMiningInProgress. If ctx is cancelled during the
// search nothing is appended and the pending queue is untouched.
func (l *Ledger) MinePending(ctx context.Context) (models.MineResult, error) {
	if !l.mining.CompareAndSwap(false, true) {
		l.metrics.miningFailed("in_progress")
		return models.MineResult{}, ErrMiningInProgress
	}
	defer l.mining.Store(false)

	l.mu.RLock()
	if len(l.pending) == 0 {
		l.mu.RUnlock()
		l.metrics.miningFailed("empty")
		return models.MineResult{}, ErrEmptyPending
	}
	candidate := models.Block{
		Index:        len(l.chain),
		Transactions: append([]models.Transaction(nil), l.pending...),
		Timestamp:    l.now(),
		PreviousHash: l.chain[len(l.chain)-1].Hash,
	}
	l.mu.RUnlock()

	entry := log.WithFields(logrus.Fields{
		"block":      candidate.Index,
		"txs":        len(candidate.Transactions),
		"difficulty": l.difficulty,
	})
	entry.Info("Mining block")

	start := time.Now()
	nonce, hash, err := l.search(ctx, candidate.HashPrefix(), l.difficulty, l.workers)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			l.metrics.miningFailed("cancelled")
		}
		entry.WithError(err).Warn("Mining aborted")
		return models.MineResult{}, err
	}
	candidate.Nonce = nonce
	candidate.Hash = hash

	l.mu.Lock()
	l.chain = append(l.chain, candidate)
	l.pending = append([]models.Transaction(nil), l.pending[len(candidate.Transactions):]...)
	perr := l.persist()
	height, pending := len(l.chain), len(l.pending)
	l.mu.Unlock()

	entry = entry.WithFields(logrus.Fields{
		"hash":    hash,
		"nonce":   nonce,
		"elapsed": elapsed,
	})
	if perr != nil {
		entry.WithError(perr).Warn("Block mined but not persisted")
	} else {
		entry.Info("Block mined")
	}

	l.metrics.mined(elapsed)
	l.metrics.observe(height, pending)

	return models.MineResult{
		Sealed:     true,
		BlockIndex: candidate.Index,
		TxCount:    len(candidate.Transactions),
		Hash:       hash,
		Nonce:      nonce,
		Elapsed:    elapsed,
	}, nil
}

// SearchNonce finds the smallest nonce whose block hash, built from prefix,
// starts with difficulty zeros. Nonces are split across workers by stride;
// a worker stops once its next nonce is above the best one found so far, so
// the result matches a sequential search from zero.
func SearchNonce(ctx context.Context, prefix string, difficulty, workers int) (uint64, string, error) {
	if workers < 1 {
		workers = 1
	}
	step := uint64(workers)

	var best atomic.Uint64
	best.Store(math.MaxUint64)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		first := uint64(w)
		g.Go(func() error {
			for n, tries := first, 0; n < best.Load(); n += step {
				tries++
				if tries%cancelCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if hashing.HasPrefixZeros(models.HashWithNonce(prefix, n), difficulty) {
					lowerTo(&best, n)
					return nil
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, "", err
	}

	nonce := best.Load()
	return nonce, models.HashWithNonce(prefix, nonce), nil
}

func lowerTo(best *atomic.Uint64, n uint64) {
	for {
		cur := best.Load()
		if n >= cur || best.CompareAndSwap(cur, n) {
			return
		}
	}
}
