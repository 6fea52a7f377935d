// Package ledger owns the degree chain and its pending queue. It admits
// degree submissions, seals them into proof-of-work blocks, answers
// verification queries and checks chain integrity.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thanhnp/degreechain/internal/hashing"
	"github.com/thanhnp/degreechain/internal/models"
	"github.com/thanhnp/degreechain/internal/storage"
)

var log = logrus.WithField("component", "ledger")

// DefaultDifficulty is the number of leading zeros required on block hashes
const DefaultDifficulty = 3

// Options configures a Ledger
type Options struct {
	// Difficulty is fixed for the ledger's lifetime. Range 0..64.
	Difficulty int

	// Workers is the number of goroutines searching for a nonce. Values
	// below 1 mean one.
	Workers int

	// Store persists state. A nil Store keeps the ledger in memory.
	Store storage.Store

	// Metrics is optional.
	Metrics *Metrics
}

// Ledger is the chain of sealed blocks plus the queue of pending
// transactions. All methods are safe for concurrent use.
//
// Durability is best effort: state is saved after every admission and every
// sealed block, and a failed save is logged but never undoes the in-memory
// change. The next successful save catches the store up.
type Ledger struct {
	mu      sync.RWMutex
	chain   []models.Block
	pending []models.Transaction

	difficulty int
	workers    int
	store      storage.Store
	metrics    *Metrics
	mining     atomic.Bool

	now    func() time.Time
	newID  func() string
	search func(ctx context.Context, prefix string, difficulty, workers int) (uint64, string, error)
}

// New loads the ledger from opts.Store. With nothing stored it creates the
// genesis block and saves it right away. If the stored state cannot be read
// it starts over from a fresh genesis block without overwriting the store;
// the next admission does that.
func New(opts Options) (*Ledger, error) {
	if opts.Difficulty < 0 || opts.Difficulty > hashing.HexSize {
		return nil, fmt.Errorf("difficulty must be between 0 and %d, got %d", hashing.HexSize, opts.Difficulty)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	l := &Ledger{
		difficulty: opts.Difficulty,
		workers:    workers,
		store:      opts.Store,
		metrics:    opts.Metrics,
		now:        models.Now,
		newID:      newTransactionID,
		search:     SearchNonce,
	}

	if l.store == nil {
		l.chain = []models.Block{l.genesisBlock()}
		l.metrics.observe(len(l.chain), 0)
		return l, nil
	}

	state, err := l.store.Load()
	switch {
	case err == nil:
		l.chain = state.Chain
		l.pending = state.Pending
		log.WithFields(logrus.Fields{
			"blocks":  len(l.chain),
			"pending": len(l.pending),
		}).Info("Ledger loaded")
	case errors.Is(err, storage.ErrNoState):
		l.chain = []models.Block{l.genesisBlock()}
		if err := l.persist(); err != nil {
			log.WithError(err).Warn("Failed to persist genesis block")
		}
		log.WithField("hash", l.chain[0].Hash).Info("Ledger initialized with genesis block")
	default:
		perr := &PersistenceError{Op: "load", Err: err}
		log.WithError(perr).Warn("Starting from a fresh genesis block")
		l.chain = []models.Block{l.genesisBlock()}
	}

	l.metrics.observe(len(l.chain), len(l.pending))
	return l, nil
}

// genesisBlock builds block 0. Its hash is computed at nonce 0 without a
// proof-of-work search; validation exempts it from the difficulty check.
func (l *Ledger) genesisBlock() models.Block {
	now := l.now()
	genesis := models.Block{
		Index: 0,
		Transactions: []models.Transaction{{
			ID:             l.newID(),
			Kind:           models.KindSystem,
			StudentID:      "GENESIS",
			StudentName:    "System",
			Degree:         "Genesis Block",
			Major:          "System",
			GPA:            "0.0",
			GraduationDate: now.Format(time.DateOnly),
			DocumentHash:   hashing.ZeroHash,
			Issuer:         "System",
			Timestamp:      now,
		}},
		Timestamp:    now,
		PreviousHash: hashing.ZeroHash,
	}
	genesis.Hash = genesis.CalculateHash()
	return genesis
}

// persist saves the current state. Callers hold l.mu.
func (l *Ledger) persist() error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Save(&storage.State{Chain: l.chain, Pending: l.pending}); err != nil {
		l.metrics.persistFailed()
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Difficulty returns the proof-of-work difficulty
func (l *Ledger) Difficulty() int {
	return l.difficulty
}

// Close releases the store
func (l *Ledger) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

func newTransactionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
