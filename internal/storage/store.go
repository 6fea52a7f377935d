package storage

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/degreechain/internal/models"
)

var log = logrus.WithField("component", "storage")

var (
	// ErrNoState is returned by Load when nothing has been persisted yet
	ErrNoState = errors.New("no persisted state")

	// ErrUnrecognizedFormat is returned by Load when persisted data exists
	// but cannot be read as ledger state
	ErrUnrecognizedFormat = errors.New("unrecognized state format")
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendPebble = "pebble"
)

// State is everything the ledger persists: the sealed chain and the
// transactions still waiting for a block.
type State struct {
	Chain   []models.Block
	Pending []models.Transaction
}

// Store persists ledger state. Save must be atomic from the caller's point
// of view: a crash mid-write leaves the previous state loadable.
type Store interface {
	Load() (*State, error)
	Save(state *State) error
	Close() error
}

// Open creates the store for the given backend
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(path), nil
	case BackendPebble:
		return NewPebbleStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
