package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/degreechain/internal/models"
)

var (
	metaFormatKey = []byte("format")
	metaHeightKey = []byte("height")
)

// PebbleStore keeps ledger state in a Pebble database: one key per block,
// one key per pending transaction, and a small meta family. Every Save is a
// single synced batch.
type PebbleStore struct {
	db *PebbleDB
}

// NewPebbleStore opens a PebbleStore in the directory at path
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := NewPebbleDB(path)
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

// positionKey orders entries by their position in the chain or queue
func positionKey(i int) []byte {
	return []byte(fmt.Sprintf("%012d", i))
}

// Save replaces the stored chain and pending queue
func (s *PebbleStore) Save(state *State) error {
	batch := s.db.NewBatch()
	defer batch.Destroy()

	if err := s.db.ClearBatch(batch, CFBlocks); err != nil {
		return err
	}
	for i := range state.Chain {
		data, err := json.Marshal(&state.Chain[i])
		if err != nil {
			return fmt.Errorf("failed to marshal block: %w", err)
		}
		if err := s.db.PutBatch(batch, CFBlocks, positionKey(i), data); err != nil {
			return err
		}
	}

	if err := s.db.ClearBatch(batch, CFPending); err != nil {
		return err
	}
	for i := range state.Pending {
		data, err := json.Marshal(&state.Pending[i])
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}
		if err := s.db.PutBatch(batch, CFPending, positionKey(i), data); err != nil {
			return err
		}
	}

	if err := s.db.PutBatch(batch, CFMeta, metaFormatKey, []byte(FormatVersion)); err != nil {
		return err
	}
	if err := s.db.PutBatch(batch, CFMeta, metaHeightKey, []byte(strconv.Itoa(len(state.Chain)))); err != nil {
		return err
	}

	return s.db.WriteBatch(batch)
}

// Load reads the stored chain and pending queue
func (s *PebbleStore) Load() (*State, error) {
	version, err := s.db.Get(CFMeta, metaFormatKey)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, ErrNoState
	}
	if err := checkVersionString(string(version)); err != nil {
		return nil, err
	}

	heightData, err := s.db.Get(CFMeta, metaHeightKey)
	if err != nil {
		return nil, err
	}
	height, err := strconv.Atoi(string(heightData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse height: %w", ErrUnrecognizedFormat, err)
	}

	var state State
	if err := s.scan(CFBlocks, func(value []byte) error {
		var b models.Block
		if err := json.Unmarshal(value, &b); err != nil {
			return fmt.Errorf("%w: failed to unmarshal block: %w", ErrUnrecognizedFormat, err)
		}
		state.Chain = append(state.Chain, b)
		return nil
	}); err != nil {
		return nil, err
	}
	if len(state.Chain) == 0 || len(state.Chain) != height {
		return nil, fmt.Errorf("%w: found %d blocks, expected %d", ErrUnrecognizedFormat, len(state.Chain), height)
	}

	if err := s.scan(CFPending, func(value []byte) error {
		var tx models.Transaction
		if err := json.Unmarshal(value, &tx); err != nil {
			return fmt.Errorf("%w: failed to unmarshal transaction: %w", ErrUnrecognizedFormat, err)
		}
		state.Pending = append(state.Pending, tx)
		return nil
	}); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"blocks":  len(state.Chain),
		"pending": len(state.Pending),
	}).Debug("Pebble state loaded")
	return &state, nil
}

// scan visits a family in position order. Keys must run contiguously from
// positionKey(0); a gap means entries were lost.
func (s *PebbleStore) scan(cf string, fn func(value []byte) error) error {
	iter, err := s.db.NewIterator(cf)
	if err != nil {
		return err
	}
	defer iter.Close()

	for n := 0; iter.Valid(); n++ {
		if want := positionKey(n); !bytes.Equal(iter.Key(), want) {
			return fmt.Errorf("%w: %s key %q out of sequence, expected %q", ErrUnrecognizedFormat, cf, iter.Key(), want)
		}
		if err := fn(iter.Value()); err != nil {
			return err
		}
		iter.Next()
	}
	return nil
}

// Close closes the database
func (s *PebbleStore) Close() error {
	return s.db.Close()
}
