package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/thanhnp/degreechain/internal/models"
	"github.com/thanhnp/degreechain/pkg/semver"
)

// FormatVersion is stamped on everything this package writes. Files without
// a version predate it and are read as 1.x.
const FormatVersion = "2.0.0"

var (
	legacyFormat     = semver.MustParse("1.0.0")
	supportedFormats = []*semver.Version{legacyFormat, semver.MustParse(FormatVersion)}
)

type stateFile struct {
	FormatVersion string               `json:"format_version"`
	Chain         []models.Block       `json:"chain"`
	Pending       []models.Transaction `json:"pending"`
}

// EncodeState serializes state in the current format
func EncodeState(state *State) ([]byte, error) {
	pending := state.Pending
	if pending == nil {
		pending = []models.Transaction{}
	}
	data, err := json.MarshalIndent(stateFile{
		FormatVersion: FormatVersion,
		Chain:         state.Chain,
		Pending:       pending,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

// DecodeState reads any supported layout: the current object form, the
// older object form keyed by "pending_transactions", or a bare chain array
// with no pending queue.
func DecodeState(data []byte) (*State, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrUnrecognizedFormat)
	}

	var state State
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &state.Chain); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnrecognizedFormat, err)
		}
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnrecognizedFormat, err)
		}
		if err := checkFormatVersion(raw["format_version"]); err != nil {
			return nil, err
		}
		chain, ok := raw["chain"]
		if !ok {
			return nil, fmt.Errorf("%w: missing chain", ErrUnrecognizedFormat)
		}
		if err := json.Unmarshal(chain, &state.Chain); err != nil {
			return nil, fmt.Errorf("%w: chain: %w", ErrUnrecognizedFormat, err)
		}
		pending, ok := raw["pending"]
		if !ok {
			pending, ok = raw["pending_transactions"]
		}
		if ok {
			if err := json.Unmarshal(pending, &state.Pending); err != nil {
				return nil, fmt.Errorf("%w: pending: %w", ErrUnrecognizedFormat, err)
			}
		}
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrUnrecognizedFormat, data[0])
	}

	if len(state.Chain) == 0 {
		return nil, fmt.Errorf("%w: chain is empty", ErrUnrecognizedFormat)
	}
	return &state, nil
}

func checkFormatVersion(raw json.RawMessage) error {
	if raw == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("%w: format_version: %w", ErrUnrecognizedFormat, err)
	}
	return checkVersionString(s)
}

func checkVersionString(s string) error {
	v, err := semver.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnrecognizedFormat, err)
	}
	if !semver.AnyCompatible(supportedFormats, v) {
		return fmt.Errorf("%w: format version %s is not supported", ErrUnrecognizedFormat, v)
	}
	return nil
}
