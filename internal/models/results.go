package models

import (
	"time"
)

// MineResult describes a sealed block
type MineResult struct {
	Sealed     bool          `json:"sealed"`
	BlockIndex int           `json:"block_index"`
	TxCount    int           `json:"tx_count"`
	Hash       string        `json:"hash"`
	Nonce      uint64        `json:"nonce"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// VerificationResult is the outcome of a degree lookup on the sealed chain
type VerificationResult struct {
	Verified       bool         `json:"verified"`
	BlockIndex     int          `json:"block_index,omitempty"`
	Transaction    *Transaction `json:"transaction_data,omitempty"`
	BlockHash      string       `json:"block_hash,omitempty"`
	BlockTimestamp *time.Time   `json:"timestamp,omitempty"`
	Message        string       `json:"message,omitempty"`
}

// DegreeRecord is one sealed degree with its enclosing block position
type DegreeRecord struct {
	BlockIndex     int         `json:"block_index"`
	Degree         Transaction `json:"degree_data"`
	BlockTimestamp time.Time   `json:"block_timestamp"`
}

// Summary holds chain-wide counters
type Summary struct {
	TotalBlocks         int    `json:"total_blocks"`
	TotalTransactions   int    `json:"total_transactions"`
	DegreeTransactions  int    `json:"degree_transactions"`
	PendingTransactions int    `json:"pending_transactions"`
	Difficulty          int    `json:"difficulty"`
	ChainHash           string `json:"chain_hash"`
}

// Violation names the invariant a chain check found broken
type Violation string

const (
	ViolationNone         Violation = ""
	ViolationEmptyChain   Violation = "empty_chain"
	ViolationGenesis      Violation = "genesis"
	ViolationIndex        Violation = "index"
	ViolationHash         Violation = "hash"
	ViolationPreviousHash Violation = "previous_hash"
	ViolationProofOfWork  Violation = "proof_of_work"
)

// ValidityResult is the outcome of a full chain check. When Valid is false,
// BlockIndex and Violation locate the first broken invariant.
type ValidityResult struct {
	Valid      bool      `json:"valid"`
	BlockIndex int       `json:"block_index"`
	Violation  Violation `json:"violation,omitempty"`
	Message    string    `json:"message,omitempty"`
}
