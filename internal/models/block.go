package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/thanhnp/degreechain/internal/hashing"
)

// Block is a sealed, hash-linked batch of transactions
type Block struct {
	Index        int           `json:"index"`
	Transactions []Transaction `json:"transactions"`
	Timestamp    time.Time     `json:"timestamp"`
	PreviousHash string        `json:"previous_hash"`
	Nonce        uint64        `json:"nonce"`
	Hash         string        `json:"hash"`
}

// HashPrefix returns everything fed to the block hash except the nonce.
// Mining computes it once and appends each candidate nonce.
func (b *Block) HashPrefix() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(b.Index))
	for _, tx := range b.Transactions {
		sb.WriteString(tx.Hash())
	}
	sb.WriteString(FormatTime(b.Timestamp))
	sb.WriteString(b.PreviousHash)
	return sb.String()
}

// CalculateHash recomputes the block hash from its current fields
func (b *Block) CalculateHash() string {
	return HashWithNonce(b.HashPrefix(), b.Nonce)
}

// HashWithNonce completes a block hash from a precomputed prefix
func HashWithNonce(prefix string, nonce uint64) string {
	return hashing.Sum(prefix + strconv.FormatUint(nonce, 10))
}

// DegreeCount returns the number of degree issuances in the block
func (b *Block) DegreeCount() int {
	n := 0
	for _, tx := range b.Transactions {
		if tx.IsDegree() {
			n++
		}
	}
	return n
}

// Clone returns a copy that shares no slice with b
func (b Block) Clone() Block {
	txs := make([]Transaction, len(b.Transactions))
	copy(txs, b.Transactions)
	b.Transactions = txs
	return b
}
