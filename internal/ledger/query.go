package ledger

import (
	"github.com/thanhnp/degreechain/internal/models"
)

const (
	msgNotFound = "degree not found in the chain"
	msgPending  = "degree is pending and has not been mined yet"
)

// VerifyDegree looks for a sealed degree issuance with the given document
// hash and student id. Pending transactions never verify: only inclusion in
// a mined block counts.
func (l *Ledger) VerifyDegree(documentHash, studentID string) models.VerificationResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := range l.chain {
		block := &l.chain[i]
		for j := range block.Transactions {
			tx := block.Transactions[j]
			if tx.IsDegree() && tx.StudentID == studentID && tx.DocumentHash == documentHash {
				ts := block.Timestamp
				return models.VerificationResult{
					Verified:       true,
					BlockIndex:     block.Index,
					Transaction:    &tx,
					BlockHash:      block.Hash,
					BlockTimestamp: &ts,
				}
			}
		}
	}

	msg := msgNotFound
	for _, tx := range l.pending {
		if tx.IsDegree() && tx.StudentID == studentID && tx.DocumentHash == documentHash {
			msg = msgPending
			break
		}
	}
	return models.VerificationResult{Verified: false, Message: msg}
}

// StudentDegrees returns every sealed degree issued to studentID in chain order
func (l *Ledger) StudentDegrees(studentID string) []models.DegreeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var records []models.DegreeRecord
	for _, block := range l.chain {
		for _, tx := range block.Transactions {
			if tx.IsDegree() && tx.StudentID == studentID {
				records = append(records, models.DegreeRecord{
					BlockIndex:     block.Index,
					Degree:         tx,
					BlockTimestamp: block.Timestamp,
				})
			}
		}
	}
	return records
}

// LatestDegree returns the most recently sealed degree of studentID
func (l *Ledger) LatestDegree(studentID string) (models.DegreeRecord, bool) {
	records := l.StudentDegrees(studentID)
	if len(records) == 0 {
		return models.DegreeRecord{}, false
	}
	return records[len(records)-1], true
}

// Summary returns chain-wide counters
func (l *Ledger) Summary() models.Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := models.Summary{
		TotalBlocks:         len(l.chain),
		PendingTransactions: len(l.pending),
		Difficulty:          l.difficulty,
		ChainHash:           l.chain[len(l.chain)-1].Hash,
	}
	for i := range l.chain {
		s.TotalTransactions += len(l.chain[i].Transactions)
		s.DegreeTransactions += l.chain[i].DegreeCount()
	}
	return s
}

// Blocks returns a copy of the chain
func (l *Ledger) Blocks() []models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	blocks := make([]models.Block, len(l.chain))
	for i := range l.chain {
		blocks[i] = l.chain[i].Clone()
	}
	return blocks
}

// Block returns a copy of the block at index
func (l *Ledger) Block(index int) (models.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.chain) {
		return models.Block{}, false
	}
	return l.chain[index].Clone(), true
}

// LatestBlock returns a copy of the chain head
func (l *Ledger) LatestBlock() models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.chain[len(l.chain)-1].Clone()
}

// Pending returns a copy of the pending queue in admission order
func (l *Ledger) Pending() []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]models.Transaction{}, l.pending...)
}
