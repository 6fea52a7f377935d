package ledger

import (
	"fmt"

	"github.com/thanhnp/degreechain/internal/hashing"
	"github.com/thanhnp/degreechain/internal/models"
)

// ValidateChain recomputes every block hash and checks linkage and
// proof-of-work. Stored hashes are never trusted without recomputation.
func (l *Ledger) ValidateChain() models.ValidityResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := ValidateBlocks(l.chain, l.difficulty)
	if !result.Valid {
		log.WithField("block", result.BlockIndex).WithField("violation", result.Violation).Warn(result.Message)
	}
	return result
}

// ValidateBlocks checks a chain against difficulty and reports the first
// broken invariant. The genesis block must carry index 0, the zero previous
// hash and a correct hash; it is exempt from proof-of-work.
func ValidateBlocks(chain []models.Block, difficulty int) models.ValidityResult {
	if len(chain) == 0 {
		return invalid(0, models.ViolationEmptyChain, "chain has no genesis block")
	}

	genesis := &chain[0]
	if genesis.Index != 0 || genesis.PreviousHash != hashing.ZeroHash {
		return invalid(0, models.ViolationGenesis, "genesis block has wrong index or previous hash")
	}
	if got := genesis.CalculateHash(); got != genesis.Hash {
		return invalid(0, models.ViolationHash, fmt.Sprintf("hash mismatch: stored %s, computed %s", genesis.Hash, got))
	}

	for i := 1; i < len(chain); i++ {
		current, previous := &chain[i], &chain[i-1]

		if current.Index != i {
			return invalid(i, models.ViolationIndex, fmt.Sprintf("index mismatch: expected %d, got %d", i, current.Index))
		}
		if got := current.CalculateHash(); got != current.Hash {
			return invalid(i, models.ViolationHash, fmt.Sprintf("hash mismatch: stored %s, computed %s", current.Hash, got))
		}
		if current.PreviousHash != previous.Hash {
			return invalid(i, models.ViolationPreviousHash, fmt.Sprintf("previous hash mismatch: expected %s, got %s", previous.Hash, current.PreviousHash))
		}
		if !hashing.HasPrefixZeros(current.Hash, difficulty) {
			return invalid(i, models.ViolationProofOfWork, fmt.Sprintf("hash %s does not meet difficulty %d", current.Hash, difficulty))
		}
	}

	return models.ValidityResult{Valid: true, BlockIndex: len(chain) - 1}
}

func invalid(index int, v models.Violation, msg string) models.ValidityResult {
	return models.ValidityResult{
		Valid:      false,
		BlockIndex: index,
		Violation:  v,
		Message:    msg,
	}
}
