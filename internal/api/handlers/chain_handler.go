package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ChainHandler handles mining and chain inspection requests
type ChainHandler struct {
	ledger      Ledger
	mineTimeout time.Duration
}

// NewChainHandler creates a new ChainHandler. A zero mineTimeout bounds
// mining only by the request context.
func NewChainHandler(l Ledger, mineTimeout time.Duration) *ChainHandler {
	return &ChainHandler{
		ledger:      l,
		mineTimeout: mineTimeout,
	}
}

// Mine seals the pending queue into a block
// POST /api/v1/mine
func (h *ChainHandler) Mine(c *gin.Context) {
	ctx := c.Request.Context()
	if h.mineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.mineTimeout)
		defer cancel()
	}

	res, err := h.ledger.MinePending(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sealed":      res.Sealed,
		"block_index": res.BlockIndex,
		"tx_count":    res.TxCount,
		"hash":        res.Hash,
		"nonce":       res.Nonce,
		"elapsed_ms":  res.Elapsed.Milliseconds(),
	})
}

// Summary returns chain counters
// GET /api/v1/chain
func (h *ChainHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Summary())
}

// Validate checks chain integrity
// GET /api/v1/chain/validate
func (h *ChainHandler) Validate(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.ValidateChain())
}

// GetBlocks returns the whole chain
// GET /api/v1/chain/blocks
func (h *ChainHandler) GetBlocks(c *gin.Context) {
	blocks := h.ledger.Blocks()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(blocks),
		"blocks": blocks,
	})
}

// GetBlock returns a block by its index
// GET /api/v1/chain/blocks/:index
func (h *ChainHandler) GetBlock(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid index"})
		return
	}

	block, ok := h.ledger.Block(index)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Block not found"})
		return
	}

	c.JSON(http.StatusOK, block)
}

// GetPending returns the transactions waiting for a block
// GET /api/v1/pending
func (h *ChainHandler) GetPending(c *gin.Context) {
	pending := h.ledger.Pending()
	c.JSON(http.StatusOK, gin.H{
		"count":        len(pending),
		"transactions": pending,
	})
}
