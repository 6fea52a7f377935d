package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/degreechain/internal/ledger"
	"github.com/thanhnp/degreechain/internal/models"
)

// Ledger is the ledger surface the handlers call into
type Ledger interface {
	SubmitDegree(data models.DegreeData) (string, error)
	SubmitBulkReport(entries []models.DegreeData) []ledger.BulkResult
	MinePending(ctx context.Context) (models.MineResult, error)
	VerifyDegree(documentHash, studentID string) models.VerificationResult
	StudentDegrees(studentID string) []models.DegreeRecord
	LatestDegree(studentID string) (models.DegreeRecord, bool)
	Summary() models.Summary
	ValidateChain() models.ValidityResult
	Blocks() []models.Block
	Block(index int) (models.Block, bool)
	Pending() []models.Transaction
}

// statusFor maps ledger errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrEmptyPending), errors.Is(err, ledger.ErrMiningInProgress):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
