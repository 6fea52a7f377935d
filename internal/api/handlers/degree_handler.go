package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/degreechain/internal/hashing"
	"github.com/thanhnp/degreechain/internal/models"
	"github.com/thanhnp/degreechain/internal/qr"
)

// DegreeHandler handles degree submission and verification requests
type DegreeHandler struct {
	ledger          Ledger
	verificationURL string
	qrSize          int
}

// NewDegreeHandler creates a new DegreeHandler
func NewDegreeHandler(l Ledger, verificationURL string, qrSize int) *DegreeHandler {
	return &DegreeHandler{
		ledger:          l,
		verificationURL: verificationURL,
		qrSize:          qrSize,
	}
}

// Submit queues one degree
// POST /api/v1/degrees
func (h *DegreeHandler) Submit(c *gin.Context) {
	var data models.DegreeData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	id, err := h.ledger.SubmitDegree(data)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"transaction_id": id,
		"document_hash":  data.DocumentHash(),
		"status":         "pending",
	})
}

// SubmitBulk queues many degrees; bad entries are reported, not fatal
// POST /api/v1/degrees/bulk
func (h *DegreeHandler) SubmitBulk(c *gin.Context) {
	var entries []models.DegreeData
	if err := c.ShouldBindJSON(&entries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON array of degrees"})
		return
	}

	results := h.ledger.SubmitBulkReport(entries)
	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.TransactionID != "" {
			ids = append(ids, r.TransactionID)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted":        len(ids),
		"rejected":        len(results) - len(ids),
		"transaction_ids": ids,
		"results":         results,
	})
}

// Verify checks a document hash against the sealed chain
// GET /api/v1/degrees/verify?hash=...&student_id=...
func (h *DegreeHandler) Verify(c *gin.Context) {
	hash := c.Query("hash")
	studentID := c.Query("student_id")
	if hash == "" || studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hash and student_id are required"})
		return
	}
	if !hashing.IsHex(hash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hash must be 64 hex characters"})
		return
	}

	c.JSON(http.StatusOK, h.ledger.VerifyDegree(hash, studentID))
}

// GetByStudent lists a student's sealed degrees
// GET /api/v1/students/:id/degrees
func (h *DegreeHandler) GetByStudent(c *gin.Context) {
	studentID := c.Param("id")

	degrees := h.ledger.StudentDegrees(studentID)
	if len(degrees) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No degrees found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student_nim": studentID,
		"count":       len(degrees),
		"degrees":     degrees,
	})
}

// QRCode renders a verification QR code for the student's latest degree
// GET /api/v1/students/:id/qr
func (h *DegreeHandler) QRCode(c *gin.Context) {
	record, ok := h.ledger.LatestDegree(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No degrees found"})
		return
	}

	png, err := qr.Encode(qr.NewPayload(record, h.verificationURL, time.Now().UTC()), h.qrSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
