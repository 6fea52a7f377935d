package ledger

import (
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/degreechain/internal/models"
)

const (
	minStudentIDLength = 8
	minGPA             = 0.0
	maxGPA             = 4.0
)

// Validate checks the fields the ledger enforces: a student id of at least
// eight ASCII digits and a GPA between 0.0 and 4.0. Other fields pass
// through verbatim.
func Validate(data models.DegreeData) error {
	if !ValidStudentID(data.StudentID) {
		return &ValidationError{
			Field:  "nim",
			Value:  data.StudentID,
			Reason: "must be at least 8 digits",
		}
	}

	gpa, err := parseGPA(string(data.GPA))
	if err != nil || math.IsNaN(gpa) {
		return &ValidationError{Field: "gpa", Value: string(data.GPA), Reason: "not a number"}
	}
	if gpa < minGPA || gpa > maxGPA {
		return &ValidationError{Field: "gpa", Value: string(data.GPA), Reason: "must be between 0.0 and 4.0"}
	}
	return nil
}

// parseGPA reads a decimal number. Hex float literals are not grades.
func parseGPA(s string) (float64, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "+-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// ValidStudentID reports whether id is at least eight ASCII digits
func ValidStudentID(id string) bool {
	if len(id) < minStudentIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

// SubmitDegree validates data, queues a degree issuance and returns its
// transaction id. A failed save is logged; the transaction stays pending.
func (l *Ledger) SubmitDegree(data models.DegreeData) (string, error) {
	if err := Validate(data); err != nil {
		l.metrics.submitted(false)
		return "", err
	}

	issuer := data.Issuer
	if issuer == "" {
		issuer = models.DefaultIssuer
	}
	tx := models.Transaction{
		ID:             l.newID(),
		Kind:           models.KindDegreeIssuance,
		StudentID:      data.StudentID,
		StudentName:    data.Name,
		Degree:         data.Degree,
		Major:          data.Major,
		GPA:            string(data.GPA),
		GraduationDate: data.GraduationDate,
		DocumentHash:   data.DocumentHash(),
		Issuer:         issuer,
		Timestamp:      l.now(),
	}

	l.mu.Lock()
	l.pending = append(l.pending, tx)
	err := l.persist()
	height, pending := len(l.chain), len(l.pending)
	l.mu.Unlock()

	entry := log.WithFields(logrus.Fields{
		"tx":      tx.ID,
		"nim":     tx.StudentID,
		"pending": pending,
	})
	if err != nil {
		entry.WithError(err).Warn("Degree queued but not persisted")
	} else {
		entry.Info("Degree queued")
	}

	l.metrics.submitted(true)
	l.metrics.observe(height, pending)
	return tx.ID, nil
}

// BulkResult is the outcome of one entry of a bulk submission
type BulkResult struct {
	StudentID     string `json:"nim"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// SubmitBulkReport submits every entry independently and reports each
// outcome in input order.
func (l *Ledger) SubmitBulkReport(entries []models.DegreeData) []BulkResult {
	results := make([]BulkResult, len(entries))
	for i, data := range entries {
		results[i].StudentID = data.StudentID
		id, err := l.SubmitDegree(data)
		if err != nil {
			log.WithError(err).WithField("nim", data.StudentID).Warn("Bulk entry rejected")
			results[i].Error = err.Error()
			continue
		}
		results[i].TransactionID = id
	}
	return results
}

// SubmitBulk submits every entry independently and returns the ids of the
// accepted ones in input order.
func (l *Ledger) SubmitBulk(entries []models.DegreeData) []string {
	ids := make([]string, 0, len(entries))
	for _, r := range l.SubmitBulkReport(entries) {
		if r.TransactionID != "" {
			ids = append(ids, r.TransactionID)
		}
	}
	return ids
}
