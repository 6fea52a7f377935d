// Package qr builds verification QR codes for sealed degrees. A code carries
// enough to re-run a verification: the transaction id, document hash and
// student id, plus the URL of the verification service.
package qr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/thanhnp/degreechain/internal/models"
)

// Payload is the JSON document encoded into the QR image
type Payload struct {
	TransactionID   string    `json:"transaction_id"`
	DocumentHash    string    `json:"document_hash"`
	StudentID       string    `json:"student_nim"`
	VerificationURL string    `json:"verification_url"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewPayload describes record for the given verification service
func NewPayload(record models.DegreeRecord, verificationURL string, now time.Time) Payload {
	return Payload{
		TransactionID:   record.Degree.ID,
		DocumentHash:    record.Degree.DocumentHash,
		StudentID:       record.Degree.StudentID,
		VerificationURL: verificationURL,
		Timestamp:       now,
	}
}

// Encode renders p as a PNG image of size×size pixels
func Encode(p Payload, size int) ([]byte, error) {
	content, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal qr payload: %w", err)
	}
	png, err := qrcode.Encode(string(content), qrcode.Low, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

// WriteFile renders p into dir and returns the file path. Files are named
// after the student id.
func WriteFile(p Payload, size int, dir string) (string, error) {
	png, err := Encode(p, size)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create qr directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("qr_verification_%s.png", p.StudentID))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("failed to write qr code: %w", err)
	}
	return path, nil
}
