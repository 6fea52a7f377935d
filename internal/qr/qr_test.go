package qr

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhnp/degreechain/internal/hashing"
	"github.com/thanhnp/degreechain/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testRecord() models.DegreeRecord {
	return models.DegreeRecord{
		BlockIndex: 1,
		Degree: models.Transaction{
			ID:           "0123456789abcdef",
			Kind:         models.KindDegreeIssuance,
			StudentID:    "20210001",
			DocumentHash: hashing.Sum("doc"),
		},
	}
}

func TestNewPayload(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	p := NewPayload(testRecord(), "https://verify.example/verify", now)

	assert.Equal(t, "0123456789abcdef", p.TransactionID)
	assert.Equal(t, hashing.Sum("doc"), p.DocumentHash)
	assert.Equal(t, "20210001", p.StudentID)
	assert.Equal(t, "https://verify.example/verify", p.VerificationURL)
	assert.Equal(t, now, p.Timestamp)
}

func TestEncodeProducesPNG(t *testing.T) {
	png, err := Encode(NewPayload(testRecord(), "https://verify.example", time.Now()), 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "qr")
	path, err := WriteFile(NewPayload(testRecord(), "https://verify.example", time.Now()), 128, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "qr_verification_20210001.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}
