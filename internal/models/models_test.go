package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thanhnp/degreechain/internal/hashing"
)

func sampleTx() Transaction {
	return Transaction{
		ID:             "0123456789abcdef",
		Kind:           KindDegreeIssuance,
		StudentID:      "20210001",
		StudentName:    "Anna",
		Degree:         "BSc",
		Major:          "CS",
		GPA:            "3.75",
		GraduationDate: "2024-06-15",
		DocumentHash:   hashing.Sum("doc"),
		Issuer:         DefaultIssuer,
		Timestamp:      time.Date(2024, 6, 20, 10, 30, 0, 123456789, time.UTC),
	}
}

func TestTransactionHashCoversFields(t *testing.T) {
	tx := sampleTx()
	base := tx.Hash()
	require.Len(t, base, hashing.HexSize)

	changed := tx
	changed.GPA = "3.95"
	assert.NotEqual(t, base, changed.Hash())

	changed = tx
	changed.Timestamp = tx.Timestamp.Add(time.Nanosecond)
	assert.NotEqual(t, base, changed.Hash())

	// The id is bookkeeping, not content.
	changed = tx
	changed.ID = "fedcba9876543210"
	assert.Equal(t, base, changed.Hash())
}

func TestTransactionHashIgnoresZone(t *testing.T) {
	tx := sampleTx()
	local := tx
	local.Timestamp = tx.Timestamp.In(time.FixedZone("WIB", 7*3600))
	assert.Equal(t, tx.Hash(), local.Hash())
}

func TestDocumentHashConcatenation(t *testing.T) {
	d := DegreeData{
		StudentID:      "20210001",
		Name:           "Anna",
		Degree:         "BSc",
		Major:          "CS",
		GPA:            "3.75",
		GraduationDate: "2024-06-15",
	}
	assert.Equal(t, hashing.Sum("20210001AnnaBScCS3.752024-06-15"), d.DocumentHash())

	d.Issuer = "Faculty of Science"
	assert.Equal(t, hashing.Sum("20210001AnnaBScCS3.752024-06-15"), d.DocumentHash(), "issuer is not fingerprinted")
}

func TestGPAUnmarshal(t *testing.T) {
	var rows []DegreeData
	err := json.Unmarshal([]byte(`[{"nim":"20210001","gpa":"3.75"},{"nim":"20210002","gpa":3.60},{"nim":"20210003"}]`), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, GPA("3.75"), rows[0].GPA)
	assert.Equal(t, GPA("3.60"), rows[1].GPA)
	assert.Equal(t, GPA(""), rows[2].GPA)

	var bad DegreeData
	assert.Error(t, json.Unmarshal([]byte(`{"gpa":true}`), &bad))
}

func TestGPAUnmarshalYAML(t *testing.T) {
	var rows []DegreeData
	err := yaml.Unmarshal([]byte("- nim: \"20210001\"\n  gpa: \"3.75\"\n- nim: \"20210002\"\n  gpa: 3.60\n- nim: \"20210003\"\n"), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "20210001", rows[0].StudentID)
	assert.Equal(t, GPA("3.75"), rows[0].GPA)
	assert.Equal(t, GPA("3.60"), rows[1].GPA)
	assert.Equal(t, GPA(""), rows[2].GPA)

	var bad DegreeData
	assert.Error(t, yaml.Unmarshal([]byte("gpa: [1, 2]\n"), &bad))
}

func TestBlockHash(t *testing.T) {
	b := Block{
		Index:        1,
		Transactions: []Transaction{sampleTx()},
		Timestamp:    time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
		PreviousHash: hashing.ZeroHash,
	}
	h := b.CalculateHash()
	assert.Equal(t, HashWithNonce(b.HashPrefix(), 0), h)

	b.Nonce = 7
	assert.NotEqual(t, h, b.CalculateHash())
	assert.Equal(t, HashWithNonce(b.HashPrefix(), 7), b.CalculateHash())
}

func TestBlockJSONRoundTripKeepsHash(t *testing.T) {
	b := Block{
		Index:        3,
		Transactions: []Transaction{sampleTx(), sampleTx()},
		Timestamp:    Now(),
		PreviousHash: hashing.Sum("prev"),
		Nonce:        42,
	}
	b.Hash = b.CalculateHash()

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	var back Block
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, b, back)
	assert.Equal(t, b.Hash, back.CalculateHash())
}

func TestBlockCloneAndDegreeCount(t *testing.T) {
	genesis := sampleTx()
	genesis.Kind = KindSystem
	b := Block{Transactions: []Transaction{genesis, sampleTx()}}
	assert.Equal(t, 1, b.DegreeCount())

	c := b.Clone()
	c.Transactions[1].GPA = "0.00"
	assert.Equal(t, "3.75", b.Transactions[1].GPA)
}
