package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhnp/degreechain/internal/ledger"
	"github.com/thanhnp/degreechain/internal/models"
)

const annaJSON = `{"nim":"20210001","name":"Anna","degree":"BSc","major":"CS","gpa":"3.75","graduation_date":"2024-06-15"}`

func newTestRouter(t *testing.T) (*Router, *ledger.Ledger) {
	t.Helper()
	reg := prometheus.NewRegistry()
	l, err := ledger.New(ledger.Options{Difficulty: 1, Metrics: ledger.NewMetrics(reg)})
	require.NoError(t, err)
	r := NewRouter(l, Options{
		VerificationURL: "http://verify.example/verify",
		QRSize:          128,
		MineTimeout:     5 * time.Second,
		Gatherer:        reg,
	})
	return r, l
}

func do(r *Router, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSubmitMineVerify(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/degrees", annaJSON)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var submitted struct {
		TransactionID string `json:"transaction_id"`
		DocumentHash  string `json:"document_hash"`
	}
	decode(t, w, &submitted)
	assert.Len(t, submitted.TransactionID, 16)
	assert.Len(t, submitted.DocumentHash, 64)

	w = do(r, http.MethodGet, "/api/v1/pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(r, http.MethodPost, "/api/v1/mine", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var mined struct {
		Sealed     bool   `json:"sealed"`
		BlockIndex int    `json:"block_index"`
		TxCount    int    `json:"tx_count"`
		Hash       string `json:"hash"`
	}
	decode(t, w, &mined)
	assert.True(t, mined.Sealed)
	assert.Equal(t, 1, mined.BlockIndex)
	assert.Equal(t, 1, mined.TxCount)
	assert.True(t, strings.HasPrefix(mined.Hash, "0"))

	w = do(r, http.MethodGet, "/api/v1/degrees/verify?hash="+submitted.DocumentHash+"&student_id=20210001", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res models.VerificationResult
	decode(t, w, &res)
	assert.True(t, res.Verified)
	assert.Equal(t, 1, res.BlockIndex)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, "Anna", res.Transaction.StudentName)

	w = do(r, http.MethodGet, "/api/v1/degrees/verify?hash="+submitted.DocumentHash+"&student_id=20210002", "")
	decode(t, w, &res)
	assert.False(t, res.Verified)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/degrees/verify?hash=abc&student_id=20210001", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/degrees/verify?hash="+strings.Repeat("z", 64)+"&student_id=20210001", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/degrees/verify?student_id=20210001", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitValidationError(t *testing.T) {
	r, l := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/degrees", `{"nim":"123","name":"Bob","gpa":"3.0"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	w = do(r, http.MethodPost, "/api/v1/degrees", `{"nim":"20210001","name":"Bob","gpa":"4.5"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/degrees", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, l.Pending())
}

func TestSubmitBulk(t *testing.T) {
	r, l := newTestRouter(t)

	body := `[
		{"nim":"20210001","name":"Anna","gpa":3.5},
		{"nim":"12","name":"Short"},
		{"nim":"20210003","name":"Cara","gpa":"2.9"}
	]`
	w := do(r, http.MethodPost, "/api/v1/degrees/bulk", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Accepted       int                 `json:"accepted"`
		Rejected       int                 `json:"rejected"`
		TransactionIDs []string            `json:"transaction_ids"`
		Results        []ledger.BulkResult `json:"results"`
	}
	decode(t, w, &out)
	assert.Equal(t, 2, out.Accepted)
	assert.Equal(t, 1, out.Rejected)
	assert.Len(t, out.TransactionIDs, 2)
	require.Len(t, out.Results, 3)
	assert.NotEmpty(t, out.Results[1].Error)
	assert.Len(t, l.Pending(), 2)

	w = do(r, http.MethodPost, "/api/v1/degrees/bulk", `{"nim":"20210001"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMineEmptyPendingConflict(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/api/v1/mine", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStudentRoutes(t *testing.T) {
	r, l := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/students/abc/degrees", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/students/20210001/degrees", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/students/20210001/qr", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(r, http.MethodPost, "/api/v1/degrees", annaJSON)
	_, err := l.MinePending(context.Background())
	require.NoError(t, err)

	w = do(r, http.MethodGet, "/api/v1/students/20210001/degrees", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Count   int                   `json:"count"`
		Degrees []models.DegreeRecord `json:"degrees"`
	}
	decode(t, w, &out)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, 1, out.Degrees[0].BlockIndex)

	w = do(r, http.MethodGet, "/api/v1/students/20210001/qr", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestChainRoutes(t *testing.T) {
	r, l := newTestRouter(t)
	do(r, http.MethodPost, "/api/v1/degrees", annaJSON)
	_, err := l.MinePending(context.Background())
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/api/v1/chain", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum models.Summary
	decode(t, w, &sum)
	assert.Equal(t, 2, sum.TotalBlocks)
	assert.Equal(t, 1, sum.DegreeTransactions)
	assert.Equal(t, 1, sum.Difficulty)

	w = do(r, http.MethodGet, "/api/v1/chain/validate", "")
	require.Equal(t, http.StatusOK, w.Code)
	var v models.ValidityResult
	decode(t, w, &v)
	assert.True(t, v.Valid)

	w = do(r, http.MethodGet, "/api/v1/chain/blocks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)

	w = do(r, http.MethodGet, "/api/v1/chain/blocks/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var b models.Block
	decode(t, w, &b)
	assert.Equal(t, 1, b.Index)
	assert.Equal(t, b.CalculateHash(), b.Hash)

	w = do(r, http.MethodGet, "/api/v1/chain/blocks/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/chain/blocks/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	do(r, http.MethodPost, "/api/v1/degrees", annaJSON)

	w := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "degreechain_submissions_total")
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodOptions, "/api/v1/degrees", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
