package autominer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhnp/degreechain/internal/ledger"
	"github.com/thanhnp/degreechain/internal/models"
)

type countingSealer struct {
	calls atomic.Int32
}

func (s *countingSealer) MinePending(ctx context.Context) (models.MineResult, error) {
	s.calls.Add(1)
	return models.MineResult{}, ledger.ErrEmptyPending
}

func TestMinerSealsPending(t *testing.T) {
	l, err := ledger.New(ledger.Options{Difficulty: 1})
	require.NoError(t, err)

	_, err = l.SubmitDegree(models.DegreeData{StudentID: "20210001", Name: "Anna", GPA: "3.75"})
	require.NoError(t, err)

	m := New(l, 10*time.Millisecond, time.Second)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	require.Eventually(t, func() bool {
		return l.Summary().TotalBlocks == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, l.Pending())
	assert.True(t, l.ValidateChain().Valid)
}

func TestMinerStartStop(t *testing.T) {
	s := &countingSealer{}
	m := New(s, 5*time.Millisecond, 0)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Start(context.Background()), "second start is a no-op")

	require.Eventually(t, func() bool { return s.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Stop())

	after := s.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, s.calls.Load(), "no rounds after Stop")
	assert.NoError(t, m.Stop(), "second stop is a no-op")
}

func TestMinerRejectsZeroInterval(t *testing.T) {
	assert.Error(t, New(&countingSealer{}, 0, 0).Start(context.Background()))
}
