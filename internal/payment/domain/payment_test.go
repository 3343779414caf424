package domain_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/payment-status-service/internal/payment/domain"
)

func TestStatusChecker_IsTransactionCompleted(t *testing.T) {
	t.Parallel()

	checker := domain.NewStatusChecker()

	assert.True(t, checker.IsCompleted(true), "transaction should be completed")
}

func TestStatusChecker_IsTransactionNotCompleted(t *testing.T) {
	t.Parallel()

	checker := domain.NewStatusChecker()

	assert.False(t, checker.IsCompleted(false), "transaction should not be completed")
}

func TestStatusChecker_ReturnsInputForEveryFlag(t *testing.T) {
	t.Parallel()

	checker := domain.NewStatusChecker()
	for _, flag := range []bool{true, false} {
		assert.Equal(t, flag, checker.IsCompleted(flag))
		assert.NotPanics(t, func() { checker.IsCompleted(flag) })
	}
}

func TestStatusChecker_RepeatedCallsAgree(t *testing.T) {
	t.Parallel()

	checker := domain.NewStatusChecker()
	for i := 0; i < 100; i++ {
		require.True(t, checker.IsCompleted(true))
		require.False(t, checker.IsCompleted(false))
	}
}

func TestStatusChecker_ConcurrentCallers(t *testing.T) {
	t.Parallel()

	checker := domain.NewStatusChecker()

	var wg sync.WaitGroup
	results := make([]bool, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = checker.IsCompleted(i%2 == 0)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, i%2 == 0, got)
	}
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.StatusCompleted, domain.StatusOf(true))
	assert.Equal(t, domain.StatusNotCompleted, domain.StatusOf(false))
}

func TestNewCheck_NormalizesToUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, loc)

	c := domain.NewCheck("chk-1", "txn-1", true, at)

	assert.Equal(t, "chk-1", c.ID)
	assert.Equal(t, "txn-1", c.TransactionID)
	assert.True(t, c.Completed)
	assert.Equal(t, domain.StatusCompleted, c.Status)
	assert.Equal(t, time.UTC, c.CheckedAt.Location())
	assert.True(t, at.Equal(c.CheckedAt))
}

func TestEventFor(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	eventType, ev := domain.EventFor(domain.NewCheck("chk-1", "txn-1", true, at))
	assert.Equal(t, "TransactionCompleted", eventType)
	assert.Equal(t, domain.TransactionCompleted{CheckID: "chk-1", TransactionID: "txn-1", CheckedAt: at}, ev)

	eventType, ev = domain.EventFor(domain.NewCheck("chk-2", "txn-2", false, at))
	assert.Equal(t, "TransactionNotCompleted", eventType)
	assert.Equal(t, domain.TransactionNotCompleted{CheckID: "chk-2", TransactionID: "txn-2", CheckedAt: at}, ev)
}
