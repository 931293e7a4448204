package domain

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *Transaction {
	req := TransactionRequest{
		Order:         json.RawMessage(`{"cost":120}`),
		PaymentMethod: "icici-debit",
		Payment:       json.RawMessage(`{"card":"4111"}`),
	}
	return NewTransaction(req, 42, "user-1", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
}

func TestNewTransaction_StartsPending(t *testing.T) {
	tx := newTestTransaction()

	assert.Equal(t, StatusPending, tx.Status)
	assert.False(t, tx.FraudStatus)
	assert.Nil(t, tx.EndTime)
	assert.Equal(t, int64(42), tx.ID)
}

func TestNewTransaction_CopiesPayloads(t *testing.T) {
	order := json.RawMessage(`{"cost":1}`)
	tx := NewTransaction(TransactionRequest{Order: order}, 1, "u", time.Now())

	order[2] = 'X'
	assert.JSONEq(t, `{"cost":1}`, string(tx.Order))
}

func TestTransaction_PaymentPath(t *testing.T) {
	tx := newTestTransaction()
	end := tx.StartTime.Add(time.Second)

	require.NoError(t, tx.BeginPayment())
	require.NoError(t, tx.CompletePayment(end))

	assert.Equal(t, StatusPaymentComplete, tx.Status)
	require.NotNil(t, tx.EndTime)
	assert.True(t, tx.EndTime.After(tx.StartTime))
	assert.True(t, tx.Status.Terminal())
}

func TestTransaction_FraudPath(t *testing.T) {
	tx := newTestTransaction()

	require.NoError(t, tx.MarkFraudulent())
	assert.True(t, tx.FraudStatus)
	require.NoError(t, tx.BeginAlert())
	require.NoError(t, tx.FailAlert())

	assert.Equal(t, StatusAlertError, tx.Status)
	assert.Nil(t, tx.EndTime)
}

func TestTransaction_RejectsRegression(t *testing.T) {
	tests := []struct {
		name string
		run  func(tx *Transaction) error
	}{
		{"payment after fraud", func(tx *Transaction) error {
			_ = tx.MarkFraudulent()
			return tx.BeginPayment()
		}},
		{"complete without begin", func(tx *Transaction) error {
			return tx.CompletePayment(time.Now())
		}},
		{"fraud after payment started", func(tx *Transaction) error {
			_ = tx.BeginPayment()
			return tx.MarkFraudulent()
		}},
		{"alert twice", func(tx *Transaction) error {
			_ = tx.MarkFraudulent()
			_ = tx.BeginAlert()
			_ = tx.CompleteAlert()
			return tx.FailAlert()
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx := newTestTransaction()
			err := tc.run(tx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
		})
	}
}

func TestTransaction_FailedTransitionKeepsState(t *testing.T) {
	tx := newTestTransaction()
	require.NoError(t, tx.BeginPayment())

	err := tx.MarkFraudulent()
	require.Error(t, err)
	assert.False(t, tx.FraudStatus)
	assert.Equal(t, StatusPaymentInitiated, tx.Status)
}

func TestSnapshot_JSONShape(t *testing.T) {
	tx := newTestTransaction()
	require.NoError(t, tx.BeginPayment())
	require.NoError(t, tx.CompletePayment(tx.StartTime.Add(250*time.Millisecond)))

	raw, err := json.Marshal(tx.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 42, decoded["transactionID"])
	assert.EqualValues(t, 18, decoded["status"])
	assert.Equal(t, "icici-debit", decoded["paymentMethod"])
	assert.EqualValues(t, tx.StartTime.UnixMilli()+250, decoded["transactionEndTime"])

	restored, err := FromSnapshot(tx.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, tx.Status, restored.Status)
	assert.True(t, tx.StartTime.Equal(restored.StartTime))
	require.NotNil(t, restored.EndTime)
	assert.True(t, tx.EndTime.Equal(*restored.EndTime))
}

func TestFromSnapshot_RejectsUnknownStatus(t *testing.T) {
	_, err := FromSnapshot(Snapshot{TransactionID: 1, Status: 99})
	require.Error(t, err)
}

func TestStatus_NamesRoundTrip(t *testing.T) {
	for status := StatusPending; status <= StatusPaymentComplete; status++ {
		parsed, err := ParseStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}
	assert.Equal(t, "TRANSACTION_ALERT_DONE", StatusAlertDone.String())

	_, err := ParseStatus("TRANSACTION_NOPE")
	assert.Error(t, err)
}

func TestNewID_UniqueUnderConcurrency(t *testing.T) {
	const n = 500
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- NewID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, n)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
}
