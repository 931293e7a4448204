package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// TransactionRequest is the inbound payload for a single transaction attempt.
type TransactionRequest struct {
	Order         json.RawMessage `json:"order"`
	PaymentMethod string          `json:"paymentMethod"`
	Payment       json.RawMessage `json:"payment"`
}

// Transaction is the aggregate tracked through the processing workflow.
//
// Status must only be changed through the transition methods so that the
// progression stays monotonic.
type Transaction struct {
	ID            int64
	UserID        string
	Order         json.RawMessage
	PaymentMethod string
	Payment       json.RawMessage
	Status        Status
	FraudStatus   bool
	StartTime     time.Time
	EndTime       *time.Time
}

// NewTransaction builds a PENDING transaction from the request. Payloads are
// copied so later changes to the request cannot leak into the aggregate.
func NewTransaction(req TransactionRequest, id int64, userID string, now time.Time) *Transaction {
	return &Transaction{
		ID:            id,
		UserID:        userID,
		Order:         cloneRaw(req.Order),
		PaymentMethod: req.PaymentMethod,
		Payment:       cloneRaw(req.Payment),
		Status:        StatusPending,
		StartTime:     now,
	}
}

// MarkFraudulent flags the transaction and moves it onto the fraud branch.
func (t *Transaction) MarkFraudulent() error {
	if err := t.advance(StatusFraudulent); err != nil {
		return err
	}
	t.FraudStatus = true
	return nil
}

// BeginAlert records that alerting has started.
func (t *Transaction) BeginAlert() error { return t.advance(StatusAlertInitiated) }

// CompleteAlert records a delivered alert.
func (t *Transaction) CompleteAlert() error { return t.advance(StatusAlertDone) }

// FailAlert records an alert that could not be delivered.
func (t *Transaction) FailAlert() error { return t.advance(StatusAlertError) }

// BeginPayment records that the payment processor has been invoked.
func (t *Transaction) BeginPayment() error { return t.advance(StatusPaymentInitiated) }

// CompletePayment records a successful payment concluded at the given time.
func (t *Transaction) CompletePayment(at time.Time) error {
	if err := t.advance(StatusPaymentComplete); err != nil {
		return err
	}
	t.EndTime = &at
	return nil
}

// FailPayment records a failed payment concluded at the given time.
func (t *Transaction) FailPayment(at time.Time) error {
	if err := t.advance(StatusPaymentError); err != nil {
		return err
	}
	t.EndTime = &at
	return nil
}

func (t *Transaction) advance(next Status) error {
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}
	t.Status = next
	return nil
}

// Snapshot is the serialised view of a transaction shared with alert
// consumers, external fraud services and stores.
type Snapshot struct {
	TransactionID        int64           `json:"transactionID"`
	UserID               string          `json:"userID"`
	Order                json.RawMessage `json:"order"`
	PaymentMethod        string          `json:"paymentMethod"`
	Payment              json.RawMessage `json:"payment"`
	Status               Status          `json:"status"`
	FraudStatus          bool            `json:"fraudStatus"`
	TransactionStartTime int64           `json:"transactionStartTime"`
	TransactionEndTime   *int64          `json:"transactionEndTime"`
}

// Snapshot captures the current state of the transaction.
func (t *Transaction) Snapshot() Snapshot {
	snap := Snapshot{
		TransactionID:        t.ID,
		UserID:               t.UserID,
		Order:                cloneRaw(t.Order),
		PaymentMethod:        t.PaymentMethod,
		Payment:              cloneRaw(t.Payment),
		Status:               t.Status,
		FraudStatus:          t.FraudStatus,
		TransactionStartTime: t.StartTime.UnixMilli(),
	}
	if t.EndTime != nil {
		end := t.EndTime.UnixMilli()
		snap.TransactionEndTime = &end
	}
	return snap
}

// FromSnapshot rebuilds a transaction from its serialised form.
func FromSnapshot(s Snapshot) (*Transaction, error) {
	if !s.Status.Valid() {
		return nil, fmt.Errorf("snapshot %d: unknown status %d", s.TransactionID, int(s.Status))
	}
	tx := &Transaction{
		ID:            s.TransactionID,
		UserID:        s.UserID,
		Order:         cloneRaw(s.Order),
		PaymentMethod: s.PaymentMethod,
		Payment:       cloneRaw(s.Payment),
		Status:        s.Status,
		FraudStatus:   s.FraudStatus,
		StartTime:     time.UnixMilli(s.TransactionStartTime).UTC(),
	}
	if s.TransactionEndTime != nil {
		end := time.UnixMilli(*s.TransactionEndTime).UTC()
		tx.EndTime = &end
	}
	return tx, nil
}

var lastID atomic.Int64

// NewID returns a millisecond-based identifier that is unique within the
// process even when several transactions are created in the same millisecond.
func NewID() int64 {
	for {
		now := time.Now().UnixMilli()
		prev := lastID.Load()
		next := now
		if next <= prev {
			next = prev + 1
		}
		if lastID.CompareAndSwap(prev, next) {
			return next
		}
	}
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return bytes.Clone(raw)
}
