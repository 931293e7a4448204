// Package repository persists transactions. Every backend stores the
// transaction snapshot keyed by transaction id.
package repository

import (
	"context"
	"encoding/json"

	"github.com/vanshika/orders/backend/internal/domain"
)

// Repository is implemented by every transaction store.
type Repository interface {
	// Store upserts the current state of tx, assigning an id first when tx
	// has none, and returns tx.
	Store(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	// FindByID returns domain.ErrNotFound when no transaction has id.
	FindByID(ctx context.Context, id int64) (*domain.Transaction, error)
	Ping(ctx context.Context) error
}

func assignID(tx *domain.Transaction) {
	if tx.ID == 0 {
		tx.ID = domain.NewID()
	}
}

func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	return string(raw)
}

func stringToRaw(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}

func toInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}
