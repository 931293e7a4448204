package repository

import (
	"context"
	"fmt"

	"github.com/vanshika/orders/backend/internal/domain"
	"github.com/vanshika/orders/backend/internal/graph"
)

// GraphRepository stores transactions as nodes linked to the user that
// initiated them.
type GraphRepository struct {
	client graph.Client
}

// NewGraphRepository instantiates a GraphRepository backed by client.
func NewGraphRepository(client graph.Client) *GraphRepository {
	return &GraphRepository{client: client}
}

func (r *GraphRepository) Store(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	assignID(tx)
	params := map[string]any{
		"transactionId": tx.ID,
		"userId":        tx.UserID,
		"props":         transactionProperties(tx),
	}
	if _, err := r.client.ExecuteWrite(ctx, storeTransactionCypher, params); err != nil {
		return nil, fmt.Errorf("store transaction %d: %w", tx.ID, err)
	}
	return tx, nil
}

func (r *GraphRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	res, err := r.client.ExecuteRead(ctx, findTransactionCypher, map[string]any{"transactionId": id})
	if err != nil {
		return nil, fmt.Errorf("find transaction %d: %w", id, err)
	}
	record, ok := res.First()
	if !ok {
		return nil, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}
	props, err := record.Map("transaction")
	if err != nil {
		return nil, fmt.Errorf("find transaction %d: %w", id, err)
	}
	return transactionFromProperties(props)
}

func (r *GraphRepository) Ping(ctx context.Context) error {
	return r.client.VerifyConnectivity(ctx)
}

func transactionProperties(tx *domain.Transaction) map[string]any {
	snap := tx.Snapshot()
	props := map[string]any{
		"userId":        snap.UserID,
		"order":         rawToString(snap.Order),
		"paymentMethod": snap.PaymentMethod,
		"payment":       rawToString(snap.Payment),
		"status":        int64(snap.Status),
		"statusName":    snap.Status.String(),
		"fraudStatus":   snap.FraudStatus,
		"startTime":     snap.TransactionStartTime,
		"endTime":       nil,
	}
	if snap.TransactionEndTime != nil {
		props["endTime"] = *snap.TransactionEndTime
	}
	return props
}

func transactionFromProperties(props map[string]any) (*domain.Transaction, error) {
	id, ok := toInt64(props["transactionId"])
	if !ok {
		return nil, fmt.Errorf("graph node has no transactionId")
	}
	status, _ := toInt64(props["status"])
	start, _ := toInt64(props["startTime"])
	fraud, _ := props["fraudStatus"].(bool)

	snap := domain.Snapshot{
		TransactionID:        id,
		UserID:               toString(props["userId"]),
		Order:                stringToRaw(toString(props["order"])),
		PaymentMethod:        toString(props["paymentMethod"]),
		Payment:              stringToRaw(toString(props["payment"])),
		Status:               domain.Status(status),
		FraudStatus:          fraud,
		TransactionStartTime: start,
	}
	if end, ok := toInt64(props["endTime"]); ok {
		snap.TransactionEndTime = &end
	}
	return domain.FromSnapshot(snap)
}

const storeTransactionCypher = `
MERGE (t:Transaction {transactionId: $transactionId})
SET t += $props
MERGE (u:User {userId: $userId})
MERGE (u)-[:INITIATED]->(t)
RETURN t.transactionId AS transactionId
`

const findTransactionCypher = `
MATCH (t:Transaction {transactionId: $transactionId})
RETURN t {.*} AS transaction
`
