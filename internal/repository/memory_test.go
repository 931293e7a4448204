package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/orders/backend/internal/domain"
)

func TestMemoryRepository_StoreAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	tx := completedTransaction(t, 10)

	_, err := repo.Store(context.Background(), tx)
	require.NoError(t, err)

	got, err := repo.FindByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, tx.Snapshot(), got.Snapshot())
	assert.NotSame(t, tx, got)
}

func TestMemoryRepository_StoreIsASnapshot(t *testing.T) {
	repo := NewMemoryRepository()
	tx := domain.NewTransaction(domain.TransactionRequest{}, 11, "u", completedTransaction(t, 1).StartTime)

	_, err := repo.Store(context.Background(), tx)
	require.NoError(t, err)
	require.NoError(t, tx.BeginPayment())

	got, err := repo.FindByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)

	_, err = repo.Store(context.Background(), tx)
	require.NoError(t, err)
	got, err = repo.FindByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentInitiated, got.Status)
	assert.Equal(t, []int64{11}, repo.IDs())
}

func TestMemoryRepository_AssignsID(t *testing.T) {
	repo := NewMemoryRepository()
	stored, err := repo.Store(context.Background(), completedTransaction(t, 0))
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
}

func TestMemoryRepository_NotFound(t *testing.T) {
	_, err := NewMemoryRepository().FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewMemoryRepository()

	_, err := repo.Store(ctx, completedTransaction(t, 1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Error(t, repo.Ping(ctx))
}
