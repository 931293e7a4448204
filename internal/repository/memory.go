package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vanshika/orders/backend/internal/domain"
)

// MemoryRepository keeps snapshots in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[int64]domain.Snapshot
}

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[int64]domain.Snapshot)}
}

func (r *MemoryRepository) Store(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	assignID(tx)
	r.mu.Lock()
	r.items[tx.ID] = tx.Snapshot()
	r.mu.Unlock()
	return tx, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	snap, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}
	return domain.FromSnapshot(snap)
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// IDs lists stored transaction ids in ascending order.
func (r *MemoryRepository) IDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
