package comments

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo keeps comment audit records in memory. It backs deployments
// without a database.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string][]Record)}
}

// Create stores an audit record.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.BusinessID] = append(r.records[rec.BusinessID], rec)
	return nil
}

// ListByBusiness returns a business's audit records, newest first.
func (r *MemoryRepo) ListByBusiness(ctx context.Context, businessID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.records[businessID]
	out := make([]Record, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
