package consultations

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores consultations in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Consultation
	byOwner map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Consultation),
		byOwner: make(map[string][]string),
	}
}

// Create stores the consultation.
func (r *MemoryRepo) Create(ctx context.Context, consultation Consultation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[consultation.ID] = consultation
	r.byOwner[consultation.OwnerID] = append(r.byOwner[consultation.OwnerID], consultation.ID)
	return nil
}

// GetByID returns the owner's consultation.
func (r *MemoryRepo) GetByID(ctx context.Context, ownerID, id string) (Consultation, error) {
	if err := ctx.Err(); err != nil {
		return Consultation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	consultation, ok := r.byID[id]
	if !ok || consultation.OwnerID != ownerID {
		return Consultation{}, ErrNotFound
	}
	return consultation, nil
}

// ListByOwner returns the owner's consultations, newest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Consultation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	ids := r.byOwner[ownerID]
	items := make([]Consultation, 0, len(ids))
	for _, id := range ids {
		items = append(items, r.byID[id])
	}
	r.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if offset >= len(items) {
		return []Consultation{}, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}
