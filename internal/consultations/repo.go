package consultations

import "context"

// Repo defines persistence operations for consultations. Reads are scoped to
// the owner; another owner's id reads as ErrNotFound.
type Repo interface {
	Create(ctx context.Context, consultation Consultation) error
	GetByID(ctx context.Context, ownerID, id string) (Consultation, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Consultation, error)
}
