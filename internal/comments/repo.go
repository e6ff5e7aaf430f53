package comments

import "context"

// Repo persists comment audit records.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	ListByBusiness(ctx context.Context, businessID string) ([]Record, error)
}
