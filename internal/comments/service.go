package comments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"filings-backend/internal/shared/telemetry"
)

// maxCommentLength matches the registry's comment size limit.
const maxCommentLength = 2000

// poster is the slice of the registry client the service needs.
type poster interface {
	PostComment(ctx context.Context, link, text string) (Posted, error)
}

// Service posts staff comments to the registry and records an audit row
// for each one.
type Service struct {
	Registry poster
	Repo     Repo
}

// NewService constructs a comment Service.
func NewService(registry poster, repo Repo) *Service {
	return &Service{Registry: registry, Repo: repo}
}

// Add posts a comment against a filing's comments link. The registry is
// the system of record; the local audit row is best-effort and its
// failure only logs.
func (s *Service) Add(ctx context.Context, businessID, commentsLink string, filingID int64, text, submitterID string) (Posted, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) > maxCommentLength {
		return Posted{}, ErrInvalidInput
	}
	if commentsLink == "" {
		return Posted{}, ErrNoCommentsLink
	}

	created, err := s.Registry.PostComment(ctx, commentsLink, trimmed)
	if err != nil {
		return Posted{}, err
	}

	rec := Record{
		ID:          uuid.NewString(),
		BusinessID:  businessID,
		FilingID:    filingID,
		Text:        trimmed,
		SubmitterID: submitterID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		telemetry.Error("comments.audit_write_failed", map[string]any{
			"business_id": businessID,
			"filing_id":   filingID,
			"err":         err.Error(),
		})
	}
	return created, nil
}

// ListAudit returns the locally recorded comments for a business.
func (s *Service) ListAudit(ctx context.Context, businessID string) ([]Record, error) {
	return s.Repo.ListByBusiness(ctx, businessID)
}
