package comments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakePoster struct {
	calls   int
	gotLink string
	gotText string
	err     error
}

func (p *fakePoster) PostComment(ctx context.Context, link, text string) (Posted, error) {
	p.calls++
	p.gotLink = link
	p.gotText = text
	if p.err != nil {
		return Posted{}, p.err
	}
	return Posted{
		Comment:              text,
		SubmitterDisplayName: "Staff User",
		Timestamp:            "2020-01-01T00:00:00+00:00",
	}, nil
}

func TestAddPostsAndRecordsAudit(t *testing.T) {
	poster := &fakePoster{}
	repo := NewMemoryRepo()
	svc := NewService(poster, repo)

	created, err := svc.Add(context.Background(), "CP0001191", "comments-111", 111, "  needs review  ", "idir/bgates")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if created.SubmitterDisplayName != "Staff User" {
		t.Fatalf("unexpected created comment: %+v", created)
	}
	if poster.gotLink != "comments-111" || poster.gotText != "needs review" {
		t.Fatalf("unexpected post: link=%q text=%q", poster.gotLink, poster.gotText)
	}

	audit, err := repo.ListByBusiness(context.Background(), "CP0001191")
	if err != nil {
		t.Fatalf("ListByBusiness: %v", err)
	}
	if len(audit) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(audit))
	}
	rec := audit[0]
	if rec.FilingID != 111 || rec.Text != "needs review" || rec.SubmitterID != "idir/bgates" {
		t.Fatalf("unexpected audit record: %+v", rec)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("audit record missing id or timestamp: %+v", rec)
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name string
		link string
		text string
		want error
	}{
		{name: "empty text", link: "comments-111", text: "   ", want: ErrInvalidInput},
		{name: "oversized text", link: "comments-111", text: strings.Repeat("a", maxCommentLength+1), want: ErrInvalidInput},
		{name: "no comments link", link: "", text: "x", want: ErrNoCommentsLink},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			poster := &fakePoster{}
			svc := NewService(poster, NewMemoryRepo())
			if _, err := svc.Add(context.Background(), "CP0001191", tt.link, 111, tt.text, "s"); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if poster.calls != 0 {
				t.Fatalf("validation failure must not reach the registry")
			}
		})
	}
}

func TestAddRegistryFailureSkipsAudit(t *testing.T) {
	poster := &fakePoster{err: errors.New("registry down")}
	repo := NewMemoryRepo()
	svc := NewService(poster, repo)

	if _, err := svc.Add(context.Background(), "CP0001191", "comments-111", 111, "x", "s"); err == nil {
		t.Fatalf("expected the registry error to propagate")
	}
	audit, _ := repo.ListByBusiness(context.Background(), "CP0001191")
	if len(audit) != 0 {
		t.Fatalf("no audit row on registry failure, got %d", len(audit))
	}
}

type failingRepo struct{}

func (failingRepo) Create(ctx context.Context, rec Record) error { return errors.New("db down") }
func (failingRepo) ListByBusiness(ctx context.Context, businessID string) ([]Record, error) {
	return nil, errors.New("db down")
}

func TestAddAuditWriteFailureIsBestEffort(t *testing.T) {
	poster := &fakePoster{}
	svc := NewService(poster, failingRepo{})

	if _, err := svc.Add(context.Background(), "CP0001191", "comments-111", 111, "x", "s"); err != nil {
		t.Fatalf("audit failure must not fail the add: %v", err)
	}
}

func TestMemoryRepoListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	ctx := context.Background()

	for i, created := range []time.Time{now.Add(-2 * time.Hour), now, now.Add(-time.Hour)} {
		rec := Record{ID: string(rune('a' + i)), BusinessID: "CP0001191", Text: "c", CreatedAt: created}
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListByBusiness(ctx, "CP0001191")
	if err != nil {
		t.Fatalf("ListByBusiness: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) || !got[1].CreatedAt.After(got[2].CreatedAt) {
		t.Fatalf("expected newest first, got %+v", got)
	}
}
