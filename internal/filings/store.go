package filings

import (
	"context"
	"sort"
	"sync"
	"time"

	"filings-backend/internal/shared/telemetry"
)

// RegistryAPI is the slice of the remote registry the history needs.
type RegistryAPI interface {
	Filings(ctx context.Context, identifier string) ([]*Filing, error)
	Comments(ctx context.Context, link string) ([]CommentEnvelope, error)
	Documents(ctx context.Context, link string) (RawDocuments, error)
}

// Identity carries the session's business identity: a permanent business
// identifier or a temporary registration number (mutually exclusive).
// Role flags are request-scoped and passed per call; a History outlives
// the session that created it, so no viewer role is ever cached here.
type Identity struct {
	BusinessID string
	TempRegNum string
}

// Identifier resolves the path identifier for registry calls. Exactly
// one of the two identifiers must be set; the permanent one wins when
// both are present.
func (id Identity) Identifier() (string, error) {
	if id.BusinessID != "" {
		return id.BusinessID, nil
	}
	if id.TempRegNum != "" {
		return id.TempRegNum, nil
	}
	return "", ErrMissingIdentifier
}

// History holds the filing history of one business: the fetched record
// list, the single expanded panel, and the filing targeted by an open
// comment dialog. It is the sole mutator of its records.
type History struct {
	api      RegistryAPI
	identity Identity

	mu      sync.Mutex
	filings []*Filing
	panel   int // index of the expanded item, -1 when all collapsed
	current *Filing

	// docStaff records the viewer role each filing's documents were
	// reconstructed under, keyed by filing ID. Court-order titles differ
	// by role, so a different viewer forces a rebuild.
	docStaff map[int64]bool

	loadingAll      bool
	loadingOne      bool
	loadingOneIndex int
}

// NewHistory constructs an empty History for the given identity.
func NewHistory(api RegistryAPI, identity Identity) *History {
	return &History{
		api:             api,
		identity:        identity,
		panel:           -1,
		docStaff:        make(map[int64]bool),
		loadingOneIndex: -1,
	}
}

// Identity returns the session identity this history was built for.
func (h *History) Identity() Identity { return h.identity }

// LoadFilings fetches the filing list from the registry and replaces any
// prior list wholesale. The expanded panel and current filing reset with
// the list. A missing identifier fails without touching stored state.
func (h *History) LoadFilings(ctx context.Context) ([]*Filing, error) {
	identifier, err := h.identity.Identifier()
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.loadingAll = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.loadingAll = false
		h.mu.Unlock()
	}()

	records, err := h.api.Filings(ctx, identifier)
	if err != nil {
		return nil, err
	}

	// Partially-formed records the API sends during transient states
	// are logged once here; the visibility filter itself stays silent.
	for _, f := range records {
		if !displayable(f) {
			telemetry.Warn("filings.invalid_record_dropped", map[string]any{
				"business_id": h.identity.BusinessID,
				"filing":      f,
			})
		}
	}

	// Records arrive with comments/documents absent; decoding leaves
	// those nil, which is the not-yet-loaded state downstream relies on.
	h.mu.Lock()
	h.filings = records
	h.panel = -1
	h.current = nil
	h.docStaff = make(map[int64]bool)
	h.mu.Unlock()
	return records, nil
}

// Filings returns the records having every display-required field
// present, in load order. Partially-formed records are dropped, never
// surfaced. Item indexes elsewhere in this package refer to positions
// in this visible list.
func (h *History) Filings() []*Filing {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visibleLocked()
}

// FilingAt returns the visible record at index.
func (h *History) FilingAt(index int) (*Filing, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	visible := h.visibleLocked()
	if index < 0 || index >= len(visible) {
		return nil, ErrNoSuchFiling
	}
	return visible[index], nil
}

func displayable(f *Filing) bool {
	return f != nil && f.Name != "" && f.DisplayName != "" && f.EffectiveDate != "" &&
		f.SubmittedDate != "" && f.Status != ""
}

func (h *History) visibleLocked() []*Filing {
	out := make([]*Filing, 0, len(h.filings))
	for _, f := range h.filings {
		if displayable(f) {
			out = append(out, f)
		}
	}
	return out
}

// Panel returns the index of the expanded item, or -1 when collapsed.
func (h *History) Panel() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.panel
}

// ToggleItem expands or collapses the history item at index. Expanding
// lazily fetches comments and documents in parallel when they have not
// been loaded yet and a link is available. Documents reconstructed for
// a different viewer role are refetched, since court-order titles
// depend on the staff flag. Fetch failures are absorbed (the field
// resets to nil for a later retry) and the panel still opens so
// whatever did load is shown. Re-toggling the open index collapses it
// without any fetch; opening a new index implicitly closes the old one.
func (h *History) ToggleItem(ctx context.Context, index int, staff bool) error {
	h.mu.Lock()
	if index == h.panel {
		h.panel = -1
		h.mu.Unlock()
		return nil
	}
	visible := h.visibleLocked()
	if index < 0 || index >= len(visible) {
		h.mu.Unlock()
		return ErrNoSuchFiling
	}
	f := visible[index]
	needComments := f.Comments == nil && f.CommentsLink != ""
	needDocuments := f.DocumentsLink != "" &&
		(f.Documents == nil || h.docStaff[f.FilingID] != staff)
	h.loadingOne = true
	h.loadingOneIndex = index
	h.mu.Unlock()

	var wg sync.WaitGroup
	if needComments {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.LoadComments(ctx, f)
		}()
	}
	if needDocuments {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.LoadDocuments(ctx, f, staff)
		}()
	}
	wg.Wait()

	h.mu.Lock()
	h.panel = index
	h.loadingOne = false
	h.loadingOneIndex = -1
	h.mu.Unlock()
	return nil
}

// LoadComments fetches and rebuilds f's comment list: the registry's
// per-element {comment: ...} wrapper is flattened and the result sorted
// newest first (timestamp ties keep fetch order). On failure the list
// resets to nil so the next expand retries, and the error is logged but
// not propagated.
func (h *History) LoadComments(ctx context.Context, f *Filing) {
	if f == nil || f.CommentsLink == "" {
		return
	}
	envelopes, err := h.api.Comments(ctx, f.CommentsLink)
	if err != nil {
		telemetry.Error("filings.comments_load_failed", map[string]any{
			"filing_id": f.FilingID,
			"err":       err.Error(),
		})
		h.mu.Lock()
		f.Comments = nil
		h.mu.Unlock()
		return
	}
	comments := make([]Comment, 0, len(envelopes))
	for _, env := range envelopes {
		comments = append(comments, env.Comment)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		ti, _ := parseDate(comments[i].Timestamp)
		tj, _ := parseDate(comments[j].Timestamp)
		return ti.After(tj)
	})
	h.mu.Lock()
	f.Comments = comments
	f.CommentsCount = len(comments)
	h.mu.Unlock()
}

// LoadDocuments fetches f's raw documents resource and reconstructs the
// downloadable document list from it, using the current viewer's staff
// flag. On failure the list resets to nil so the next expand retries;
// errors are logged, never propagated.
func (h *History) LoadDocuments(ctx context.Context, f *Filing, staff bool) {
	if f == nil || f.DocumentsLink == "" {
		return
	}
	identifier, err := h.identity.Identifier()
	if err != nil {
		return
	}
	raw, err := h.api.Documents(ctx, f.DocumentsLink)
	if err != nil {
		telemetry.Error("filings.documents_load_failed", map[string]any{
			"filing_id": f.FilingID,
			"err":       err.Error(),
		})
		h.mu.Lock()
		f.Documents = nil
		delete(h.docStaff, f.FilingID)
		h.mu.Unlock()
		return
	}
	h.mu.Lock()
	ReconstructDocuments(f, identifier, raw, staff)
	h.docStaff[f.FilingID] = staff
	h.mu.Unlock()
}

// SetCurrentFiling marks the filing targeted by an open comment dialog.
func (h *History) SetCurrentFiling(f *Filing) {
	h.mu.Lock()
	h.current = f
	h.mu.Unlock()
}

// CurrentFiling returns the filing targeted by the comment dialog, if any.
func (h *History) CurrentFiling() *Filing {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// ClearCurrentFiling closes the comment dialog. When reload is true and
// the dialog's filing has a comments link, its comments are re-fetched
// so a just-saved comment shows up.
func (h *History) ClearCurrentFiling(ctx context.Context, reload bool) {
	h.mu.Lock()
	f := h.current
	h.current = nil
	h.mu.Unlock()
	if reload && f != nil && f.CommentsLink != "" {
		h.LoadComments(ctx, f)
	}
}

// HasPendingFutureEffective reports whether any paid filing is still
// waiting on a future effective date.
func (h *History) HasPendingFutureEffective(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, f := range h.filings {
		if !IsStatusPaid(f) || !f.IsFutureEffective {
			continue
		}
		if t, ok := parseDate(f.EffectiveDate); ok && t.After(now) {
			return true
		}
	}
	return false
}

// Store owns one History per business identity for the process.
type Store struct {
	api RegistryAPI

	mu        sync.RWMutex
	histories map[string]*History
}

// NewStore constructs a Store backed by the given registry client.
func NewStore(api RegistryAPI) *Store {
	return &Store{api: api, histories: make(map[string]*History)}
}

// History returns the History for the given identity, creating it on
// first use. Identities with no usable identifier fail here so callers
// surface the error before any registry call.
func (s *Store) History(identity Identity) (*History, error) {
	key, err := identity.Identifier()
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	h, ok := s.histories[key]
	s.mu.RUnlock()
	if ok {
		return h, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.histories[key]; ok {
		return h, nil
	}
	h = NewHistory(s.api, identity)
	s.histories[key] = h
	return h, nil
}
