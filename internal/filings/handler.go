package filings

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"filings-backend/internal/comments"
	"filings-backend/internal/shared/server/middleware"
	"filings-backend/internal/shared/server/respond"
)

// DocumentFetcher downloads a reconstructed document's payload.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, link string) ([]byte, string, error)
}

// Handler wires HTTP handlers to the filing history store.
type Handler struct {
	Store    *Store
	Comments *comments.Service
	Fetcher  DocumentFetcher
}

// NewHandler constructs a Handler.
func NewHandler(store *Store, commentSvc *comments.Service, fetcher DocumentFetcher) *Handler {
	return &Handler{Store: store, Comments: commentSvc, Fetcher: fetcher}
}

// RegisterRoutes attaches filing-history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/filings", h.list)
	rg.GET("/filings/pending", h.pending)
	rg.POST("/filings/:index/toggle", h.toggle)
	rg.POST("/filings/:index/comments", h.addComment)
	rg.GET("/filings/comments/audit", h.commentAudit)
	rg.GET("/filings/:index/documents/:docIndex/download", h.download)
}

func identityFromContext(c *gin.Context) Identity {
	return Identity{
		BusinessID: middleware.BusinessIDFromContext(c),
		TempRegNum: middleware.TempRegNumberFromContext(c),
	}
}

// history resolves the session's History, mapping a missing identifier
// to a 400. A nil return means the response was already written.
func (h *Handler) history(c *gin.Context) *History {
	hist, err := h.Store.History(identityFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "missing_identifier", "no business identifier or temporary registration number in session", nil)
		return nil
	}
	return hist
}

type listResponse struct {
	Filings []*Filing `json:"filings"`
}

func (h *Handler) list(c *gin.Context) {
	hist := h.history(c)
	if hist == nil {
		return
	}

	refresh := c.Query("refresh") == "1"
	if refresh || len(hist.Filings()) == 0 {
		if _, err := hist.LoadFilings(c.Request.Context()); err != nil {
			if errors.Is(err, ErrMissingIdentifier) {
				respond.Error(c, http.StatusBadRequest, "missing_identifier", "no business identifier or temporary registration number in session", nil)
				return
			}
			respond.Error(c, http.StatusBadGateway, "registry_unavailable", "failed to load filing history", nil)
			return
		}
	}

	respond.OK(c, listResponse{Filings: hist.Filings()})
}

func (h *Handler) pending(c *gin.Context) {
	hist := h.history(c)
	if hist == nil {
		return
	}
	respond.OK(c, gin.H{"pendingFutureEffective": hist.HasPendingFutureEffective(time.Now().UTC())})
}

type toggleResponse struct {
	Panel  int     `json:"panel"`
	Filing *Filing `json:"filing,omitempty"`
}

func (h *Handler) toggle(c *gin.Context) {
	hist := h.history(c)
	if hist == nil {
		return
	}
	index, ok := h.indexParam(c, "index")
	if !ok {
		return
	}

	if err := hist.ToggleItem(c.Request.Context(), index, middleware.IsStaffFromContext(c)); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "filing not found", nil)
		return
	}

	resp := toggleResponse{Panel: hist.Panel()}
	if resp.Panel >= 0 {
		if f, err := hist.FilingAt(resp.Panel); err == nil {
			resp.Filing = f
			c.Set("filingId", f.FilingID)
		}
	}
	respond.OK(c, resp)
}

type addCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

func (h *Handler) addComment(c *gin.Context) {
	if !middleware.IsStaffFromContext(c) {
		respond.Error(c, http.StatusForbidden, "staff_only", "only registry staff may add comments", nil)
		return
	}
	hist := h.history(c)
	if hist == nil {
		return
	}
	index, ok := h.indexParam(c, "index")
	if !ok {
		return
	}
	f, err := hist.FilingAt(index)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "filing not found", nil)
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "comment is required", nil)
		return
	}

	hist.SetCurrentFiling(f)
	created, err := h.Comments.Add(
		c.Request.Context(),
		hist.Identity().BusinessID,
		f.CommentsLink,
		f.FilingID,
		req.Comment,
		middleware.UserIDFromContext(c),
	)
	if err != nil {
		hist.ClearCurrentFiling(c.Request.Context(), false)
		switch {
		case errors.Is(err, comments.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid comment", nil)
		case errors.Is(err, comments.ErrNoCommentsLink):
			respond.Error(c, http.StatusConflict, "no_comments_link", "filing does not accept comments", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "registry_unavailable", "failed to save comment", nil)
		}
		return
	}

	// Closing the dialog with reload pulls the fresh comment list onto
	// the record.
	hist.ClearCurrentFiling(c.Request.Context(), true)
	c.Set("filingId", f.FilingID)
	respond.Created(c, gin.H{"comment": created})
}

func (h *Handler) commentAudit(c *gin.Context) {
	if !middleware.IsStaffFromContext(c) {
		respond.Error(c, http.StatusForbidden, "staff_only", "only registry staff may view the comment audit", nil)
		return
	}
	hist := h.history(c)
	if hist == nil {
		return
	}
	records, err := h.Comments.ListAudit(c.Request.Context(), hist.Identity().BusinessID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list comment audit", nil)
		return
	}
	respond.OK(c, gin.H{"comments": records})
}

func (h *Handler) indexParam(c *gin.Context, name string) (int, bool) {
	raw := c.Param(name)
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid filing index", nil)
		return 0, false
	}
	return index, true
}
