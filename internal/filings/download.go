package filings

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ledongthuc/pdf"

	"filings-backend/internal/shared/server/respond"
	"filings-backend/internal/shared/telemetry"
	"filings-backend/internal/shared/util"
)

// download proxies one reconstructed document from the registry to the
// browser, attaching the derived filename. Documents must have been
// loaded (the item expanded) before they can be downloaded.
func (h *Handler) download(c *gin.Context) {
	hist := h.history(c)
	if hist == nil {
		return
	}
	index, ok := h.indexParam(c, "index")
	if !ok {
		return
	}
	docIndex, ok := h.indexParam(c, "docIndex")
	if !ok {
		return
	}

	f, err := hist.FilingAt(index)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "filing not found", nil)
		return
	}
	if f.Documents == nil || docIndex >= len(f.Documents) {
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}
	doc := f.Documents[docIndex]

	filename, err := util.SanitizeFileName(doc.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document filename", nil)
		return
	}

	data, contentType, err := h.Fetcher.FetchDocument(c.Request.Context(), doc.Link)
	if err != nil {
		telemetry.Error("filings.document_download_failed", map[string]any{
			"filing_id": f.FilingID,
			"title":     doc.Title,
			"err":       err.Error(),
		})
		respond.Error(c, http.StatusBadGateway, "registry_unavailable", "failed to download document", nil)
		return
	}

	if pages := pdfPageCount(data); pages > 0 {
		c.Header("X-Document-Pages", strconv.Itoa(pages))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Set("filingId", f.FilingID)
	c.Data(http.StatusOK, contentType, data)
}

// pdfPageCount reports the page count of a PDF payload, or 0 when the
// payload is not a readable PDF. The pdf reader panics on some malformed
// cross-reference tables; the count is advisory, so the panic is
// swallowed.
func pdfPageCount(data []byte) (pages int) {
	defer func() {
		if recover() != nil {
			pages = 0
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return reader.NumPage()
}
