package filings_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"filings-backend/internal/bootstrap"
	"filings-backend/internal/filings"
	"filings-backend/internal/shared/config"
)

// fakeRegistryServer serves the slice of the registry API the handlers
// exercise end to end.
func fakeRegistryServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/businesses/CP0001191/filings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"filings":[
			{"filingId":111,"name":"annualReport","displayName":"Annual Report (2020)","status":"COMPLETED",
			 "submittedDate":"2020-06-02T19:22:59.003777+00:00","effectiveDate":"2020-06-02T19:22:59.003777+00:00",
			 "commentsLink":"` + srv.URL + `/c/111","documentsLink":"` + srv.URL + `/d/111"},
			{"filingId":112,"name":"changeOfDirectors","displayName":"Director Change","status":"PAID",
			 "submittedDate":"2099-05-01T00:00:00+00:00","effectiveDate":"2099-05-01T00:00:00+00:00",
			 "isFutureEffective":true}
		]}`))
	})
	mux.HandleFunc("/c/111", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			var body struct {
				Comment filings.Comment `json:"comment"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			body.Comment.Timestamp = "2020-07-01T00:00:00+00:00"
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(body)
			return
		}
		w.Write([]byte(`{"comments":[
			{"comment":{"comment":"older","timestamp":"2020-06-01T00:00:00+00:00"}},
			{"comment":{"comment":"newer","timestamp":"2020-06-15T00:00:00+00:00"}}
		]}`))
	})
	mux.HandleFunc("/d/111", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents":{
			"legalFilings":[{"annualReport":"` + srv.URL + `/doc/annual"}],
			"receipt":"` + srv.URL + `/doc/receipt"
		}}`))
	})
	mux.HandleFunc("/doc/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("not really a pdf"))
	})

	return srv
}

func buildApp(t *testing.T, registryURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:8081"},
		RegistryAPIURL:  registryURL,
		Env:             "dev",
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func addSessionHeaders(req *http.Request, staff bool) {
	req.Header.Set("X-Business-Id", "CP0001191")
	if staff {
		req.Header.Set("X-Staff", "true")
	}
}

func TestListFilings(t *testing.T) {
	router := buildApp(t, fakeRegistryServer(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filings", nil)
	addSessionHeaders(req, false)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Filings []*filings.Filing `json:"filings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Filings) != 2 {
		t.Fatalf("expected 2 filings, got %d", len(body.Filings))
	}
	if body.Filings[0].DisplayName != "Annual Report (2020)" {
		t.Fatalf("unexpected first filing: %+v", body.Filings[0])
	}
}

func TestListFilingsRequiresIdentity(t *testing.T) {
	router := buildApp(t, fakeRegistryServer(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filings", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestListFilingsRegistryDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	router := buildApp(t, srv.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filings", nil)
	addSessionHeaders(req, false)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPendingFutureEffective(t *testing.T) {
	router := buildApp(t, fakeRegistryServer(t).URL)

	// Populate the history first.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/filings", nil)
	addSessionHeaders(req, false)
	router.ServeHTTP(httptest.NewRecorder(), req)

	reqPending := httptest.NewRequest(http.MethodGet, "/api/v1/filings/pending", nil)
	addSessionHeaders(reqPending, false)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, reqPending)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Pending bool `json:"pendingFutureEffective"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Pending {
		t.Fatalf("expected a pending future-effective filing")
	}
}

func TestToggleLoadsDetailAndDownload(t *testing.T) {
	router := buildApp(t, fakeRegistryServer(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filings", nil)
	addSessionHeaders(req, false)
	router.ServeHTTP(httptest.NewRecorder(), req)

	reqToggle := httptest.NewRequest(http.MethodPost, "/api/v1/filings/0/toggle", nil)
	addSessionHeaders(reqToggle, false)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, reqToggle)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Panel  int             `json:"panel"`
		Filing *filings.Filing `json:"filing"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Panel != 0 || body.Filing == nil {
		t.Fatalf("expected expanded panel 0 with filing, got %+v", body)
	}
	if len(body.Filing.Comments) != 2 || body.Filing.Comments[0].Comment != "newer" {
		t.Fatalf("expected comments newest first, got %+v", body.Filing.Comments)
	}
	if len(body.Filing.Documents) != 2 {
		t.Fatalf("expected 2 reconstructed documents, got %+v", body.Filing.Documents)
	}
	if body.Filing.Documents[0].Title != "Annual Report (2020)" {
		t.Fatalf("unexpected primary document: %+v", body.Filing.Documents[0])
	}

	// Download the first reconstructed document.
	reqDl := httptest.NewRequest(http.MethodGet, "/api/v1/filings/0/documents/0/download", nil)
	addSessionHeaders(reqDl, false)
	respDl := httptest.NewRecorder()
	router.ServeHTTP(respDl, reqDl)

	if respDl.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respDl.Code, respDl.Body.String())
	}
	disposition := respDl.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "CP0001191 Annual Report (2020) - 2020-06-02.pdf") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	if respDl.Body.String() != "not really a pdf" {
		t.Fatalf("unexpected payload %q", respDl.Body.String())
	}
	// Not a parseable PDF, so no page-count header.
	if got := respDl.Header().Get("X-Document-Pages"); got != "" {
		t.Fatalf("expected no page header, got %q", got)
	}
}

func TestToggleUnknownIndex(t *testing.T) {
	router := buildApp(t, fakeRegistryServer(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filings", nil)
	addSessionHeaders(req, false)
	router.ServeHTTP(httptest.NewRecorder(), req)

	reqToggle := httptest.NewRequest(http.MethodPost, "/api/v1/filings/9/toggle", nil)
	addSessionHeaders(reqToggle, false)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, reqToggle)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestAddCommentStaffOnly(t *testing.T) {
	router := buildApp(t, fakeRegistryServer(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filings", nil)
	addSessionHeaders(req, false)
	router.ServeHTTP(httptest.NewRecorder(), req)

	reqComment := httptest.NewRequest(http.MethodPost, "/api/v1/filings/0/comments", strings.NewReader(`{"comment":"needs review"}`))
	reqComment.Header.Set("Content-Type", "application/json")
	addSessionHeaders(reqComment, false)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, reqComment)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestAddCommentAndAudit(t *testing.T) {
	router := buildApp(t, fakeRegistryServer(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filings", nil)
	addSessionHeaders(req, true)
	router.ServeHTTP(httptest.NewRecorder(), req)

	reqComment := httptest.NewRequest(http.MethodPost, "/api/v1/filings/0/comments", strings.NewReader(`{"comment":"needs review"}`))
	reqComment.Header.Set("Content-Type", "application/json")
	addSessionHeaders(reqComment, true)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, reqComment)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Comment filings.Comment `json:"comment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Comment.Comment != "needs review" {
		t.Fatalf("unexpected created comment: %+v", created.Comment)
	}

	reqAudit := httptest.NewRequest(http.MethodGet, "/api/v1/filings/comments/audit", nil)
	addSessionHeaders(reqAudit, true)
	respAudit := httptest.NewRecorder()
	router.ServeHTTP(respAudit, reqAudit)

	if respAudit.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respAudit.Code)
	}
	var audit struct {
		Comments []struct {
			Text string
		} `json:"comments"`
	}
	if err := json.NewDecoder(respAudit.Body).Decode(&audit); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	if len(audit.Comments) != 1 || audit.Comments[0].Text != "needs review" {
		t.Fatalf("unexpected audit: %+v", audit.Comments)
	}
}

func TestDownloadBeforeExpandIs404(t *testing.T) {
	router := buildApp(t, fakeRegistryServer(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filings", nil)
	addSessionHeaders(req, false)
	router.ServeHTTP(httptest.NewRecorder(), req)

	reqDl := httptest.NewRequest(http.MethodGet, "/api/v1/filings/0/documents/0/download", nil)
	addSessionHeaders(reqDl, false)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, reqDl)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestHealth(t *testing.T) {
	router := buildApp(t, fakeRegistryServer(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}
