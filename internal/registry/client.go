// Package registry wraps the remote business-registry HTTP API.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"filings-backend/internal/comments"
	"filings-backend/internal/filings"
)

// ErrBadResponse indicates a 2xx response missing its expected top-level key.
var ErrBadResponse = errors.New("unexpected registry response shape")

// maxDocumentBytes caps document downloads proxied through this service.
const maxDocumentBytes = 50 << 20

// Client calls the business-registry API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a registry Client. The request timeout defaults
// to 30s and can be overridden with REGISTRY_TIMEOUT_SECONDS.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("REGISTRY_API_URL is required")
	}
	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("REGISTRY_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type filingsEnvelope struct {
	Filings *[]*filings.Filing `json:"filings"`
}

type commentsEnvelope struct {
	Comments *[]filings.CommentEnvelope `json:"comments"`
}

type documentsEnvelope struct {
	Documents *filings.RawDocuments `json:"documents"`
}

type commentBody struct {
	Comment filings.Comment `json:"comment"`
}

// Filings fetches the filing list for a business or temporary
// registration identifier. The registry returns the list in
// reverse-chronological order; it is passed through unsorted.
func (c *Client) Filings(ctx context.Context, identifier string) ([]*filings.Filing, error) {
	var envelope filingsEnvelope
	url := fmt.Sprintf("%s/businesses/%s/filings", c.baseURL, identifier)
	if err := c.getJSON(ctx, url, &envelope); err != nil {
		return nil, err
	}
	if envelope.Filings == nil {
		return nil, fmt.Errorf("filings list for %s: %w", identifier, ErrBadResponse)
	}
	return *envelope.Filings, nil
}

// Comments fetches the raw comment list behind a filing's comments link.
func (c *Client) Comments(ctx context.Context, link string) ([]filings.CommentEnvelope, error) {
	var envelope commentsEnvelope
	if err := c.getJSON(ctx, link, &envelope); err != nil {
		return nil, err
	}
	if envelope.Comments == nil {
		return nil, fmt.Errorf("comments at %s: %w", link, ErrBadResponse)
	}
	return *envelope.Comments, nil
}

// Documents fetches the raw documents resource behind a filing's
// documents link, key order preserved.
func (c *Client) Documents(ctx context.Context, link string) (filings.RawDocuments, error) {
	var envelope documentsEnvelope
	if err := c.getJSON(ctx, link, &envelope); err != nil {
		return nil, err
	}
	if envelope.Documents == nil {
		return nil, fmt.Errorf("documents at %s: %w", link, ErrBadResponse)
	}
	return *envelope.Documents, nil
}

// PostComment creates a staff comment behind a filing's comments link
// and returns the created comment as echoed by the registry.
func (c *Client) PostComment(ctx context.Context, link, text string) (comments.Posted, error) {
	payload, err := json.Marshal(commentBody{Comment: filings.Comment{Comment: text}})
	if err != nil {
		return comments.Posted{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, link, bytes.NewReader(payload))
	if err != nil {
		return comments.Posted{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return comments.Posted{}, fmt.Errorf("post comment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return comments.Posted{}, fmt.Errorf("post comment: registry status %d", resp.StatusCode)
	}

	var created commentBody
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return comments.Posted{}, fmt.Errorf("post comment: decode: %w", err)
	}
	return comments.Posted{
		Comment:              created.Comment.Comment,
		SubmitterDisplayName: created.Comment.SubmitterDisplayName,
		Timestamp:            created.Comment.Timestamp,
	}, nil
}

// FetchDocument downloads the document behind a reconstructed document
// link, returning the payload and its content type.
func (c *Client) FetchDocument(ctx context.Context, link string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/pdf")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch document: registry status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, "", fmt.Errorf("fetch document: read: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return data, contentType, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry get %s: status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("registry get %s: decode: %w", url, err)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-Apikey", c.apiKey)
	}
}
