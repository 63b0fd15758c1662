package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siftlabs/sift/pkg/types"
)

// APIError is a non-2xx response from the Sift API, carrying the status
// code and the detail string from the error body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sift api: %d: %s", e.StatusCode, e.Detail)
}

// Client wraps the Sift HTTP API for easy programmatic usage.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new Sift client for the API at baseURL, for example
// "http://localhost:8000".
func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: 10 * time.Second})
}

// NewWithHTTPClient creates a client using a caller-supplied http.Client,
// for custom transports or timeouts.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// SubmitLead submits a lead under the given idempotency token. When the
// token was already used with an identical body, the previously created
// lead is returned and replayed is true. Reusing the token with a
// different body yields an APIError with status 409.
func (c *Client) SubmitLead(ctx context.Context, token string, payload types.LeadPayload) (lead *types.Lead, replayed bool, err error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/leads", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to submit lead: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, false, readError(resp)
	}

	var out types.Lead
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("failed to decode lead: %w", err)
	}
	return &out, resp.StatusCode == http.StatusOK, nil
}

// GetLead fetches a lead by ID.
func (c *Client) GetLead(ctx context.Context, id uuid.UUID) (*types.Lead, error) {
	var lead types.Lead
	if err := c.get(ctx, "/leads/"+id.String(), &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetInsight fetches the triage insight for a lead. A lead whose note has
// not been classified yet returns an APIError with status 404.
func (c *Client) GetInsight(ctx context.Context, leadID uuid.UUID) (*types.Insight, error) {
	var insight types.Insight
	if err := c.get(ctx, "/leads/"+leadID.String()+"/insight", &insight); err != nil {
		return nil, err
	}
	return &insight, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readError(resp *http.Response) error {
	var body struct {
		Detail string `json:"detail"`
	}
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		_ = json.Unmarshal(raw, &body)
	}
	if body.Detail == "" {
		body.Detail = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: body.Detail}
}
