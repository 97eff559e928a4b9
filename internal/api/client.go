// Package api is the HTTP client for the procurement backend. All
// compute-heavy work (LLM intake, recommendations, vendor research, RFQ
// rendering) happens server-side; this client only moves JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the procurement backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL. The timeout bounds each
// request end to end; recommendation calls can run for over a minute.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// apiError is the backend's standard error body.
type apiError struct {
	Error string `json:"error"`
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// StartIntake submits the free-text need and opens a session.
func (c *Client) StartIntake(ctx context.Context, text string) (*IntakeResult, error) {
	var out IntakeResult
	err := c.do(ctx, http.MethodPost, "/api/intake_recommendations", IntakeRequest{Text: text}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitFollowups sends the user's answers to the clarifying questions.
func (c *Client) SubmitFollowups(ctx context.Context, sessionID string, answers map[string]string) (*IntakeResult, error) {
	var out IntakeResult
	req := FollowupsRequest{SessionID: sessionID, Answers: answers}
	if err := c.do(ctx, http.MethodPost, "/api/submit_followups", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession fetches the server-side session state.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionState, error) {
	var out SessionState
	if err := c.do(ctx, http.MethodGet, "/api/session/"+sessionID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchAnswers updates stored answers without re-running the intake.
func (c *Client) PatchAnswers(ctx context.Context, sessionID string, answers map[string]string) (*SessionState, error) {
	var out SessionState
	path := "/api/session/" + sessionID + "/answers"
	if err := c.do(ctx, http.MethodPatch, path, AnswersPatch{Answers: answers}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Regenerate re-runs summary and recommendations for the session.
func (c *Client) Regenerate(ctx context.Context, sessionID string) (*SessionState, error) {
	var out SessionState
	path := "/api/session/" + sessionID + "/regenerate"
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateSummary produces a requirements summary from the session answers.
func (c *Client) GenerateSummary(ctx context.Context, sessionID string) (*SummaryResult, error) {
	var out SummaryResult
	path := "/api/session/" + sessionID + "/generate_summary"
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateRecommendations produces spec variants for the session.
func (c *Client) GenerateRecommendations(ctx context.Context, sessionID string) (*RecommendationsResult, error) {
	var out RecommendationsResult
	path := "/api/session/" + sessionID + "/generate_recommendations"
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SuggestVendors fetches a structured vendor shortlist for a variant.
func (c *Client) SuggestVendors(ctx context.Context, req SuggestVendorsRequest) (*SuggestVendorsResult, error) {
	var out SuggestVendorsResult
	if err := c.do(ctx, http.MethodPost, "/api/suggest-vendors", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindVendors runs the prose vendor research.
func (c *Client) FindVendors(ctx context.Context, req VendorFinderRequest) (*VendorFinderResult, error) {
	var out VendorFinderResult
	if err := c.do(ctx, http.MethodPost, "/api/vendor_finder", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateRFQ renders RFQ documents for the selected vendors.
func (c *Client) GenerateRFQ(ctx context.Context, req RFQRequest) (*RFQResult, error) {
	var out RFQResult
	if err := c.do(ctx, http.MethodPost, "/api/rfq/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one JSON round trip. A non-2xx response is decoded as an
// apiError body when possible and returned as an error either way.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("api: %s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("api: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
	}
	return nil
}
