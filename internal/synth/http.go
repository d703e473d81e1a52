package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

type screenRequest struct {
	Values []float64 `json:"values"`
}

type screenResponse struct {
	Probability float64 `json:"probability"`
	Seizure     bool    `json:"seizure"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Screen submits one recording and decodes the verdict.
func (c *HTTPClient) Screen(ctx context.Context, rec Recording) Outcome {
	out := Outcome{RecordingID: rec.ID, Burst: rec.Burst}

	resp, err := c.Post(ctx, "/api/v1/screen", screenRequest{Values: rec.Samples})
	if err != nil {
		out.Err = err.Error()
		return out
	}
	defer func() { _ = resp.Body.Close() }()
	out.Status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		out.Err = err.Error()
		return out
	}

	if resp.StatusCode != StatusOK {
		var e errorResponse
		if err := json.Unmarshal(body, &e); err == nil && e.Code != "" {
			out.Err = e.Code + ": " + e.Message
		} else {
			out.Err = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return out
	}

	var res screenResponse
	if err := json.Unmarshal(body, &res); err != nil {
		out.Err = fmt.Sprintf("failed to decode response: %v", err)
		return out
	}
	out.Probability = res.Probability
	out.Seizure = res.Seizure
	return out
}
