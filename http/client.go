package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lokalku/lokalku"
)

// Interface compliance check.
var _ lokalku.Provider = (*Client)(nil)

// Client implements [lokalku.Provider] against a dialogue endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a Client for the endpoint rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Reply posts req and decodes the reply. The full response body is kept
// as Response.Raw.
func (c *Client) Reply(ctx context.Context, req lokalku.Request) (lokalku.Response, error) {
	body, err := json.Marshal(toWire(req))
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("http: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("http: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("http: read body: %w", err)
	}
	if len(data) > maxBodyBytes {
		return lokalku.Response{}, fmt.Errorf("http: HTTP %d: response too large (over %d bytes)", resp.StatusCode, maxBodyBytes)
	}
	if resp.StatusCode != http.StatusOK {
		return lokalku.Response{}, parseHTTPError(resp.StatusCode, data)
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return lokalku.Response{}, fmt.Errorf("http: decode reply: %w", err)
	}
	return lokalku.Response{Text: out.Reply, Raw: json.RawMessage(data)}, nil
}

func toWire(req lokalku.Request) chatRequest {
	history := req.History
	if history == nil {
		history = []string{}
	}
	out := chatRequest{Message: req.Message, History: history}
	if req.Location != nil {
		out.Location = &locationDTO{Lat: req.Location.Lat, Lng: req.Location.Lng}
	}
	return out
}

func parseHTTPError(status int, body []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error == "" {
		return fmt.Errorf("http: HTTP %d: %s", status, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("http: HTTP %d: %s", status, apiErr.Error)
}
