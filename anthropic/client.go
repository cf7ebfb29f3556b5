package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lokalku/lokalku"
)

// Interface compliance check.
var _ lokalku.Provider = (*Client)(nil)

// maxResponseBytes bounds how much of a reply body is read.
const maxResponseBytes = 1 << 20

// Client implements [lokalku.Provider] for the Anthropic Messages API.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	systemPrompt string
	maxTokens    int
	httpClient   *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithSystemPrompt replaces lokalku.DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.systemPrompt = prompt }
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		model:        defaultModel,
		systemPrompt: lokalku.DefaultSystemPrompt,
		maxTokens:    defaultMaxTokens,
		httpClient:   http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Reply sends one Messages API request and returns the concatenated text
// blocks of the answer.
func (c *Client) Reply(ctx context.Context, req lokalku.Request) (lokalku.Response, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return lokalku.Response{}, parseHTTPError(resp)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("anthropic: read body: %w", err)
	}
	if len(raw) > maxResponseBytes {
		return lokalku.Response{}, fmt.Errorf("anthropic: response too large (over %d bytes)", maxResponseBytes)
	}
	return ParseResponse(raw)
}

func (c *Client) buildRequest(req lokalku.Request) apiRequest {
	apiReq := apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  convertRequest(req),
	}
	if c.systemPrompt != "" {
		apiReq.System = []apiContentBlock{{
			Type:         "text",
			Text:         c.systemPrompt,
			CacheControl: &apiCacheControl{Type: "ephemeral"},
		}}
	}
	return apiReq
}

// convertRequest rebuilds the conversation as Messages API turns.
// Consecutive lines of one role share a turn, and leading assistant lines
// are dropped since the API requires the first turn to be the user's.
func convertRequest(req lokalku.Request) []apiMessage {
	var result []apiMessage
	add := func(role lokalku.Role, text string) {
		if len(result) == 0 && role == lokalku.RoleAssistant {
			return
		}
		block := apiContentBlock{Type: "text", Text: text}
		if n := len(result); n > 0 && result[n-1].Role == string(role) {
			result[n-1].Content = append(result[n-1].Content, block)
			return
		}
		result = append(result, apiMessage{Role: string(role), Content: []apiContentBlock{block}})
	}

	for _, line := range req.History {
		add(lokalku.ParseHistoryLine(line))
	}
	add(lokalku.RoleUser, req.Message)
	if req.Location != nil {
		add(lokalku.RoleUser, req.Location.Hint())
	}
	return result
}

// ParseResponse extracts the reply text from a Messages API body and keeps
// the body as Raw. Exported for testing.
func ParseResponse(raw []byte) (lokalku.Response, error) {
	var r apiResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return lokalku.Response{}, fmt.Errorf("anthropic: decode response: %w", err)
	}
	var text strings.Builder
	for _, b := range r.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		if r.StopReason != "" {
			return lokalku.Response{}, fmt.Errorf("anthropic: no text in response (stop reason %s)", r.StopReason)
		}
		return lokalku.Response{}, errors.New("anthropic: empty response")
	}
	return lokalku.Response{Text: out, Raw: raw}, nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("anthropic: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
}
