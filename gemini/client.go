package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lokalku/lokalku"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ lokalku.Provider = (*Client)(nil)

// Client implements [lokalku.Provider] for the Google Gemini API.
type Client struct {
	client       *genai.Client
	model        string
	systemPrompt string
	maxTokens    int
	baseURL      string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithSystemPrompt replaces lokalku.DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.systemPrompt = prompt }
}

// WithMaxTokens sets the output token cap.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		model:        defaultModel,
		systemPrompt: lokalku.DefaultSystemPrompt,
		maxTokens:    defaultMaxTokens,
	}
	for _, o := range opts {
		o(c)
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Reply sends one generateContent request and returns the model's text.
func (c *Client) Reply(ctx context.Context, req lokalku.Request) (lokalku.Response, error) {
	contents := ConvertRequest(req)
	config := buildConfig(c.systemPrompt, c.maxTokens)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("gemini: %w", err)
	}
	return ParseResponse(resp)
}

func buildConfig(systemPrompt string, maxTokens int) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}
	return config
}

// ConvertRequest converts a request's history lines and message into
// genai Contents. Consecutive lines of the same role are merged into one
// Content, since Gemini expects alternating turns. Exported for testing.
func ConvertRequest(req lokalku.Request) []*genai.Content {
	var result []*genai.Content
	add := func(role, text string) {
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Parts = append(result[n-1].Parts, &genai.Part{Text: text})
			return
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: text}},
		})
	}

	for _, line := range req.History {
		role, text := lokalku.ParseHistoryLine(line)
		add(geminiRole(role), text)
	}
	add("user", req.Message)
	if req.Location != nil {
		add("user", req.Location.Hint())
	}
	return result
}

func geminiRole(r lokalku.Role) string {
	if r == lokalku.RoleAssistant {
		return "model"
	}
	return "user"
}

// ParseResponse extracts the reply text and keeps the full payload as Raw.
// Exported for testing.
func ParseResponse(resp *genai.GenerateContentResponse) (lokalku.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return lokalku.Response{}, fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return lokalku.Response{}, errors.New("gemini: empty response")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return lokalku.Response{}, fmt.Errorf("gemini: no text in response (finish reason %s)", resp.Candidates[0].FinishReason)
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return lokalku.Response{}, fmt.Errorf("gemini: marshal response: %w", err)
	}
	return lokalku.Response{Text: text, Raw: raw}, nil
}
