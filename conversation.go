package lokalku

import (
	"context"
	"strings"
)

// Conversation composes a [Store] and a [Client] into the chat flow: it
// enforces the send limit, records the user turn, asks the remote service
// with the prior turns as context, and records the reply.
type Conversation struct {
	store  *Store
	client *Client
}

// NewConversation creates a Conversation over store and client.
func NewConversation(store *Store, client *Client) *Conversation {
	return &Conversation{store: store, client: client}
}

// Store returns the underlying session store.
func (c *Conversation) Store() *Store { return c.store }

// Client returns the underlying dialogue client.
func (c *Conversation) Client() *Client { return c.client }

// AskOption configures a single Ask invocation.
type AskOption func(*askConfig)

type askConfig struct {
	location *Location
}

// WithLocation attaches the user's location to the request.
func WithLocation(loc Location) AskOption {
	return func(c *askConfig) {
		c.location = &loc
	}
}

// Ask sends text as a user turn and returns the assistant turn. On a
// remote failure the user turn stays recorded, no assistant turn is
// appended, and the *DialogueError from the client is returned.
func (c *Conversation) Ask(ctx context.Context, text string, opts ...AskOption) (Message, error) {
	var cfg askConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if !c.store.CanSend() {
		return Message{}, ErrSendLimit
	}

	// History is taken before the new turn so it holds prior turns only.
	history := c.store.RecentHistory(HistoryWindow)
	c.store.Append(ctx, RoleUser, text)

	c.store.SetTyping(true)
	resp, err := c.client.Send(ctx, text, history, cfg.location)
	c.store.SetTyping(false)
	if err != nil {
		return Message{}, err
	}
	return c.store.Append(ctx, RoleAssistant, resp.Text), nil
}
