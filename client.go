package lokalku

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTimeout bounds a single Send.
const DefaultTimeout = 10 * time.Second

// ClientState is the lifecycle state of a [Client].
type ClientState int

const (
	ClientIdle    ClientState = iota // No request in flight.
	ClientPending                    // Send is waiting on the provider.
)

// Outcome is how the most recent Send ended.
type Outcome int

const (
	OutcomeNone      Outcome = iota // No Send has completed yet.
	OutcomeFulfilled                // The provider answered in time.
	OutcomeTimedOut                 // The timeout fired first.
	OutcomeRejected                 // The provider failed.
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFulfilled:
		return "fulfilled"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeRejected:
		return "rejected"
	default:
		return "none"
	}
}

// Client performs one timeout-bounded exchange per Send with a
// [Provider] and mirrors loading and error state for observers. It never
// touches a [Store]; the caller appends both turns.
//
// Client is safe for concurrent use, though callers normally issue one
// Send at a time.
type Client struct {
	provider Provider
	timeout  time.Duration

	mu      sync.Mutex
	pending int
	errMsg  string
	outcome Outcome
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithTimeout sets the per-Send timeout. Default is DefaultTimeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Client for provider.
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider: provider,
		timeout:  DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type replyResult struct {
	resp Response
	err  error
}

// Send issues exactly one request and races it against the timeout. Any
// error left by a previous Send is cleared when the request starts. The
// provider receives a context that is cancelled when the timeout fires, so
// the underlying call is torn down rather than left running. Empty
// messages are passed through unchanged.
//
// On failure the returned error is a *DialogueError whose Message is also
// available from Err. A timeout produces "Request timeout" and matches
// ErrTimeout.
func (c *Client) Send(ctx context.Context, message string, history []string, loc *Location) (Response, error) {
	c.begin()

	ctx, cancel := context.WithTimeoutCause(ctx, c.timeout, ErrTimeout)
	defer cancel()

	req := Request{
		Message:  message,
		History:  append([]string(nil), history...),
		Location: loc,
	}

	// Buffered so the provider goroutine never blocks after the race is lost.
	done := make(chan replyResult, 1)
	go func() {
		resp, err := c.provider.Reply(ctx, req)
		done <- replyResult{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(context.Cause(ctx), ErrTimeout) {
				return Response{}, c.fail(OutcomeTimedOut, ErrTimeout)
			}
			return Response{}, c.fail(OutcomeRejected, r.err)
		}
		c.finish(OutcomeFulfilled)
		return r.resp, nil
	case <-ctx.Done():
		cause := context.Cause(ctx)
		if errors.Is(cause, ErrTimeout) {
			return Response{}, c.fail(OutcomeTimedOut, ErrTimeout)
		}
		return Response{}, c.fail(OutcomeRejected, cause)
	}
}

func (c *Client) begin() {
	c.mu.Lock()
	c.pending++
	c.errMsg = ""
	c.mu.Unlock()
}

func (c *Client) finish(o Outcome) {
	c.mu.Lock()
	c.pending--
	c.outcome = o
	c.mu.Unlock()
}

func (c *Client) fail(o Outcome, err error) error {
	msg := ErrorMessage(err)
	c.mu.Lock()
	c.pending--
	c.outcome = o
	c.errMsg = msg
	c.mu.Unlock()
	return &DialogueError{Message: msg, Err: err}
}

// Timeout returns the bound applied to each Send.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Loading reports whether a Send is in flight.
func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// State returns ClientPending while a Send is in flight, ClientIdle otherwise.
func (c *Client) State() ClientState {
	if c.Loading() {
		return ClientPending
	}
	return ClientIdle
}

// LastOutcome returns how the most recent Send ended.
func (c *Client) LastOutcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Err returns the message of the last failure, or "" if none or cleared.
func (c *Client) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// ClearError resets the error returned by Err.
func (c *Client) ClearError() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()
}
