package lokalku

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store holds one chat session: its messages, the per-session send
// counter, and the open/typing UI flags. Every Append and Clear writes
// through to the SnapshotStore. Storage failures are logged and never
// returned, so the in-memory state is always usable.
//
// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state SessionState

	snapshots SnapshotStore
	logger    zerolog.Logger
	now       func() time.Time
	newID     func() string
	onOpen    []func()
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithLogger sets the logger used for recovered storage failures.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the time source for message timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the message ID generator. Default is a random UUID.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// WithOnOpen adds a hook called whenever the session transitions to open.
func WithOnOpen(fn func()) StoreOption {
	return func(s *Store) { s.onOpen = append(s.onOpen, fn) }
}

// NewStore creates a Store and restores messages and the send counter
// from snapshots. A missing or unreadable snapshot yields an empty
// session.
func NewStore(ctx context.Context, snapshots SnapshotStore, opts ...StoreOption) *Store {
	s := &Store{
		snapshots: snapshots,
		logger:    zerolog.Nop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	snap, err := s.snapshots.Load(ctx)
	switch {
	case err == nil:
		msgs := snap.Messages
		if len(msgs) > RetentionLimit {
			msgs = msgs[len(msgs)-RetentionLimit:]
		}
		s.state.Messages = append([]Message(nil), msgs...)
		s.state.MessageCount = max(0, snap.MessageCount)
	case errors.Is(err, ErrNotFound):
	default:
		s.logger.Warn().Err(err).Msg("failed to restore chat session, starting empty")
	}
}

// Append adds a message with a fresh ID and timestamp, evicts the oldest
// messages beyond RetentionLimit, counts user messages, and persists.
func (s *Store) Append(ctx context.Context, role Role, content string) Message {
	s.mu.Lock()
	msg := Message{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
	}
	msgs := append(s.state.Messages, msg)
	if len(msgs) > RetentionLimit {
		msgs = append([]Message(nil), msgs[len(msgs)-RetentionLimit:]...)
	}
	s.state.Messages = msgs
	if role == RoleUser {
		s.state.MessageCount++
	}
	// Saved under the lock so snapshots land in mutation order.
	if err := s.snapshots.Save(ctx, s.snapshotLocked()); err != nil {
		s.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to persist chat session")
	}
	s.mu.Unlock()
	return msg
}

// Toggle flips IsOpen.
func (s *Store) Toggle() {
	s.mu.Lock()
	open := !s.state.IsOpen
	s.state.IsOpen = open
	s.mu.Unlock()
	if open {
		s.fireOnOpen()
	}
}

// Open sets IsOpen.
func (s *Store) Open() {
	s.mu.Lock()
	was := s.state.IsOpen
	s.state.IsOpen = true
	s.mu.Unlock()
	if !was {
		s.fireOnOpen()
	}
}

// Close clears IsOpen.
func (s *Store) Close() {
	s.mu.Lock()
	s.state.IsOpen = false
	s.mu.Unlock()
}

// OnOpen registers fn to run on every later transition to open. The chat
// panel uses it to scroll to the latest message. Hooks run after the lock
// is released, in registration order.
func (s *Store) OnOpen(fn func()) {
	s.mu.Lock()
	s.onOpen = append(s.onOpen, fn)
	s.mu.Unlock()
}

func (s *Store) fireOnOpen() {
	s.mu.Lock()
	hooks := append([]func(){}, s.onOpen...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// SetTyping sets IsTyping.
func (s *Store) SetTyping(typing bool) {
	s.mu.Lock()
	s.state.IsTyping = typing
	s.mu.Unlock()
}

// Clear resets the session to its defaults and deletes the snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionState{}
	if err := s.snapshots.Delete(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to delete chat session snapshot")
	}
}

// CanSend reports whether another user message is allowed.
func (s *Store) CanSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.MessageCount < SendLimit
}

// IsNearLimit reports whether the session is close to SendLimit.
func (s *Store) IsNearLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.MessageCount >= NearLimitThreshold
}

// RemainingSends returns how many user messages may still be sent.
func (s *Store) RemainingSends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return max(0, SendLimit-s.state.MessageCount)
}

// RecentHistory returns the last n messages as history lines, oldest
// first. n <= 0 means HistoryWindow.
func (s *Store) RecentHistory(n int) []string {
	if n <= 0 {
		n = HistoryWindow
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.state.Messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.HistoryLine()
	}
	return lines
}

// State returns a copy of the session state.
func (s *Store) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Messages = append([]Message(nil), s.state.Messages...)
	return st
}

// Messages returns a copy of the retained messages, oldest first.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.state.Messages...)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Messages:     append([]Message(nil), s.state.Messages...),
		MessageCount: s.state.MessageCount,
	}
}
