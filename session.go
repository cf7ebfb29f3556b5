package lokalku

import (
	"context"
	"time"
)

// Session limits.
const (
	RetentionLimit     = 50 // messages kept in memory and in the snapshot
	SendLimit          = 20 // user messages allowed per session
	NearLimitThreshold = 18 // MessageCount at which the UI warns
	HistoryWindow      = 10 // prior turns sent as context
)

// DefaultSnapshotKey identifies the slot holding the persisted session.
const DefaultSnapshotKey = "lokalku-chat-session"

// SessionState is the full state of one chat session.
type SessionState struct {
	Messages     []Message
	MessageCount int
	IsOpen       bool
	IsTyping     bool
}

// Snapshot is the persisted subset of SessionState. IsOpen and IsTyping
// are never persisted.
type Snapshot struct {
	Messages     []Message
	MessageCount int
}

// SnapshotStore owns the single persisted slot of a session. Load returns
// ErrNotFound when the slot is empty.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Delete(ctx context.Context) error
}

// KeyValue is tab-scoped key-value storage holding text values. Get
// returns ErrNotFound for missing keys. Remove of a missing key is not an
// error.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// SessionTTL bounds how long storage backends that support expiry keep a
// snapshot.
const SessionTTL = 24 * time.Hour
