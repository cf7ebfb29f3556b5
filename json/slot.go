package json

import (
	"context"
	"fmt"

	"github.com/lokalku/lokalku"
)

// Interface compliance check.
var _ lokalku.SnapshotStore = (*Slot)(nil)

// Slot implements [lokalku.SnapshotStore] by storing the JSON encoding of
// a snapshot under one key of a [lokalku.KeyValue].
type Slot struct {
	kv  lokalku.KeyValue
	key string
}

// NewSlot returns a Slot over kv. An empty key means
// lokalku.DefaultSnapshotKey.
func NewSlot(kv lokalku.KeyValue, key string) *Slot {
	if key == "" {
		key = lokalku.DefaultSnapshotKey
	}
	return &Slot{kv: kv, key: key}
}

// Key returns the slot's storage key.
func (s *Slot) Key() string { return s.key }

// Load reads and decodes the snapshot. It returns lokalku.ErrNotFound when
// the slot is empty.
func (s *Slot) Load(ctx context.Context) (lokalku.Snapshot, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return lokalku.Snapshot{}, err
	}
	return UnmarshalSnapshot([]byte(data))
}

// Save encodes and writes the snapshot.
func (s *Slot) Save(ctx context.Context, snap lokalku.Snapshot) error {
	data, err := MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return s.kv.Set(ctx, s.key, string(data))
}

// Delete removes the slot.
func (s *Slot) Delete(ctx context.Context) error {
	return s.kv.Remove(ctx, s.key)
}
