package mock

import (
	"context"

	"github.com/lokalku/lokalku"
)

// SnapshotStore is a test double for lokalku.SnapshotStore.
// Set the function fields for the methods you need.
type SnapshotStore struct {
	LoadFn   func(ctx context.Context) (lokalku.Snapshot, error)
	SaveFn   func(ctx context.Context, s lokalku.Snapshot) error
	DeleteFn func(ctx context.Context) error
}

// Load delegates to LoadFn.
func (s *SnapshotStore) Load(ctx context.Context) (lokalku.Snapshot, error) {
	return s.LoadFn(ctx)
}

// Save delegates to SaveFn.
func (s *SnapshotStore) Save(ctx context.Context, snap lokalku.Snapshot) error {
	return s.SaveFn(ctx, snap)
}

// Delete delegates to DeleteFn.
func (s *SnapshotStore) Delete(ctx context.Context) error {
	return s.DeleteFn(ctx)
}

// KeyValue is a test double for lokalku.KeyValue.
// Set the function fields for the methods you need.
type KeyValue struct {
	GetFn    func(ctx context.Context, key string) (string, error)
	SetFn    func(ctx context.Context, key, value string) error
	RemoveFn func(ctx context.Context, key string) error
}

// Get delegates to GetFn.
func (kv *KeyValue) Get(ctx context.Context, key string) (string, error) {
	return kv.GetFn(ctx, key)
}

// Set delegates to SetFn.
func (kv *KeyValue) Set(ctx context.Context, key, value string) error {
	return kv.SetFn(ctx, key, value)
}

// Remove delegates to RemoveFn.
func (kv *KeyValue) Remove(ctx context.Context, key string) error {
	return kv.RemoveFn(ctx, key)
}
