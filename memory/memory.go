// Package memory provides process-local key-value storage, the equivalent
// of a browser tab's session storage.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/lokalku/lokalku"
)

// Interface compliance check.
var _ lokalku.KeyValue = (*KeyValue)(nil)

// KeyValue is an in-memory [lokalku.KeyValue]. The zero value is ready to use.
type KeyValue struct {
	mu   sync.RWMutex
	data map[string]string
}

// New returns an empty KeyValue.
func New() *KeyValue {
	return &KeyValue{}
}

// Get returns the value for key or lokalku.ErrNotFound.
func (kv *KeyValue) Get(_ context.Context, key string) (string, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.data[key]
	if !ok {
		return "", lokalku.ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (kv *KeyValue) Set(_ context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.data == nil {
		kv.data = make(map[string]string)
	}
	kv.data[key] = value
	return nil
}

// Remove deletes key.
func (kv *KeyValue) Remove(_ context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.data, key)
	return nil
}

// Keys returns every stored key in ascending order.
func (kv *KeyValue) Keys(_ context.Context) ([]string, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	keys := make([]string, 0, len(kv.data))
	for k := range kv.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}
