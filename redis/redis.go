// Package redis implements [lokalku.KeyValue] on Redis. Every write
// refreshes the key's TTL, so an idle session expires on its own.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lokalku/lokalku"
	"github.com/redis/go-redis/v9"
)

var _ lokalku.KeyValue = (*KeyValue)(nil)

// KeyValue stores values as plain Redis strings under a key prefix.
type KeyValue struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Option configures a [KeyValue].
type Option func(*KeyValue)

// WithTTL sets the expiry applied on every Set. Zero disables expiry.
// Default is lokalku.SessionTTL.
func WithTTL(d time.Duration) Option {
	return func(kv *KeyValue) { kv.ttl = d }
}

// WithPrefix namespaces every key, e.g. "lokalku:".
func WithPrefix(p string) Option {
	return func(kv *KeyValue) { kv.prefix = p }
}

// Dial parses a redis:// URL, connects, and pings the server.
func Dial(ctx context.Context, url string, opts ...Option) (*KeyValue, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return New(client, opts...), nil
}

// New wraps an existing client.
func New(client *redis.Client, opts ...Option) *KeyValue {
	kv := &KeyValue{client: client, ttl: lokalku.SessionTTL}
	for _, o := range opts {
		o(kv)
	}
	return kv
}

// Close closes the underlying client.
func (kv *KeyValue) Close() error {
	return kv.client.Close()
}

func (kv *KeyValue) Get(ctx context.Context, key string) (string, error) {
	v, err := kv.client.Get(ctx, kv.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", lokalku.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: get %s: %w", key, err)
	}
	return v, nil
}

func (kv *KeyValue) Set(ctx context.Context, key, value string) error {
	if err := kv.client.Set(ctx, kv.prefix+key, value, kv.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (kv *KeyValue) Remove(ctx context.Context, key string) error {
	if err := kv.client.Del(ctx, kv.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis: remove %s: %w", key, err)
	}
	return nil
}

// Keys returns every key under the prefix, without the prefix, in
// ascending order.
func (kv *KeyValue) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := kv.client.Scan(ctx, 0, kv.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), kv.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: list keys: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}
