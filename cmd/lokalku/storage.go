package main

import (
	"context"
	"fmt"

	"github.com/lokalku/lokalku"
	"github.com/lokalku/lokalku/config"
	"github.com/lokalku/lokalku/file"
	lkjson "github.com/lokalku/lokalku/json"
	"github.com/lokalku/lokalku/memory"
	lkredis "github.com/lokalku/lokalku/redis"
	"github.com/lokalku/lokalku/sqlite"
	"github.com/rs/zerolog"
)

// openStore opens the configured key/value backend and restores the chat
// session from it. The returned close func releases the backend.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...lokalku.StoreOption) (*lokalku.Store, func() error, error) {
	kv, closeFn, err := openKeyValue(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("backend", cfg.Storage.Backend).Str("key", cfg.Storage.Key).Msg("session storage opened")

	opts = append([]lokalku.StoreOption{lokalku.WithLogger(logger)}, opts...)
	store := lokalku.NewStore(ctx, lkjson.NewSlot(kv, cfg.Storage.Key), opts...)
	return store, closeFn, nil
}

// keyLister is implemented by backends that can enumerate stored keys.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// listSessions returns the snapshot keys held by the configured backend.
func listSessions(ctx context.Context, s config.Storage) ([]string, error) {
	kv, closeFn, err := openKeyValue(ctx, s)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	l, ok := kv.(keyLister)
	if !ok {
		return nil, fmt.Errorf("storage %q cannot list sessions", s.Backend)
	}
	return l.Keys(ctx)
}

func openKeyValue(ctx context.Context, s config.Storage) (lokalku.KeyValue, func() error, error) {
	nop := func() error { return nil }
	switch s.Backend {
	case config.StorageMemory:
		return memory.New(), nop, nil
	case config.StorageFile:
		return file.New(s.Path), nop, nil
	case config.StorageSQLite:
		kv, err := sqlite.Open(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case config.StorageRedis:
		kv, err := lkredis.Dial(ctx, s.URL, lkredis.WithTTL(s.TTL), lkredis.WithPrefix("lokalku:"))
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}
