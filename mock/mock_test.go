package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lokalku/lokalku"
	"github.com/lokalku/lokalku/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Reply(t *testing.T) {
	t.Parallel()
	t.Run("delegates to ReplyFn", func(t *testing.T) {
		t.Parallel()
		p := mock.Provider{
			ReplyFn: func(_ context.Context, req lokalku.Request) (lokalku.Response, error) {
				return lokalku.Response{Text: "echo: " + req.Message}, nil
			},
		}
		got, err := p.Reply(context.Background(), lokalku.Request{Message: "Halo"})
		require.NoError(t, err)
		assert.Equal(t, "echo: Halo", got.Text)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("api error")
		p := mock.Provider{
			ReplyFn: func(context.Context, lokalku.Request) (lokalku.Response, error) {
				return lokalku.Response{}, wantErr
			},
		}
		_, err := p.Reply(context.Background(), lokalku.Request{})
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("panics when ReplyFn not set", func(t *testing.T) {
		t.Parallel()
		p := mock.Provider{}
		assert.Panics(t, func() {
			_, _ = p.Reply(context.Background(), lokalku.Request{})
		})
	})
}

func TestSnapshotStore(t *testing.T) {
	t.Parallel()
	var saved lokalku.Snapshot
	deleted := false
	s := mock.SnapshotStore{
		LoadFn: func(context.Context) (lokalku.Snapshot, error) {
			return lokalku.Snapshot{}, lokalku.ErrNotFound
		},
		SaveFn: func(_ context.Context, snap lokalku.Snapshot) error {
			saved = snap
			return nil
		},
		DeleteFn: func(context.Context) error {
			deleted = true
			return nil
		},
	}

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, lokalku.ErrNotFound)
	require.NoError(t, s.Save(context.Background(), lokalku.Snapshot{MessageCount: 3}))
	assert.Equal(t, 3, saved.MessageCount)
	require.NoError(t, s.Delete(context.Background()))
	assert.True(t, deleted)
}

func TestKeyValue(t *testing.T) {
	t.Parallel()
	kv := mock.KeyValue{
		GetFn: func(_ context.Context, key string) (string, error) {
			return "value-of-" + key, nil
		},
	}
	got, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "value-of-k", got)
	assert.Panics(t, func() {
		_ = kv.Set(context.Background(), "k", "v")
	})
}
