package json_test

import (
	"context"
	"testing"

	"github.com/lokalku/lokalku"
	lkjson "github.com/lokalku/lokalku/json"
	"github.com/lokalku/lokalku/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()
	snap := lokalku.Snapshot{
		Messages: []lokalku.Message{
			{ID: "m1", Role: lokalku.RoleUser, Content: "Cari bengkel motor", Timestamp: 1760000000000},
			{ID: "m2", Role: lokalku.RoleAssistant, Content: "Ada 2 bengkel terdekat.", Timestamp: 1760000001000},
		},
		MessageCount: 7,
	}

	data, err := lkjson.MarshalSnapshot(snap)
	require.NoError(t, err)

	got, err := lkjson.UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestMarshalSnapshot_WireFormat(t *testing.T) {
	t.Parallel()
	snap := lokalku.Snapshot{
		Messages: []lokalku.Message{
			{ID: "m1", Role: lokalku.RoleUser, Content: "Halo", Timestamp: 42},
		},
		MessageCount: 1,
	}
	data, err := lkjson.MarshalSnapshot(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"messages": [{"id": "m1", "role": "user", "content": "Halo", "timestamp": 42}],
		"messageCount": 1
	}`, string(data))
}

func TestMarshalSnapshot_EmptyMessagesIsArray(t *testing.T) {
	t.Parallel()
	data, err := lkjson.MarshalSnapshot(lokalku.Snapshot{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages": [], "messageCount": 0}`, string(data))
}

func TestMarshalSnapshot_UnknownRole(t *testing.T) {
	t.Parallel()
	_, err := lkjson.MarshalSnapshot(lokalku.Snapshot{
		Messages: []lokalku.Message{{ID: "m1", Role: "system"}},
	})
	assert.ErrorIs(t, err, lokalku.ErrValidation)
}

func TestUnmarshalSnapshot_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"messages": [`},
		{"not an object", `"hello"`},
		{"unknown role", `{"messages": [{"id": "x", "role": "bot", "content": "", "timestamp": 0}], "messageCount": 0}`},
		{"negative count", `{"messages": [], "messageCount": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := lkjson.UnmarshalSnapshot([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty slot returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		slot := lkjson.NewSlot(memory.New(), "")
		assert.Equal(t, lokalku.DefaultSnapshotKey, slot.Key())
		_, err := slot.Load(ctx)
		assert.ErrorIs(t, err, lokalku.ErrNotFound)
	})

	t.Run("save load delete", func(t *testing.T) {
		t.Parallel()
		kv := memory.New()
		slot := lkjson.NewSlot(kv, "custom")
		snap := lokalku.Snapshot{
			Messages:     []lokalku.Message{{ID: "a", Role: lokalku.RoleUser, Content: "Halo", Timestamp: 1}},
			MessageCount: 1,
		}
		require.NoError(t, slot.Save(ctx, snap))

		raw, err := kv.Get(ctx, "custom")
		require.NoError(t, err)
		assert.Contains(t, raw, `"messageCount":1`)

		got, err := slot.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, snap, got)

		require.NoError(t, slot.Delete(ctx))
		_, err = slot.Load(ctx)
		assert.ErrorIs(t, err, lokalku.ErrNotFound)
	})

	t.Run("corrupt slot returns decode error", func(t *testing.T) {
		t.Parallel()
		kv := memory.New()
		require.NoError(t, kv.Set(ctx, lokalku.DefaultSnapshotKey, "not json"))
		_, err := lkjson.NewSlot(kv, "").Load(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, lokalku.ErrNotFound)
	})
}
