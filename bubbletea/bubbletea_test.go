package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lokalku/lokalku"
	bt "github.com/lokalku/lokalku/bubbletea"
	lkjson "github.com/lokalku/lokalku/json"
	"github.com/lokalku/lokalku/memory"
	"github.com/lokalku/lokalku/mock"
	"github.com/stretchr/testify/require"
)

// newConversation returns an open session backed by memory.
func newConversation(t *testing.T, provider lokalku.Provider) *lokalku.Conversation {
	t.Helper()
	store := lokalku.NewStore(context.Background(), lkjson.NewSlot(memory.New(), ""))
	store.Open()
	return lokalku.NewConversation(store, lokalku.NewClient(provider))
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, conv *lokalku.Conversation, opts ...bt.Option) bt.Model {
	t.Helper()
	m := bt.New(conv, lokalku.DefaultTheme(), opts...)
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// awaitReply runs the commands produced by a submit until the ReplyMsg
// arrives.
func awaitReply(t *testing.T, cmd tea.Cmd) bt.ReplyMsg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "submit should return a batch")
	for _, c := range batch {
		if c == nil {
			continue
		}
		if reply, ok := c().(bt.ReplyMsg); ok {
			return reply
		}
	}
	t.Fatal("no ReplyMsg in batch")
	return bt.ReplyMsg{}
}

func echoProvider(text string) *mock.Provider {
	return &mock.Provider{
		ReplyFn: func(context.Context, lokalku.Request) (lokalku.Response, error) {
			return lokalku.Response{Text: text}, nil
		},
	}
}
