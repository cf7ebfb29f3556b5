package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lokalku/lokalku"
	lkhttp "github.com/lokalku/lokalku/http"
	"github.com/lokalku/lokalku/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, provider lokalku.Provider, opts ...lkhttp.ServerOption) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(lkhttp.NewServer(provider, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	reqs := make(chan lokalku.Request, 1)
	provider := &mock.Provider{
		ReplyFn: func(_ context.Context, req lokalku.Request) (lokalku.Response, error) {
			reqs <- req
			return lokalku.Response{Text: "Ada 2 salon di Jalan Merdeka."}, nil
		},
	}
	srv := newGateway(t, provider)

	c := lkhttp.NewClient(srv.URL + "/")
	resp, err := c.Reply(context.Background(), lokalku.Request{
		Message:  "Salon?",
		History:  []string{"User: Halo", "Assistant: Hai!"},
		Location: &lokalku.Location{Lat: -6.2, Lng: 106.8},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada 2 salon di Jalan Merdeka.", resp.Text)
	assert.JSONEq(t, `{"reply":"Ada 2 salon di Jalan Merdeka."}`, string(resp.Raw))

	got := <-reqs
	assert.Equal(t, "Salon?", got.Message)
	assert.Equal(t, []string{"User: Halo", "Assistant: Hai!"}, got.History)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 106.8, got.Location.Lng, 1e-9)
}

func TestServer_Health(t *testing.T) {
	t.Parallel()
	srv := newGateway(t, &mock.Provider{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Chat(t *testing.T) {
	t.Parallel()

	post := func(t *testing.T, url, body string) (*http.Response, map[string]any) {
		t.Helper()
		resp, err := http.Post(url+"/api/chat", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
		return resp, out
	}

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		srv := newGateway(t, &mock.Provider{})
		resp, out := post(t, srv.URL, `{"message":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid request body", out["error"])
	})

	t.Run("empty message", func(t *testing.T) {
		t.Parallel()
		srv := newGateway(t, &mock.Provider{})
		resp, out := post(t, srv.URL, `{"message":"   ","history":[]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, lokalku.ErrEmptyMessage.Error(), out["error"])
	})

	t.Run("history is trimmed to window", func(t *testing.T) {
		t.Parallel()
		histories := make(chan []string, 1)
		provider := &mock.Provider{
			ReplyFn: func(_ context.Context, req lokalku.Request) (lokalku.Response, error) {
				histories <- req.History
				return lokalku.Response{Text: "ok"}, nil
			},
		}
		srv := newGateway(t, provider)
		lines := make([]string, 15)
		for i := range lines {
			lines[i] = "User: " + string(rune('a'+i))
		}
		body, err := json.Marshal(map[string]any{"message": "x", "history": lines})
		require.NoError(t, err)
		resp, out := post(t, srv.URL, string(body))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", out["reply"])
		got := <-histories
		require.Len(t, got, lokalku.HistoryWindow)
		assert.Equal(t, "User: f", got[0])
	})

	t.Run("upstream failure is bad gateway", func(t *testing.T) {
		t.Parallel()
		provider := &mock.Provider{
			ReplyFn: func(context.Context, lokalku.Request) (lokalku.Response, error) {
				return lokalku.Response{}, errors.New("gemini: quota exhausted")
			},
		}
		srv := newGateway(t, provider)
		resp, out := post(t, srv.URL, `{"message":"Halo"}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "gemini: quota exhausted", out["error"])
	})

	t.Run("upstream timeout is gateway timeout", func(t *testing.T) {
		t.Parallel()
		provider := &mock.Provider{
			ReplyFn: func(ctx context.Context, _ lokalku.Request) (lokalku.Response, error) {
				<-ctx.Done()
				return lokalku.Response{}, ctx.Err()
			},
		}
		srv := newGateway(t, provider, lkhttp.WithTimeout(20*time.Millisecond))
		resp, out := post(t, srv.URL, `{"message":"Halo"}`)
		assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
		assert.Equal(t, "Request timeout", out["error"])
	})
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	t.Run("error body is surfaced", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `{"error":"upstream down"}`)
		}))
		t.Cleanup(srv.Close)
		_, err := lkhttp.NewClient(srv.URL).Reply(context.Background(), lokalku.Request{Message: "x"})
		assert.EqualError(t, err, "http: HTTP 502: upstream down")
	})

	t.Run("non json error body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "oops\n")
		}))
		t.Cleanup(srv.Close)
		_, err := lkhttp.NewClient(srv.URL).Reply(context.Background(), lokalku.Request{Message: "x"})
		assert.EqualError(t, err, "http: HTTP 500: oops")
	})

	t.Run("sends bearer token and empty history array", func(t *testing.T) {
		t.Parallel()
		type captured struct {
			auth string
			body string
		}
		reqs := make(chan captured, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			reqs <- captured{auth: r.Header.Get("Authorization"), body: string(data)}
			_, _ = io.WriteString(w, `{"reply":"ok"}`)
		}))
		t.Cleanup(srv.Close)
		_, err := lkhttp.NewClient(srv.URL, lkhttp.WithAPIKey("secret"), lkhttp.WithHTTPClient(srv.Client())).
			Reply(context.Background(), lokalku.Request{Message: "x"})
		require.NoError(t, err)
		got := <-reqs
		assert.Equal(t, "Bearer secret", got.auth)
		assert.JSONEq(t, `{"message":"x","history":[]}`, got.body)
	})

	t.Run("oversized reply is rejected", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"reply":"`+strings.Repeat("a", 64<<10)+`"}`)
		}))
		t.Cleanup(srv.Close)
		_, err := lkhttp.NewClient(srv.URL).Reply(context.Background(), lokalku.Request{Message: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "response too large")
		assert.NotContains(t, err.Error(), "decode")
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		t.Cleanup(srv.Close)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := lkhttp.NewClient(srv.URL).Reply(ctx, lokalku.Request{Message: "x"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestServer_ListenAndServe(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	s := lkhttp.NewServer(&mock.Provider{})
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
