package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lokalku/lokalku"
	"github.com/rs/zerolog"
)

// Server serves the dialogue endpoint in front of a provider. Each request
// gets its own timeout-bounded [lokalku.Client], so one slow upstream call
// never affects another request's error state.
type Server struct {
	provider lokalku.Provider
	timeout  time.Duration
	logger   zerolog.Logger
	router   chi.Router
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithTimeout sets the per-request upstream timeout.
func WithTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a Server forwarding to provider.
func NewServer(provider lokalku.Provider, opts ...ServerOption) *Server {
	s := &Server{
		provider: provider,
		timeout:  lokalku.DefaultTimeout,
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get(healthPath, s.handleHealth)
	r.Post(chatPath, s.handleChat)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("dialogue gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var in chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: lokalku.ErrEmptyMessage.Error()})
		return
	}

	history := in.History
	if len(history) > lokalku.HistoryWindow {
		history = history[len(history)-lokalku.HistoryWindow:]
	}
	var loc *lokalku.Location
	if in.Location != nil {
		loc = &lokalku.Location{Lat: in.Location.Lat, Lng: in.Location.Lng}
	}

	client := lokalku.NewClient(s.provider, lokalku.WithTimeout(s.timeout))
	resp, err := client.Send(r.Context(), message, history, loc)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, lokalku.ErrTimeout) {
			status = http.StatusGatewayTimeout
		}
		s.logger.Warn().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("dialogue request failed")
		writeJSON(w, status, errorResponse{Error: lokalku.ErrorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: resp.Text})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
