// Package http exposes the remote dialogue service over HTTP.
//
// [Client] implements [lokalku.Provider] by posting to a dialogue
// endpoint; [Server] serves that same endpoint in front of any provider,
// normally Gemini. Both speak the JSON format below:
//
//	POST /api/chat
//	{"message": "...", "history": ["User: ...", "Assistant: ..."], "location": {"lat": 0, "lng": 0}}
//
//	200 {"reply": "..."}
//	4xx/5xx {"error": "..."}
package http

const (
	chatPath   = "/api/chat"
	healthPath = "/healthz"

	maxBodyBytes = 64 << 10
)

type locationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type chatRequest struct {
	Message  string       `json:"message"`
	History  []string     `json:"history"`
	Location *locationDTO `json:"location,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}
