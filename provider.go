package lokalku

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultSystemPrompt instructs a model to act as the LokalKu directory
// assistant.
const DefaultSystemPrompt = "Kamu adalah asisten LokalKu, direktori bisnis lokal. " +
	"Bantu pengguna menemukan usaha lokal, jam buka, dan lokasi. " +
	"Jawab singkat dalam bahasa yang dipakai pengguna."

// Location is an optional geographic hint sent with a request.
type Location struct {
	Lat float64
	Lng float64
}

// Hint renders the location as a line of prompt text.
func (l Location) Hint() string {
	return fmt.Sprintf("Lokasi pengguna: %.6f, %.6f", l.Lat, l.Lng)
}

// Request is one exchange with the remote dialogue service.
type Request struct {
	Message  string
	History  []string  // "<Label>: <content>" lines, oldest first
	Location *Location // nil = unknown
}

// Response is the remote service's answer. Text is the agent reply; Raw
// carries the service payload through unmodeled.
type Response struct {
	Text string
	Raw  json.RawMessage
}

// Provider is a strategy pattern interface for remote dialogue services.
// Implementations must honor ctx cancellation.
type Provider interface {
	Reply(ctx context.Context, req Request) (Response, error)
}
