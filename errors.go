package lokalku

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a message or request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrTimeout indicates the remote dialogue service did not answer in time.
	ErrTimeout = errors.New("Request timeout")

	// ErrEmptyMessage indicates the user tried to send blank text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendLimit indicates the session reached SendLimit user messages.
	ErrSendLimit = errors.New("session send limit reached")

	// ErrNotFound indicates a storage key has no value.
	ErrNotFound = errors.New("not found")
)

// DefaultErrorMessage is the user-facing text used when a failure carries
// no message of its own.
const DefaultErrorMessage = "Maaf, terjadi kesalahan. Silakan coba lagi."

// DialogueError is returned by [Client.Send] on failure. Message is the
// human-readable text mirrored in [Client.Err].
type DialogueError struct {
	Message string
	Err     error
}

func (e *DialogueError) Error() string { return e.Message }

func (e *DialogueError) Unwrap() error { return e.Err }

// ErrorMessage derives the user-facing text for err: the error's own
// message when it has one, DefaultErrorMessage otherwise.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}
