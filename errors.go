package studify

import "errors"

// Error kinds surfaced by the core. Callers match with errors.Is; the
// wrapped cause carries the transport or parsing detail.
var (
	// ErrGeneration: the quiz generation call failed or produced an
	// unusable payload.
	ErrGeneration = errors.New("quiz generation failed")

	// ErrAnalysis: the essay analysis call failed or returned no payload.
	ErrAnalysis = errors.New("essay analysis failed")

	// ErrAuth: mock sign-in/up rejected the input.
	ErrAuth = errors.New("authentication failed")

	// ErrInvalidState: an operation was invoked in a state that does not
	// permit it (e.g. Answer outside Playing).
	ErrInvalidState = errors.New("operation not valid in current state")

	// ErrEmptyMessage: chat Send was called with blank text.
	ErrEmptyMessage = errors.New("empty chat message")
)
