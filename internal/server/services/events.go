package services

// Auth events reported to an EventRecorder.
const (
	EventRegistered       = "registered"
	EventLoginFailed      = "login_failed"
	EventSessionCreated   = "session_created"
	EventSessionDestroyed = "session_destroyed"
	EventResetRequested   = "reset_requested"
	EventPasswordReset    = "password_reset"
)

// EventRecorder receives one call per successful state change or failed
// login. Implementations must be safe for concurrent use.
type EventRecorder interface {
	AuthEvent(event string)
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string) {}
