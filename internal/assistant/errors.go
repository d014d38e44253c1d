package assistant

import "fmt"

type Kind string

const (
	KindAuthRequired Kind = "auth_required"
	KindInvalidInput Kind = "invalid_input"
	KindTimeout      Kind = "timeout"
	KindProvider     Kind = "provider"
	KindStorage      Kind = "storage"
	KindUnknown      Kind = "unknown"
)

// Error carries a failure kind for status mapping and a user-safe message.
// The wrapped cause is for logs and development responses only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("assistant: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("assistant: %s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// friendlyMessage is the user-facing text for each failure kind.
func friendlyMessage(kind Kind) string {
	switch kind {
	case KindAuthRequired:
		return "User authentication required"
	case KindInvalidInput:
		return "Message is required"
	case KindTimeout:
		return "Our assistant is taking longer than usual to respond. Please try again."
	case KindProvider:
		return "Our AI service is currently unavailable. Please try again later."
	default:
		return "An error occurred while processing your message."
	}
}
