package receipt

import "errors"

// Kind categorizes extraction failures so handlers and the orchestrator can
// branch without string matching.
type Kind int

const (
	// KindUnknown is the zero value for errors outside the taxonomy
	KindUnknown Kind = iota
	// KindInvalidInput means the upload was bad, missing or oversized.
	// Fails fast, before any external call.
	KindInvalidInput
	// KindUpstreamUnavailable means the model call failed at the transport,
	// auth or quota level. Absorbed into the sample fallback.
	KindUpstreamUnavailable
	// KindEmptyResponse means the model returned no text. Treated like
	// KindUpstreamUnavailable for user messaging.
	KindEmptyResponse
	// KindMalformedPayload means neither the structured nor the heuristic
	// parse produced usable items.
	KindMalformedPayload
	// KindNoItemsFound means the payload decoded cleanly but held zero
	// validated items.
	KindNoItemsFound
)

// String returns the kind's stable label, also used as a metric label
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindEmptyResponse:
		return "empty_response"
	case KindMalformedPayload:
		return "malformed_payload"
	case KindNoItemsFound:
		return "no_items_found"
	default:
		return "unknown"
	}
}

// Error is a categorized extraction error. Message is safe to show to the
// end user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a categorized error with a user-safe message
func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// wrapError attaches a cause to a categorized error
func wrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the failure category from an error chain, or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage returns the user-safe message from a categorized error, or the
// given fallback
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
