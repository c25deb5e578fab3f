package protocol

// Payloads of server-originated events.

type RegisteredPayload struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Code string `json:"code"`
}

type CallRequestPayload struct {
	From string `json:"from"`
	Code string `json:"code,omitempty"`
}

type ProfessionalAvailablePayload struct {
	SessionID string `json:"session_id"`
}

type CallAcceptedPayload struct {
	SessionID      string `json:"session_id"`
	ProfessionalID string `json:"professional_id"`
}

type CallRejectedPayload struct {
	Reason string `json:"reason,omitempty"`
}

type CallEndedPayload struct {
	SessionID string `json:"session_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Stable error codes surfaced to clients. Delivery failures are never
// surfaced; signaling gives no delivery guarantee.
const (
	ErrCodeNotRegistered     = "not-registered"
	ErrCodeInvalidTransition = "invalid-transition"
	ErrCodeInvalidRole       = "invalid-role"
	ErrCodeBadPayload        = "bad-payload"
	ErrCodeRateLimited       = "rate-limited"
)
