package receiver

import "net/http"

// Request is the transport-neutral view of an inbound webhook request. The
// body is the raw bytes the signature was computed over; IsBase64Encoded marks
// bodies that were base64-wrapped in transit.
type Request struct {
	Headers         http.Header
	Body            string
	IsBase64Encoded bool
}

// Response is what the transport adapter writes back.
type Response struct {
	Status      int
	ContentType string
	Body        string
}

// Outcomes, used for logging and metrics labels.
const (
	OutcomeRetrySuppressed  = "retry_suppressed"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeMalformedBody    = "malformed_body"
	OutcomeChallenge        = "challenge"
	OutcomeBotSkipped       = "bot_skipped"
	OutcomeEnqueued         = "enqueued"
	OutcomeEnqueueFailed    = "enqueue_failed"
	OutcomeIgnored          = "ignored"
)
