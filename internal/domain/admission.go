package domain

import (
	"net/http"
)

// DenyReason classifies why an admission check rejected a request.
type DenyReason string

const (
	DenyRateLimit DenyReason = "rate_limit"
	DenyForbidden DenyReason = "forbidden"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the decision that admits a request.
var Allow = Decision{Allowed: true}

// Deny builds a denying decision with the given reason.
func Deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// AdmissionController decides whether a request may proceed. It is
// consulted for plain HTTP requests and, critically, before a WebSocket
// upgrade handshake begins.
type AdmissionController interface {
	Decide(r *http.Request) (Decision, error)
}
