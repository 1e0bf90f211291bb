package clinicclient

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCheckoutInFlight is returned when a checkout is attempted while another
// one has not resolved yet. The second attempt never reaches the server.
var ErrCheckoutInFlight = errors.New("checkout already in flight")

// AuthError means no token was available or the server rejected it. The
// attempted operation is fatal; callers re-authenticate instead of retrying.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

// FetchError is a network-level failure or non-2xx response on a read.
type FetchError struct {
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Operation, msg, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Operation, msg)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// CheckoutError is a server rejection of a checkout or status-update
// mutation. Reasons carries the per-item explanations when the server
// provided them. The selection set is left intact so the caller can correct
// and retry.
type CheckoutError struct {
	StatusCode int
	Code       string
	Message    string
	Reasons    []string
}

func (e *CheckoutError) Error() string {
	if len(e.Reasons) > 0 {
		return e.Message + ": " + strings.Join(e.Reasons, "; ")
	}
	return e.Message
}

// ValidationError blocks a submission before any network call when the
// selected batch contains an ineligible prescription.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d prescription(s) cannot be processed: %s", len(e.Reasons), strings.Join(e.Reasons, "; "))
}
