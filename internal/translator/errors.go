package translator

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies provider failures for the retry policy.
type Kind int

const (
	// KindRateLimit is a 429 from the provider. Transient.
	KindRateLimit Kind = iota
	// KindServer is a 5xx from the provider. Transient.
	KindServer
	// KindTimeout is a request or network timeout. Transient.
	KindTimeout
	// KindAuth is a rejected credential. Permanent.
	KindAuth
	// KindParse is a response that could not be decoded. Permanent.
	KindParse
	// KindEmpty is a well-formed response with no content. Permanent.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server_error"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "auth_error"
	case KindParse:
		return "parse_error"
	case KindEmpty:
		return "empty_response"
	default:
		return "unknown"
	}
}

// ProviderError tags a provider failure with its Kind so the
// orchestrator can tell retryable from terminal errors.
type ProviderError struct {
	Kind Kind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err with a failure kind.
func NewProviderError(kind Kind, err error) *ProviderError {
	return &ProviderError{Kind: kind, Err: err}
}

// IsTransient reports whether err is worth retrying: rate limits, server
// errors and timeouts. Everything else is permanent.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case KindRateLimit, KindServer, KindTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
