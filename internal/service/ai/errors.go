package ai

import (
	"errors"
	"fmt"
	"strings"
)

// TransportKind classifies upstream model failures. Classification is
// diagnostic only: every transport failure degrades to the offline fallback
// regardless of kind.
type TransportKind string

const (
	KindQuotaExceeded     TransportKind = "quota_exceeded"
	KindInvalidCredential TransportKind = "invalid_credential"
	KindPermissionDenied  TransportKind = "permission_denied"
	KindNetworkError      TransportKind = "network_error"
)

// TransportError wraps an upstream failure with its classified kind.
type TransportError struct {
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm transport (%s): %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError marks model output that contained no usable JSON analysis.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("llm output parse: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ErrRateLimited is returned by the local bucket, never by the upstream.
var ErrRateLimited = errors.New("local rate limit exhausted")

// ClassifyTransport buckets an upstream error by sniffing its message, the
// only signal the SDK exposes uniformly.
func ClassifyTransport(err error) TransportKind {
	if err == nil {
		return KindNetworkError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "billing") ||
		strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return KindQuotaExceeded
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid credential") || strings.Contains(msg, "401"):
		return KindInvalidCredential
	case strings.Contains(msg, "permission") || strings.Contains(msg, "forbidden") ||
		strings.Contains(msg, "403"):
		return KindPermissionDenied
	default:
		return KindNetworkError
	}
}
