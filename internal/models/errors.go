package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedAssetCode is returned by identity normalization when a raw
// holding code matches none of the known market patterns. The position
// cannot be represented and is omitted from the snapshot (with a logged
// warning, never silently).
var ErrUnrecognizedAssetCode = errors.New("unrecognized asset code")

// ErrorKind classifies a provider failure so the resolver can distinguish
// retryable from terminal conditions.
type ErrorKind string

const (
	ErrRateLimited    ErrorKind = "rate_limited"
	ErrNotFound       ErrorKind = "not_found"
	ErrTransientError ErrorKind = "transient"
	ErrAuthError      ErrorKind = "auth"
)

// ProviderError is a typed failure from one quote provider.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// NewProviderError creates a ProviderError for the given provider and kind.
func NewProviderError(provider string, kind ErrorKind, format string, args ...any) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Attempt records one provider failure during resolution.
type Attempt struct {
	Provider string    `json:"provider"`
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message,omitempty"`
}

// ResolutionFailure is returned when every configured provider failed for
// one ticker. Attempts are in provider priority order.
type ResolutionFailure struct {
	Ticker   string    `json:"ticker"`
	Attempts []Attempt `json:"attempts"`
}

func (f *ResolutionFailure) Error() string {
	return fmt.Sprintf("no quote for %s: %s", f.Ticker, f.Summary())
}

// Summary renders the attempt list as a human-readable one-liner, e.g.
// "finnhub: rate_limited; yahoo: not_found".
func (f *ResolutionFailure) Summary() string {
	parts := make([]string, 0, len(f.Attempts))
	for _, a := range f.Attempts {
		s := fmt.Sprintf("%s: %s", a.Provider, a.Kind)
		if a.Message != "" {
			s += " (" + a.Message + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}
