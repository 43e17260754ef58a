package llm

import "fmt"

// ErrorKind classifies provider failures so callers can decide what to
// surface: auth and rate_limit are actionable for the user, network is
// transient, malformed means the model replied but the reply is unusable.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindNetwork   ErrorKind = "network"
	KindRateLimit ErrorKind = "rate_limit"
	KindMalformed ErrorKind = "malformed"
)

// Error is a provider call failure with its classification attached.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("llm %s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("llm %s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("llm %s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func netErr(provider string, err error) *Error {
	return &Error{Kind: KindNetwork, Provider: provider, Err: err}
}

// statusErr maps an HTTP status to an error kind. 401/403 is an auth
// problem, 429 is throttling, other 4xx means we sent a bad request, and
// 5xx is on the provider.
func statusErr(provider string, status int, message string) *Error {
	kind := KindNetwork
	switch {
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 429:
		kind = KindRateLimit
	case status >= 400 && status < 500:
		kind = KindMalformed
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &Error{Kind: kind, Provider: provider, Message: message}
}
