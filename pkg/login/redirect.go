package login

import (
	"errors"
	"net/url"
)

// Failure messages rendered into the errorMessage query parameter. System
// errors use a generic message so internal detail never leaks to the caller.
const (
	msgBadRequest   = "AuthenticationError: Bad Request"
	msgUnauthorized = "AuthenticationError: Unauthorized"
	msgSystemError  = "Failed to verify your credentials due to a system error."
)

// AbsoluteURL resolves ref against the configured external base URL. Used for
// operator-supplied configuration values, which are trusted.
func AbsoluteURL(ref, externalURL string) string {
	base, err := url.Parse(externalURL)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return externalURL
	}
	return base.ResolveReference(refURL).String()
}

// ResolveReturnURL resolves a caller-supplied redirect override. The override
// is accepted only when, resolved against the external base URL, it stays on
// the external origin; anything else falls back to the configured completion
// URL. This keeps an inbound request parameter from redirecting to an
// arbitrary host.
func ResolveReturnURL(override, externalURL, fallback string) string {
	if override == "" {
		return fallback
	}

	base, err := url.Parse(externalURL)
	if err != nil || !base.IsAbs() {
		return fallback
	}
	refURL, err := url.Parse(override)
	if err != nil {
		return fallback
	}

	resolved := base.ResolveReference(refURL)
	if resolved.Scheme != base.Scheme || resolved.Host != base.Host {
		return fallback
	}
	return resolved.String()
}

// SuccessURL builds the completion URL for an authenticated outcome
func SuccessURL(target string) string {
	return appendResult(target, "success", "")
}

// FailureURL builds the completion URL for a rejected or failed outcome
func FailureURL(target string, err error) string {
	return appendResult(target, "failure", failureMessage(err))
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrBadRequest):
		return msgBadRequest
	case errors.Is(err, ErrUnauthorized):
		return msgUnauthorized
	default:
		return msgSystemError
	}
}

func appendResult(target, result, message string) string {
	u, err := url.Parse(target)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("result", result)
	if message != "" {
		q.Set("errorMessage", message)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
