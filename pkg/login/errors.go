package login

import "errors"

// Login-path outcomes. "User not found" and "wrong password" both surface as
// ErrUnauthorized so the external outcome never reveals which case occurred;
// server-side logs still distinguish them.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSystem wraps unexpected store or hasher failures. The wrapped cause
	// is for server-side diagnostics only and must never reach the redirect
	// response.
	ErrSystem = errors.New("system error")

	// ErrLoginNotFound is returned by repositories when no internal user
	// matches the login name.
	ErrLoginNotFound = errors.New("login not found")
)
