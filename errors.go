package gemchat

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request, turn or configuration failed validation.
	ErrValidation = errors.New("validation error")

	// ErrMissingCredential indicates no API key was supplied. It is fatal at
	// startup: no request may be attempted without a credential.
	ErrMissingCredential = errors.New("missing credential")

	// ErrTransport indicates the request could not be completed or the
	// endpoint answered with a non-success status.
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse indicates a success status whose body lacks the
	// expected candidate or content fields.
	ErrMalformedResponse = errors.New("malformed response")
)
