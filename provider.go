package gemchat

import "context"

// Completer sends a single request to a completion endpoint and returns the
// text of the first candidate. Implementations must return an error wrapping
// ErrTransport when the call fails or the status is not a success, and an
// error wrapping ErrMalformedResponse when a success response lacks the
// candidate text.
//
// Request is passed by value. Implementations must not modify the elements
// of req.Contents; the slice may be shared with the caller.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ModelLister lists the models available to the configured credential.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Client is implemented by endpoint clients that support both operations.
type Client interface {
	Completer
	ModelLister
}

// Request carries the transcript and the fixed generation and safety
// configuration sent with every turn.
type Request struct {
	Model      string // model ID; empty = client default
	Contents   Transcript
	Generation GenerationConfig
	Safety     []SafetySetting
}

// ModelInfo describes a model returned by the models endpoint.
type ModelInfo struct {
	Name             string // resource name, e.g. "models/gemini-2.5-pro"
	DisplayName      string
	Description      string
	Version          string
	InputTokenLimit  int
	OutputTokenLimit int
	SupportedActions []string
}
