package gemchat

import (
	"context"
	"fmt"
	"strings"
)

// Session performs request/reply exchanges against a Completer. It holds
// only the configuration that is fixed for the lifetime of a chat; the
// transcript is passed in and returned by the caller, never stored.
type Session struct {
	completer  Completer
	model      string
	generation GenerationConfig
	safety     []SafetySetting
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithModel sets the model ID sent with each request.
// Empty string means the completer uses its default model.
func WithModel(model string) SessionOption {
	return func(s *Session) { s.model = model }
}

// WithGenerationConfig replaces the default sampling controls.
func WithGenerationConfig(g GenerationConfig) SessionOption {
	return func(s *Session) { s.generation = g }
}

// WithSafetyPolicy replaces the default safety settings.
func WithSafetyPolicy(settings []SafetySetting) SessionOption {
	return func(s *Session) { s.safety = settings }
}

// NewSession creates a Session that sends requests through c.
func NewSession(c Completer, opts ...SessionOption) *Session {
	s := &Session{
		completer:  c,
		generation: DefaultGenerationConfig(),
		safety:     DefaultSafetyPolicy(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Request builds the request for userText following transcript. The
// returned Contents is transcript plus exactly one new user turn.
func (s *Session) Request(userText string, transcript Transcript) Request {
	return Request{
		Model:      s.model,
		Contents:   transcript.Append(UserTurn(userText)),
		Generation: s.generation,
		Safety:     s.safety,
	}
}

// Exchange sends userText with transcript as context and returns the reply.
// It blocks until the completer resolves. A blank reply is reported as
// ErrMalformedResponse so it never enters a transcript. transcript is not
// modified; appending the user turn and the reply is the caller's job (see
// Advance).
func (s *Session) Exchange(ctx context.Context, userText string, transcript Transcript) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", fmt.Errorf("user text must not be empty: %w", ErrValidation)
	}
	req := s.Request(userText, transcript)
	if err := req.Validate(); err != nil {
		return "", err
	}
	reply, err := s.completer.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("reply text is blank: %w", ErrMalformedResponse)
	}
	return reply, nil
}

// Advance runs one exchange and returns the transcript extended by the user
// turn and the reply. On failure it returns transcript unchanged.
func (s *Session) Advance(ctx context.Context, transcript Transcript, userText string) (Transcript, string, error) {
	reply, err := s.Exchange(ctx, userText, transcript)
	if err != nil {
		return transcript, "", err
	}
	return transcript.Append(UserTurn(userText), ModelTurn(reply)), reply, nil
}
