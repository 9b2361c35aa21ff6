package gemchat

import (
	"fmt"
	"strings"
)

// Validate checks universal constraints on Request.
// Client implementations may apply additional endpoint-specific validation.
func (r Request) Validate() error {
	if len(r.Contents) == 0 {
		return fmt.Errorf("contents must not be empty: %w", ErrValidation)
	}
	for i, t := range r.Contents {
		if err := ValidateTurn(t); err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}
	}
	if last := r.Contents[len(r.Contents)-1]; last.Role != RoleUser {
		return fmt.Errorf("last turn must be a user turn, got %s: %w", last.Role, ErrValidation)
	}
	if err := r.Generation.Validate(); err != nil {
		return err
	}
	for i, s := range r.Safety {
		if s.Category == "" || s.Threshold == "" {
			return fmt.Errorf("safety setting %d: category and threshold are required: %w", i, ErrValidation)
		}
	}
	return nil
}

// Validate checks the sampling controls are within the ranges the endpoint
// accepts.
func (g GenerationConfig) Validate() error {
	if g.Temperature < 0 || g.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g: %w", g.Temperature, ErrValidation)
	}
	if g.TopP < 0 || g.TopP > 1 {
		return fmt.Errorf("top_p must be in [0, 1], got %g: %w", g.TopP, ErrValidation)
	}
	if g.TopK < 0 {
		return fmt.Errorf("top_k must be non-negative, got %d: %w", g.TopK, ErrValidation)
	}
	if g.MaxOutputTokens < 0 {
		return fmt.Errorf("max_output_tokens must be non-negative, got %d: %w", g.MaxOutputTokens, ErrValidation)
	}
	return nil
}

// ValidateTurn checks that a turn has a known role and non-blank text.
func ValidateTurn(t Turn) error {
	if !t.Role.Valid() {
		return fmt.Errorf("unknown role %q: %w", t.Role, ErrValidation)
	}
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%s turn has empty text: %w", t.Role, ErrValidation)
	}
	return nil
}

// ValidateTranscript checks every turn of t.
func ValidateTranscript(t Transcript) error {
	for i, turn := range t {
		if err := ValidateTurn(turn); err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return nil
}
