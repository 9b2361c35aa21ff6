// Package json reads seed transcripts: the example turns a chat starts
// with before the user's first message.
package json

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwojciec/gemchat"
)

// envelope is the v1 wire format for a seed transcript.
type envelope struct {
	Version int       `json:"version"`
	Turns   []turnDTO `json:"turns"`
}

type turnDTO struct {
	Role *string `json:"role"`
	Text *string `json:"text"`
}

// UnmarshalTranscript decodes a seed transcript in v1 envelope format.
// Every turn must name a known role and carry non-blank text.
func UnmarshalTranscript(data []byte) (gemchat.Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	transcript := make(gemchat.Transcript, len(env.Turns))
	for i, dto := range env.Turns {
		if dto.Role == nil {
			return nil, fmt.Errorf("turn %d: missing role: %w", i, gemchat.ErrValidation)
		}
		if dto.Text == nil {
			return nil, fmt.Errorf("turn %d: missing text: %w", i, gemchat.ErrValidation)
		}
		turn := gemchat.Turn{Role: gemchat.Role(*dto.Role), Text: *dto.Text}
		if err := gemchat.ValidateTurn(turn); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		transcript[i] = turn
	}
	return transcript, nil
}

// Load reads a seed transcript from a JSON file.
func Load(path string) (gemchat.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}
