package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fwojciec/gemchat"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ gemchat.Client = (*Client)(nil)

// Client implements [gemchat.Client] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

type settings struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*settings)

// WithModel sets the default model ID. Default is gemini-2.5-pro.
func WithModel(model string) Option {
	return func(s *settings) { s.model = model }
}

// WithBaseURL overrides the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	s := settings{model: defaultModel}
	for _, o := range opts {
		o(&s)
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: s.httpClient,
	}
	if s.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: s.baseURL}
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Client{client: gc, model: s.model}, nil
}

// Complete sends the transcript through the SDK's GenerateContent and
// returns the text of the first candidate.
func (c *Client) Complete(ctx context.Context, req gemchat.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, ConvertTranscript(req.Contents), BuildConfig(req))
	if err != nil {
		return "", fmt.Errorf("gemini: %w: %w", gemchat.ErrTransport, err)
	}
	text, err := ExtractReply(resp)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return text, nil
}

// ListModels iterates every model visible to the API key.
func (c *Client) ListModels(ctx context.Context) ([]gemchat.ModelInfo, error) {
	var models []gemchat.ModelInfo
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("gemini: %w: %w", gemchat.ErrTransport, err)
		}
		models = append(models, ConvertModel(m))
	}
	return models, nil
}

// BuildConfig converts the request's generation and safety settings.
// Exported for testing.
func BuildConfig(req gemchat.Request) *genai.GenerateContentConfig {
	g := req.Generation
	config := &genai.GenerateContentConfig{
		Temperature:     ptr(float32(g.Temperature)),
		TopP:            ptr(float32(g.TopP)),
		TopK:            ptr(float32(g.TopK)),
		MaxOutputTokens: int32(g.MaxOutputTokens),
	}
	for _, s := range req.Safety {
		config.SafetySettings = append(config.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return config
}

// ConvertTranscript converts a gemchat Transcript to genai Contents.
// Exported for testing.
func ConvertTranscript(t gemchat.Transcript) []*genai.Content {
	result := make([]*genai.Content, len(t))
	for i, turn := range t {
		result[i] = &genai.Content{
			Role:  string(turn.Role),
			Parts: []*genai.Part{{Text: turn.Text}},
		}
	}
	return result
}

// ExtractReply returns the text of the first part of the first candidate.
// The SDK decodes absent fields to zero values, so an empty or blank text is
// treated the same as a missing one. Exported for testing.
func ExtractReply(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("empty response: %w", gemchat.ErrMalformedResponse)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("no candidates (prompt blocked: %s): %w", resp.PromptFeedback.BlockReason, gemchat.ErrMalformedResponse)
		}
		return "", fmt.Errorf("no candidates: %w", gemchat.ErrMalformedResponse)
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		if cand != nil && cand.FinishReason != "" {
			return "", fmt.Errorf("candidate has no content (finish reason %s): %w", cand.FinishReason, gemchat.ErrMalformedResponse)
		}
		return "", fmt.Errorf("candidate has no content: %w", gemchat.ErrMalformedResponse)
	}
	if len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
		return "", fmt.Errorf("candidate content has no parts: %w", gemchat.ErrMalformedResponse)
	}
	if strings.TrimSpace(cand.Content.Parts[0].Text) == "" {
		return "", fmt.Errorf("first part has no text: %w", gemchat.ErrMalformedResponse)
	}
	return cand.Content.Parts[0].Text, nil
}

// ConvertModel converts a genai Model to a gemchat ModelInfo.
// Exported for testing.
func ConvertModel(m *genai.Model) gemchat.ModelInfo {
	if m == nil {
		return gemchat.ModelInfo{}
	}
	return gemchat.ModelInfo{
		Name:             m.Name,
		DisplayName:      m.DisplayName,
		Description:      m.Description,
		Version:          m.Version,
		InputTokenLimit:  int(m.InputTokenLimit),
		OutputTokenLimit: int(m.OutputTokenLimit),
		SupportedActions: m.SupportedActions,
	}
}

func ptr[T any](v T) *T { return &v }
