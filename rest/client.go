package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/gemchat"
)

// Interface compliance check.
var _ gemchat.Client = (*Client)(nil)

// Client implements [gemchat.Client] for the Gemini REST API.
type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the default model ID. Default is gemini-2.5-pro.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithAPIVersion sets the API version used for generateContent.
// Default is v1beta. Model listing always uses v1.
func WithAPIVersion(v string) Option {
	return func(c *Client) { c.apiVersion = v }
}

// New creates a new REST [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
		model:      defaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIError is returned when the endpoint answers with a non-2xx status.
// It unwraps to [gemchat.ErrTransport].
type APIError struct {
	StatusCode int
	Status     string // Google status, e.g. "INVALID_ARGUMENT"; may be empty
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return gemchat.ErrTransport }

// Complete posts the transcript to generateContent and returns the text of
// the first candidate.
func (c *Client) Complete(ctx context.Context, req gemchat.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("rest: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	body, err := json.Marshal(buildRequestBody(req))
	if err != nil {
		return "", fmt.Errorf("rest: %w", err)
	}

	path := "/" + c.apiVersion + "/models/" + strings.TrimPrefix(model, "models/") + generateMethod
	resp, err := c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("rest: decode response: %v: %w", err, gemchat.ErrMalformedResponse)
	}
	text, err := extractReply(apiResp)
	if err != nil {
		return "", fmt.Errorf("rest: %w", err)
	}
	return text, nil
}

// ListModels fetches every page of the models endpoint.
func (c *Client) ListModels(ctx context.Context) ([]gemchat.ModelInfo, error) {
	var models []gemchat.ModelInfo
	pageToken := ""
	for {
		query := url.Values{}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}
		page, err := c.listPage(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, m := range page.Models {
			models = append(models, convertModel(m))
		}
		if page.NextPageToken == "" {
			return models, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) listPage(ctx context.Context, query url.Values) (apiModelList, error) {
	resp, err := c.do(ctx, http.MethodGet, "/"+modelsAPIVersion+"/models", query, nil)
	if err != nil {
		return apiModelList{}, err
	}
	defer resp.Body.Close()

	var page apiModelList
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return apiModelList{}, fmt.Errorf("rest: decode models: %v: %w", err, gemchat.ErrMalformedResponse)
	}
	return page, nil
}

// do sends a request with the API key attached as a query parameter. A nil
// error guarantees a 2xx response whose body the caller must close.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("rest: %w", err)
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.apiKey)
	u.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("rest: %w", redact(err))
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rest: %w: %w", gemchat.ErrTransport, redact(err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, fmt.Errorf("rest: %w", parseHTTPError(resp))
	}
	return resp, nil
}

func buildRequestBody(req gemchat.Request) apiRequest {
	g := req.Generation
	return apiRequest{
		Contents: convertTranscript(req.Contents),
		GenerationConfig: &apiGenerationConfig{
			Temperature:     g.Temperature,
			TopP:            g.TopP,
			TopK:            g.TopK,
			MaxOutputTokens: g.MaxOutputTokens,
		},
		SafetySettings: convertSafety(req.Safety),
	}
}

func convertTranscript(t gemchat.Transcript) []apiContent {
	result := make([]apiContent, len(t))
	for i, turn := range t {
		text := turn.Text
		result[i] = apiContent{
			Role:  string(turn.Role),
			Parts: []apiPart{{Text: &text}},
		}
	}
	return result
}

func convertSafety(settings []gemchat.SafetySetting) []apiSafetySetting {
	if len(settings) == 0 {
		return nil
	}
	result := make([]apiSafetySetting, len(settings))
	for i, s := range settings {
		result[i] = apiSafetySetting{Category: s.Category, Threshold: s.Threshold}
	}
	return result
}

// extractReply returns candidates[0].content.parts[0].text. Every missing
// link in that chain is a malformed response.
func extractReply(resp apiResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("no candidates (prompt blocked: %s): %w", resp.PromptFeedback.BlockReason, gemchat.ErrMalformedResponse)
		}
		return "", fmt.Errorf("no candidates: %w", gemchat.ErrMalformedResponse)
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		if cand.FinishReason != "" {
			return "", fmt.Errorf("candidate has no content (finish reason %s): %w", cand.FinishReason, gemchat.ErrMalformedResponse)
		}
		return "", fmt.Errorf("candidate has no content: %w", gemchat.ErrMalformedResponse)
	}
	if len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("candidate content has no parts: %w", gemchat.ErrMalformedResponse)
	}
	text := cand.Content.Parts[0].Text
	if text == nil {
		return "", fmt.Errorf("first part has no text: %w", gemchat.ErrMalformedResponse)
	}
	if strings.TrimSpace(*text) == "" {
		return "", fmt.Errorf("candidate text is empty: %w", gemchat.ErrMalformedResponse)
	}
	return *text, nil
}

func convertModel(m apiModel) gemchat.ModelInfo {
	return gemchat.ModelInfo{
		Name:             m.Name,
		DisplayName:      m.DisplayName,
		Description:      m.Description,
		Version:          m.Version,
		InputTokenLimit:  m.InputTokenLimit,
		OutputTokenLimit: m.OutputTokenLimit,
		SupportedActions: m.SupportedGenerationMethods,
	}
}

func parseHTTPError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr.Message = fmt.Sprintf("failed to read body: %v", err)
		return apiErr
	}
	var env apiErrorResponse
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.Status = env.Error.Status
	apiErr.Message = env.Error.Message
	return apiErr
}

// redact strips the query string, which carries the API key, from URLs
// embedded in transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			u.RawQuery = ""
			urlErr.URL = u.String()
		}
	}
	return err
}
