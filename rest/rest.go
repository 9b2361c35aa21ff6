// Package rest implements [gemchat.Client] over the Gemini REST API.
//
// Requests and responses are explicit typed records. Optional response
// fields are pointers so that an absent candidate, content or text is
// detected and reported as [gemchat.ErrMalformedResponse] rather than
// decoded to a zero value. The API key travels in the "key" query parameter.
package rest

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultModel      = "gemini-2.5-pro"
	defaultAPIVersion = "v1beta"
	modelsAPIVersion  = "v1"
	generateMethod    = ":generateContent"
)

// apiRequest is the JSON body sent to the generateContent endpoint.
type apiRequest struct {
	Contents         []apiContent         `json:"contents"`
	GenerationConfig *apiGenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []apiSafetySetting   `json:"safetySettings,omitempty"`
}

type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

// apiPart is a single content part. Text is a pointer so a part carrying
// something other than text (e.g. a function call) is distinguishable from
// an empty string.
type apiPart struct {
	Text *string `json:"text,omitempty"`
}

type apiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"` // 0 = endpoint default
}

type apiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// apiResponse is the JSON body returned by a successful generateContent call.
type apiResponse struct {
	Candidates     []apiCandidate     `json:"candidates"`
	PromptFeedback *apiPromptFeedback `json:"promptFeedback,omitempty"`
}

type apiCandidate struct {
	Content      *apiContent `json:"content"`
	FinishReason string      `json:"finishReason,omitempty"`
}

type apiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// apiModelList is the JSON body returned by the models endpoint.
type apiModelList struct {
	Models        []apiModel `json:"models"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

type apiModel struct {
	Name                       string   `json:"name"`
	Version                    string   `json:"version"`
	DisplayName                string   `json:"displayName"`
	Description                string   `json:"description"`
	InputTokenLimit            int      `json:"inputTokenLimit"`
	OutputTokenLimit           int      `json:"outputTokenLimit"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// apiErrorResponse is the Google error envelope returned on non-2xx responses.
type apiErrorResponse struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
