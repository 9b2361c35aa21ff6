package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/gemchat"
	"github.com/fwojciec/gemchat/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replyHiThere = `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi there"}]},"finishReason":"STOP"}]}`

func helloRequest() gemchat.Request {
	return gemchat.Request{
		Contents:   gemchat.Transcript{gemchat.UserTurn("Hello")},
		Generation: gemchat.DefaultGenerationConfig(),
		Safety:     gemchat.DefaultSafetyPolicy(),
	}
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))

		respondJSON(http.StatusOK, replyHiThere)(w, r)
	}))
	defer srv.Close()

	client := rest.New("test-api-key", rest.WithBaseURL(srv.URL))
	req := helloRequest()
	req.Model = "gemini-test"
	req.Contents = gemchat.DefaultSeed().Append(gemchat.UserTurn("Hello"))
	_, err := client.Complete(context.Background(), req)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured, &body))

	contents := body["contents"].([]any)
	require.Len(t, contents, 3)
	c0 := contents[0].(map[string]any)
	assert.Equal(t, "user", c0["role"])
	c1 := contents[1].(map[string]any)
	assert.Equal(t, "model", c1["role"])
	c2 := contents[2].(map[string]any)
	parts := c2["parts"].([]any)
	require.Len(t, parts, 1)
	assert.Equal(t, "Hello", parts[0].(map[string]any)["text"])

	gen := body["generationConfig"].(map[string]any)
	assert.Equal(t, 0.9, gen["temperature"])
	assert.Equal(t, 0.8, gen["topP"])
	assert.Equal(t, float64(40), gen["topK"])
	assert.Equal(t, float64(1024), gen["maxOutputTokens"])

	safety := body["safetySettings"].([]any)
	require.Len(t, safety, 2)
	s0 := safety[0].(map[string]any)
	assert.Equal(t, "HARM_CATEGORY_HARASSMENT", s0["category"])
	assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", s0["threshold"])
}

func TestClient_DefaultModelAndPrefix(t *testing.T) {
	t.Parallel()

	t.Run("empty model uses client default", func(t *testing.T) {
		t.Parallel()
		var path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			respondJSON(http.StatusOK, replyHiThere)(w, r)
		}))
		defer srv.Close()

		client := rest.New("k", rest.WithBaseURL(srv.URL))
		_, err := client.Complete(context.Background(), helloRequest())
		require.NoError(t, err)
		assert.Equal(t, "/v1beta/models/gemini-2.5-pro:generateContent", path)
	})

	t.Run("models/ prefix is not doubled", func(t *testing.T) {
		t.Parallel()
		var path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			respondJSON(http.StatusOK, replyHiThere)(w, r)
		}))
		defer srv.Close()

		client := rest.New("k", rest.WithBaseURL(srv.URL), rest.WithModel("models/gemini-x"), rest.WithAPIVersion("v1"))
		_, err := client.Complete(context.Background(), helloRequest())
		require.NoError(t, err)
		assert.Equal(t, "/v1/models/gemini-x:generateContent", path)
	})
}

func TestClient_Complete(t *testing.T) {
	t.Parallel()

	t.Run("returns first candidate text", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(respondJSON(http.StatusOK,
			`{"candidates":[{"content":{"parts":[{"text":"Hi there"},{"text":"ignored"}]}},{"content":{"parts":[{"text":"second"}]}}]}`))
		defer srv.Close()

		got, err := rest.New("k", rest.WithBaseURL(srv.URL)).Complete(context.Background(), helloRequest())
		require.NoError(t, err)
		assert.Equal(t, "Hi there", got)
	})

	malformed := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing candidates", `{}`, "no candidates"},
		{"empty candidates", `{"candidates":[]}`, "no candidates"},
		{"prompt blocked", `{"promptFeedback":{"blockReason":"SAFETY"}}`, "prompt blocked: SAFETY"},
		{"candidate without content", `{"candidates":[{"finishReason":"SAFETY"}]}`, "finish reason SAFETY"},
		{"content without parts", `{"candidates":[{"content":{"role":"model"}}]}`, "no parts"},
		{"part without text", `{"candidates":[{"content":{"parts":[{"functionCall":{"name":"f"}}]}}]}`, "no text"},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`, "empty"},
		{"whitespace-only text", `{"candidates":[{"content":{"parts":[{"text":"  \n\t "}]}}]}`, "empty"},
		{"not json", `<html>oops</html>`, "decode response"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(respondJSON(http.StatusOK, tt.body))
			defer srv.Close()

			_, err := rest.New("k", rest.WithBaseURL(srv.URL)).Complete(context.Background(), helloRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, gemchat.ErrMalformedResponse)
			assert.NotErrorIs(t, err, gemchat.ErrTransport)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	t.Run("non-2xx status is a transport error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(respondJSON(http.StatusBadRequest,
			`{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`))
		defer srv.Close()

		_, err := rest.New("k", rest.WithBaseURL(srv.URL)).Complete(context.Background(), helloRequest())
		require.Error(t, err)
		assert.ErrorIs(t, err, gemchat.ErrTransport)
		assert.NotErrorIs(t, err, gemchat.ErrMalformedResponse)

		var apiErr *rest.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "INVALID_ARGUMENT", apiErr.Status)
		assert.Equal(t, "API key not valid.", apiErr.Message)
	})

	t.Run("non-json error body is kept verbatim", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(respondJSON(http.StatusServiceUnavailable, "upstream down\n"))
		defer srv.Close()

		_, err := rest.New("k", rest.WithBaseURL(srv.URL)).Complete(context.Background(), helloRequest())
		var apiErr *rest.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "upstream down", apiErr.Message)
		assert.Empty(t, apiErr.Status)
	})

	t.Run("connection failure is a transport error without the key", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(respondJSON(http.StatusOK, replyHiThere))
		url := srv.URL
		srv.Close()

		_, err := rest.New("secret-key", rest.WithBaseURL(url)).Complete(context.Background(), helloRequest())
		require.Error(t, err)
		assert.ErrorIs(t, err, gemchat.ErrTransport)
		assert.NotContains(t, err.Error(), "secret-key")
	})

	t.Run("cancelled context is a transport error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(respondJSON(http.StatusOK, replyHiThere))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := rest.New("k", rest.WithBaseURL(srv.URL)).Complete(ctx, helloRequest())
		assert.ErrorIs(t, err, gemchat.ErrTransport)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid request is rejected before sending", func(t *testing.T) {
		t.Parallel()
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		_, err := rest.New("k", rest.WithBaseURL(srv.URL)).Complete(context.Background(), gemchat.Request{})
		assert.ErrorIs(t, err, gemchat.ErrValidation)
		assert.False(t, called)
	})
}

func TestClient_ListModels(t *testing.T) {
	t.Parallel()

	t.Run("follows pagination", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/v1/models", r.URL.Path)
			assert.Equal(t, "k", r.URL.Query().Get("key"))
			switch r.URL.Query().Get("pageToken") {
			case "":
				respondJSON(http.StatusOK, `{"models":[{"name":"models/gemini-2.5-pro","displayName":"Gemini 2.5 Pro","description":"Capable.","version":"2.5","inputTokenLimit":1048576,"outputTokenLimit":65536,"supportedGenerationMethods":["generateContent","countTokens"]}],"nextPageToken":"p2"}`)(w, r)
			case "p2":
				respondJSON(http.StatusOK, `{"models":[{"name":"models/gemini-2.5-flash","displayName":"Gemini 2.5 Flash"}]}`)(w, r)
			default:
				t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
			}
		}))
		defer srv.Close()

		models, err := rest.New("k", rest.WithBaseURL(srv.URL)).ListModels(context.Background())
		require.NoError(t, err)
		require.Len(t, models, 2)
		assert.Equal(t, gemchat.ModelInfo{
			Name:             "models/gemini-2.5-pro",
			DisplayName:      "Gemini 2.5 Pro",
			Description:      "Capable.",
			Version:          "2.5",
			InputTokenLimit:  1048576,
			OutputTokenLimit: 65536,
			SupportedActions: []string{"generateContent", "countTokens"},
		}, models[0])
		assert.Equal(t, "models/gemini-2.5-flash", models[1].Name)
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(respondJSON(http.StatusOK, `{}`))
		defer srv.Close()

		models, err := rest.New("k", rest.WithBaseURL(srv.URL)).ListModels(context.Background())
		require.NoError(t, err)
		assert.Empty(t, models)
	})

	t.Run("error status", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(respondJSON(http.StatusForbidden,
			`{"error":{"code":403,"message":"Permission denied.","status":"PERMISSION_DENIED"}}`))
		defer srv.Close()

		_, err := rest.New("k", rest.WithBaseURL(srv.URL)).ListModels(context.Background())
		assert.ErrorIs(t, err, gemchat.ErrTransport)
		assert.Contains(t, err.Error(), "HTTP 403 PERMISSION_DENIED: Permission denied.")
	})
}

func TestClient_BlankReplyKeepsSessionUsable(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  \n "}]}}]}`))
			return
		}
		_, _ = w.Write([]byte(replyHiThere))
	}))
	defer srv.Close()

	session := gemchat.NewSession(rest.New("k", rest.WithBaseURL(srv.URL)))
	seed := gemchat.DefaultSeed()

	got, _, err := session.Advance(context.Background(), seed, "Hello")
	require.ErrorIs(t, err, gemchat.ErrMalformedResponse)
	assert.Equal(t, seed, got)

	got, reply, err := session.Advance(context.Background(), got, "Hello again")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.Len(t, got, len(seed)+2)
	assert.Equal(t, int32(2), calls.Load())
}
