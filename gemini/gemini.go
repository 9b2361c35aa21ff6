// Package gemini implements [gemchat.Client] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between gemchat's
// transcript and configuration types and the Gemini API types. It is an
// alternative to package rest for users who prefer the SDK's transport.
package gemini

const defaultModel = "gemini-2.5-pro"
