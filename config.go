package gemchat

// GenerationConfig holds the sampling controls attached to every request.
type GenerationConfig struct {
	Temperature     float64
	TopP            float64 // nucleus-sampling threshold
	TopK            int
	MaxOutputTokens int
}

// DefaultGenerationConfig returns the sampling controls used when none are
// configured.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.9,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 1024,
	}
}

// SafetySetting pairs a harm category with the threshold at which the
// endpoint blocks content, e.g. HARM_CATEGORY_HARASSMENT and
// BLOCK_MEDIUM_AND_ABOVE.
type SafetySetting struct {
	Category  string
	Threshold string
}

const (
	HarmCategoryHarassment           = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech           = "HARM_CATEGORY_HATE_SPEECH"
	HarmBlockThresholdMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"
)

// DefaultSafetyPolicy returns the content-filtering policy used when none is
// configured.
func DefaultSafetyPolicy() []SafetySetting {
	return []SafetySetting{
		{Category: HarmCategoryHarassment, Threshold: HarmBlockThresholdMediumAndAbove},
		{Category: HarmCategoryHateSpeech, Threshold: HarmBlockThresholdMediumAndAbove},
	}
}
