package studyquiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider generates question sets with the Gemini API
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini client for the given API key
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Name returns the model identifier, which also keys the response cache
func (g *GeminiProvider) Name() string { return "gemini:" + g.model }

// Generate sends prompt with the given safety settings and returns the concatenated text parts
func (g *GeminiProvider) Generate(ctx context.Context, prompt string, safety SafetySettings) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"
	model.SafetySettings = geminiSafety(safety)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := geminiText(resp)
	if strings.TrimSpace(text) == "" {
		if len(resp.Candidates) > 0 {
			return "", fmt.Errorf("empty response from Gemini (finish reason %s)", resp.Candidates[0].FinishReason)
		}
		return "", errors.New("empty response from Gemini")
	}
	return text, nil
}

// Close releases the underlying client
func (g *GeminiProvider) Close() error {
	return g.client.Close()
}

func geminiText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}

func geminiSafety(s SafetySettings) []*genai.SafetySetting {
	out := make([]*genai.SafetySetting, 0, len(s))
	for _, r := range s {
		out = append(out, &genai.SafetySetting{
			Category:  geminiCategory(r.Category),
			Threshold: geminiThreshold(r.Threshold),
		})
	}
	return out
}

func geminiCategory(c HarmCategory) genai.HarmCategory {
	switch c {
	case HarmHarassment:
		return genai.HarmCategoryHarassment
	case HarmHateSpeech:
		return genai.HarmCategoryHateSpeech
	case HarmSexuallyExplicit:
		return genai.HarmCategorySexuallyExplicit
	case HarmDangerousContent:
		return genai.HarmCategoryDangerousContent
	}
	return genai.HarmCategoryUnspecified
}

func geminiThreshold(t BlockThreshold) genai.HarmBlockThreshold {
	switch t {
	case BlockNone:
		return genai.HarmBlockNone
	case BlockLowAndAbove:
		return genai.HarmBlockLowAndAbove
	case BlockOnlyHigh:
		return genai.HarmBlockOnlyHigh
	}
	return genai.HarmBlockMediumAndAbove
}
