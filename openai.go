package studyquiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates question sets with an OpenAI compatible chat completion endpoint
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider. An empty baseURL uses the public API.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name returns the model identifier
func (p *OpenAIProvider) Name() string { return "openai:" + p.model }

// Generate requests a JSON object completion. The safety settings become part
// of the system message since the API has no per-request equivalent.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, safety SafetySettings) (string, error) {
	system := "You are an expert study material generator. You always answer with a single JSON object."
	if rules := safety.Describe(); rules != "" {
		system += "\n" + rules
	}

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: system,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate questions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from model")
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", errors.New("response blocked by content filter")
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", errors.New("empty response from model")
	}
	return choice.Message.Content, nil
}
