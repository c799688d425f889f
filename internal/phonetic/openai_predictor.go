package phonetic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const openAIPredictTimeout = 30 * time.Second

// OpenAIPredictor asks a chat model for a CMU-style pronunciation and falls
// back to another predictor when the answer is missing or not valid ARPAbet.
type OpenAIPredictor struct {
	apiKey   string
	model    string
	client   *openai.Client
	fallback Predictor
	logger   *slog.Logger
}

// NewOpenAIPredictor creates a predictor using the given API key. fallback
// is required; it answers whenever the API cannot.
func NewOpenAIPredictor(apiKey string, fallback Predictor, logger *slog.Logger) *OpenAIPredictor {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIPredictor{
		apiKey:   apiKey,
		model:    openai.GPT4oMini,
		client:   openai.NewClient(apiKey),
		fallback: fallback,
		logger:   logger,
	}
}

// Predict returns the model's ARPAbet for word, or the fallback's answer.
func (p *OpenAIPredictor) Predict(ctx context.Context, word string) (string, error) {
	arpabet, err := p.ask(ctx, word)
	if err == nil {
		return arpabet, nil
	}
	p.logger.Warn("openai pronunciation unavailable, using fallback",
		slog.String("word", word), slog.String("error", err.Error()))
	return p.fallback.Predict(ctx, word)
}

func (p *OpenAIPredictor) ask(ctx context.Context, word string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, openAIPredictTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a pronunciation lexicographer maintaining the CMU Pronouncing Dictionary. Answer with ARPAbet only: uppercase phones separated by single spaces, vowels carrying a stress digit 0, 1 or 2. No slashes, no commentary.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("American English pronunciation of the word '%s'", word),
			},
		},
		Temperature: 0,
		MaxTokens:   60,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no response from OpenAI")
	}

	arpabet := normalizeAnswer(resp.Choices[0].Message.Content)
	if err := ValidateARPAbet(arpabet); err != nil {
		return "", fmt.Errorf("model answer %q: %w", arpabet, err)
	}
	return arpabet, nil
}

// normalizeAnswer keeps the first line of a model answer, drops wrapping
// punctuation and collapses whitespace.
func normalizeAnswer(s string) string {
	s = strings.TrimSpace(s)
	if line, _, ok := strings.Cut(s, "\n"); ok {
		s = line
	}
	s = strings.Trim(s, "`\"'/[]{}. ")
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
