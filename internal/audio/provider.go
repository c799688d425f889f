package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrSynthesisFailed is returned when the service reports the job failed.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
	// ErrSynthesisTimeout is returned when the job did not finish within the
	// configured number of polls.
	ErrSynthesisTimeout = errors.New("speech synthesis timed out")
	// ErrUnsupportedSpeech is returned by providers that cannot render the
	// inline phoneme notation.
	ErrUnsupportedSpeech = errors.New("provider cannot speak phoneme notation")
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// Synthesize renders speech with the given voice and returns a reference
	// to the audio: a URL or a local file path. An empty voice selects the
	// provider's default.
	Synthesize(ctx context.Context, speech, voice string) (string, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider string // "uberduck" or "openai"

	// Uberduck settings
	BaseURL      string
	Key          string
	Secret       string
	Voice        string
	PollInterval time.Duration
	MaxPolls     int
	HTTPTimeout  time.Duration

	// OpenAI settings
	OpenAIKey   string
	OpenAIModel string // "tts-1", "tts-1-hd" or "gpt-4o-mini-tts"
	OpenAIVoice string
	OpenAISpeed float64

	CacheDir    string
	EnableCache bool

	Logger *slog.Logger
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:     "uberduck",
		BaseURL:      "https://api.uberduck.ai",
		Voice:        "lj",
		PollInterval: time.Second,
		MaxPolls:     60,
		HTTPTimeout:  30 * time.Second,
		OpenAIModel:  "tts-1",
		OpenAIVoice:  "alloy",
		OpenAISpeed:  1.0,
		EnableCache:  true,
	}
}

// NewProvider creates the appropriate audio provider based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "uberduck", "":
		if config.Key == "" || config.Secret == "" {
			return nil, fmt.Errorf("uberduck API key and secret are required")
		}
		return NewUberduckProvider(config), nil

	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	logger   *slog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Synthesize tries the primary provider first and falls back on any error
// other than cancellation.
func (p *ProviderWithFallback) Synthesize(ctx context.Context, speech, voice string) (string, error) {
	ref, err := p.primary.Synthesize(ctx, speech, voice)
	if err == nil {
		return ref, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	p.logger.Warn("primary TTS provider failed, falling back",
		slog.String("primary", p.primary.Name()),
		slog.String("fallback", p.fallback.Name()),
		slog.String("error", err.Error()))

	ref, fallbackErr := p.fallback.Synthesize(ctx, speech, voice)
	if fallbackErr != nil {
		return "", fmt.Errorf("%s: %w; %s: %w", p.primary.Name(), err, p.fallback.Name(), fallbackErr)
	}
	return ref, nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
