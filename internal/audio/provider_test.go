package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockProvider implements Provider interface for testing
type mockProvider struct {
	name         string
	ref          string
	synthErr     error
	availableErr error
	synthCalls   int
	lastSpeech   string
}

func (m *mockProvider) Synthesize(ctx context.Context, speech, voice string) (string, error) {
	m.synthCalls++
	m.lastSpeech = speech
	if m.synthErr != nil {
		return "", m.synthErr
	}
	return m.ref, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) IsAvailable() error {
	return m.availableErr
}

func TestDefaultProviderConfig(t *testing.T) {
	config := DefaultProviderConfig()

	if config.Provider != "uberduck" {
		t.Errorf("Expected provider 'uberduck', got '%s'", config.Provider)
	}
	if config.BaseURL != "https://api.uberduck.ai" {
		t.Errorf("Expected Uberduck base URL, got '%s'", config.BaseURL)
	}
	if config.Voice != "lj" {
		t.Errorf("Expected voice 'lj', got '%s'", config.Voice)
	}
	if config.PollInterval != time.Second {
		t.Errorf("Expected poll interval 1s, got %v", config.PollInterval)
	}
	if config.MaxPolls != 60 {
		t.Errorf("Expected 60 max polls, got %d", config.MaxPolls)
	}
	if config.OpenAISpeed != 1.0 {
		t.Errorf("Expected OpenAI speed 1.0, got %f", config.OpenAISpeed)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		wantErr  bool
		errMsg   string
		wantName string
	}{
		{
			name:    "nil config uses defaults",
			config:  nil,
			wantErr: true,
			errMsg:  "uberduck API key and secret are required",
		},
		{
			name:    "uberduck without secret",
			config:  &Config{Provider: "uberduck", Key: "k"},
			wantErr: true,
			errMsg:  "uberduck API key and secret are required",
		},
		{
			name:     "uberduck with credentials",
			config:   &Config{Provider: "uberduck", Key: "k", Secret: "s"},
			wantName: "uberduck",
		},
		{
			name:    "openai provider without key",
			config:  &Config{Provider: "openai"},
			wantErr: true,
			errMsg:  "OpenAI API key is required",
		},
		{
			name:    "unknown provider",
			config:  &Config{Provider: "unknown"},
			wantErr: true,
			errMsg:  "unknown audio provider: unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err.Error() != tt.errMsg {
				t.Errorf("NewProvider() error = %v, want %v", err.Error(), tt.errMsg)
			}
			if !tt.wantErr && p.Name() != tt.wantName {
				t.Errorf("Name() = %v, want %v", p.Name(), tt.wantName)
			}
		})
	}
}

func TestProviderWithFallback(t *testing.T) {
	primary := &mockProvider{name: "primary", ref: "https://example.com/a.wav"}
	fallback := &mockProvider{name: "fallback", ref: "/tmp/b.mp3"}

	provider := NewProviderWithFallback(primary, fallback, nil)

	// Test successful primary
	ctx := context.Background()
	ref, err := provider.Synthesize(ctx, "test", "")
	if err != nil {
		t.Errorf("Synthesize() unexpected error: %v", err)
	}
	if ref != primary.ref {
		t.Errorf("Synthesize() = %q, want primary reference", ref)
	}
	if fallback.synthCalls != 0 {
		t.Errorf("Expected 0 fallback calls, got %d", fallback.synthCalls)
	}

	// Test primary failure, fallback success
	primary.synthErr = ErrSynthesisTimeout
	ref, err = provider.Synthesize(ctx, "test", "")
	if err != nil {
		t.Errorf("Synthesize() unexpected error: %v", err)
	}
	if ref != fallback.ref || fallback.synthCalls != 1 {
		t.Errorf("Synthesize() = %q after %d fallback calls", ref, fallback.synthCalls)
	}

	// Test both fail
	fallback.synthErr = ErrUnsupportedSpeech
	_, err = provider.Synthesize(ctx, "{ K AE1 T }", "")
	if !errors.Is(err, ErrSynthesisTimeout) || !errors.Is(err, ErrUnsupportedSpeech) {
		t.Errorf("Synthesize() error = %v, want both provider errors", err)
	}
}

func TestProviderWithFallbackSkipsFallbackWhenCancelled(t *testing.T) {
	primary := &mockProvider{name: "primary", synthErr: context.Canceled}
	fallback := &mockProvider{name: "fallback"}
	provider := NewProviderWithFallback(primary, fallback, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := provider.Synthesize(ctx, "test", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Synthesize() error = %v, want context.Canceled", err)
	}
	if fallback.synthCalls != 0 {
		t.Errorf("fallback called %d times after cancellation", fallback.synthCalls)
	}
}

func TestProviderWithFallbackName(t *testing.T) {
	provider := NewProviderWithFallback(&mockProvider{name: "primary"}, &mockProvider{name: "fallback"}, nil)

	expected := "primary (fallback: fallback)"
	if provider.Name() != expected {
		t.Errorf("Name() = %v, want %v", provider.Name(), expected)
	}
}

func TestProviderWithFallbackIsAvailable(t *testing.T) {
	primary := &mockProvider{name: "primary"}
	fallback := &mockProvider{name: "fallback"}

	provider := NewProviderWithFallback(primary, fallback, nil)

	// Both available
	if err := provider.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() unexpected error: %v", err)
	}

	// Primary unavailable, fallback available
	primary.availableErr = errors.New("primary unavailable")
	if err := provider.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() unexpected error when fallback available: %v", err)
	}

	// Both unavailable
	fallback.availableErr = errors.New("fallback unavailable")
	if err := provider.IsAvailable(); err == nil {
		t.Error("IsAvailable() expected error when both providers unavailable")
	}
}
