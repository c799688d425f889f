package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider mocks a TTS provider. Refs maps speech to the returned
// reference; unknown speech gets a URL derived from the call number.
type MockProvider struct {
	ProviderName string
	Refs         map[string]string
	Errors       map[string]error
	Err          error

	mu    sync.Mutex
	Calls []string
}

// Synthesize records the call and returns the configured reference
func (m *MockProvider) Synthesize(ctx context.Context, speech, voice string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, fmt.Sprintf("%s (voice=%s)", speech, voice))

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if err, ok := m.Errors[speech]; ok {
		return "", err
	}
	if ref, ok := m.Refs[speech]; ok {
		return ref, nil
	}
	return fmt.Sprintf("/tmp/mock-%d.wav", len(m.Calls)), nil
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// IsAvailable always succeeds
func (m *MockProvider) IsAvailable() error {
	return nil
}

// CallCount returns the number of Synthesize calls
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockPredictor mocks a pronunciation predictor
type MockPredictor struct {
	Answers map[string]string
	Errors  map[string]error

	mu    sync.Mutex
	Calls []string
}

// Predict returns the configured answer for word
func (m *MockPredictor) Predict(ctx context.Context, word string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, word)

	if err, ok := m.Errors[word]; ok {
		return "", err
	}
	if answer, ok := m.Answers[word]; ok {
		return answer, nil
	}
	return "", fmt.Errorf("no mock answer for %q", word)
}
