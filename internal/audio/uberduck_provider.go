package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// HTTPError is returned for non-2xx responses from the TTS service.
type HTTPError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

type speakRequest struct {
	Speech string `json:"speech"`
	Voice  string `json:"voice"`
}

type speakResponse struct {
	UUID string `json:"uuid"`
}

type speakStatus struct {
	FailedAt   any    `json:"failed_at"`
	FinishedAt any    `json:"finished_at"`
	Path       string `json:"path"`
}

// UberduckProvider implements Provider for the Uberduck speak API.
type UberduckProvider struct {
	baseURL      string
	key          string
	secret       string
	voice        string
	pollInterval time.Duration
	maxPolls     int
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker
	logger       *slog.Logger
}

// NewUberduckProvider creates a provider from config. Zero values fall back
// to DefaultProviderConfig.
func NewUberduckProvider(config *Config) *UberduckProvider {
	defaults := DefaultProviderConfig()
	p := &UberduckProvider{
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		key:          config.Key,
		secret:       config.Secret,
		voice:        config.Voice,
		pollInterval: config.PollInterval,
		maxPolls:     config.MaxPolls,
		logger:       config.Logger,
	}
	if p.baseURL == "" {
		p.baseURL = defaults.BaseURL
	}
	if p.voice == "" {
		p.voice = defaults.Voice
	}
	if p.pollInterval <= 0 {
		p.pollInterval = defaults.PollInterval
	}
	if p.maxPolls <= 0 {
		p.maxPolls = defaults.MaxPolls
	}
	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = defaults.HTTPTimeout
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	p.httpClient = &http.Client{Timeout: timeout}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "uberduck",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return p
}

// Synthesize submits speech and polls until the clip is finished, failed,
// or the poll budget is spent. It returns the URL of the rendered audio.
func (p *UberduckProvider) Synthesize(ctx context.Context, speech, voice string) (string, error) {
	if strings.TrimSpace(speech) == "" {
		return "", fmt.Errorf("nothing to synthesize")
	}
	if voice == "" {
		voice = p.voice
	}

	id, err := p.submit(ctx, speech, voice)
	if err != nil {
		return "", err
	}
	p.logger.Debug("speech submitted", slog.String("uuid", id), slog.String("voice", voice))

	for poll := 1; poll <= p.maxPolls; poll++ {
		status, err := p.status(ctx, id)
		if err != nil {
			return "", err
		}
		if isSet(status.FailedAt) {
			return "", fmt.Errorf("%w: job %s", ErrSynthesisFailed, id)
		}
		if isSet(status.FinishedAt) {
			if status.Path == "" {
				return "", fmt.Errorf("%w: job %s finished without an audio path", ErrSynthesisFailed, id)
			}
			p.logger.Debug("speech ready", slog.String("uuid", id), slog.Int("polls", poll))
			return status.Path, nil
		}
		if poll == p.maxPolls {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}
	return "", fmt.Errorf("%w: job %s not finished after %d polls", ErrSynthesisTimeout, id, p.maxPolls)
}

func (p *UberduckProvider) submit(ctx context.Context, speech, voice string) (string, error) {
	body, err := json.Marshal(speakRequest{Speech: speech, Voice: voice})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	data, err := p.do(ctx, "speak", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/speak", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(p.key, p.secret)
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var resp speakResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("speak: failed to decode response: %w", err)
	}
	id, err := uuid.Parse(resp.UUID)
	if err != nil {
		return "", fmt.Errorf("speak: invalid job id %q: %w", resp.UUID, err)
	}
	return id.String(), nil
}

func (p *UberduckProvider) status(ctx context.Context, id string) (*speakStatus, error) {
	data, err := p.do(ctx, "speak-status", func() (*http.Request, error) {
		reqURL := p.baseURL + "/speak-status?" + url.Values{"uuid": {id}}.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, err
	}

	var status speakStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("speak-status: failed to decode response: %w", err)
	}
	return &status, nil
}

// do runs one request through the circuit breaker and returns the body of a
// 2xx response.
func (p *UberduckProvider) do(ctx context.Context, op string, build func() (*http.Request, error)) ([]byte, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: request failed: %w", op, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &HTTPError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}
		return data, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return result.([]byte), nil
}

// Name returns the provider name
func (p *UberduckProvider) Name() string {
	return "uberduck"
}

// IsAvailable checks that credentials are configured.
func (p *UberduckProvider) IsAvailable() error {
	if p.key == "" || p.secret == "" {
		return fmt.Errorf("uberduck API key and secret not configured")
	}
	return nil
}

// isSet mirrors a truthiness check on a JSON field that is null until the
// job reaches that state.
func isSet(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}
