package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/dsreview/internal"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider interface for OpenAI TTS. It speaks
// plain text only and writes each clip into its cache directory.
type OpenAIProvider struct {
	client      *openai.Client
	config      *Config
	cacheDir    string
	enableCache bool
	logger      *slog.Logger
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config) (Provider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newOpenAIProvider(config, openai.NewClient(config.OpenAIKey))
}

func newOpenAIProvider(config *Config, client *openai.Client) (*OpenAIProvider, error) {
	provider := &OpenAIProvider{
		client:      client,
		config:      config,
		cacheDir:    config.CacheDir,
		enableCache: config.EnableCache,
		logger:      config.Logger,
	}
	if provider.cacheDir == "" {
		provider.cacheDir = filepath.Join(os.TempDir(), "dsreview-tts")
	}
	if provider.logger == nil {
		provider.logger = slog.Default()
	}

	if err := os.MkdirAll(provider.cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return provider, nil
}

// Synthesize speaks text and returns the path of the mp3 file. Phoneme
// notation ("{ HH AH0 }") is rejected with ErrUnsupportedSpeech.
func (p *OpenAIProvider) Synthesize(ctx context.Context, speech, voice string) (string, error) {
	text := strings.TrimSpace(speech)
	if text == "" {
		return "", fmt.Errorf("nothing to synthesize")
	}
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return "", ErrUnsupportedSpeech
	}
	// Uberduck voice names mean nothing here.
	voice = p.config.OpenAIVoice
	if voice == "" {
		voice = "alloy"
	}

	outputFile := p.getCacheFilePath(text, voice)
	if p.enableCache {
		if info, err := os.Stat(outputFile); err == nil && info.Size() > 0 {
			p.logger.Debug("tts cache hit", slog.String("file", outputFile))
			return outputFile, nil
		}
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	p.logger.Debug("openai tts request",
		slog.String("model", p.config.OpenAIModel),
		slog.String("voice", voice))

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := os.Create(outputFile)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	written, err := io.Copy(out, response)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputFile)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		os.Remove(outputFile)
		return "", fmt.Errorf("no audio data received from OpenAI")
	}
	return outputFile, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API key is set
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

// getCacheFilePath derives the clip path from text and voice settings
func (p *OpenAIProvider) getCacheFilePath(text, voice string) string {
	hash := internal.HashKey(text, p.config.OpenAIModel, voice, fmt.Sprintf("%.2f", p.config.OpenAISpeed))

	// Use first 2 chars as subdirectory for better file system performance
	return filepath.Join(p.cacheDir, hash[:2], hash[2:]+".mp3")
}

// ClearCache removes all cached audio files
func (p *OpenAIProvider) ClearCache() error {
	return ClearCache(p.cacheDir)
}

// GetCacheStats returns cache statistics
func (p *OpenAIProvider) GetCacheStats() (fileCount int, totalSize int64, err error) {
	return CacheStats(p.cacheDir)
}

// ClearCache removes dir and every clip in it.
func ClearCache(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}

// CacheStats counts the files below dir and their total size. A missing
// directory is an empty cache.
func CacheStats(dir string) (fileCount int, totalSize int64, err error) {
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			fileCount++
			totalSize += info.Size()
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	return fileCount, totalSize, err
}
