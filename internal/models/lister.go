package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Catalog groups model ids by what dsreview uses them for.
type Catalog struct {
	TTS  []string
	Chat []string
}

// Categorize sorts model ids into a Catalog. Ids that fit neither group
// are dropped.
func Categorize(ids []string) Catalog {
	var c Catalog
	for _, id := range ids {
		switch {
		case strings.Contains(id, "tts"):
			c.TTS = append(c.TTS, id)
		case strings.Contains(id, "audio"), strings.Contains(id, "realtime"),
			strings.Contains(id, "transcribe"), strings.Contains(id, "search"):
			// speech-to-text and realtime variants cannot answer a plain chat prompt
		case strings.HasPrefix(id, "gpt-"), strings.HasPrefix(id, "o1"),
			strings.HasPrefix(id, "o3"), strings.HasPrefix(id, "o4"):
			c.Chat = append(c.Chat, id)
		}
	}
	sort.Strings(c.TTS)
	sort.Strings(c.Chat)
	return c
}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
	}
}

// newListerWithClient is used by tests to point at a fake API.
func newListerWithClient(apiKey string, client *openai.Client) *Lister {
	return &Lister{apiKey: apiKey, client: client}
}

// List fetches the models available to the API key.
func (l *Lister) List(ctx context.Context) (Catalog, error) {
	if l.apiKey == "" {
		return Catalog{}, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .dsreview.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		ids = append(ids, m.ID)
	}
	return Categorize(ids), nil
}

// ListAvailableModels prints the catalog to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	catalog, err := l.List(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Available OpenAI Models:")
	printGroup(w, "Text-to-Speech models (--tts openai --openai-model):", catalog.TTS)
	printGroup(w, "Chat models (--predictor openai):", catalog.Chat)
	return nil
}

func printGroup(w io.Writer, title string, ids []string) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(ids) == 0 {
		fmt.Fprintln(w, "  none found")
		return
	}
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
}
