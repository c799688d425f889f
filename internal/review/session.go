package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"codeberg.org/snonux/dsreview/internal/annotate"
	"codeberg.org/snonux/dsreview/internal/archive"
	"codeberg.org/snonux/dsreview/internal/audio"
	"codeberg.org/snonux/dsreview/internal/batch"
	"codeberg.org/snonux/dsreview/internal/dataset"
	"codeberg.org/snonux/dsreview/internal/dictionary"
	"codeberg.org/snonux/dsreview/internal/phonetic"
)

// ErrNoProvider is returned by Preview and SpeakText when no TTS provider is
// configured.
var ErrNoProvider = errors.New("no TTS provider configured")

// Config describes what to review.
type Config struct {
	DatasetRoot string
	Filelist    string // relative to DatasetRoot unless absolute
	Delimiter   rune
	Start       int
	End         int // exclusive
	Order       dataset.SortOrder

	DictPath string
	Policy   dictionary.DedupPolicy

	Voice string
	// Backup copies the filelist and the dictionary into an archive
	// directory before the first write of the session.
	Backup bool
	// DownloadDir receives previews returned as URLs. Empty keeps URLs as
	// they are.
	DownloadDir string
}

// FilelistPath resolves the filelist against the dataset root.
func (c Config) FilelistPath() string {
	if filepath.IsAbs(c.Filelist) {
		return c.Filelist
	}
	return filepath.Join(c.DatasetRoot, c.Filelist)
}

// Deps are the collaborators of a session. Nil fields get defaults: a
// dictionary checker over the loaded store and a rule-based predictor.
// Provider may stay nil, which disables previews.
type Deps struct {
	Checker    phonetic.Checker
	Predictor  phonetic.Predictor
	Provider   audio.Provider
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// RenderedRow is a filelist row ready for display.
type RenderedRow struct {
	Row       dataset.Row
	Spans     []annotate.Span
	AudioFile string
	// Unknown lists the row's words missing from the dictionary and not
	// added this session.
	Unknown []string
}

// Session is one review run. It is safe for concurrent use.
type Session struct {
	cfg        Config
	store      *dictionary.Store
	added      *dictionary.Session
	checker    phonetic.Checker
	predictor  phonetic.Predictor
	provider   audio.Provider
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex
	table    *dataset.Table
	backedUp map[string]bool
}

// Open loads the dictionary and the filelist.
func Open(ctx context.Context, cfg Config, deps Deps) (*Session, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := dictionary.Load(ctx, cfg.DictPath)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	store.SetPolicy(cfg.Policy)

	table, err := dataset.Load(cfg.FilelistPath(), cfg.Delimiter)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load filelist: %w", err)
	}

	s := &Session{
		cfg:        cfg,
		store:      store,
		added:      dictionary.NewSession(),
		checker:    deps.Checker,
		predictor:  deps.Predictor,
		provider:   deps.Provider,
		httpClient: deps.HTTPClient,
		logger:     logger,
		table:      table,
		backedUp:   make(map[string]bool),
	}
	if s.checker == nil {
		s.checker = phonetic.NewDictChecker(store)
	}
	if s.predictor == nil {
		s.predictor = phonetic.NewRulePredictor(store)
	}

	n, _ := store.Len(ctx)
	logger.Info("review session opened",
		slog.String("filelist", table.Path),
		slog.Int("rows", len(table.Rows)),
		slog.String("dictionary", cfg.DictPath),
		slog.Int("entries", n))
	return s, nil
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Store returns the dictionary store.
func (s *Session) Store() *dictionary.Store {
	return s.store
}

// AddedWords returns the graphemes added during this session.
func (s *Session) AddedWords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.added.Words()
}

// SetPredictor replaces the pronunciation predictor. Predictors that
// consult the dictionary are built after Open, from Store.
func (s *Session) SetPredictor(p phonetic.Predictor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictor = p
}

func (s *Session) currentPredictor() phonetic.Predictor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predictor
}

// Close releases the dictionary store.
func (s *Session) Close() error {
	return s.store.Close()
}

// Reload rereads the filelist from disk.
func (s *Session) Reload() error {
	table, err := dataset.Load(s.cfg.FilelistPath(), s.cfg.Delimiter)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
	return nil
}

// TotalRows returns the number of rows in the filelist.
func (s *Session) TotalRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.table.Rows)
}

// Rows sorts the filelist, cuts the configured window and annotates each
// row.
func (s *Session) Rows(ctx context.Context) ([]RenderedRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]dataset.Row, len(s.table.Rows))
	copy(rows, s.table.Rows)

	lookups := make(map[int]phonetic.Lookup)
	lookup := func(row dataset.Row) (phonetic.Lookup, error) {
		if l, ok := lookups[row.Index]; ok {
			return l, nil
		}
		l, err := s.checker.CheckLookup(ctx, row.Transcription)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Index, err)
		}
		lookups[row.Index] = l
		return l, nil
	}

	if s.cfg.Order == dataset.OrderUnknownWords {
		counts := make(map[int]int, len(rows))
		for _, row := range rows {
			l, err := lookup(row)
			if err != nil {
				return nil, err
			}
			counts[row.Index] = len(s.pending(l.Unknown()))
		}
		dataset.SortRows(rows, dataset.OrderUnknownWords, counts)
	}

	window := dataset.Window(rows, s.cfg.Start, s.cfg.End)
	out := make([]RenderedRow, 0, len(window))
	for _, row := range window {
		l, err := lookup(row)
		if err != nil {
			return nil, err
		}
		out = append(out, RenderedRow{
			Row:       row,
			Spans:     annotate.Annotate(row.Transcription, l.Unknown(), s.added),
			AudioFile: dataset.AudioFile(s.cfg.DatasetRoot, row),
			Unknown:   s.pending(l.Unknown()),
		})
	}
	return out, nil
}

// pending drops words added this session. Callers hold s.mu.
func (s *Session) pending(words []string) []string {
	var out []string
	for _, w := range words {
		if !s.added.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// EditTranscription replaces the transcription of the row with the given
// original index and rewrites the whole filelist.
func (s *Session) EditTranscription(ctx context.Context, index int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.table.Row(index)
	if !ok {
		return fmt.Errorf("row %d: out of range (filelist has %d rows)", index, len(s.table.Rows))
	}
	if old.Transcription == text {
		return nil
	}
	if err := s.backup(s.table.Path); err != nil {
		return err
	}

	if err := s.table.SetTranscription(index, text); err != nil {
		return err
	}
	if err := s.table.Save(); err != nil {
		_ = s.table.SetTranscription(index, old.Transcription)
		return fmt.Errorf("save filelist: %w", err)
	}

	s.logger.Info("transcription updated",
		slog.Int("row", index),
		slog.String("audio", old.AudioPath),
		slog.String("old", old.Transcription),
		slog.String("new", text))
	return nil
}

// AddWord adds a pronunciation and rewrites the dictionary file. It reports
// whether a row was added; graphemes already added this session are
// ignored.
func (s *Session) AddWord(ctx context.Context, grapheme, arpabet string) (bool, error) {
	grapheme = strings.ToLower(strings.TrimSpace(grapheme))
	arpabet = strings.Join(strings.Fields(arpabet), " ")
	if err := phonetic.ValidateARPAbet(arpabet); err != nil {
		return false, fmt.Errorf("%q: %w", grapheme, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backup(s.store.Path()); err != nil {
		return false, err
	}
	inserted, err := s.store.AddWord(ctx, s.added, grapheme, arpabet)
	if err != nil {
		return inserted, err
	}
	if inserted {
		s.logger.Info("word added", slog.String("grapheme", grapheme), slog.String("arpabet", arpabet))
	} else {
		s.logger.Debug("word not added", slog.String("grapheme", grapheme), slog.String("policy", s.store.Policy().String()))
	}
	return inserted, nil
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Added     int
	Skipped   int
	Predicted int
	Failed    []error
}

// ImportWords inserts all entries and rewrites the dictionary file once.
// Entries without a pronunciation get a predicted one. Invalid entries are
// collected in Failed and do not stop the import.
func (s *Session) ImportWords(ctx context.Context, entries []batch.WordEntry) (ImportResult, error) {
	var result ImportResult

	// Predictions may hit the network; run them before taking the lock.
	predictor := s.currentPredictor()
	prepared := make([]batch.WordEntry, 0, len(entries))
	for _, e := range entries {
		if e.NeedsPrediction {
			arpabet, err := predictor.Predict(ctx, e.Grapheme)
			if err != nil {
				result.Failed = append(result.Failed, fmt.Errorf("line %d: %s: %w", e.Line, e.Grapheme, err))
				continue
			}
			e.ARPAbet = arpabet
			result.Predicted++
		}
		if err := phonetic.ValidateARPAbet(e.ARPAbet); err != nil {
			result.Failed = append(result.Failed, fmt.Errorf("line %d: %s: %w", e.Line, e.Grapheme, err))
			continue
		}
		prepared = append(prepared, e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range prepared {
		inserted, err := s.store.Insert(ctx, s.added, e.Grapheme, e.ARPAbet)
		if err != nil {
			result.Failed = append(result.Failed, fmt.Errorf("line %d: %s: %w", e.Line, e.Grapheme, err))
			continue
		}
		if inserted {
			result.Added++
		} else {
			result.Skipped++
		}
	}

	if result.Added == 0 && !s.store.Dirty() {
		return result, nil
	}
	if err := s.backup(s.store.Path()); err != nil {
		return result, err
	}
	if err := s.store.Flush(ctx, s.store.Path()); err != nil {
		return result, err
	}
	s.logger.Info("words imported",
		slog.Int("added", result.Added),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", len(result.Failed)))
	return result, nil
}

// SuggestARPAbet proposes a pronunciation for grapheme.
func (s *Session) SuggestARPAbet(ctx context.Context, grapheme string) (string, error) {
	return s.currentPredictor().Predict(ctx, grapheme)
}

// CheckWord reports how each word of text resolves.
func (s *Session) CheckWord(ctx context.Context, text string) (phonetic.Lookup, error) {
	return s.checker.CheckLookup(ctx, text)
}

// Preview synthesizes arpabet with the session voice and returns a playable
// reference: a local file when DownloadDir is set, otherwise whatever the
// provider returned.
func (s *Session) Preview(ctx context.Context, arpabet string) (string, error) {
	arpabet = strings.Join(strings.Fields(arpabet), " ")
	if err := phonetic.ValidateARPAbet(arpabet); err != nil {
		return "", err
	}
	return s.synthesize(ctx, phonetic.Speech(arpabet))
}

// SpeakText synthesizes plain text with the session voice.
func (s *Session) SpeakText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("nothing to speak")
	}
	return s.synthesize(ctx, text)
}

func (s *Session) synthesize(ctx context.Context, speech string) (string, error) {
	if s.provider == nil {
		return "", ErrNoProvider
	}
	ref, err := s.provider.Synthesize(ctx, speech, s.cfg.Voice)
	if err != nil {
		s.logger.Error("speech synthesis failed",
			slog.String("provider", s.provider.Name()),
			slog.String("speech", speech),
			slog.String("error", err.Error()))
		return "", err
	}
	s.logger.Debug("speech synthesized", slog.String("provider", s.provider.Name()), slog.String("ref", ref))

	if s.cfg.DownloadDir == "" {
		return ref, nil
	}
	return audio.Download(ctx, s.httpClient, ref, s.cfg.DownloadDir)
}

// backup archives path once per session when backups are enabled. Callers
// hold s.mu.
func (s *Session) backup(path string) error {
	if !s.cfg.Backup || path == "" || s.backedUp[path] {
		return nil
	}
	dst, err := archive.Backup(path)
	if err != nil {
		return err
	}
	s.backedUp[path] = true
	s.logger.Info("backup written", slog.String("file", path), slog.String("backup", dst))
	return nil
}

// ListDataset returns the entries of the dataset root, directories suffixed
// with a slash.
func ListDataset(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%s does not exist or is not readable: %w", root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
