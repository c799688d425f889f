package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/dsreview/internal/annotate"
	"codeberg.org/snonux/dsreview/internal/audio"
	"codeberg.org/snonux/dsreview/internal/batch"
	"codeberg.org/snonux/dsreview/internal/dataset"
	"codeberg.org/snonux/dsreview/internal/dictionary"
	"codeberg.org/snonux/dsreview/internal/testutil"
)

func openSession(t *testing.T, ds testutil.TestDataset, mutate func(*Config), deps Deps) *Session {
	t.Helper()
	cfg := Config{
		DatasetRoot: ds.Root,
		Filelist:    ds.Filelist,
		Start:       0,
		End:         100,
		DictPath:    ds.DictPath,
		Voice:       "lj",
		Backup:      true,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	if deps.Logger == nil {
		deps.Logger, _ = testutil.NewTestLogger()
	}
	s, err := Open(context.Background(), cfg, deps)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func rowIndices(rows []RenderedRow) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Row.Index)
	}
	return out
}

func tags(spans []annotate.Span) []string {
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		out = append(out, s.Tag)
	}
	return out
}

func TestRowsWindow(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, func(c *Config) { c.End = 2 }, Deps{})

	rows, err := s.Rows(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, rowIndices(rows))

	assert.Empty(t, rows[0].Unknown)
	assert.Equal(t, 0, annotate.Count(rows[0].Spans, annotate.TagUnknown))

	row := rows[1]
	assert.Equal(t, filepath.Join(ds.Root, "wavs/LJ001-0002.wav"), row.AudioFile)
	assert.Equal(t, []string{"zzyx"}, row.Unknown)
	assert.Equal(t, []string{"", annotate.TagRepeat, annotate.TagUnknown, ""}, tags(row.Spans))
	assert.Equal(t, "the the zzyx press ", annotate.Text(row.Spans))
	assert.Equal(t, 3, s.TotalRows())
}

func TestRowsSortedByUnknownWords(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, func(c *Config) { c.Order = dataset.OrderUnknownWords }, Deps{})

	rows, err := s.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, rowIndices(rows))
	assert.Equal(t, []string{"qwopp", "zzyx", "blorft"}, rows[0].Unknown)
}

func TestRowsEmptyWindow(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, func(c *Config) { c.Start, c.End = 5, 10 }, Deps{})

	rows, err := s.Rows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAddWordClearsFlags(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, nil, Deps{})
	ctx := context.Background()

	inserted, err := s.AddWord(ctx, "Zzyx", "Z IH1  K S")
	require.NoError(t, err)
	assert.True(t, inserted)
	testutil.AssertFileContains(t, ds.DictPath, "we W IY1\nwhich W IH1 CH\nwith W IH1 DH\nzzyx Z IH1 K S\n")

	inserted, err = s.AddWord(ctx, "zzyx", "Z AY1 K S")
	require.NoError(t, err)
	assert.False(t, inserted, "second add of a session word is a no-op")
	assert.Equal(t, []string{"zzyx"}, s.AddedWords())

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows[1].Unknown)
	assert.Equal(t, 0, annotate.Count(rows[1].Spans, annotate.TagUnknown))
	assert.Equal(t, []string{"qwopp", "blorft"}, rows[2].Unknown)

	assert.Equal(t, 1, testutil.CountFiles(t, filepath.Join(ds.Root, "archive")), "dictionary backed up once")
}

func TestAddWordRetryAfterWriteFailure(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, func(c *Config) { c.Backup = false }, Deps{})
	ctx := context.Background()

	require.NoError(t, os.Rename(ds.DictPath, ds.DictPath+".saved"))
	require.NoError(t, os.MkdirAll(filepath.Join(ds.DictPath, "blocker"), 0755))

	inserted, err := s.AddWord(ctx, "zzyx", "Z IH1 K S")
	require.ErrorIs(t, err, dictionary.ErrIO)
	assert.False(t, inserted)
	assert.Empty(t, s.AddedWords())

	require.NoError(t, os.RemoveAll(ds.DictPath))
	require.NoError(t, os.Rename(ds.DictPath+".saved", ds.DictPath))

	inserted, err = s.AddWord(ctx, "zzyx", "Z IH1 K S")
	require.NoError(t, err)
	assert.True(t, inserted)
	testutil.AssertFileContains(t, ds.DictPath, "zzyx Z IH1 K S\n")
}

func TestAddWordRejectsInvalidARPAbet(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, nil, Deps{})

	_, err := s.AddWord(context.Background(), "zzyx", "not arpabet")
	require.Error(t, err)
	testutil.AssertFileContent(t, ds.DictPath, []byte(testutil.SampleDict))
}

func TestAddWordPolicy(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, func(c *Config) { c.Policy = dictionary.DedupGrapheme }, Deps{})

	inserted, err := s.AddWord(context.Background(), "press", "P R EH1 S S")
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestEditTranscription(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, func(c *Config) { c.Order = dataset.OrderUnknownWords }, Deps{})
	ctx := context.Background()

	require.NoError(t, s.EditTranscription(ctx, 1, "the zzyx press"))
	testutil.AssertFileContent(t, ds.FilelistPath(), []byte(
		"wavs/LJ001-0001.wav|Printing, in the only sense with which we are at present concerned\n"+
			"wavs/LJ001-0002.wav|the zzyx press\n"+
			"wavs/LJ001-0003.wav|qwopp and zzyx and blorft\n"))

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "the zzyx press ", annotate.Text(rows[1].Spans))
	assert.Equal(t, 0, annotate.Count(rows[1].Spans, annotate.TagRepeat))

	require.NoError(t, s.EditTranscription(ctx, 1, "the press"))
	archive := filepath.Join(ds.Root, "archive")
	assert.Equal(t, 1, testutil.CountFiles(t, archive), "filelist backed up once per session")

	// Unchanged text does not touch the file.
	require.NoError(t, s.EditTranscription(ctx, 0, "Printing, in the only sense with which we are at present concerned"))

	require.NoError(t, s.Reload())
	assert.Equal(t, 3, s.TotalRows())
}

func TestEditTranscriptionErrors(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, nil, Deps{})
	ctx := context.Background()

	assert.Error(t, s.EditTranscription(ctx, 42, "x"))
	assert.Error(t, s.EditTranscription(ctx, 0, "pipe | inside"))
	testutil.AssertFileContent(t, ds.FilelistPath(), []byte(testutil.SampleFilelist))

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Printing,", rows[0].Spans[0].Text[:9], "failed save must not keep the new text")
}

func TestPreview(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	provider := &testutil.MockProvider{Refs: map[string]string{"{ Z IH1 K S }": "/clips/zzyx.wav"}}
	s := openSession(t, ds, nil, Deps{Provider: provider})

	ref, err := s.Preview(context.Background(), " Z IH1  K S ")
	require.NoError(t, err)
	assert.Equal(t, "/clips/zzyx.wav", ref)
	assert.Equal(t, []string{"{ Z IH1 K S } (voice=lj)"}, provider.Calls)

	_, err = s.Preview(context.Background(), "XX")
	assert.Error(t, err)
	assert.Equal(t, 1, provider.CallCount(), "invalid ARPAbet is not sent")
}

func TestPreviewErrors(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, nil, Deps{})
	_, err := s.Preview(context.Background(), "K AE1 T")
	assert.ErrorIs(t, err, ErrNoProvider)

	failing := &testutil.MockProvider{Err: audio.ErrSynthesisTimeout}
	s = openSession(t, ds, nil, Deps{Provider: failing})
	_, err = s.Preview(context.Background(), "K AE1 T")
	assert.ErrorIs(t, err, audio.ErrSynthesisTimeout)
}

func TestSpeakText(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	provider := &testutil.MockProvider{}
	s := openSession(t, ds, func(c *Config) { c.DownloadDir = t.TempDir() }, Deps{Provider: provider})

	ref, err := s.SpeakText(context.Background(), "the press")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mock-1.wav", ref, "local references are not downloaded")

	_, err = s.SpeakText(context.Background(), "  ")
	assert.Error(t, err)
}

func TestImportWords(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	predictor := &testutil.MockPredictor{Answers: map[string]string{"blorft": "B L AO1 R F T"}}
	s := openSession(t, ds, nil, Deps{Predictor: predictor})
	ctx := context.Background()

	result, err := s.ImportWords(ctx, []batch.WordEntry{
		{Grapheme: "qwopp", ARPAbet: "K W AA1 P", Line: 1},
		{Grapheme: "blorft", NeedsPrediction: true, Line: 2},
		{Grapheme: "bad", ARPAbet: "XX YY", Line: 3},
		{Grapheme: "press", ARPAbet: "P R EH1 S", Line: 4},
		{Grapheme: "mystery", NeedsPrediction: true, Line: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Predicted)
	assert.Len(t, result.Failed, 2)

	testutil.AssertFileContains(t, ds.DictPath, "blorft B L AO1 R F T\n")
	testutil.AssertFileContains(t, ds.DictPath, "qwopp K W AA1 P\n")

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"zzyx"}, rows[2].Unknown)
}

func TestSuggestAndCheck(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, nil, Deps{})
	ctx := context.Background()

	arpabet, err := s.SuggestARPAbet(ctx, "press")
	require.NoError(t, err)
	assert.Equal(t, "P R EH1 S", arpabet)

	arpabet, err = s.SuggestARPAbet(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, "K AE1 T", arpabet)

	lookup, err := s.CheckWord(ctx, "the zzyx")
	require.NoError(t, err)
	assert.Equal(t, []string{"the"}, lookup.Known())
	assert.Equal(t, []string{"zzyx"}, lookup.Unknown())
}

func TestOpenErrors(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	ctx := context.Background()

	_, err := Open(ctx, Config{DatasetRoot: ds.Root, Filelist: ds.Filelist, DictPath: filepath.Join(ds.Root, "missing.dict")}, Deps{})
	assert.ErrorIs(t, err, dictionary.ErrIO)

	_, err = Open(ctx, Config{DatasetRoot: ds.Root, Filelist: "missing.csv", DictPath: ds.DictPath}, Deps{})
	assert.True(t, errors.Is(err, dataset.ErrIO), "got %v", err)
}

func TestListDataset(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	names, err := ListDataset(ds.Root)
	require.NoError(t, err)
	assert.Equal(t, []string{"cmudict.dict", "metadata.csv", "wavs/"}, names)

	_, err = ListDataset(filepath.Join(ds.Root, "nope"))
	assert.Error(t, err)
}

func TestSetPredictor(t *testing.T) {
	ds := testutil.CreateTestDataset(t)
	s := openSession(t, ds, nil, Deps{})

	s.SetPredictor(&testutil.MockPredictor{Answers: map[string]string{"zzyx": "Z IH1 K S"}})
	arpabet, err := s.SuggestARPAbet(context.Background(), "zzyx")
	require.NoError(t, err)
	assert.Equal(t, "Z IH1 K S", arpabet)
}
