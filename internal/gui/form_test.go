package gui

import (
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/dsreview/internal/dataset"
	"codeberg.org/snonux/dsreview/internal/dictionary"
	"codeberg.org/snonux/dsreview/internal/review"
	"codeberg.org/snonux/dsreview/internal/testutil"
)

func TestFormRoundTrip(t *testing.T) {
	base := review.Config{
		DatasetRoot: "/data/LJSpeech",
		Filelist:    "list-copy.txt",
		Delimiter:   '\t',
		Start:       0,
		End:         15,
		Order:       dataset.OrderUnknownWords,
		DictPath:    "/data/LJSpeech/cmudict.dict",
		Policy:      dictionary.DedupPair,
		Voice:       "lj",
		Backup:      true,
	}

	values := valuesFromConfig(base)
	if values.Delimiter != "tab" || values.Sort != "unknown_words" || values.End != "15" {
		t.Errorf("valuesFromConfig() = %+v", values)
	}

	got, err := values.apply(review.Config{Policy: dictionary.DedupPair, Voice: "lj", Backup: true})
	if err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if got != base {
		t.Errorf("apply() = %+v, want %+v", got, base)
	}
}

func TestFormApply(t *testing.T) {
	valid := formValues{
		Dataset:   "/data/LJSpeech",
		Filelist:  "metadata.csv",
		Delimiter: "|",
		Start:     " 10 ",
		End:       "25",
		Sort:      "index",
	}

	cfg, err := valid.apply(review.Config{Voice: "lj"})
	if err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if cfg.Start != 10 || cfg.End != 25 || cfg.Delimiter != '|' || cfg.Voice != "lj" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.DictPath != filepath.Join("/data/LJSpeech", "cmudict.dict") {
		t.Errorf("DictPath = %s", cfg.DictPath)
	}

	tests := []struct {
		name   string
		modify func(*formValues)
	}{
		{"missing dataset", func(f *formValues) { f.Dataset = " " }},
		{"missing filelist", func(f *formValues) { f.Filelist = "" }},
		{"bad delimiter", func(f *formValues) { f.Delimiter = "::" }},
		{"bad start", func(f *formValues) { f.Start = "ten" }},
		{"negative start", func(f *formValues) { f.Start = "-1" }},
		{"end before start", func(f *formValues) { f.End = "5" }},
		{"bad sort", func(f *formValues) { f.Sort = "random" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := valid
			tt.modify(&values)
			base := review.Config{Voice: "lj", End: 3}
			got, err := values.apply(base)
			if err == nil {
				t.Fatalf("expected error, got %+v", got)
			}
			if got != base {
				t.Error("a failed apply must return the base config")
			}
		})
	}
}

func TestDatasetListing(t *testing.T) {
	ds := testutil.CreateTestDataset(t)

	listing := datasetListing(ds.Root)
	if listing != "cmudict.dict\nmetadata.csv\nwavs/" {
		t.Errorf("datasetListing() = %q", listing)
	}

	missing := filepath.Join(ds.Root, "nope")
	if got := datasetListing(missing); !strings.HasSuffix(got, "does not exist!") {
		t.Errorf("datasetListing(missing) = %q", got)
	}

	if got := datasetListing(t.TempDir()); got != "(empty)" {
		t.Errorf("datasetListing(empty) = %q", got)
	}
}
