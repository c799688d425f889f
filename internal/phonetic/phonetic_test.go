package phonetic

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"codeberg.org/snonux/dsreview/internal/dictionary"
)

func newTestDict(t *testing.T, pairs ...string) *dictionary.Store {
	t.Helper()
	ctx := context.Background()
	store, err := dictionary.New(ctx)
	if err != nil {
		t.Fatalf("dictionary.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	session := dictionary.NewSession()
	for i := 0; i+1 < len(pairs); i += 2 {
		if _, err := store.Insert(ctx, session, pairs[i], pairs[i+1]); err != nil {
			t.Fatalf("Insert(%q): %v", pairs[i], err)
		}
	}
	return store
}

func TestCheckLookup(t *testing.T) {
	dict := newTestDict(t,
		"the", "DH AH0",
		"cat", "K AE1 T",
		"don't", "D OW1 N T",
		"well", "W EH1 L",
		"known", "N OW1 N",
	)
	checker := NewDictChecker(dict)

	tests := []struct {
		name        string
		text        string
		wantKnown   []string
		wantUnknown []string
	}{
		{
			name:        "mixed",
			text:        "The zzyx cat",
			wantKnown:   []string{"the", "cat"},
			wantUnknown: []string{"zzyx"},
		},
		{
			name:      "punctuation is cleaned",
			text:      "Don't, cat!",
			wantKnown: []string{"don't", "cat"},
		},
		{
			name:      "quotes around word",
			text:      "'cat'",
			wantKnown: []string{"'cat'"},
		},
		{
			name:      "hyphenated compound of known words",
			text:      "well-known",
			wantKnown: []string{"well-known"},
		},
		{
			name:        "hyphenated compound with unknown part",
			text:        "well-zzyx",
			wantUnknown: []string{"well-zzyx"},
		},
		{
			name:        "duplicates listed once",
			text:        "zzyx zzyx the the",
			wantKnown:   []string{"the"},
			wantUnknown: []string{"zzyx"},
		},
		{
			name: "numbers and empty words skipped",
			text: "1999  --",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.CheckLookup(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("CheckLookup: %v", err)
			}
			if !reflect.DeepEqual(got.Known(), tt.wantKnown) {
				t.Errorf("Known() = %v, want %v", got.Known(), tt.wantKnown)
			}
			if !reflect.DeepEqual(got.Unknown(), tt.wantUnknown) {
				t.Errorf("Unknown() = %v, want %v", got.Unknown(), tt.wantUnknown)
			}
		})
	}
}

func TestValidateARPAbet(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"HH AH0 L OW1", false},
		{"K AE1 T", false},
		{"K AE T", false},
		{"", true},
		{"   ", true},
		{"HH AH0 XX", true},
		{"K1 AE T", true},
		{"hh ah0", true},
	}
	for _, tt := range tests {
		err := ValidateARPAbet(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateARPAbet(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestSpeech(t *testing.T) {
	if got := Speech(" HH AH0 L OW1 "); got != "{ HH AH0 L OW1 }" {
		t.Errorf("Speech() = %q", got)
	}
}

func TestRulePredictor(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"cat", "K AE1 T"},
		{"make", "M AE1 K"},
		{"happy", "HH AE1 P IY0"},
		{"station", "S T AE1 SH AH0 N"},
		{"Night!", "N AY1 T"},
	}

	p := NewRulePredictor(nil)
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, err := p.Predict(context.Background(), tt.word)
			if err != nil {
				t.Fatalf("Predict(%q): %v", tt.word, err)
			}
			if got != tt.want {
				t.Errorf("Predict(%q) = %q, want %q", tt.word, got, tt.want)
			}
			if err := ValidateARPAbet(got); err != nil {
				t.Errorf("prediction is not valid ARPAbet: %v", err)
			}
		})
	}
}

func TestRulePredictorPrefersDictionary(t *testing.T) {
	dict := newTestDict(t, "colonel", "K ER1 N AH0 L")
	p := NewRulePredictor(dict)

	got, err := p.Predict(context.Background(), "Colonel")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != "K ER1 N AH0 L" {
		t.Errorf("Predict(Colonel) = %q, want dictionary pronunciation", got)
	}
}

func TestRulePredictorRejectsEmpty(t *testing.T) {
	if _, err := NewRulePredictor(nil).Predict(context.Background(), "123"); err == nil {
		t.Error("expected error for word without letters")
	}
}

type stubPredictor struct {
	answer string
	err    error
	calls  int
}

func (s *stubPredictor) Predict(ctx context.Context, word string) (string, error) {
	s.calls++
	return s.answer, s.err
}

func TestOpenAIPredictorFallsBackWithoutKey(t *testing.T) {
	fallback := &stubPredictor{answer: "K AE1 T"}
	p := NewOpenAIPredictor("", fallback, nil)

	got, err := p.Predict(context.Background(), "cat")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != "K AE1 T" || fallback.calls != 1 {
		t.Errorf("Predict() = %q after %d fallback calls", got, fallback.calls)
	}
}

func TestOpenAIPredictorPropagatesFallbackError(t *testing.T) {
	want := errors.New("boom")
	p := NewOpenAIPredictor("", &stubPredictor{err: want}, nil)
	if _, err := p.Predict(context.Background(), "cat"); !errors.Is(err, want) {
		t.Errorf("Predict() error = %v, want %v", err, want)
	}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"K AE1 T", "K AE1 T"},
		{"`k  ae1 t`", "K AE1 T"},
		{"/K AE1 T/.\nThe word cat.", "K AE1 T"},
	}
	for _, tt := range tests {
		if got := normalizeAnswer(tt.in); got != tt.want {
			t.Errorf("normalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
