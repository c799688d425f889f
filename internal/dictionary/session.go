package dictionary

import (
	"fmt"
	"strings"
)

// Session remembers the graphemes added during one review session. It only
// grows and is never persisted; a new reviewer session starts empty.
type Session struct {
	added map[string]string
	order []string
}

// NewSession creates an empty session cache
func NewSession() *Session {
	return &Session{added: make(map[string]string)}
}

// Has reports whether grapheme was added during this session.
func (s *Session) Has(grapheme string) bool {
	if s == nil {
		return false
	}
	_, ok := s.added[grapheme]
	return ok
}

// Phonemes returns the phoneme sequence recorded for grapheme.
func (s *Session) Phonemes(grapheme string) (string, bool) {
	if s == nil {
		return "", false
	}
	p, ok := s.added[grapheme]
	return p, ok
}

func (s *Session) add(grapheme, phonemes string) {
	if _, ok := s.added[grapheme]; !ok {
		s.order = append(s.order, grapheme)
	}
	s.added[grapheme] = phonemes
}

// Words returns the added graphemes in insertion order.
func (s *Session) Words() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Len returns the number of graphemes added this session.
func (s *Session) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// DedupPolicy decides what blocks a repeated insert.
type DedupPolicy int

const (
	// DedupSession only consults the session cache. A grapheme that is in
	// the file from an earlier session is inserted again.
	DedupSession DedupPolicy = iota
	// DedupGrapheme also skips graphemes already present in the table.
	DedupGrapheme
	// DedupPair also skips exact (grapheme, phonemes) pairs already present.
	DedupPair
)

func (p DedupPolicy) String() string {
	switch p {
	case DedupSession:
		return "session"
	case DedupGrapheme:
		return "grapheme"
	case DedupPair:
		return "pair"
	default:
		return "unknown"
	}
}

// ParseDedupPolicy parses the configuration spelling of a policy.
func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "session":
		return DedupSession, nil
	case "grapheme":
		return DedupGrapheme, nil
	case "pair":
		return DedupPair, nil
	default:
		return DedupSession, fmt.Errorf("unknown dedup policy: %s", s)
	}
}
