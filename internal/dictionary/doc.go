// Package dictionary implements the pronunciation dictionary store: a
// line-oriented "grapheme phonemes" file loaded into an in-memory SQLite
// table for indexed lookup, and flushed back to disk in sort-key order
// after every mutation.
package dictionary
