package dictionary

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE dict (grapheme TEXT NOT NULL, arpa TEXT NOT NULL, grapheme_order TEXT NOT NULL);
CREATE INDEX dict_grapheme_order ON dict(grapheme_order);
CREATE UNIQUE INDEX dict_grapheme_arpa ON dict(grapheme, arpa);
`

// Entry is one line of the dictionary file.
type Entry struct {
	Grapheme string
	Phonemes string
	SortKey  string
}

// SortKey derives the ordering key of a grapheme. A space is inserted before
// every "(" so that "word" sorts directly before "word(2)".
func SortKey(grapheme string) string {
	return strings.ReplaceAll(grapheme, "(", " (")
}

// Store is the in-memory indexed dictionary table.
type Store struct {
	db     *sql.DB
	path   string
	policy DedupPolicy
	dirty  bool
}

// New creates an empty store that is not bound to a file.
func New(ctx context.Context) (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Load reads a dictionary file into a new store. A line without a space
// aborts the load with a *ParseError; nothing is silently dropped.
func Load(ctx context.Context, path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("read", path, err)
	}

	entries, err := parse(path, string(data))
	if err != nil {
		return nil, err
	}

	s, err := New(ctx)
	if err != nil {
		return nil, err
	}
	s.path = path

	if err := s.insertBulk(ctx, entries); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func parse(path, content string) ([]Entry, error) {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	entries := make([]Entry, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		grapheme, phonemes, ok := strings.Cut(line, " ")
		if !ok {
			return nil, &ParseError{Path: path, Line: i + 1, Text: line}
		}
		entries = append(entries, Entry{
			Grapheme: grapheme,
			Phonemes: phonemes,
			SortKey:  SortKey(grapheme),
		})
	}
	return entries, nil
}

func insertSQL() (string, error) {
	query, _, err := sq.Insert("dict").
		Options("OR IGNORE").
		Columns("grapheme", "arpa", "grapheme_order").
		Values("", "", "").
		ToSql()
	return query, err
}

func (s *Store) insertBulk(ctx context.Context, entries []Entry) error {
	query, err := insertSQL()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Grapheme, e.Phonemes, e.SortKey); err != nil {
			return fmt.Errorf("insert %q: %w", e.Grapheme, err)
		}
	}
	return tx.Commit()
}

// Path returns the file the store was loaded from, if any.
func (s *Store) Path() string {
	return s.path
}

// SetPolicy changes the dedup policy applied by Insert.
func (s *Store) SetPolicy(p DedupPolicy) {
	s.policy = p
}

// Policy returns the dedup policy applied by Insert.
func (s *Store) Policy() DedupPolicy {
	return s.policy
}

// Insert adds a (grapheme, phonemes) pair. The grapheme is lowercased. The
// insert is skipped when the session already saw the grapheme, or when the
// store's DedupPolicy finds it in the table. It reports whether a row was
// added. Insert does not touch the backing file; see AddWord.
func (s *Store) Insert(ctx context.Context, session *Session, grapheme, phonemes string) (bool, error) {
	grapheme = strings.ToLower(grapheme)
	done, inserted, err := s.insert(ctx, session, grapheme, phonemes)
	if err != nil || done {
		return false, err
	}
	session.add(grapheme, phonemes)
	return inserted, nil
}

// insert runs the session and policy gates and then the INSERT. done reports
// that a gate stopped the pair before it reached the table. A successful
// insert marks the store dirty but never touches session.
func (s *Store) insert(ctx context.Context, session *Session, grapheme, phonemes string) (done, inserted bool, err error) {
	if err := validate(grapheme, phonemes); err != nil {
		return true, false, err
	}
	if session.Has(grapheme) {
		return true, false, nil
	}

	switch s.policy {
	case DedupGrapheme:
		found, err := s.Contains(ctx, grapheme)
		if err != nil {
			return true, false, err
		}
		if found {
			session.add(grapheme, phonemes)
			return true, false, nil
		}
	case DedupPair:
		found, err := s.containsPair(ctx, grapheme, phonemes)
		if err != nil {
			return true, false, err
		}
		if found {
			session.add(grapheme, phonemes)
			return true, false, nil
		}
	}

	query, args, err := sq.Insert("dict").
		Options("OR IGNORE").
		Columns("grapheme", "arpa", "grapheme_order").
		Values(grapheme, phonemes, SortKey(grapheme)).
		ToSql()
	if err != nil {
		return true, false, err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return true, false, fmt.Errorf("insert %q: %w", grapheme, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return true, false, err
	}
	if n > 0 {
		s.dirty = true
	}
	return false, n > 0, nil
}

// remove deletes one pair from the table.
func (s *Store) remove(ctx context.Context, grapheme, phonemes string) error {
	query, args, err := sq.Delete("dict").
		Where(sq.Eq{"grapheme": grapheme, "arpa": phonemes}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove %q: %w", grapheme, err)
	}
	return nil
}

// Dirty reports whether the table holds rows that no successful Flush has
// written yet.
func (s *Store) Dirty() bool {
	return s.dirty
}

func validate(grapheme, phonemes string) error {
	switch {
	case grapheme == "":
		return fmt.Errorf("%w: empty grapheme", ErrInvalidEntry)
	case strings.ContainsAny(grapheme, " \t\r\n"):
		return fmt.Errorf("%w: grapheme %q contains whitespace", ErrInvalidEntry, grapheme)
	case strings.TrimSpace(phonemes) == "":
		return fmt.Errorf("%w: empty phoneme sequence for %q", ErrInvalidEntry, grapheme)
	case strings.ContainsAny(phonemes, "\r\n"):
		return fmt.Errorf("%w: phoneme sequence for %q contains a line break", ErrInvalidEntry, grapheme)
	}
	return nil
}

// AddWord inserts the pair and rewrites the backing file. The session only
// learns the grapheme once the file is written; on a failed write the new
// row is taken back out so a retry inserts and flushes again.
func (s *Store) AddWord(ctx context.Context, session *Session, grapheme, phonemes string) (bool, error) {
	if s.path == "" {
		return false, fmt.Errorf("%w: store has no backing file", ErrIO)
	}
	grapheme = strings.ToLower(grapheme)
	wasDirty := s.dirty
	done, inserted, err := s.insert(ctx, session, grapheme, phonemes)
	if err != nil || done {
		return false, err
	}
	if !inserted && !s.dirty {
		session.add(grapheme, phonemes)
		return false, nil
	}

	if err := s.Flush(ctx, s.path); err != nil {
		if inserted {
			if rerr := s.remove(ctx, grapheme, phonemes); rerr != nil {
				return false, errors.Join(err, rerr)
			}
			s.dirty = wasDirty
		}
		return false, err
	}
	session.add(grapheme, phonemes)
	return inserted, nil
}

// Flush writes every entry to path in sort-key order, one pair per line.
// The content goes to a temporary file first and is renamed into place.
func (s *Store) Flush(ctx context.Context, path string) error {
	entries, err := s.Entries(ctx)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return ioError("create", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %s\n", e.Grapheme, e.Phonemes); err != nil {
			tmp.Close()
			return ioError("write", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return ioError("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return ioError("close", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return ioError("chmod", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return ioError("rename", path, err)
	}
	if path == s.path {
		s.dirty = false
	}
	return nil
}

func (s *Store) query(ctx context.Context, b sq.SelectBuilder) ([]Entry, error) {
	query, args, err := b.OrderBy("grapheme_order", "grapheme", "arpa").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dictionary: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Grapheme, &e.Phonemes, &e.SortKey); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func selectEntries() sq.SelectBuilder {
	return sq.Select("grapheme", "arpa", "grapheme_order").From("dict")
}

// Entries returns all entries in sort-key order.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	return s.query(ctx, selectEntries())
}

// Lookup returns the entries for grapheme and its "(n)" variants.
func (s *Store) Lookup(ctx context.Context, grapheme string) ([]Entry, error) {
	grapheme = strings.ToLower(grapheme)
	variant := grapheme + "("
	return s.query(ctx, selectEntries().Where(sq.Or{
		sq.Eq{"grapheme": grapheme},
		sq.Expr("substr(grapheme, 1, ?) = ?", utf8.RuneCountInString(variant), variant),
	}))
}

// Contains reports whether grapheme has at least one entry.
func (s *Store) Contains(ctx context.Context, grapheme string) (bool, error) {
	return s.exists(ctx, sq.Eq{"grapheme": strings.ToLower(grapheme)})
}

func (s *Store) containsPair(ctx context.Context, grapheme, phonemes string) (bool, error) {
	return s.exists(ctx, sq.Eq{"grapheme": grapheme, "arpa": phonemes})
}

func (s *Store) exists(ctx context.Context, where sq.Eq) (bool, error) {
	query, args, err := sq.Select("1").From("dict").Where(where).Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query dictionary: %w", err)
	}
	return true, nil
}

// Len returns the number of entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("dict").ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dictionary: %w", err)
	}
	return n, nil
}

// Close releases the in-memory database.
func (s *Store) Close() error {
	return s.db.Close()
}
