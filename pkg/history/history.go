// Package history persists executed requests in a local SQLite database so
// past sends can be listed, searched and replayed.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reqforge/reqforge/pkg/compress"
	"github.com/reqforge/reqforge/pkg/dbtime"
	"github.com/reqforge/reqforge/pkg/idwrap"
)

// ErrNotFound is returned when no entry matches the requested id.
var ErrNotFound = errors.New("history: entry not found")

// Request docs above this size are stored zstd-compressed.
const compressThreshold = 4 << 10

// Entry is one executed request. RequestDoc holds the portable request
// document so an entry can be re-sent exactly as it ran.
type Entry struct {
	ID             idwrap.IDWrap
	ExecutedAt     time.Time
	Method         string
	URL            string
	RequestDoc     []byte
	Status         int
	DurationMillis float64
	ResponseSize   int64
	Error          string
}

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS request_history (
    id BLOB PRIMARY KEY,
    executed_at INTEGER NOT NULL,
    method TEXT NOT NULL,
    url TEXT NOT NULL,
    request_doc BLOB,
    doc_compressed INTEGER NOT NULL DEFAULT 0,
    status INTEGER NOT NULL DEFAULT 0,
    duration_ms REAL NOT NULL DEFAULT 0,
    response_size INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
);
`

const createHistoryExecutedAtIdx = `
CREATE INDEX IF NOT EXISTS idx_request_history_executed_at ON request_history(executed_at DESC);
`

const entryColumns = "id, executed_at, method, url, request_doc, doc_compressed, status, duration_ms, response_size, error"

const (
	insertEntrySQL = "INSERT INTO request_history (" + entryColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	getEntrySQL    = "SELECT " + entryColumns + " FROM request_history WHERE id = ?"
	listEntriesSQL = "SELECT " + entryColumns + " FROM request_history ORDER BY executed_at DESC, id DESC LIMIT ? OFFSET ?"
	searchSQL      = "SELECT " + entryColumns + " FROM request_history WHERE method LIKE ? ESCAPE '\\' OR url LIKE ? ESCAPE '\\' ORDER BY executed_at DESC, id DESC LIMIT ?"
	deleteEntrySQL = "DELETE FROM request_history WHERE id = ?"
	clearSQL       = "DELETE FROM request_history"
	countSQL       = "SELECT COUNT(*) FROM request_history"
)

// Store is a history database handle. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
	get    *sql.Stmt
	list   *sql.Stmt
	search *sql.Stmt
	delete *sql.Stmt
	clear  *sql.Stmt
	count  *sql.Stmt
}

// Open opens or creates the history database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, createHistoryTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: creating request_history table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createHistoryExecutedAtIdx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: creating executed_at index: %w", err)
	}

	s := &Store{db: db}
	for _, p := range []struct {
		query string
		dst   **sql.Stmt
	}{
		{insertEntrySQL, &s.insert},
		{getEntrySQL, &s.get},
		{listEntriesSQL, &s.list},
		{searchSQL, &s.search},
		{deleteEntrySQL, &s.delete},
		{clearSQL, &s.clear},
		{countSQL, &s.count},
	} {
		stmt, err := db.PrepareContext(ctx, p.query)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("history: preparing statement: %w", err)
		}
		*p.dst = stmt
	}
	return s, nil
}

// Close releases the prepared statements and the database handle.
func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{s.insert, s.get, s.list, s.search, s.delete, s.clear, s.count} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

// Save stores entry, assigning a fresh ULID and UTC timestamp when the caller
// left them zero, and returns the entry as stored.
func (s *Store) Save(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID.IsZero() {
		entry.ID = idwrap.NewNow()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = dbtime.DBNow()
	} else {
		entry.ExecutedAt = dbtime.DBTime(entry.ExecutedAt)
	}

	doc, compressed, err := packDoc(entry.RequestDoc)
	if err != nil {
		return Entry{}, fmt.Errorf("history: compressing request doc: %w", err)
	}
	_, err = s.insert.ExecContext(ctx,
		entry.ID, dbtime.ToMillis(entry.ExecutedAt), entry.Method, entry.URL,
		doc, compressed, entry.Status, entry.DurationMillis, entry.ResponseSize, entry.Error,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("history: saving entry: %w", err)
	}
	return entry, nil
}

// Get fetches a single entry by id.
func (s *Store) Get(ctx context.Context, id idwrap.IDWrap) (Entry, error) {
	entry, err := scanEntry(s.get.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("history: reading entry: %w", err)
	}
	return entry, nil
}

// List returns entries newest first. A non-positive limit means 50.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.list.QueryContext(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("history: listing entries: %w", err)
	}
	return collectEntries(rows)
}

// Search matches term case-insensitively against method and URL.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(term) + "%"
	rows, err := s.search.QueryContext(ctx, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("history: searching entries: %w", err)
	}
	return collectEntries(rows)
}

// Delete removes one entry, reporting ErrNotFound when the id is unknown.
func (s *Store) Delete(ctx context.Context, id idwrap.IDWrap) error {
	res, err := s.delete.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("history: deleting entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: deleting entry: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.clear.ExecContext(ctx); err != nil {
		return fmt.Errorf("history: clearing entries: %w", err)
	}
	return nil
}

// Count reports how many entries are stored.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.count.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("history: counting entries: %w", err)
	}
	return n, nil
}

func packDoc(doc []byte) ([]byte, bool, error) {
	if len(doc) <= compressThreshold {
		return doc, false, nil
	}
	packed, err := compress.Compress(doc, compress.CompressTypeZstd)
	if err != nil {
		return nil, false, err
	}
	return packed, true, nil
}

func unpackDoc(doc []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return doc, nil
	}
	return compress.Decompress(doc, compress.CompressTypeZstd)
}

func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry      Entry
		executedAt int64
		compressed bool
	)
	err := row.Scan(&entry.ID, &executedAt, &entry.Method, &entry.URL,
		&entry.RequestDoc, &compressed, &entry.Status, &entry.DurationMillis,
		&entry.ResponseSize, &entry.Error)
	if err != nil {
		return Entry{}, err
	}
	entry.ExecutedAt = dbtime.FromMillis(executedAt)
	doc, err := unpackDoc(entry.RequestDoc, compressed)
	if err != nil {
		return Entry{}, fmt.Errorf("decompressing request doc: %w", err)
	}
	entry.RequestDoc = doc
	return entry, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("history: scanning entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterating entries: %w", err)
	}
	return entries, nil
}
