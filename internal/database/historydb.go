package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitegrep/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "sitegrep.db"

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB is the run history store.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a crawl with --save first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		mode = "rw"
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		seed_url TEXT NOT NULL,
		search_string TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages_visited INTEGER NOT NULL DEFAULT 0,
		match_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		snippet TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_matches_run ON matches(run_id);

	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is the summary of one saved run.
type RunRecord struct {
	ID           int64
	UUID         string
	SeedURL      string
	SearchString string
	MaxDepth     int
	StartedAt    time.Time
	FinishedAt   time.Time
	PagesVisited int
	MatchCount   int
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// SaveResult stores a finished run with its visited pages and matches in
// one transaction and returns the new run ID.
func (h *HistoryDB) SaveResult(ctx context.Context, result *model.Result) (int64, error) {
	if result == nil {
		return 0, errors.New("result is nil")
	}

	runUUID := result.ID
	if runUUID == "" {
		runUUID = uuid.NewString()
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (uuid, seed_url, search_string, max_depth, started_at, finished_at, pages_visited, match_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runUUID,
		result.SeedURL,
		result.SearchString,
		result.MaxDepth,
		formatTimestamp(result.StartedAt),
		formatTimestamp(result.FinishedAt),
		result.PageCount(),
		result.MatchCount(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	pageStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, position, url, depth)
	VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer pageStmt.Close()

	for i, p := range result.Visited {
		if _, err := pageStmt.ExecContext(ctx, runID, i, p.URL, p.Depth); err != nil {
			return 0, fmt.Errorf("failed to insert page: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO matches (run_id, position, url, depth, start_offset, end_offset, snippet)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range result.Matches {
		if _, err := stmt.ExecContext(ctx, runID, i, m.URL, m.Depth,
			m.Context.Start, m.Context.End, m.Context.Text); err != nil {
			return 0, fmt.Errorf("failed to insert match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, uuid, seed_url, search_string, max_depth, started_at, finished_at, pages_visited, match_count
	FROM runs
	ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// GetRun returns a single run summary.
func (h *HistoryDB) GetRun(ctx context.Context, runID int64) (*RunRecord, error) {
	row := h.db.QueryRowContext(ctx, `
	SELECT id, uuid, seed_url, search_string, max_depth, started_at, finished_at, pages_visited, match_count
	FROM runs
	WHERE id = ?
	`, runID)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetMatches returns the matches of a run in the order they were found.
func (h *HistoryDB) GetMatches(ctx context.Context, runID int64) ([]model.Match, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT url, depth, start_offset, end_offset, snippet
	FROM matches
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	defer rows.Close()

	matches := make([]model.Match, 0)
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.URL, &m.Depth, &m.Context.Start, &m.Context.End, &m.Context.Text); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetPages returns the pages fetched by a run in visit order.
func (h *HistoryDB) GetPages(ctx context.Context, runID int64) ([]model.PageVisit, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT url, depth
	FROM pages
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}
	defer rows.Close()

	pages := make([]model.PageVisit, 0)
	for rows.Next() {
		var p model.PageVisit
		if err := rows.Scan(&p.URL, &p.Depth); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// LoadResult rebuilds the model.Result of a saved run.
func (h *HistoryDB) LoadResult(ctx context.Context, runID int64) (*model.Result, error) {
	run, err := h.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	pages, err := h.GetPages(ctx, runID)
	if err != nil {
		return nil, err
	}
	matches, err := h.GetMatches(ctx, runID)
	if err != nil {
		return nil, err
	}

	return &model.Result{
		ID:           run.UUID,
		SeedURL:      run.SeedURL,
		SearchString: run.SearchString,
		MaxDepth:     run.MaxDepth,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		Visited:      pages,
		Matches:      matches,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var rec RunRecord
	var started, finished string
	err := row.Scan(
		&rec.ID,
		&rec.UUID,
		&rec.SeedURL,
		&rec.SearchString,
		&rec.MaxDepth,
		&started,
		&finished,
		&rec.PagesVisited,
		&rec.MatchCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan run: %w", err)
	}
	rec.StartedAt = parseTimestamp(started)
	rec.FinishedAt = parseTimestamp(finished)
	return rec, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats lists the layouts accepted when reading timestamps back.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
