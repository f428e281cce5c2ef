// Package storage wraps the SQLite database holding mood entries.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/haven-labs/mindhaven/backend/internal/model/mood"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with mood persistence methods.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database in dataDir and applies pending
// migrations. Pass ":memory:" for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "mindhaven.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection avoids "database is locked" errors with this driver.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	base := strings.SplitN(filename, "_", 2)[0]
	version, err := strconv.Atoi(base)
	if err != nil {
		return 0, fmt.Errorf("migration filename %q has no numeric prefix", filename)
	}
	return version, nil
}

// SaveMood inserts an entry and returns its generated id.
func (s *Store) SaveMood(ctx context.Context, entry mood.Entry) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO moods (entry_date, mood, factors, note) VALUES (?, ?, ?, ?)",
		entry.Date, entry.Mood, entry.Factors, entry.Note)
	if err != nil {
		return 0, fmt.Errorf("inserting mood: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

// ListMoods returns the date/mood history ordered by date.
func (s *Store) ListMoods(ctx context.Context) ([]mood.Point, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT entry_date, mood FROM moods ORDER BY entry_date")
	if err != nil {
		return nil, fmt.Errorf("querying moods: %w", err)
	}
	defer rows.Close()

	points := make([]mood.Point, 0, 16)
	for rows.Next() {
		var p mood.Point
		if err := rows.Scan(&p.Date, &p.Mood); err != nil {
			return nil, fmt.Errorf("scanning mood row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// MoodSummary buckets all stored scores into coarse bands.
func (s *Store) MoodSummary(ctx context.Context) (mood.Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT mood FROM moods")
	if err != nil {
		return mood.Summary{}, fmt.Errorf("querying mood scores: %w", err)
	}
	defer rows.Close()

	var summary mood.Summary
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return mood.Summary{}, fmt.Errorf("scanning mood score: %w", err)
		}
		summary.Bucket(score)
	}
	return summary, rows.Err()
}

// ListFactors returns the raw factor strings of all entries in insertion
// order. Rows with NULL factors are skipped; blank strings are kept and left
// to the aggregator.
func (s *Store) ListFactors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT factors FROM moods ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying factors: %w", err)
	}
	defer rows.Close()

	factors := make([]string, 0, 16)
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning factors row: %w", err)
		}
		if !raw.Valid {
			continue
		}
		factors = append(factors, raw.String)
	}
	return factors, rows.Err()
}
