package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scipunch/bohemka-bot/fetcher/types"
	"github.com/scipunch/bohemka-bot/publisher"
)

//go:embed schema.sql
var schemaSQL string

// History is an append-only ledger of submissions. It never decides what
// gets posted; it only remembers what was.
type History struct {
	db  *sql.DB
	now func() time.Time
}

// Stats contains ledger statistics
type Stats struct {
	Submissions  int
	Links        int
	LastRecorded time.Time
}

// New opens (or creates) the ledger database at the given path
func New(dbPath string) (*History, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Execute schema
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &History{db: db, now: time.Now}, nil
}

// Record appends a submission of article
func (h *History) Record(ctx context.Context, article types.Article, sub publisher.Submission) error {
	var created int64
	if !sub.Created.IsZero() {
		created = sub.Created.Unix()
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO submissions
		(link, title, published_at, destination, submission_id, submission_url, created_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, article.Link, article.Title, article.Date.Unix(), sub.Destination, sub.ID, sub.URL, created, h.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record submission of %s: %w", article.Link, err)
	}

	return nil
}

// Seen reports whether link has been submitted before
func (h *History) Seen(ctx context.Context, link string) (bool, error) {
	var n int
	err := h.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM submissions WHERE link = ?", link,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query history: %w", err)
	}
	return n > 0, nil
}

// Clear removes all ledger entries
func (h *History) Clear() error {
	if _, err := h.db.Exec("DELETE FROM submissions"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Stats returns ledger statistics
func (h *History) Stats() (Stats, error) {
	var stats Stats

	err := h.db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT link) FROM submissions").Scan(&stats.Submissions, &stats.Links)
	if err != nil {
		return stats, err
	}

	var lastUnix sql.NullInt64
	err = h.db.QueryRow("SELECT MAX(recorded_at) FROM submissions").Scan(&lastUnix)
	if err != nil && err != sql.ErrNoRows {
		return stats, err
	}
	if lastUnix.Valid && lastUnix.Int64 > 0 {
		stats.LastRecorded = time.Unix(lastUnix.Int64, 0)
	}

	return stats, nil
}

// Close closes the ledger database
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}
