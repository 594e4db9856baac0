// ABOUTME: SQLite-backed scan history: one row per audited target per run.
// ABOUTME: Stores risk and compliance scores so drift can be tracked over time.

package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arcqubit/pqcaudit/internal/assess"
	"github.com/arcqubit/pqcaudit/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	target          TEXT NOT NULL,
	language        TEXT NOT NULL,
	lines_scanned   INTEGER NOT NULL,
	total_findings  INTEGER NOT NULL,
	risk_score      INTEGER NOT NULL,
	compliance      INTEGER NOT NULL,
	penalty         INTEGER NOT NULL,
	classification  TEXT NOT NULL,
	scanned_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scans_target ON scans(target);
CREATE INDEX IF NOT EXISTS idx_scans_scanned_at ON scans(scanned_at);
`

// Entry is one recorded scan.
type Entry struct {
	ID             int64     `json:"id"`
	Target         string    `json:"target"`
	Language       string    `json:"language"`
	LinesScanned   int       `json:"lines_scanned"`
	TotalFindings  int       `json:"total_findings"`
	RiskScore      int       `json:"risk_score"`
	Compliance     int       `json:"compliance_score"`
	Penalty        int       `json:"penalty_score"`
	Classification string    `json:"classification"`
	ScannedAt      time.Time `json:"scanned_at"`
}

// Store persists scan history in a local SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring history database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one audited target with its assessment scores.
func (s *Store) Record(target string, result *types.AuditResult, assessment *assess.Assessment) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO scans (target, language, lines_scanned, total_findings, risk_score,
			compliance, penalty, classification, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		target,
		result.Language.String(),
		result.Stats.LinesScanned,
		result.Stats.TotalFindings,
		result.RiskScore,
		assessment.InverseRiskScore,
		assessment.PenaltyScore,
		assessment.Classification.String(),
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("recording scan in %s: %w", s.path, err)
	}
	return res.LastInsertId()
}

// List returns the most recent entries, newest first. A limit of 0 or less
// means no limit.
func (s *Store) List(limit int) ([]Entry, error) {
	query := "SELECT id, target, language, lines_scanned, total_findings, risk_score, compliance, penalty, classification, scanned_at FROM scans ORDER BY scanned_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing scans in %s: %w", s.path, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var scannedAt int64
		if err := rows.Scan(&e.ID, &e.Target, &e.Language, &e.LinesScanned, &e.TotalFindings,
			&e.RiskScore, &e.Compliance, &e.Penalty, &e.Classification, &scannedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.ScannedAt = time.Unix(scannedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ForTarget returns all entries for a single target, newest first.
func (s *Store) ForTarget(target string) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, target, language, lines_scanned, total_findings, risk_score, compliance, penalty, classification, scanned_at
		FROM scans WHERE target = ? ORDER BY scanned_at DESC, id DESC
	`, target)
	if err != nil {
		return nil, fmt.Errorf("listing scans for %s: %w", target, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var scannedAt int64
		if err := rows.Scan(&e.ID, &e.Target, &e.Language, &e.LinesScanned, &e.TotalFindings,
			&e.RiskScore, &e.Compliance, &e.Penalty, &e.Classification, &scannedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.ScannedAt = time.Unix(scannedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
