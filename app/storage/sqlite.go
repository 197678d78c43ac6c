package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

var _ Interface = &SQLiteStorage{}

type SQLiteStorage struct {
	db *sql.DB
}

func resolveDBPath(path string) (string, error) {
	if path == "" {
		path = os.Getenv("DB_PATH")
	}
	if path == "" {
		projectDir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get project directory: %w", err)
		}
		path = filepath.Join(projectDir, "data", "queries.db")
		log.Printf("📂 DB_PATH not set, using default: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return path, nil
}

// NewSQLiteStorage opens (or creates) the query log at path. An empty path
// falls back to DB_PATH and then ./data/queries.db.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	dbPath, err := resolveDBPath(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db at %s: %w", dbPath, err)
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS queries (
            id TEXT PRIMARY KEY,
            question TEXT NOT NULL,
            success INTEGER NOT NULL,
            filtered INTEGER NOT NULL,
            stage TEXT NULL,
            match_count INTEGER NOT NULL DEFAULT 0,
            top_score REAL NOT NULL DEFAULT 0,
            preset TEXT NULL,
            latency_ms INTEGER NOT NULL DEFAULT 0,
            created_at TEXT NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries (created_at);
    `)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create queries table: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) SaveQuery(ctx context.Context, record QueryRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queries (id, question, success, filtered, stage, match_count, top_score, preset, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Question, record.Success, record.Filtered, record.Stage, record.MatchCount,
		record.TopScore, record.Preset, record.LatencyMs, record.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		log.Printf("⚠️ Error saving query %s: %v", record.ID, err)
		return err
	}
	return nil
}

// RecentQueries returns up to limit records, newest first.
func (s *SQLiteStorage) RecentQueries(ctx context.Context, limit int) ([]QueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, success, filtered, COALESCE(stage, ''), match_count, top_score, COALESCE(preset, ''), latency_ms, created_at
		 FROM queries
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []QueryRecord
	for rows.Next() {
		var r QueryRecord
		var createdAt string
		if err = rows.Scan(&r.ID, &r.Question, &r.Success, &r.Filtered, &r.Stage, &r.MatchCount,
			&r.TopScore, &r.Preset, &r.LatencyMs, &createdAt); err != nil {
			log.Printf("⚠️ Error scanning query row: %v", err)
			continue
		}
		r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
