// Package store keeps a SQLite ledger of translation usage: one row per
// metered request and one row per document. The ledger is an ancillary
// artifact: orchestrator writes to it are best-effort and a broken ledger
// never blocks translation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/hantran/internal/costs"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		identity TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT,
		chunk_count INTEGER NOT NULL,
		output_path TEXT,
		status TEXT DEFAULT 'running',
		completed_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- usage_log stores one row per metered translation request
	CREATE TABLE IF NOT EXISTS usage_log (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		chunk_seq INTEGER NOT NULL,
		service TEXT NOT NULL,
		prompt_tokens INTEGER NOT NULL,
		completion_tokens INTEGER NOT NULL,
		cost REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_usage_document ON usage_log(document);
	`

	_, err := s.db.Exec(schema)
	return err
}

// StartDocument registers (or re-registers on resume) a document run.
func (s *Store) StartDocument(ctx context.Context, identity, title, author string, chunkCount int, outputPath string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (identity, title, author, chunk_count, output_path, status)
		 VALUES (?, ?, ?, ?, ?, 'running')
		 ON CONFLICT(identity) DO UPDATE SET chunk_count = excluded.chunk_count,
		 	output_path = excluded.output_path, status = 'running'`,
		normalizeIdentity(identity), title, author, chunkCount, outputPath)
	return err
}

// LogUsage appends one metered request row.
func (s *Store) LogUsage(ctx context.Context, document string, chunkSeq int, service string, promptTokens, completionTokens int, cost float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_log (id, document, chunk_seq, service, prompt_tokens, completion_tokens, cost)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), normalizeIdentity(document), chunkSeq, service, promptTokens, completionTokens, cost)
	return err
}

// FinishDocument marks a document's run completed.
func (s *Store) FinishDocument(ctx context.Context, document string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = 'completed', completed_at = ? WHERE identity = ?`,
		time.Now(), normalizeIdentity(document))
	return err
}

// Totals sums every usage row in the ledger.
func (s *Store) Totals(ctx context.Context) (costs.Totals, error) {
	return s.sumUsage(ctx, `SELECT
			COALESCE(SUM(cost), 0),
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COUNT(*)
		FROM usage_log`)
}

// DocumentTotals sums the usage rows of one document.
func (s *Store) DocumentTotals(ctx context.Context, document string) (costs.Totals, error) {
	return s.sumUsage(ctx, `SELECT
			COALESCE(SUM(cost), 0),
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COUNT(*)
		FROM usage_log WHERE document = ?`, normalizeIdentity(document))
}

func (s *Store) sumUsage(ctx context.Context, query string, args ...any) (costs.Totals, error) {
	var t costs.Totals
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&t.Cost, &t.PromptTokens, &t.CompletionTokens, &t.Requests)
	if err != nil {
		return costs.Totals{}, err
	}
	t.Tokens = t.PromptTokens + t.CompletionTokens
	return t, nil
}

// DocumentRecord is a row from the documents table.
type DocumentRecord struct {
	Identity   string
	Title      string
	Author     string
	ChunkCount int
	OutputPath string
	Status     string
	CreatedAt  time.Time
}

// ListDocuments returns all registered documents, most recent first.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, title, COALESCE(author, ''), chunk_count, COALESCE(output_path, ''), status, created_at
		 FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DocumentRecord
	for rows.Next() {
		var d DocumentRecord
		if err := rows.Scan(&d.Identity, &d.Title, &d.Author, &d.ChunkCount, &d.OutputPath, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, d)
	}

	return results, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeIdentity trims whitespace and applies Unicode NFC normalization
// so the same document maps to the same ledger key on every run.
func normalizeIdentity(identity string) string {
	return norm.NFC.String(strings.TrimSpace(identity))
}
