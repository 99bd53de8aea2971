package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore appends records to the audit_reports table.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects, waits for the server to answer and creates the
// schema when missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return s, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS audit_reports (
		id              UUID        PRIMARY KEY,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		salon_name      TEXT        NOT NULL DEFAULT '',
		service_count   INTEGER     NOT NULL DEFAULT 0,
		overall_score   INTEGER     NOT NULL DEFAULT 0,
		grammar_version TEXT        NOT NULL DEFAULT '',
		document        JSONB       NOT NULL,
		report          JSONB       NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_reports_created_at ON audit_reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_reports_salon_name ON audit_reports(salon_name);
`

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

const insertRecord = `
	INSERT INTO audit_reports (id, created_at, salon_name, service_count, overall_score, grammar_version, document, report)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	args, err := insertArgs(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, insertRecord, args...); err != nil {
		return fmt.Errorf("postgres: insert: %w", err)
	}
	return nil
}

// insertArgs returns the positional arguments for insertRecord.
func insertArgs(rec Record) ([]any, error) {
	doc, err := json.Marshal(rec.Document)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode document: %w", err)
	}
	rep, err := json.Marshal(rec.Report)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode report: %w", err)
	}
	return []any{
		rec.ID.String(),
		rec.CreatedAt,
		rec.Document.SalonName,
		rec.Document.TotalServices,
		rec.Report.OverallScore,
		rec.GrammarVersion,
		string(doc),
		string(rep),
	}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
