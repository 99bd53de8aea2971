// Package storage persists analysis results. Records are append-only:
// analysing the same listing again creates a new record.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/salonaudit/internal/pricelist"
	"github.com/hyperifyio/salonaudit/internal/report"
)

// Record is one persisted analysis.
type Record struct {
	ID             uuid.UUID          `json:"id"`
	CreatedAt      time.Time          `json:"createdAt"`
	Document       pricelist.Document `json:"document"`
	Report         report.AuditReport `json:"report"`
	GrammarVersion string             `json:"grammarVersion"`
}

// NewRecord stamps a fresh ID and creation time.
func NewRecord(doc pricelist.Document, r report.AuditReport, grammarVersion string) Record {
	return Record{
		ID:             uuid.New(),
		CreatedAt:      time.Now().UTC(),
		Document:       doc,
		Report:         r,
		GrammarVersion: grammarVersion,
	}
}

// Store is implemented by every backend.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Close() error
}
