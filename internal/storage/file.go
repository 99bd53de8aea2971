package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrExists is returned when a record directory is already present.
var ErrExists = errors.New("storage: record already exists")

// FileStore writes each record to <Dir>/<id>/ as document.json, report.json
// and meta.json.
type FileStore struct {
	Dir string
}

type fileMeta struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"createdAt"`
	GrammarVersion string `json:"grammarVersion"`
}

func (s *FileStore) Save(_ context.Context, rec Record) error {
	if s.Dir == "" {
		return errors.New("storage: file store dir not configured")
	}
	dir := filepath.Join(s.Dir, rec.ID.String())
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, rec.ID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	files := []struct {
		name string
		v    any
	}{
		{"document.json", rec.Document},
		{"report.json", rec.Report},
		{"meta.json", fileMeta{ID: rec.ID.String(), CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano), GrammarVersion: rec.GrammarVersion}},
	}
	for _, f := range files {
		b, err := json.MarshalIndent(f.v, "", "  ")
		if err != nil {
			return fmt.Errorf("storage: encode %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), b, 0o644); err != nil {
			return fmt.Errorf("storage: write %s: %w", f.name, err)
		}
	}
	return nil
}

// Load reads a record previously written by Save.
func (s *FileStore) Load(id string) (Record, error) {
	dir := filepath.Join(s.Dir, id)
	var rec Record
	var meta fileMeta
	for name, dst := range map[string]any{"document.json": &rec.Document, "report.json": &rec.Report, "meta.json": &meta} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return Record{}, fmt.Errorf("storage: read %s: %w", name, err)
		}
		if err := json.Unmarshal(b, dst); err != nil {
			return Record{}, fmt.Errorf("storage: decode %s: %w", name, err)
		}
	}
	if err := rec.ID.UnmarshalText([]byte(meta.ID)); err != nil {
		return Record{}, fmt.Errorf("storage: bad id: %w", err)
	}
	if err := rec.CreatedAt.UnmarshalText([]byte(meta.CreatedAt)); err != nil {
		return Record{}, fmt.Errorf("storage: bad timestamp: %w", err)
	}
	rec.GrammarVersion = meta.GrammarVersion
	return rec, nil
}

func (s *FileStore) Close() error { return nil }
