package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// JSONStore persists the journal as one JSON document, rewritten whole on
// every mutation. A crash loses at most the in-flight mutation.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	return &JSONStore{path: path}, nil
}

func (s *JSONStore) Load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("read journal: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse journal: %w", err)
	}
	return doc, nil
}

func (s *JSONStore) Save(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts prior history.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }

// MemoryStore keeps the document in memory only. Used in tests and for
// throwaway simulations.
type MemoryStore struct {
	doc Document
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (Document, error)  { return s.doc, nil }
func (s *MemoryStore) Save(d Document) error    { s.doc = d; return nil }
func (s *MemoryStore) Close() error             { return nil }
