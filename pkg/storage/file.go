package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/relink/pkg/document"
	relerrors "github.com/matzehuels/relink/pkg/errors"
)

// FileStore stores each diagram as <dir>/<id>.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store rooted at baseDir.
// If baseDir is empty, defaults to ~/.local/share/relink/diagrams/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "relink", "diagrams")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the base directory for diagram files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) documentPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (document.Document, error) {
	if err := relerrors.ValidateID(id); err != nil {
		return document.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.documentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return document.Document{}, notFound(id)
		}
		return document.Document{}, fmt.Errorf("read diagram file: %w", err)
	}
	doc, err := document.Unmarshal(data)
	if err != nil {
		return document.Document{}, err
	}
	doc.ID = id
	return doc, nil
}

func (s *FileStore) Put(ctx context.Context, id string, doc document.Document) error {
	doc, err := normalize(id, doc)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal diagram: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.documentPath(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write diagram file: %w", err)
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := relerrors.ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.documentPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove diagram file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
