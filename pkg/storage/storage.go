// Package storage persists diagram documents by id.
//
// Backends:
//   - [MemoryStore]: in-process map, for tests and ephemeral servers
//   - [FileStore]: one JSON file per diagram, for the CLI
//   - [MongoStore]: MongoDB collection, for multi-instance deployments
//
// All backends return errors coded with [relerrors.ErrCodeNotFound] for
// missing diagrams and [relerrors.ErrCodeInvalidInput] for ids that fail
// [relerrors.ValidateID].
//
//	st, err := storage.NewFileStore("")
//	if err != nil {
//	    return err
//	}
//	doc, err := st.Get(ctx, "orders")
package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/relink/pkg/document"
	relerrors "github.com/matzehuels/relink/pkg/errors"
)

// Store persists diagram documents.
type Store interface {
	// Get returns the document stored under id.
	Get(ctx context.Context, id string) (document.Document, error)

	// Put validates doc and stores it under id, replacing any previous
	// version.
	Put(ctx context.Context, id string, doc document.Document) error

	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all stored ids in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// normalize validates doc and returns a canonical copy keyed by id that
// shares no maps with the caller.
func normalize(id string, doc document.Document) (document.Document, error) {
	if err := relerrors.ValidateID(id); err != nil {
		return document.Document{}, err
	}
	m, err := document.ToModel(doc)
	if err != nil {
		return document.Document{}, err
	}
	out := document.FromModel(m)
	out.ID = id
	return out, nil
}

func notFound(id string) error {
	return relerrors.New(relerrors.ErrCodeNotFound, "diagram %q not found", id)
}

// MemoryStore keeps documents in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]document.Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]document.Document)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (document.Document, error) {
	if err := relerrors.ValidateID(id); err != nil {
		return document.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return document.Document{}, notFound(id)
	}
	return doc, nil
}

func (s *MemoryStore) Put(ctx context.Context, id string, doc document.Document) error {
	stored, err := normalize(id, doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = stored
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := relerrors.ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
