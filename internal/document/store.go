package document

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/coffeetron832/cautious-couscous/pkg/metrics"
)

var ErrNotFound = errors.New("document not found")

// Store is the in-memory document registry, keyed by document id. It is the
// single shared source of document state for every connection; documents
// live for the lifetime of the process (durability is delegated to export).
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// NewID returns a fresh document identifier. Ids are never reused.
func NewID() string {
	return "doc_" + uuid.NewString()
}

// GetOrCreate returns the document for id, creating it with defaults when
// unseen. Concurrent callers for the same id always observe a single entity.
func (s *Store) GetOrCreate(id string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[id]; ok {
		return d
	}
	d := New(id)
	s.docs[id] = d
	metrics.DocumentsCreated.Inc()
	return d
}

func (s *Store) Get(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.docs[id]; ok {
		return d, nil
	}
	return nil, ErrNotFound
}

// Put registers a fully built document under its own id. Used by import,
// which always arrives with a freshly generated id.
func (s *Store) Put(d *Document) {
	s.mu.Lock()
	s.docs[d.ID] = d
	s.mu.Unlock()
	metrics.DocumentsCreated.Inc()
}

// Len reports the number of registered documents (readiness/metrics only).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
