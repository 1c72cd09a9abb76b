package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Kind names a record collection
type Kind string

const (
	KindClaims         Kind = "claims"
	KindEvidence       Kind = "evidence"
	KindMissingPersons Kind = "missing_persons"
	KindSurvivors      Kind = "survivors"
	KindMatches        Kind = "matches"
	KindClaimEvents    Kind = "claim_events"
)

// ErrUnknownKind is returned for collections the store does not hold
var ErrUnknownKind = errors.New("unknown record kind")

var kinds = map[Kind]bool{
	KindClaims:         true,
	KindEvidence:       true,
	KindMissingPersons: true,
	KindSurvivors:      true,
	KindMatches:        true,
	KindClaimEvents:    true,
}

func checkKind(kind Kind) error {
	if !kinds[kind] {
		return fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	return nil
}

// Store persists whole record collections. Load decodes a collection into dst (a
// pointer to a slice) and leaves it empty when nothing was saved; Save overwrites the
// collection.
type Store interface {
	Load(ctx context.Context, kind Kind, dst interface{}) error
	Save(ctx context.Context, kind Kind, records interface{}) error
}

// LoadAll is a typed wrapper around Store.Load
func LoadAll[T any](ctx context.Context, s Store, kind Kind) ([]T, error) {
	records := make([]T, 0)
	if err := s.Load(ctx, kind, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MemStore keeps collections as JSON documents in memory
type MemStore struct {
	mu   sync.RWMutex
	docs map[Kind][]byte
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[Kind][]byte)}
}

// Load implements Store
func (m *MemStore) Load(ctx context.Context, kind Kind, dst interface{}) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	doc, ok := m.docs[kind]
	m.mu.RUnlock()

	if !ok {
		return nil
	}
	if err := json.Unmarshal(doc, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	return nil
}

// Save implements Store
func (m *MemStore) Save(ctx context.Context, kind Kind, records interface{}) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}

	m.mu.Lock()
	m.docs[kind] = doc
	m.mu.Unlock()
	return nil
}
