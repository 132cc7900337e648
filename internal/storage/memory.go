// Package storage defines storage errors and in-memory implementations of the
// local key-value store and the remote document store.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned when a key or a document does not exist.
var ErrNotFound = errors.New("not found")

type kvKey struct {
	userID int64
	key    string
}

// MemoryKV provides in-memory storage for per-user string values.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[kvKey]string
}

// NewMemoryKV creates a new MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		values: make(map[kvKey]string),
	}
}

// Get returns the value stored under key for the user, or ErrNotFound.
func (s *MemoryKV) Get(_ context.Context, userID int64, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[kvKey{userID, key}]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key for the user.
func (s *MemoryKV) Set(_ context.Context, userID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[kvKey{userID, key}] = value
	return nil
}

// Users returns the ids of users that have at least one stored value.
func (s *MemoryKV) Users(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{})
	for k := range s.values {
		seen[k.userID] = struct{}{}
	}

	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// MemoryDocuments provides in-memory storage for per-user JSON documents with merge writes.
type MemoryDocuments struct {
	mu   sync.RWMutex
	docs map[int64]map[string]json.RawMessage
}

// NewMemoryDocuments creates a new MemoryDocuments.
func NewMemoryDocuments() *MemoryDocuments {
	return &MemoryDocuments{
		docs: make(map[int64]map[string]json.RawMessage),
	}
}

// Get returns the raw JSON document of the user, or ErrNotFound.
func (s *MemoryDocuments) Get(_ context.Context, userID int64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return json.Marshal(doc)
}

// Merge merges the top-level fields of patch into the user's document.
// Fields absent from patch are left untouched.
func (s *MemoryDocuments) Merge(_ context.Context, userID int64, patch []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return fmt.Errorf("merge document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[userID]
	if !ok {
		doc = make(map[string]json.RawMessage, len(fields))
		s.docs[userID] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}
