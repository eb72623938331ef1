package store

import (
	"context"
	"sync"
)

// memDocs is an in-memory DocStore used by tests and throwaway setups
type memDocs struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemDocs returns an empty in-memory DocStore
func NewMemDocs() DocStore {
	return &memDocs{docs: map[string][]byte{}}
}

func (m *memDocs) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

func (m *memDocs) Save(_ context.Context, key string, doc []byte) error {
	cp := make([]byte, len(doc))
	copy(cp, doc)
	m.mu.Lock()
	m.docs[key] = cp
	m.mu.Unlock()
	return nil
}

func (m *memDocs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
	return nil
}
