package session

import (
	"strings"
	"sync"
	"time"
)

// Tipos de mensaje flash expuestos a los templates.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Flash es una notificación de un solo uso: la encola un request y la
// consume el siguiente render.
type Flash struct {
	Kind string
	Text string
}

// Store guarda los flashes pendientes por sesión. Pop lee y limpia en un
// solo paso; después de Pop la cola queda vacía.
type Store interface {
	Push(sessionID string, flash Flash) error
	Pop(sessionID string) ([]Flash, error)
}

type memoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryEntry
}

type memoryEntry struct {
	flashes   []Flash
	expiresAt time.Time
}

// NewMemoryStore crea un store de flashes en memoria.
func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &memoryStore{
		ttl:   ttl,
		items: make(map[string]memoryEntry),
	}
}

func (s *memoryStore) Push(sessionID string, flash Flash) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	entry := s.items[sessionID]
	if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
		entry = memoryEntry{}
	}
	entry.flashes = append(entry.flashes, flash)
	entry.expiresAt = now.Add(s.ttl)
	s.items[sessionID] = entry
	return nil
}

func (s *memoryStore) Pop(sessionID string) ([]Flash, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[sessionID]
	if !ok {
		return nil, nil
	}
	delete(s.items, sessionID)
	if time.Now().UTC().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.flashes, nil
}
