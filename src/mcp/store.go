package mcp

import (
	"sync"

	"github-workflow-splunk-logger/src/contracts"
)

// DefaultPreviewCapacity bounds how many previews the server remembers.
const DefaultPreviewCapacity = 32

// PreviewStore keeps previewed events for drill-down.
type PreviewStore interface {
	// Store saves the events of a preview.
	Store(requestID string, events []contracts.Event)
	// Get retrieves a single event by its index in the preview.
	Get(requestID string, index int) (contracts.Event, bool)
	// GetAll retrieves every event of a preview.
	GetAll(requestID string) ([]contracts.Event, bool)
}

// InMemoryStore is a thread-safe PreviewStore. Once full, the oldest
// preview is evicted.
type InMemoryStore struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	previews map[string][]contracts.Event
}

// NewInMemoryStore creates a store holding up to capacity previews.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultPreviewCapacity
	}
	return &InMemoryStore{
		capacity: capacity,
		previews: make(map[string][]contracts.Event),
	}
}

func (s *InMemoryStore) Store(requestID string, events []contracts.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.previews[requestID]; !exists {
		s.order = append(s.order, requestID)
	}
	s.previews[requestID] = events

	for len(s.order) > s.capacity {
		delete(s.previews, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *InMemoryStore) Get(requestID string, index int) (contracts.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, ok := s.previews[requestID]
	if !ok || index < 0 || index >= len(events) {
		return contracts.Event{}, false
	}
	return events[index], true
}

func (s *InMemoryStore) GetAll(requestID string) ([]contracts.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, ok := s.previews[requestID]
	return events, ok
}
