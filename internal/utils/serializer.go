package utils

import "sync"

// Serializer runs mutations of the Week/Day/Task graph one at a time.
// Lifecycle operations and reconciliation passes share a single instance.
type Serializer struct {
	mu sync.Mutex
}

func NewSerializer() *Serializer {
	return &Serializer{}
}

// Do runs fn while holding the serializer. Calls must not be nested.
func (s *Serializer) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
