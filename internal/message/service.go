// Package message holds the user-facing status log shared by the views.
package message

import "sync"

// Service is an append-only log of status strings, cleared only in bulk.
// One Service is created per process and handed to everything that reports.
type Service struct {
	mu       sync.RWMutex
	messages []string
}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Add(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the log in insertion order.
func (s *Service) Messages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.messages...)
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
