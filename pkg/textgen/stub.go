package textgen

import (
	"context"
	"sync"
)

// Stub is an in-memory Client for tests and offline runs. Reply receives
// the request and the 1-based call number.
type Stub struct {
	Reply func(req Request, call int) (string, error)

	mu    sync.Mutex
	calls int
}

// Generate implements Client.
func (s *Stub) Generate(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()

	if s.Reply == nil {
		return "", nil
	}
	return s.Reply(req, n)
}

// Calls returns how many times Generate ran.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
