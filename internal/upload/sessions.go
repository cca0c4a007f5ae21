package upload

import "sync"

// Sessions keeps one Flow per analyst and policy so a failed upload can be
// retried on the next request without reselecting the file.
type Sessions struct {
	mu    sync.Mutex
	flows map[string]*Flow
	opts  []Option
}

// NewSessions creates an empty registry. opts apply to every new Flow.
func NewSessions(opts ...Option) *Sessions {
	return &Sessions{flows: map[string]*Flow{}, opts: opts}
}

// Get returns the flow of user for policy, creating it when needed.
func (s *Sessions) Get(user string, p Policy) *Flow {
	key := user + "|" + p.Name
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flows[key]
	if !ok {
		f = NewFlow(p, s.opts...)
		s.flows[key] = f
	}
	return f
}

// Drop forgets every flow of user, e.g. on logout.
func (s *Sessions) Drop(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.flows {
		if len(k) > len(user) && k[:len(user)+1] == user+"|" {
			delete(s.flows, k)
		}
	}
}
