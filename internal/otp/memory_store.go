package otp

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps tokens in process. Retention is not enforced; expiry is
// still checked by the Service.
type MemoryStore struct {
	mu       sync.Mutex
	tokens   map[string]Token
	attempts map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens:   map[string]Token{},
		attempts: map[string]int{},
	}
}

func (s *MemoryStore) Put(_ context.Context, tok Token, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(tok.Subject, tok.Purpose)
	s.tokens[k] = tok
	delete(s.attempts, k)
	return nil
}

func (s *MemoryStore) Take(_ context.Context, subject, purpose, code string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(subject, purpose)
	tok, ok := s.tokens[k]
	if !ok {
		return nil, ErrInvalid
	}

	if tok.Code != code {
		s.attempts[k]++
		if s.attempts[k] >= MaxAttempts {
			delete(s.tokens, k)
			delete(s.attempts, k)
		}
		return nil, ErrInvalid
	}

	delete(s.tokens, k)
	delete(s.attempts, k)
	return &tok, nil
}

var _ Store = (*MemoryStore)(nil)
