package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"moneypaz/internal/services"
)

// Store is an in-memory services.StatePersister.
type Store struct {
	mu     sync.Mutex
	data   map[string][]byte
	putErr error
	puts   int
}

func New() *Store {
	return &Store{data: map[string][]byte{}}
}

// NewFromFile seeds the store with a snapshot document read from path under
// key. A missing file leaves the store empty.
func NewFromFile(key, path string) (*Store, error) {
	s := New()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed snapshot: %w", err)
	}
	s.data[key] = data
	return s, nil
}

// Get returns a copy of the document under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, services.ErrStateNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of value under key.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// FailPuts makes every following Put return err. A nil err clears it.
func (s *Store) FailPuts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

// Puts reports how many times Put was called.
func (s *Store) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}
