package ledger

import "errors"

// Sentinel errors shared by both ledgers. Absence is data, not a fault:
// callers are expected to branch on these with errors.Is.
var (
	ErrNotFound             = errors.New("ledger: record not found")
	ErrAlreadyExists        = errors.New("ledger: record already exists")
	ErrAlreadyOpenForSymbol = errors.New("ledger: symbol already has an open position")
)

// Store is the key-addressed record store both ledgers are built over. The
// in-memory implementation below is the reference behavior; a durable
// backend may be swapped in as long as the same lookup contract holds.
//
// Stores need no internal locking: each ledger serializes access to its own
// store under its own mutex.
type Store[T any] interface {
	Get(key string) (T, bool)
	Put(key string, v T)
	Delete(key string) bool
	All() []T
	Len() int
}

// MemStore is a plain map-backed Store.
type MemStore[T any] struct {
	m map[string]T
}

func NewMemStore[T any]() *MemStore[T] {
	return &MemStore[T]{m: make(map[string]T)}
}

func (s *MemStore[T]) Get(key string) (T, bool) {
	v, ok := s.m[key]
	return v, ok
}

func (s *MemStore[T]) Put(key string, v T) {
	s.m[key] = v
}

func (s *MemStore[T]) Delete(key string) bool {
	if _, ok := s.m[key]; !ok {
		return false
	}
	delete(s.m, key)
	return true
}

func (s *MemStore[T]) All() []T {
	out := make([]T, 0, len(s.m))
	for _, v := range s.m {
		out = append(out, v)
	}
	return out
}

func (s *MemStore[T]) Len() int {
	return len(s.m)
}
