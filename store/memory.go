package store

import "sync"

// MemStore keeps encoded documents in memory. Saves round-trip through the
// same encoding as the durable stores, so a reload behaves like a restart.
type MemStore struct {
	mu    sync.Mutex
	docs  map[string][]byte
	saves int

	// Fail, when set, is returned from every Save.
	Fail error
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Decode(s.docs), nil
}

func (s *MemStore) Save(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	docs, err := Encode(snap)
	if err != nil {
		return err
	}
	s.docs = docs
	s.saves++
	return nil
}

// Saves counts successful saves.
func (s *MemStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// SetDocument overwrites one raw document, for exercising corrupt input.
func (s *MemStore) SetDocument(name string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = map[string][]byte{}
	}
	s.docs[name] = body
}

func (s *MemStore) Close() error { return nil }
