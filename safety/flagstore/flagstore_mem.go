package flagstore

import (
	"context"
	"sync"

	"github.com/AladdinMagdy/whispr-sub000/safety/helpers"
)

type MemFlagStore struct {
	lk   sync.Mutex
	data map[string][]string
}

func NewMemFlagStore() *MemFlagStore {
	return &MemFlagStore{
		data: make(map[string][]string),
	}
}

func (s *MemFlagStore) Get(ctx context.Context, key string) ([]string, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	v, ok := s.data[key]
	if !ok {
		return []string{}, nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemFlagStore) Add(ctx context.Context, key string, flags []string) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	v := append(s.data[key], flags...)
	s.data[key] = helpers.DedupeStrings(v)
	return nil
}

// does not error if flags are not in the set
func (s *MemFlagStore) Remove(ctx context.Context, key string, flags []string) error {
	if len(flags) == 0 {
		return nil
	}
	s.lk.Lock()
	defer s.lk.Unlock()
	m := make(map[string]bool, len(s.data[key]))
	for _, f := range s.data[key] {
		m[f] = true
	}
	for _, f := range flags {
		delete(m, f)
	}
	out := []string{}
	for f := range m {
		out = append(out, f)
	}
	s.data[key] = out
	return nil
}
