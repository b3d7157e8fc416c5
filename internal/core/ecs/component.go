package ecs

// Removable is implemented by every per-thing index so the Registry can
// bulk-remove a thing's entries when it leaves the map.
type Removable interface {
	Remove(id EntityID)
}

// Store is a generic typed store keyed by EntityID. Unlike a bare map it
// iterates in a stable order (insertion order, with swap-removal), which the
// simulation needs for deterministic replays.
type Store[T any] struct {
	index map[EntityID]int
	ids   []EntityID
	data  []*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		index: make(map[EntityID]int, 256),
		ids:   make([]EntityID, 0, 256),
		data:  make([]*T, 0, 256),
	}
}

// Set inserts or replaces the value for id.
func (s *Store[T]) Set(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.data[i] = c
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.data = append(s.data, c)
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.data[i], true
}

func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.ids) - 1
	if i != last {
		s.ids[i] = s.ids[last]
		s.data[i] = s.data[last]
		s.index[s.ids[i]] = i
	}
	s.ids = s.ids[:last]
	s.data[last] = nil
	s.data = s.data[:last]
	delete(s.index, id)
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.ids)
}

// Each visits every entry in store order. fn must not mutate the store.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for i, id := range s.ids {
		fn(id, s.data[i])
	}
}

// Values returns a copy of the stored values in store order; safe to iterate
// while the store changes.
func (s *Store[T]) Values() []*T {
	out := make([]*T, len(s.data))
	copy(out, s.data)
	return out
}
