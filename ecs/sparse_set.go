package ecs

// store is the type-erased view of a component sparse set used for
// entity teardown and untyped queries.
type store interface {
	has(e Entity) bool
	remove(e Entity) bool
	size() int
}

type sparseSet[T any] struct {
	sparse []int
	dense  []Entity
	values []*T
}

func newSparseSet[T any]() *sparseSet[T] {
	return &sparseSet[T]{}
}

func (s *sparseSet[T]) index(e Entity) (int, bool) {
	id := int(e.id())
	if id == 0 || id > len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id-1]
	if idx < 0 || idx >= len(s.dense) || s.dense[idx] != e {
		return 0, false
	}
	return idx, true
}

func (s *sparseSet[T]) set(e Entity, value *T) {
	if idx, ok := s.index(e); ok {
		s.values[idx] = value
		return
	}

	id := int(e.id())
	for len(s.sparse) < id {
		s.sparse = append(s.sparse, -1)
	}

	// A stale handle for the same slot may still own the index.
	if old := s.sparse[id-1]; old >= 0 && old < len(s.dense) && s.dense[old].id() == e.id() {
		s.dense[old] = e
		s.values[old] = value
		return
	}

	s.sparse[id-1] = len(s.dense)
	s.dense = append(s.dense, e)
	s.values = append(s.values, value)
}

func (s *sparseSet[T]) get(e Entity) (*T, bool) {
	idx, ok := s.index(e)
	if !ok {
		return nil, false
	}
	return s.values[idx], true
}

func (s *sparseSet[T]) has(e Entity) bool {
	_, ok := s.index(e)
	return ok
}

func (s *sparseSet[T]) remove(e Entity) bool {
	idx, ok := s.index(e)
	if !ok {
		return false
	}

	last := len(s.dense) - 1
	if idx != last {
		moved := s.dense[last]
		s.dense[idx] = moved
		s.values[idx] = s.values[last]
		s.sparse[moved.id()-1] = idx
	}

	s.dense[last] = NoEntity
	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[e.id()-1] = -1
	return true
}

func (s *sparseSet[T]) size() int {
	return len(s.dense)
}

// snapshot copies the dense entity list so callers may mutate the set while
// iterating.
func (s *sparseSet[T]) snapshot() []Entity {
	return append([]Entity(nil), s.dense...)
}
