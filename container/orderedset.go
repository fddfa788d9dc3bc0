package container

// OrderedSet is a set over an ordered integer type that iterates in
// ascending order. It is a thin wrapper over OrderedMap[T, struct{}]
// rather than a distinct data structure, the same way the interval
// tree's nested end-keyed maps reuse OrderedMap instead of a bespoke
// tree per concern.
type OrderedSet[T Key] struct {
	m *OrderedMap[T, struct{}]
}

// NewOrderedSet creates an empty ordered set, optionally pre-populated
// with items.
func NewOrderedSet[T Key](items ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{m: NewOrderedMap[T, struct{}]()}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts item, a no-op if it is already present.
func (s *OrderedSet[T]) Add(item T) {
	s.m.Insert(item, struct{}{})
}

// Remove deletes item, reporting whether it was present.
func (s *OrderedSet[T]) Remove(item T) bool {
	return s.m.Delete(item)
}

// Has reports whether item is in the set.
func (s *OrderedSet[T]) Has(item T) bool {
	_, ok := s.m.Get(item)
	return ok
}

// Len returns the number of items.
func (s *OrderedSet[T]) Len() int {
	return s.m.Len()
}

// Items returns every item in ascending order. The returned slice must
// not be mutated.
func (s *OrderedSet[T]) Items() []T {
	return s.m.Keys()
}

// Each calls fn for every item in ascending order.
func (s *OrderedSet[T]) Each(fn func(item T)) {
	s.m.Each(func(key T, _ struct{}) { fn(key) })
}
