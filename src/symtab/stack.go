package symtab

// Stack is a generic LIFO, adapted from the teacher's (hhramberg-go-vslc)
// util/stack.go linked-list Stack. The teacher guards every operation with a
// sync.Mutex because its lowering engine ran concurrently across worker
// goroutines; this core is single-threaded and non-reentrant (spec.md §5),
// so the mutex is dropped and the element type is a Go generic instead of
// interface{}.
type Stack[T any] struct {
	elems []T
}

// Push adds e to the top of the stack.
func (s *Stack[T]) Push(e T) {
	s.elems = append(s.elems, e)
}

// Pop removes and returns the top element. Pop must not be called on an
// empty stack.
func (s *Stack[T]) Pop() T {
	n := len(s.elems)
	e := s.elems[n-1]
	s.elems = s.elems[:n-1]
	return e
}

// Peek returns the top element without removing it. Peek must not be called
// on an empty stack.
func (s *Stack[T]) Peek() T {
	return s.elems[len(s.elems)-1]
}

// Len returns the number of elements on the stack.
func (s *Stack[T]) Len() int {
	return len(s.elems)
}

// Empty reports whether the stack holds no elements.
func (s *Stack[T]) Empty() bool {
	return len(s.elems) == 0
}

// At returns the nth element from the bottom, zero-indexed. Used by Lookup to
// scan frames top-down without popping them.
func (s *Stack[T]) At(n int) T {
	return s.elems[n]
}
