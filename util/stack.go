package util

type Stack[A any] struct {
	items []A
}

func (s *Stack[A]) Push(v A) {
	s.items = append(s.items, v)
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) <= 0 {
		return ret, false
	}
	lastIndex := len(s.items) - 1
	ret = s.items[lastIndex]
	s.items = s.items[:lastIndex]
	return ret, true
}

// Peek returns a pointer to the top of the stack, or nil if the stack is empty.
// The pointer is invalidated by the next Push.
func (s *Stack[A]) Peek() *A {
	if len(s.items) == 0 {
		return nil
	}
	return &s.items[len(s.items)-1]
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}
