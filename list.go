package pjs

// List is a persistent singly linked list; the nil *List is the empty list.
// Lists are never mutated: Push and Pop return new heads that share their
// tails.
type List[T any] struct {
	head T
	tail *List[T]
	size int
}

// Stack is the data stack.
type Stack = List[Value]

// Cont is the continuation stack.
type Cont = List[Frame]

// ListOf builds a list whose last argument ends up on top.
func ListOf[T any](items ...T) *List[T] {
	var l *List[T]
	for _, item := range items {
		l = l.Push(item)
	}
	return l
}

// Push returns a new list with v on top.
func (l *List[T]) Push(v T) *List[T] {
	return &List[T]{head: v, tail: l, size: l.Len() + 1}
}

// Peek returns the top item.
func (l *List[T]) Peek() (v T, ok bool) {
	if l == nil {
		return v, false
	}
	return l.head, true
}

// Pop returns the top item and the rest of the list.
func (l *List[T]) Pop() (v T, rest *List[T], ok bool) {
	if l == nil {
		return v, nil, false
	}
	return l.head, l.tail, true
}

// Tail returns the list without its top item.
func (l *List[T]) Tail() *List[T] {
	if l == nil {
		return nil
	}
	return l.tail
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	if l == nil {
		return 0
	}
	return l.size
}

// Slice returns the items bottom first.
func (l *List[T]) Slice() []T {
	items := make([]T, l.Len())
	for i := len(items) - 1; l != nil; l, i = l.tail, i-1 {
		items[i] = l.head
	}
	return items
}
