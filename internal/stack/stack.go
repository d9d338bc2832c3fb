// Package stack provides the unbounded LIFO used for the VM's operand stacks
// and its staged diagnostic records.
package stack

import "github.com/cockroachdb/errors"

// ErrUnderflow is returned when popping an empty stack.
var ErrUnderflow = errors.New("stack underflow")

// Stack is a LIFO of T; the zero value is an empty stack.
type Stack[T any] struct {
	vals []T
}

// Push appends v to the top of the stack.
func (s *Stack[T]) Push(v T) { s.vals = append(s.vals, v) }

// Pop removes and returns the top of the stack.
func (s *Stack[T]) Pop() (v T, err error) {
	i := len(s.vals) - 1
	if i < 0 {
		return v, ErrUnderflow
	}
	v, s.vals = s.vals[i], s.vals[:i]
	return v, nil
}

// Len returns the stack depth.
func (s *Stack[T]) Len() int { return len(s.vals) }

// Values returns a copy of the stack contents, bottom first.
func (s *Stack[T]) Values() []T {
	vals := make([]T, len(s.vals))
	copy(vals, s.vals)
	return vals
}
