/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sequence.go
Description: Gated sequence, an ordered dynamic list that starts mutable and can be
frozen exactly once. After Freeze every mutating method fails with ErrImmutable and
leaves the contents untouched. Used by the record parser to build repeated fields
and hand them out read-only without defensive copies.
*/

package sequence

import (
	"fmt"
	"iter"
)

// Sequence is an order-preserving list with a one-way mutability latch.
// It is not safe for concurrent mutation; frozen sequences may be read concurrently.
type Sequence[T comparable] struct {
	store   storage[T]
	mutable bool
}

// New returns an empty mutable sequence.
func New[T comparable]() *Sequence[T] {
	return WithCapacity[T](defaultSliceCapacity)
}

// WithCapacity returns an empty mutable sequence with room for n elements.
func WithCapacity[T comparable](n int) *Sequence[T] {
	return &Sequence[T]{store: newStorage[T](n), mutable: true}
}

// NewFrom returns a mutable sequence holding a copy of the values yielded by src, in order.
func NewFrom[T comparable](src iter.Seq[T]) *Sequence[T] {
	s := New[T]()
	for v := range src {
		s.store.insert(s.store.len(), v)
	}
	return s
}

// Of returns a mutable sequence holding values.
func Of[T comparable](values ...T) *Sequence[T] {
	s := WithCapacity[T](len(values))
	s.store.insert(0, values...)
	return s
}

// MutableCopy returns a mutable copy of s, whatever the state of s.
func (s *Sequence[T]) MutableCopy() *Sequence[T] {
	return s.MutableCopyWithCapacity(0)
}

// MutableCopyWithCapacity is MutableCopy with room for extra more elements.
func (s *Sequence[T]) MutableCopyWithCapacity(extra int) *Sequence[T] {
	return &Sequence[T]{store: s.store.clone(extra), mutable: true}
}

// IsMutable reports whether the sequence still accepts mutations.
func (s *Sequence[T]) IsMutable() bool {
	return s.mutable
}

// Freeze makes the sequence permanently immutable. Calling it again is a no-op.
func (s *Sequence[T]) Freeze() {
	s.mutable = false
}

// Len returns the number of elements.
func (s *Sequence[T]) Len() int {
	return s.store.len()
}

// Get returns the element at index i.
func (s *Sequence[T]) Get(i int) (T, error) {
	if err := s.checkIndex("get", i, s.store.len()); err != nil {
		var zero T
		return zero, err
	}
	return s.store.at(i), nil
}

// Set replaces the element at index i and returns the previous value.
func (s *Sequence[T]) Set(i int, v T) (T, error) {
	var zero T
	if err := s.ensureMutable("set"); err != nil {
		return zero, err
	}
	if err := s.checkIndex("set", i, s.store.len()); err != nil {
		return zero, err
	}
	prev := s.store.at(i)
	s.store.set(i, v)
	return prev, nil
}

// Insert places v at index i, shifting later elements up. i may equal Len.
func (s *Sequence[T]) Insert(i int, v T) error {
	if err := s.ensureMutable("insert"); err != nil {
		return err
	}
	if err := s.checkIndex("insert", i, s.store.len()+1); err != nil {
		return err
	}
	s.store.insert(i, v)
	return nil
}

// Append adds v at the end. The boolean is always true on success.
func (s *Sequence[T]) Append(v T) (bool, error) {
	if err := s.ensureMutable("append"); err != nil {
		return false, err
	}
	s.store.insert(s.store.len(), v)
	return true, nil
}

// AppendAll adds values at the end, in order, and reports whether anything was added.
func (s *Sequence[T]) AppendAll(values ...T) (bool, error) {
	if err := s.ensureMutable("append all"); err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, nil
	}
	s.store.insert(s.store.len(), values...)
	return true, nil
}

// InsertAll places values starting at index i, keeping their relative order.
func (s *Sequence[T]) InsertAll(i int, values ...T) (bool, error) {
	if err := s.ensureMutable("insert all"); err != nil {
		return false, err
	}
	if err := s.checkIndex("insert all", i, s.store.len()+1); err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, nil
	}
	s.store.insert(i, values...)
	return true, nil
}

// RemoveAt deletes and returns the element at index i.
func (s *Sequence[T]) RemoveAt(i int) (T, error) {
	var zero T
	if err := s.ensureMutable("remove"); err != nil {
		return zero, err
	}
	if err := s.checkIndex("remove", i, s.store.len()); err != nil {
		return zero, err
	}
	v := s.store.at(i)
	s.store.removeAt(i)
	return v, nil
}

// RemoveValue deletes the first element equal to v and reports whether one was found.
func (s *Sequence[T]) RemoveValue(v T) (bool, error) {
	if err := s.ensureMutable("remove value"); err != nil {
		return false, err
	}
	i := s.IndexOf(v)
	if i < 0 {
		return false, nil
	}
	s.store.removeAt(i)
	return true, nil
}

// RemoveAll deletes every element equal to one of values.
func (s *Sequence[T]) RemoveAll(values ...T) (bool, error) {
	if err := s.ensureMutable("remove all"); err != nil {
		return false, err
	}
	set := toSet(values)
	removed := s.store.retain(func(v T) bool {
		_, found := set[v]
		return !found
	})
	return removed > 0, nil
}

// RetainAll deletes every element not equal to one of values.
func (s *Sequence[T]) RetainAll(values ...T) (bool, error) {
	if err := s.ensureMutable("retain all"); err != nil {
		return false, err
	}
	set := toSet(values)
	removed := s.store.retain(func(v T) bool {
		_, found := set[v]
		return found
	})
	return removed > 0, nil
}

// Clear removes every element.
func (s *Sequence[T]) Clear() error {
	if err := s.ensureMutable("clear"); err != nil {
		return err
	}
	s.store.reset()
	return nil
}

// IndexOf returns the index of the first element equal to v, or -1.
func (s *Sequence[T]) IndexOf(v T) int {
	for i := 0; i < s.store.len(); i++ {
		if s.store.at(i) == v {
			return i
		}
	}
	return -1
}

// Contains reports whether v is present.
func (s *Sequence[T]) Contains(v T) bool {
	return s.IndexOf(v) >= 0
}

// All yields index/value pairs in order.
func (s *Sequence[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < s.store.len(); i++ {
			if !yield(i, s.store.at(i)) {
				return
			}
		}
	}
}

// Values yields the elements in order.
func (s *Sequence[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < s.store.len(); i++ {
			if !yield(s.store.at(i)) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements.
func (s *Sequence[T]) Slice() []T {
	out := make([]T, s.store.len())
	for i := range out {
		out[i] = s.store.at(i)
	}
	return out
}

// Equal reports whether both sequences hold equal elements in the same order.
// Mutability is not compared.
func (s *Sequence[T]) Equal(other *Sequence[T]) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := 0; i < s.store.len(); i++ {
		if s.store.at(i) != other.store.at(i) {
			return false
		}
	}
	return true
}

func (s *Sequence[T]) String() string {
	return fmt.Sprint(s.Slice())
}

// ensureMutable runs before any bounds check so a frozen sequence always reports ErrImmutable.
func (s *Sequence[T]) ensureMutable(op string) error {
	if !s.mutable {
		return immutableError(op)
	}
	return nil
}

// checkIndex validates 0 <= i < limit.
func (s *Sequence[T]) checkIndex(op string, i, limit int) error {
	if i < 0 || i >= limit {
		return &IndexError{Op: op, Index: i, Len: s.store.len()}
	}
	return nil
}

func toSet[T comparable](values []T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
