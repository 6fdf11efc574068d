/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: storage.go
Description: Element storage strategies behind a gated sequence. The sequence owns
the mutability latch and all bounds checking; a storage only moves elements around.
Bool sequences use a dense bitset, everything else a plain slice.
*/

package sequence

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
)

const (
	shrinkDivider        = 2
	minShrinkableCap     = 10 * shrinkDivider
	defaultSliceCapacity = 10
)

// storage is an ordered, resizable run of elements.
// Callers guarantee every index is in range.
type storage[T comparable] interface {
	len() int
	at(i int) T
	set(i int, v T)
	insert(i int, values ...T)
	removeAt(i int)
	// retain keeps the elements for which keep returns true and reports how many were dropped.
	retain(keep func(T) bool) int
	reset()
	clone(extra int) storage[T]
}

// newStorage picks the storage strategy for the element type.
func newStorage[T comparable](capacity int) storage[T] {
	var zero T
	if _, ok := any(zero).(bool); ok {
		return any(newBitStorage(capacity)).(storage[T])
	}
	if capacity < 0 {
		capacity = 0
	}
	return &sliceStorage[T]{items: make([]T, 0, capacity)}
}

// sliceStorage keeps elements in a contiguous slice.
type sliceStorage[T comparable] struct {
	items []T
}

func (s *sliceStorage[T]) len() int { return len(s.items) }

func (s *sliceStorage[T]) at(i int) T { return s.items[i] }

func (s *sliceStorage[T]) set(i int, v T) { s.items[i] = v }

func (s *sliceStorage[T]) insert(i int, values ...T) {
	if i == len(s.items) {
		s.items = append(s.items, values...)
		return
	}
	s.items = slices.Insert(s.items, i, values...)
}

func (s *sliceStorage[T]) removeAt(i int) {
	s.items = slices.Delete(s.items, i, i+1)
	s.items = shrinkIfWasted(s.items)
}

func (s *sliceStorage[T]) retain(keep func(T) bool) int {
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(v T) bool { return !keep(v) })
	s.items = shrinkIfWasted(s.items)
	return before - len(s.items)
}

func (s *sliceStorage[T]) reset() {
	s.items = nil
}

func (s *sliceStorage[T]) clone(extra int) storage[T] {
	items := make([]T, len(s.items), len(s.items)+max(extra, 0))
	copy(items, s.items)
	return &sliceStorage[T]{items: items}
}

// shrinkIfWasted reallocates s when at most 1/shrinkDivider of its capacity is in use.
func shrinkIfWasted[T any](s []T) []T {
	if cap(s) < minShrinkableCap || len(s) > cap(s)/shrinkDivider {
		return s
	}
	shrunk := make([]T, len(s), max(len(s), defaultSliceCapacity))
	copy(shrunk, s)
	return shrunk
}

// bitStorage packs bools into a bitset. The bitset length always equals the element count.
type bitStorage struct {
	bits *bitset.BitSet
}

// newBitStorage ignores the capacity hint: bitset.New(n) would report n elements.
func newBitStorage(int) *bitStorage {
	return &bitStorage{bits: bitset.New(0)}
}

func (b *bitStorage) len() int { return int(b.bits.Len()) }

func (b *bitStorage) at(i int) bool { return b.bits.Test(uint(i)) }

func (b *bitStorage) set(i int, v bool) { b.bits.SetTo(uint(i), v) }

func (b *bitStorage) insert(i int, values ...bool) {
	for j := len(values) - 1; j >= 0; j-- {
		b.insertOne(i, values[j])
	}
}

func (b *bitStorage) insertOne(i int, v bool) {
	n := b.bits.Len()
	if uint(i) == n {
		// Set grows the length to i+1.
		b.bits.Set(n)
		if !v {
			b.bits.Clear(n)
		}
		return
	}
	b.bits.InsertAt(uint(i))
	b.bits.SetTo(uint(i), v)
}

func (b *bitStorage) removeAt(i int) {
	b.bits.DeleteAt(uint(i))
}

func (b *bitStorage) retain(keep func(bool) bool) int {
	kept := &bitStorage{bits: bitset.New(0)}
	n := b.len()
	for i := 0; i < n; i++ {
		if v := b.at(i); keep(v) {
			kept.insertOne(kept.len(), v)
		}
	}
	b.bits = kept.bits
	return n - kept.len()
}

func (b *bitStorage) reset() {
	b.bits = bitset.New(0)
}

func (b *bitStorage) clone(extra int) storage[bool] {
	return &bitStorage{bits: b.bits.Clone()}
}
