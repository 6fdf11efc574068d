/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sequence_test.go
Description: Tests for gated sequences. Covers the freeze latch, rejection of every
mutation once frozen, check ordering, bounds checking, copies and bulk operations.
*/

package sequence

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEndToEnd walks the basic build, freeze, read lifecycle
func TestEndToEnd(t *testing.T) {
	s := New[string]()
	for _, v := range []string{"a", "b", "c"} {
		ok, err := s.Append(v)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a", "b", "c"}, s.Slice())

	s.Freeze()

	ok, err := s.Append("d")
	assert.ErrorIs(t, err, ErrImmutable)
	assert.False(t, ok)

	v, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestFreezeIsOneWay(t *testing.T) {
	s := New[int]()
	assert.True(t, s.IsMutable())

	s.Freeze()
	assert.False(t, s.IsMutable())

	s.Freeze()
	assert.False(t, s.IsMutable())
}

// TestMutationsRejectedWhenFrozen checks every mutator against a frozen sequence
func TestMutationsRejectedWhenFrozen(t *testing.T) {
	mutators := map[string]func(s *Sequence[int]) error{
		"set": func(s *Sequence[int]) error {
			_, err := s.Set(0, 9)
			return err
		},
		"insert": func(s *Sequence[int]) error {
			return s.Insert(0, 9)
		},
		"append": func(s *Sequence[int]) error {
			_, err := s.Append(9)
			return err
		},
		"append all": func(s *Sequence[int]) error {
			_, err := s.AppendAll(9, 10)
			return err
		},
		"append none": func(s *Sequence[int]) error {
			_, err := s.AppendAll()
			return err
		},
		"insert all": func(s *Sequence[int]) error {
			_, err := s.InsertAll(1, 9, 10)
			return err
		},
		"remove at": func(s *Sequence[int]) error {
			_, err := s.RemoveAt(0)
			return err
		},
		"remove value": func(s *Sequence[int]) error {
			_, err := s.RemoveValue(1)
			return err
		},
		"remove all": func(s *Sequence[int]) error {
			_, err := s.RemoveAll(1, 2)
			return err
		},
		"retain all": func(s *Sequence[int]) error {
			_, err := s.RetainAll(1)
			return err
		},
		"clear": func(s *Sequence[int]) error {
			return s.Clear()
		},
	}

	for name, mutate := range mutators {
		t.Run(name, func(t *testing.T) {
			s := Of(1, 2, 3)
			s.Freeze()

			err := mutate(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrImmutable)
			assert.Equal(t, []int{1, 2, 3}, s.Slice())
			assert.False(t, s.IsMutable())
		})
	}
}

func TestImmutableCheckedBeforeIndex(t *testing.T) {
	s := New[string]()
	s.Freeze()

	_, err := s.RemoveAt(0)
	assert.ErrorIs(t, err, ErrImmutable)
	assert.False(t, errors.Is(err, ErrIndexOutOfRange))

	_, err = s.Set(5, "x")
	assert.ErrorIs(t, err, ErrImmutable)

	err = s.Insert(-1, "x")
	assert.ErrorIs(t, err, ErrImmutable)

	_, err = s.InsertAll(7, "x")
	assert.ErrorIs(t, err, ErrImmutable)
}

func TestBoundsChecking(t *testing.T) {
	s := Of("a", "b", "c")
	size := s.Len()

	_, err := s.Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.Get(size)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.Set(size, "v")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	err = s.Insert(size+1, "v")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.RemoveAt(size)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.InsertAll(-1, "v")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	var indexErr *IndexError
	_, err = s.Get(4)
	require.ErrorAs(t, err, &indexErr)
	assert.Equal(t, "get", indexErr.Op)
	assert.Equal(t, 4, indexErr.Index)
	assert.Equal(t, 3, indexErr.Len)

	assert.Equal(t, []string{"a", "b", "c"}, s.Slice())
}

func TestGetAllowedWhenFrozen(t *testing.T) {
	s := Of(4, 5)
	s.Freeze()

	v, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	_, err = s.Get(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestInsertAppendRemove(t *testing.T) {
	s := New[string]()
	for _, v := range []string{"a", "b", "c"} {
		_, err := s.Append(v)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, s.Slice())
	assert.Equal(t, 3, s.Len())

	require.NoError(t, s.Insert(1, "z"))
	assert.Equal(t, []string{"a", "z", "b", "c"}, s.Slice())
	assert.Equal(t, 4, s.Len())

	removed, err := s.RemoveAt(0)
	require.NoError(t, err)
	assert.Equal(t, "a", removed)
	assert.Equal(t, []string{"z", "b", "c"}, s.Slice())
	assert.Equal(t, 3, s.Len())

	require.NoError(t, s.Insert(s.Len(), "end"))
	assert.Equal(t, []string{"z", "b", "c", "end"}, s.Slice())

	prev, err := s.Set(2, "C")
	require.NoError(t, err)
	assert.Equal(t, "c", prev)
	assert.Equal(t, []string{"z", "b", "C", "end"}, s.Slice())
}

func TestCopyIndependence(t *testing.T) {
	for _, frozen := range []bool{false, true} {
		src := Of("a", "b", "c")
		if frozen {
			src.Freeze()
		}

		cp := NewFrom(src.Values())
		assert.True(t, cp.IsMutable())
		assert.Equal(t, 3, cp.Len())
		for i := 0; i < src.Len(); i++ {
			want, _ := src.Get(i)
			got, _ := cp.Get(i)
			assert.Equal(t, want, got)
		}

		_, err := cp.Append("d")
		require.NoError(t, err)
		_, err = cp.Set(0, "x")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, src.Slice())

		if !frozen {
			_, err = src.RemoveAt(2)
			require.NoError(t, err)
			assert.Equal(t, []string{"x", "b", "c", "d"}, cp.Slice())
		}
	}
}

func TestMutableCopy(t *testing.T) {
	src := Of(1, 2, 3)
	src.Freeze()

	cp := src.MutableCopyWithCapacity(4)
	assert.True(t, cp.IsMutable())
	assert.True(t, cp.Equal(src))

	_, err := cp.Append(4)
	require.NoError(t, err)
	assert.Equal(t, 3, src.Len())
	assert.False(t, cp.Equal(src))
}

func TestBulkOperations(t *testing.T) {
	s := New[int]()

	changed, err := s.AppendAll()
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.AppendAll(1, 2, 3, 2, 4)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.InsertAll(1, 7, 8)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int{1, 7, 8, 2, 3, 2, 4}, s.Slice())

	changed, err = s.RemoveValue(2)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int{1, 7, 8, 3, 2, 4}, s.Slice())

	changed, err = s.RemoveValue(42)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.RemoveAll(7, 2, 99)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int{1, 8, 3, 4}, s.Slice())

	changed, err = s.RemoveAll(99)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.RetainAll(1, 3, 4, 8)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.RetainAll(3, 4)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int{3, 4}, s.Slice())

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.IsMutable())
}

func TestShrinkAfterRemovals(t *testing.T) {
	s := WithCapacity[int](64)
	for i := 0; i < 64; i++ {
		_, err := s.Append(i)
		require.NoError(t, err)
	}
	for s.Len() > 3 {
		_, err := s.RemoveAt(0)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{61, 62, 63}, s.Slice())

	store := s.store.(*sliceStorage[int])
	assert.Less(t, cap(store.items), 64)
}

func TestIteration(t *testing.T) {
	s := Of("x", "y", "z")
	s.Freeze()

	var indexes []int
	var values []string
	for i, v := range s.All() {
		indexes = append(indexes, i)
		values = append(values, v)
	}
	assert.Equal(t, []int{0, 1, 2}, indexes)
	assert.Equal(t, []string{"x", "y", "z"}, values)

	// Restartable
	assert.Equal(t, []string{"x", "y", "z"}, slices.Collect(s.Values()))

	var first []string
	for v := range s.Values() {
		first = append(first, v)
		break
	}
	assert.Equal(t, []string{"x"}, first)
	assert.Equal(t, "[x y z]", s.String())
}

func TestContainsAndIndexOf(t *testing.T) {
	s := Of("a", "b", "a")
	assert.Equal(t, 0, s.IndexOf("a"))
	assert.Equal(t, 1, s.IndexOf("b"))
	assert.Equal(t, -1, s.IndexOf("c"))
	assert.True(t, s.Contains("b"))
	assert.False(t, s.Contains("c"))
}

func TestEmptySingleton(t *testing.T) {
	a := Empty[string]()
	b := Empty[string]()
	assert.Same(t, a, b)
	assert.False(t, a.IsMutable())
	assert.Equal(t, 0, a.Len())
	assert.True(t, IsEmptySingleton(a))
	assert.False(t, IsEmptySingleton(New[string]()))

	_, err := a.Append("x")
	assert.ErrorIs(t, err, ErrImmutable)
	assert.Equal(t, 0, a.Len())

	// Distinct element types get distinct instances.
	assert.Equal(t, 0, Empty[int]().Len())
	assert.False(t, Empty[int]().IsMutable())

	cp := a.MutableCopy()
	assert.True(t, cp.IsMutable())
	_, err = cp.Append("x")
	require.NoError(t, err)
	assert.Equal(t, 0, Empty[string]().Len())
}

func TestEmptySingletonConcurrentReaders(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]*Sequence[uint64], 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Empty[uint64]()
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}
