/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: empty.go
Description: Shared frozen empty sequences, one per element type. Record fields
start out pointing at these so an untouched field costs no allocation.
*/

package sequence

import (
	"reflect"
	"sync"
)

var empties sync.Map // reflect.Type -> *Sequence[T]

// Empty returns the shared frozen empty sequence for T.
// Every call for the same T returns the same pointer.
func Empty[T comparable]() *Sequence[T] {
	key := reflect.TypeFor[T]()
	if s, ok := empties.Load(key); ok {
		return s.(*Sequence[T])
	}
	s := &Sequence[T]{store: newStorage[T](0)}
	actual, _ := empties.LoadOrStore(key, s)
	return actual.(*Sequence[T])
}

// IsEmptySingleton reports whether s is the shared empty sequence for T.
func IsEmptySingleton[T comparable](s *Sequence[T]) bool {
	return s == Empty[T]()
}
