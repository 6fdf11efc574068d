/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error values reported by gated sequences. Mutations on a frozen
sequence fail with ErrImmutable; index violations fail with an *IndexError
that matches ErrIndexOutOfRange.
*/

package sequence

import (
	"errors"
	"fmt"
)

var (
	// ErrImmutable is returned by every mutating method once the sequence is frozen.
	ErrImmutable = errors.New("sequence is immutable")

	// ErrIndexOutOfRange is matched by every *IndexError.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// IndexError describes an index that fell outside the valid range for an operation.
// Insertions accept [0, Len]; everything else accepts [0, Len).
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0:%d]", e.Op, e.Index, e.Len)
}

// Unwrap lets errors.Is match ErrIndexOutOfRange.
func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

func immutableError(op string) error {
	return fmt.Errorf("%s: %w", op, ErrImmutable)
}
