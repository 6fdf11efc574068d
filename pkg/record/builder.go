/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: builder.go
Description: Copy-on-write record builder. A builder starts from an empty record or
shares the frozen lists of an existing one; a field is copied only when it is first
written. Build freezes the result and retires the builder.
*/

package record

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/kleascm/gatedseq/pkg/sequence"
)

// Builder assembles a record
type Builder struct {
	rec   *Record
	built bool
}

// NewBuilder returns a builder for an empty record
func NewBuilder(schema *Schema) *Builder {
	return &Builder{rec: newRecord(schema)}
}

// ToBuilder returns a builder seeded with r's values. r itself is never modified.
func (r *Record) ToBuilder() *Builder {
	rec := &Record{
		ID:      uuid.New(),
		schema:  r.schema,
		fields:  make([]field, len(r.fields)),
		unknown: slices.Clone(r.unknown),
	}
	for i, fd := range r.fields {
		rec.fields[i] = fd.share()
	}
	return &Builder{rec: rec}
}

func (b *Builder) check() error {
	if b.built {
		return ErrBuilderUsed
	}
	return nil
}

// Edit hands fn a mutable sequence for the named field, copying a frozen list first
func Edit[T comparable](b *Builder, name string, fn func(s *sequence.Sequence[T]) error) error {
	if err := b.check(); err != nil {
		return err
	}
	fd, err := b.rec.lookup(name)
	if err != nil {
		return err
	}
	typed, err := asRepeated[T](fd)
	if err != nil {
		return err
	}
	typed.ensureMutable()
	return fn(typed.list)
}

// Add appends values to the named field
func Add[T comparable](b *Builder, name string, values ...T) error {
	return Edit(b, name, func(s *sequence.Sequence[T]) error {
		_, err := s.AppendAll(values...)
		return err
	})
}

// Clear empties the named field
func (b *Builder) Clear(name string) error {
	if err := b.check(); err != nil {
		return err
	}
	fd, err := b.rec.lookup(name)
	if err != nil {
		return err
	}
	fd.reset()
	return nil
}

// Merge appends every field of other. Fields that are empty here adopt other's
// frozen lists without copying.
func (b *Builder) Merge(other *Record) error {
	if err := b.check(); err != nil {
		return err
	}
	if !b.rec.schema.Equal(other.schema) {
		return fmt.Errorf("%w: %s and %s", ErrSchemaMismatch, b.rec.schema.Name, other.schema.Name)
	}
	for i, fd := range b.rec.fields {
		if err := fd.mergeFrom(other.fields[i]); err != nil {
			return fmt.Errorf("field %q: %w", fd.spec().Name, err)
		}
	}
	b.rec.unknown = append(b.rec.unknown, other.unknown...)
	return nil
}

// MergeWire parses wire data and appends its values
func (b *Builder) MergeWire(data []byte) error {
	if err := b.check(); err != nil {
		return err
	}
	if err := b.rec.mergeWire(data); err != nil {
		return fmt.Errorf("failed to merge %s: %w", b.rec.schema.Name, err)
	}
	return nil
}

// Build freezes and returns the record. The builder cannot be used afterwards.
func (b *Builder) Build() (*Record, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	b.built = true
	b.rec.makeImmutable()
	return b.rec, nil
}
