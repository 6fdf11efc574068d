/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: record.go
Description: Records are flat messages of repeated fields. Parsing fills each field's
sequence and freezes it once the input is consumed, so readers get the parsed lists
directly and can never modify them. Changes go through a Builder.
*/

package record

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/kleascm/gatedseq/pkg/sequence"
	"github.com/kleascm/gatedseq/pkg/wire"
	"github.com/tidwall/gjson"
)

// Record is a frozen set of repeated fields described by a Schema
type Record struct {
	ID      uuid.UUID
	schema  *Schema
	fields  []field
	unknown []byte
}

func newRecord(schema *Schema) *Record {
	r := &Record{
		ID:     uuid.New(),
		schema: schema,
		fields: make([]field, len(schema.fields)),
	}
	for i, fs := range schema.fields {
		r.fields[i] = newField(fs)
	}
	return r
}

// New returns an empty record. Every field shares the frozen empty sequence.
func New(schema *Schema) *Record {
	return newRecord(schema)
}

// Unmarshal parses protobuf wire data into a frozen record.
// Fields missing from the schema are kept verbatim and written back by Marshal.
func Unmarshal(schema *Schema, data []byte) (*Record, error) {
	r := newRecord(schema)
	if err := r.mergeWire(data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", schema.Name, err)
	}
	r.makeImmutable()
	return r, nil
}

// FromJSON builds a frozen record from a JSON object mapping field names to value arrays
func FromJSON(schema *Schema, data []byte) (*Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidJSON)
	}

	b := NewBuilder(schema)
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		fd, ferr := b.rec.lookup(key.String())
		if ferr != nil {
			err = ferr
			return false
		}
		err = fd.appendJSON(value)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// mergeWire appends the fields in data to r. Frozen lists are copied before the first write.
func (r *Record) mergeWire(data []byte) error {
	return wire.Walk(data, func(f wire.RawField) error {
		i, ok := r.schema.byNumber[f.Number]
		if !ok {
			r.unknown = append(r.unknown, f.Encoded...)
			return nil
		}
		if err := r.fields[i].decode(f); err != nil {
			return fmt.Errorf("field %q: %w", r.schema.fields[i].Name, err)
		}
		return nil
	})
}

// makeImmutable freezes every field that is still mutable
func (r *Record) makeImmutable() {
	for _, fd := range r.fields {
		fd.makeImmutable()
	}
}

func (r *Record) lookup(name string) (field, error) {
	i, ok := r.schema.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in schema %s", ErrUnknownField, name, r.schema.Name)
	}
	return r.fields[i], nil
}

// Marshal encodes the record in field number order, followed by any unknown fields
func (r *Record) Marshal() ([]byte, error) {
	var b []byte
	for _, i := range r.schema.wireOrder {
		b = r.fields[i].encode(b)
	}
	return append(b, r.unknown...), nil
}

// MarshalJSON renders the record as an object of field name to value array.
// Empty fields are omitted.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.fields))
	for _, fd := range r.fields {
		if fd.len() == 0 {
			continue
		}
		out[fd.spec().Name] = fd.jsonValues()
	}
	return json.Marshal(out)
}

// Schema returns the record's schema
func (r *Record) Schema() *Schema {
	return r.schema
}

// Len returns the number of values held by the named field
func (r *Record) Len(name string) (int, error) {
	fd, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	return fd.len(), nil
}

// Counts returns the value count of every field by name
func (r *Record) Counts() map[string]int {
	counts := make(map[string]int, len(r.fields))
	for _, fd := range r.fields {
		counts[fd.spec().Name] = fd.len()
	}
	return counts
}

// Frozen reports whether no field accepts mutation. Always true for records
// returned by this package.
func (r *Record) Frozen() bool {
	for _, fd := range r.fields {
		if fd.isMutable() {
			return false
		}
	}
	return true
}

// Unknown returns a copy of the fields that were not in the schema
func (r *Record) Unknown() []byte {
	return slices.Clone(r.unknown)
}

// Equal compares field values and unknown bytes. IDs are ignored.
func (r *Record) Equal(other *Record) bool {
	if !r.schema.Equal(other.schema) || !bytes.Equal(r.unknown, other.unknown) {
		return false
	}
	for i, fd := range r.fields {
		if !fd.equal(other.fields[i]) {
			return false
		}
	}
	return true
}

// Get returns the named field's values. The sequence is frozen and shared with the record.
func Get[T comparable](r *Record, name string) (*sequence.Sequence[T], error) {
	fd, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	typed, err := asRepeated[T](fd)
	if err != nil {
		return nil, err
	}
	return typed.list, nil
}

func asRepeated[T comparable](fd field) (*repeated[T], error) {
	typed, ok := fd.(*repeated[T])
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: field %q is %s, not %T", ErrKindMismatch, fd.spec().Name, fd.spec().Kind, zero)
	}
	return typed, nil
}
