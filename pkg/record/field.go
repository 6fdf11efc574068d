/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: field.go
Description: Repeated field storage for records. Each field owns one gated sequence.
Untouched fields point at the shared frozen empty sequence; the first write
replaces a frozen list with a mutable copy, and finishing a parse or build freezes
whatever is still mutable.
*/

package record

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/kleascm/gatedseq/pkg/sequence"
	"github.com/kleascm/gatedseq/pkg/wire"
	"github.com/tidwall/gjson"
	"google.golang.org/protobuf/encoding/protowire"
)

// field is the kind-independent view of a repeated field
type field interface {
	spec() FieldSpec
	len() int
	isMutable() bool
	makeImmutable()
	reset()
	decode(f wire.RawField) error
	encode(b []byte) []byte
	appendJSON(v gjson.Result) error
	jsonValues() []any
	mergeFrom(other field) error
	equal(other field) bool
	share() field
}

// valueCodec converts between a Go element type and its wire and JSON forms.
// Scalar kinds set toRaw/fromRaw, string kinds set toString/fromString.
type valueCodec[T comparable] struct {
	toRaw      func(T) uint64
	fromRaw    func(uint64) T
	toString   func(T) string
	fromString func(string) T
	toJSON     func(T) any
	fromJSON   func(gjson.Result) (T, bool)
}

type repeated[T comparable] struct {
	fs    FieldSpec
	list  *sequence.Sequence[T]
	codec valueCodec[T]
}

func newRepeated[T comparable](fs FieldSpec, codec valueCodec[T]) *repeated[T] {
	return &repeated[T]{fs: fs, list: sequence.Empty[T](), codec: codec}
}

// newField returns an empty field for fs
func newField(fs FieldSpec) field {
	switch fs.Kind {
	case wire.KindInt64:
		return newRepeated(fs, int64Codec)
	case wire.KindSint64:
		return newRepeated(fs, sint64Codec)
	case wire.KindUint64, wire.KindFixed64:
		return newRepeated(fs, uint64Codec)
	case wire.KindFixed32:
		return newRepeated(fs, uint32Codec)
	case wire.KindBool:
		return newRepeated(fs, boolCodec)
	case wire.KindDouble:
		return newRepeated(fs, float64Codec)
	case wire.KindString:
		return newRepeated(fs, stringCodec)
	case wire.KindBytes:
		return newRepeated(fs, bytesCodec)
	default:
		panic(fmt.Sprintf("record: unsupported kind %s", fs.Kind))
	}
}

func (r *repeated[T]) spec() FieldSpec { return r.fs }

func (r *repeated[T]) len() int { return r.list.Len() }

func (r *repeated[T]) isMutable() bool { return r.list.IsMutable() }

// ensureMutable swaps a frozen list for a mutable copy before the first write
func (r *repeated[T]) ensureMutable() {
	if !r.list.IsMutable() {
		r.list = r.list.MutableCopy()
	}
}

// makeImmutable freezes the list if it is still mutable
func (r *repeated[T]) makeImmutable() {
	if r.list.IsMutable() {
		r.list.Freeze()
	}
}

func (r *repeated[T]) reset() {
	r.list = sequence.Empty[T]()
}

func (r *repeated[T]) decode(f wire.RawField) error {
	if r.fs.Kind.Packable() {
		// An empty packed run leaves the field untouched.
		if f.Type == protowire.BytesType && len(f.Payload) == 0 {
			return nil
		}
		r.ensureMutable()
		return wire.ScalarValues(f, r.fs.Kind, func(raw uint64) error {
			_, err := r.list.Append(r.codec.fromRaw(raw))
			return err
		})
	}

	s, err := wire.StringValue(f, r.fs.Kind, r.fs.CheckUTF8)
	if err != nil {
		return err
	}
	r.ensureMutable()
	_, err = r.list.Append(r.codec.fromString(s))
	return err
}

func (r *repeated[T]) encode(b []byte) []byte {
	if r.list.Len() == 0 {
		return b
	}
	if !r.fs.Kind.Packable() {
		values := make([]string, 0, r.list.Len())
		for v := range r.list.Values() {
			values = append(values, r.codec.toString(v))
		}
		return wire.AppendStrings(b, r.fs.Number, values)
	}

	raws := make([]uint64, 0, r.list.Len())
	for v := range r.list.Values() {
		raws = append(raws, r.codec.toRaw(v))
	}
	if r.fs.Packed {
		return wire.AppendPacked(b, r.fs.Number, r.fs.Kind, raws)
	}
	return wire.AppendRepeatedScalars(b, r.fs.Number, r.fs.Kind, raws)
}

func (r *repeated[T]) appendJSON(v gjson.Result) error {
	if v.Type == gjson.Null {
		return nil
	}
	elems := []gjson.Result{v}
	if v.IsArray() {
		elems = v.Array()
	}
	if len(elems) == 0 {
		return nil
	}

	r.ensureMutable()
	for _, elem := range elems {
		value, ok := r.codec.fromJSON(elem)
		if !ok {
			return fmt.Errorf("%w: field %q: %s is not a valid %s", ErrKindMismatch, r.fs.Name, elem.Raw, r.fs.Kind)
		}
		if _, err := r.list.Append(value); err != nil {
			return err
		}
	}
	return nil
}

func (r *repeated[T]) jsonValues() []any {
	out := make([]any, 0, r.list.Len())
	for v := range r.list.Values() {
		out = append(out, r.codec.toJSON(v))
	}
	return out
}

// mergeFrom appends other's values. An empty field adopts other's frozen list as is.
func (r *repeated[T]) mergeFrom(other field) error {
	o, ok := other.(*repeated[T])
	if !ok {
		return fmt.Errorf("%w: cannot merge %s into %s", ErrKindMismatch, other.spec().Kind, r.fs.Kind)
	}
	if o.list.Len() == 0 {
		return nil
	}
	if r.list.Len() == 0 && !o.list.IsMutable() {
		r.list = o.list
		return nil
	}
	r.ensureMutable()
	_, err := r.list.AppendAll(o.list.Slice()...)
	return err
}

func (r *repeated[T]) equal(other field) bool {
	o, ok := other.(*repeated[T])
	return ok && r.list.Equal(o.list)
}

// share returns a field pointing at the same list
func (r *repeated[T]) share() field {
	return &repeated[T]{fs: r.fs, list: r.list, codec: r.codec}
}

var (
	int64Codec = valueCodec[int64]{
		toRaw:    func(v int64) uint64 { return uint64(v) },
		fromRaw:  func(raw uint64) int64 { return int64(raw) },
		toJSON:   func(v int64) any { return v },
		fromJSON: jsonInt,
	}
	sint64Codec = valueCodec[int64]{
		toRaw:    protowire.EncodeZigZag,
		fromRaw:  protowire.DecodeZigZag,
		toJSON:   func(v int64) any { return v },
		fromJSON: jsonInt,
	}
	uint64Codec = valueCodec[uint64]{
		toRaw:    func(v uint64) uint64 { return v },
		fromRaw:  func(raw uint64) uint64 { return raw },
		toJSON:   func(v uint64) any { return v },
		fromJSON: jsonUint(64),
	}
	uint32Codec = valueCodec[uint32]{
		toRaw:   func(v uint32) uint64 { return uint64(v) },
		fromRaw: func(raw uint64) uint32 { return uint32(raw) },
		toJSON:  func(v uint32) any { return v },
		fromJSON: func(v gjson.Result) (uint32, bool) {
			u, ok := jsonUint(32)(v)
			return uint32(u), ok
		},
	}
	boolCodec = valueCodec[bool]{
		toRaw:   protowire.EncodeBool,
		fromRaw: protowire.DecodeBool,
		toJSON:  func(v bool) any { return v },
		fromJSON: func(v gjson.Result) (bool, bool) {
			if v.Type != gjson.True && v.Type != gjson.False {
				return false, false
			}
			return v.Bool(), true
		},
	}
	float64Codec = valueCodec[float64]{
		toRaw:    math.Float64bits,
		fromRaw:  math.Float64frombits,
		toJSON:   jsonFloatValue,
		fromJSON: jsonFloat,
	}
	stringCodec = valueCodec[string]{
		toString:   func(v string) string { return v },
		fromString: func(s string) string { return s },
		toJSON:     func(v string) any { return v },
		fromJSON: func(v gjson.Result) (string, bool) {
			if v.Type != gjson.String {
				return "", false
			}
			return v.Str, true
		},
	}
	// Bytes are held as strings so they stay comparable; JSON carries them as base64.
	bytesCodec = valueCodec[string]{
		toString:   func(v string) string { return v },
		fromString: func(s string) string { return s },
		toJSON:     func(v string) any { return base64.StdEncoding.EncodeToString([]byte(v)) },
		fromJSON: func(v gjson.Result) (string, bool) {
			if v.Type != gjson.String {
				return "", false
			}
			b, err := base64.StdEncoding.DecodeString(v.Str)
			return string(b), err == nil
		},
	}
)

// numericText returns the literal text of a JSON number or numeric string
func numericText(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Raw, true
	case gjson.String:
		return v.Str, true
	default:
		return "", false
	}
}

func jsonInt(v gjson.Result) (int64, bool) {
	text, ok := numericText(v)
	if !ok {
		return 0, false
	}
	i, err := strconv.ParseInt(text, 10, 64)
	return i, err == nil
}

func jsonUint(bits int) func(gjson.Result) (uint64, bool) {
	return func(v gjson.Result) (uint64, bool) {
		text, ok := numericText(v)
		if !ok {
			return 0, false
		}
		u, err := strconv.ParseUint(text, 10, bits)
		return u, err == nil
	}
}

func jsonFloat(v gjson.Result) (float64, bool) {
	text, ok := numericText(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	return f, err == nil
}

// jsonFloatValue spells out values JSON numbers cannot carry
func jsonFloatValue(v float64) any {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	default:
		return v
	}
}
