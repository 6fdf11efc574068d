/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: codec.go
Description: Protobuf wire encoding helpers for flat messages made of repeated
fields. Scalars travel as raw uint64 bit patterns; callers convert them to their
Go types. Both packed and unpacked scalar encodings are accepted on input.
*/

package wire

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/exp/constraints"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrMalformed wraps every framing error reported by protowire.
	ErrMalformed = errors.New("malformed wire data")

	// ErrWireType is returned when a field arrives with a wire type its kind cannot use.
	ErrWireType = errors.New("unexpected wire type")

	// ErrInvalidUTF8 is returned for string fields that require valid UTF-8.
	ErrInvalidUTF8 = errors.New("string field contains invalid UTF-8")
)

// RawField is one tag/value pair as it appeared on the wire
type RawField struct {
	Number protowire.Number
	Type   protowire.Type
	// Scalar holds the value of varint and fixed fields.
	Scalar uint64
	// Payload holds the value of length-delimited fields.
	Payload []byte
	// Encoded is the complete field including its tag, used to keep unknown fields.
	Encoded []byte
}

func malformed(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
}

// Walk calls fn for every top-level field in b, in order
func Walk(b []byte, fn func(f RawField) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed(n)
		}
		field := RawField{Number: num, Type: typ}
		m := 0
		switch typ {
		case protowire.VarintType:
			field.Scalar, m = protowire.ConsumeVarint(b[n:])
		case protowire.Fixed32Type:
			var v uint32
			v, m = protowire.ConsumeFixed32(b[n:])
			field.Scalar = uint64(v)
		case protowire.Fixed64Type:
			field.Scalar, m = protowire.ConsumeFixed64(b[n:])
		case protowire.BytesType:
			field.Payload, m = protowire.ConsumeBytes(b[n:])
		default:
			m = protowire.ConsumeFieldValue(num, typ, b[n:])
		}
		if m < 0 {
			return malformed(m)
		}
		field.Encoded = b[:n+m]
		if err := fn(field); err != nil {
			return err
		}
		b = b[n+m:]
	}
	return nil
}

// AppendVarint appends v as a base-128 varint
func AppendVarint[T constraints.Integer](b []byte, v T) []byte {
	return protowire.AppendVarint(b, uint64(v))
}

// ConsumeVarint reads one varint and converts it to T
func ConsumeVarint[T constraints.Integer](b []byte) (T, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, malformed(n)
	}
	return T(v), n, nil
}

// SizeVarint returns the encoded size of v
func SizeVarint[T constraints.Integer](v T) int {
	return protowire.SizeVarint(uint64(v))
}

// AppendScalar appends one scalar of the given kind without a tag
func AppendScalar(b []byte, kind Kind, raw uint64) []byte {
	switch kind.WireType() {
	case protowire.Fixed32Type:
		return protowire.AppendFixed32(b, uint32(raw))
	case protowire.Fixed64Type:
		return protowire.AppendFixed64(b, raw)
	default:
		return protowire.AppendVarint(b, raw)
	}
}

// ConsumeScalar reads one untagged scalar of the given kind
func ConsumeScalar(b []byte, kind Kind) (uint64, int, error) {
	switch kind.WireType() {
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return 0, 0, malformed(n)
		}
		return uint64(v), n, nil
	case protowire.Fixed64Type:
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return 0, 0, malformed(n)
		}
		return v, n, nil
	case protowire.VarintType:
		return ConsumeVarint[uint64](b)
	default:
		return 0, 0, fmt.Errorf("%w: %s is not a scalar kind", ErrWireType, kind)
	}
}

// AppendRepeatedScalars encodes values as one tagged field each
func AppendRepeatedScalars(b []byte, num protowire.Number, kind Kind, raws []uint64) []byte {
	for _, raw := range raws {
		b = protowire.AppendTag(b, num, kind.WireType())
		b = AppendScalar(b, kind, raw)
	}
	return b
}

// AppendPacked encodes values as a single length-delimited run. Empty input writes nothing.
func AppendPacked(b []byte, num protowire.Number, kind Kind, raws []uint64) []byte {
	if len(raws) == 0 {
		return b
	}
	var body []byte
	for _, raw := range raws {
		body = AppendScalar(body, kind, raw)
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

// ConsumePacked calls fn for every scalar in a packed payload
func ConsumePacked(payload []byte, kind Kind, fn func(raw uint64) error) error {
	for len(payload) > 0 {
		raw, n, err := ConsumeScalar(payload, kind)
		if err != nil {
			return err
		}
		if err := fn(raw); err != nil {
			return err
		}
		payload = payload[n:]
	}
	return nil
}

// ScalarValues decodes the scalar values carried by f for a field of the given kind.
// An unpacked field yields one value, a packed field yields zero or more.
func ScalarValues(f RawField, kind Kind, fn func(raw uint64) error) error {
	if !kind.Packable() {
		return fmt.Errorf("%w: field %d: %s is not a scalar kind", ErrWireType, f.Number, kind)
	}
	switch f.Type {
	case kind.WireType():
		return fn(f.Scalar)
	case protowire.BytesType:
		return ConsumePacked(f.Payload, kind, fn)
	default:
		return fmt.Errorf("%w: field %d: got wire type %d for %s", ErrWireType, f.Number, f.Type, kind)
	}
}

// StringValue returns the payload of a length-delimited field as a string
func StringValue(f RawField, kind Kind, checkUTF8 bool) (string, error) {
	if f.Type != protowire.BytesType {
		return "", fmt.Errorf("%w: field %d: got wire type %d for %s", ErrWireType, f.Number, f.Type, kind)
	}
	if checkUTF8 && !utf8.Valid(f.Payload) {
		return "", fmt.Errorf("field %d: %w", f.Number, ErrInvalidUTF8)
	}
	return string(f.Payload), nil
}

// AppendStrings encodes each value as its own length-delimited field
func AppendStrings(b []byte, num protowire.Number, values []string) []byte {
	for _, v := range values {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b
}
