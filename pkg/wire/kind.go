/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: kind.go
Description: Scalar kinds understood by the wire codec and their mapping onto
protobuf wire types.
*/

package wire

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// Kind is the declared type of a repeated field
type Kind int

const (
	KindInvalid Kind = iota
	KindInt64
	KindUint64
	KindSint64
	KindBool
	KindFixed32
	KindFixed64
	KindDouble
	KindString
	KindBytes
)

var kindNames = map[Kind]string{
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindSint64:  "sint64",
	KindBool:    "bool",
	KindFixed32: "fixed32",
	KindFixed64: "fixed64",
	KindDouble:  "double",
	KindString:  "string",
	KindBytes:   "bytes",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a schema type name onto a Kind
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown field kind %q", name)
}

// MarshalText lets kinds appear by name in YAML and JSON.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Packable reports whether values of this kind may share one length-delimited run
func (k Kind) Packable() bool {
	switch k {
	case KindString, KindBytes, KindInvalid:
		return false
	default:
		return true
	}
}

// WireType is the type used when a single value is encoded on its own
func (k Kind) WireType() protowire.Type {
	switch k {
	case KindInt64, KindUint64, KindSint64, KindBool:
		return protowire.VarintType
	case KindFixed32:
		return protowire.Fixed32Type
	case KindFixed64, KindDouble:
		return protowire.Fixed64Type
	default:
		return protowire.BytesType
	}
}
