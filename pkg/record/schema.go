/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: schema.go
Description: Record schemas. A schema names a flat list of repeated fields with
their field numbers and kinds, and is usually loaded from a YAML file:

	name: sample
	fields:
	  - {name: ids, number: 1, type: int64, packed: true}
	  - {name: tags, number: 2, type: string, check_utf8: true}
*/

package record

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kleascm/gatedseq/pkg/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// FieldSpec declares one repeated field
type FieldSpec struct {
	Name      string
	Number    protowire.Number
	Kind      wire.Kind
	Packed    bool
	CheckUTF8 bool
}

// Schema is an immutable, validated set of field declarations
type Schema struct {
	Name   string
	fields []FieldSpec

	byName   map[string]int
	byNumber map[protowire.Number]int
	// wireOrder lists field indexes sorted by field number.
	wireOrder []int
}

type schemaFile struct {
	Name   string `yaml:"name"`
	Fields []struct {
		Name      string `yaml:"name"`
		Number    int32  `yaml:"number"`
		Type      string `yaml:"type"`
		Packed    bool   `yaml:"packed"`
		CheckUTF8 bool   `yaml:"check_utf8"`
	} `yaml:"fields"`
}

// LoadSchema reads and validates a YAML schema file
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	schema, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}

// ParseSchema parses and validates a YAML schema document
func ParseSchema(data []byte) (*Schema, error) {
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	specs := make([]FieldSpec, 0, len(file.Fields))
	for _, f := range file.Fields {
		kind, err := wire.ParseKind(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		specs = append(specs, FieldSpec{
			Name:      f.Name,
			Number:    protowire.Number(f.Number),
			Kind:      kind,
			Packed:    f.Packed,
			CheckUTF8: f.CheckUTF8,
		})
	}
	return NewSchema(file.Name, specs...)
}

// NewSchema validates the field declarations and builds a schema
func NewSchema(name string, fields ...FieldSpec) (*Schema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: schema name must not be empty", ErrInvalidSchema)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: schema %s declares no fields", ErrInvalidSchema, name)
	}

	s := &Schema{
		Name:     name,
		fields:   slices.Clone(fields),
		byName:   make(map[string]int, len(fields)),
		byNumber: make(map[protowire.Number]int, len(fields)),
	}

	for i, f := range s.fields {
		switch {
		case f.Name == "":
			return nil, fmt.Errorf("%w: field %d has no name", ErrInvalidSchema, i)
		case !f.Number.IsValid():
			return nil, fmt.Errorf("%w: field %q has invalid number %d", ErrInvalidSchema, f.Name, f.Number)
		case f.Kind == wire.KindInvalid:
			return nil, fmt.Errorf("%w: field %q has no kind", ErrInvalidSchema, f.Name)
		case f.Packed && !f.Kind.Packable():
			return nil, fmt.Errorf("%w: field %q: %s fields cannot be packed", ErrInvalidSchema, f.Name, f.Kind)
		case f.CheckUTF8 && f.Kind != wire.KindString:
			return nil, fmt.Errorf("%w: field %q: check_utf8 only applies to string fields", ErrInvalidSchema, f.Name)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field name %q", ErrInvalidSchema, f.Name)
		}
		if _, dup := s.byNumber[f.Number]; dup {
			return nil, fmt.Errorf("%w: duplicate field number %d", ErrInvalidSchema, f.Number)
		}
		s.byName[f.Name] = i
		s.byNumber[f.Number] = i
		s.wireOrder = append(s.wireOrder, i)
	}

	slices.SortFunc(s.wireOrder, func(a, b int) int {
		return int(s.fields[a].Number) - int(s.fields[b].Number)
	})
	return s, nil
}

// Fields returns a copy of the field declarations in declaration order
func (s *Schema) Fields() []FieldSpec {
	return slices.Clone(s.fields)
}

// Field looks a field up by name
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Equal reports whether both schemas declare the same fields in the same order
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return s.Name == other.Name && slices.Equal(s.fields, other.fields)
}
