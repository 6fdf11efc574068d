/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error values returned by the record package.
*/

package record

import "errors"

var (
	ErrInvalidSchema  = errors.New("invalid schema")
	ErrSchemaMismatch = errors.New("records use different schemas")
	ErrUnknownField   = errors.New("unknown field")
	ErrKindMismatch   = errors.New("field kind mismatch")
	ErrBuilderUsed    = errors.New("builder already built")
	ErrInvalidJSON    = errors.New("invalid JSON document")
)
