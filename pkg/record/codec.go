/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: codec.go
Description: Schema-bound codec that converts records to and from wire bytes and
JSON, logging each conversion.
*/

package record

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Codec encodes and decodes records of a single schema
type Codec struct {
	schema *Schema
	logger *logrus.Logger
}

// NewCodec creates a codec. A nil logger discards output.
func NewCodec(schema *Schema, logger *logrus.Logger) *Codec {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Codec{schema: schema, logger: logger}
}

// Schema returns the codec's schema
func (c *Codec) Schema() *Schema {
	return c.schema
}

// Decode parses wire bytes into a frozen record
func (c *Codec) Decode(data []byte) (*Record, error) {
	start := time.Now()
	r, err := Unmarshal(c.schema, data)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"schema": c.schema.Name,
			"bytes":  len(data),
		}).WithError(err).Warn("Record decode failed")
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"record_id":     r.ID.String(),
		"schema":        c.schema.Name,
		"bytes":         len(data),
		"unknown_bytes": len(r.unknown),
		"duration":      time.Since(start),
	}).Debug("Record decoded")
	if len(r.unknown) > 0 {
		c.logger.WithField("record_id", r.ID.String()).Infof("Kept %d bytes of unknown fields", len(r.unknown))
	}
	return r, nil
}

// Encode serializes a record to wire bytes
func (c *Codec) Encode(r *Record) ([]byte, error) {
	data, err := r.Marshal()
	if err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"record_id": r.ID.String(),
		"schema":    c.schema.Name,
		"bytes":     len(data),
	}).Debug("Record encoded")
	return data, nil
}

// DecodeJSON builds a frozen record from a JSON document
func (c *Codec) DecodeJSON(data []byte) (*Record, error) {
	r, err := FromJSON(c.schema, data)
	if err != nil {
		c.logger.WithError(err).Warn("JSON record rejected")
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"record_id": r.ID.String(),
		"schema":    c.schema.Name,
	}).Debug("Record built from JSON")
	return r, nil
}
