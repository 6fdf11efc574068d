/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Built-in self-check. Exercises the freeze lifecycle of a sequence
and a record round trip through the wire codec, then reports pass/fail.
*/

package commands

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kleascm/gatedseq/pkg/logging"
	"github.com/kleascm/gatedseq/pkg/record"
	"github.com/kleascm/gatedseq/pkg/report"
	"github.com/kleascm/gatedseq/pkg/sequence"
	"github.com/kleascm/gatedseq/pkg/wire"
	"github.com/spf13/cobra"
)

// RunCheck runs the self-checks and fails when any of them fails
func RunCheck(cmd *cobra.Command, args []string) error {
	logger, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	summary := &report.Summary{Checks: make(map[string]bool), CreatedAt: time.Now().UTC()}
	failed := 0
	mark := func(name string, err error) {
		summary.Checks[name] = err == nil
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", name, err)
			logger.Error("Check failed", map[string]interface{}{"check": name, "error": err})
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "PASS %s\n", name)
	}

	mark("sequence-lifecycle", checkLifecycle(logger))
	rec, size, err := checkRoundTrip(logger)
	mark("record-round-trip", err)
	if rec != nil {
		checks := summary.Checks
		summary = report.Summarize(rec, size)
		summary.Checks = checks
	}

	if _, err := saveReport(logger, "check", summary); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(summary.Checks))
	}
	return nil
}

// checkLifecycle appends a, b, c, freezes, and expects the next append to be refused
func checkLifecycle(logger *logging.Logger) error {
	s := sequence.New[string]()
	for _, v := range []string{"a", "b", "c"} {
		if _, err := s.Append(v); err != nil {
			return fmt.Errorf("append %q: %w", v, err)
		}
	}
	if got := s.Slice(); !slices.Equal(got, []string{"a", "b", "c"}) {
		return fmt.Errorf("contents %v, want [a b c]", got)
	}

	s.Freeze()
	_, err := s.Append("d")
	if !errors.Is(err, sequence.ErrImmutable) {
		return fmt.Errorf("append after freeze returned %v, want %v", err, sequence.ErrImmutable)
	}
	logger.LogRejected("append", err)

	if s.Len() != 3 {
		return fmt.Errorf("size %d after rejected append, want 3", s.Len())
	}
	v, err := s.Get(1)
	if err != nil {
		return fmt.Errorf("get on frozen sequence: %w", err)
	}
	if v != "b" {
		return fmt.Errorf("get(1) = %q, want %q", v, "b")
	}
	return nil
}

func checkSchema() (*record.Schema, error) {
	return record.NewSchema("check",
		record.FieldSpec{Name: "ids", Number: 1, Kind: wire.KindInt64, Packed: true},
		record.FieldSpec{Name: "tags", Number: 2, Kind: wire.KindString, CheckUTF8: true},
		record.FieldSpec{Name: "flags", Number: 3, Kind: wire.KindBool, Packed: true},
	)
}

// checkRoundTrip builds a record, encodes and decodes it, and verifies the
// decoded fields are equal and frozen
func checkRoundTrip(logger *logging.Logger) (*record.Record, int, error) {
	schema, err := checkSchema()
	if err != nil {
		return nil, 0, err
	}
	codec := record.NewCodec(schema, logger.GetLogger())

	b := record.NewBuilder(schema)
	if err := record.Add(b, "ids", int64(1), -2, 300); err != nil {
		return nil, 0, err
	}
	if err := record.Add(b, "tags", "a", "b", "c"); err != nil {
		return nil, 0, err
	}
	if err := record.Add(b, "flags", true, false, true); err != nil {
		return nil, 0, err
	}
	built, err := b.Build()
	if err != nil {
		return nil, 0, err
	}

	data, err := codec.Encode(built)
	if err != nil {
		return nil, 0, err
	}
	decoded, err := codec.Decode(data)
	if err != nil {
		return nil, 0, err
	}
	if !decoded.Equal(built) {
		return nil, 0, fmt.Errorf("decoded record differs from the original")
	}

	tags, err := record.Get[string](decoded, "tags")
	if err != nil {
		return nil, 0, err
	}
	if _, err := tags.Append("d"); !errors.Is(err, sequence.ErrImmutable) {
		return nil, 0, fmt.Errorf("decoded field accepted a mutation: %v", err)
	}
	logger.LogFreeze(decoded.ID.String(), len(decoded.Counts()))
	return decoded, len(data), nil
}
