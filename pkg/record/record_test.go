/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: record_test.go
Description: Tests for record parsing, serialization, copy-on-write building,
merging and JSON conversion.
*/

package record_test

import (
	"math"
	"testing"

	"github.com/kleascm/gatedseq/pkg/record"
	"github.com/kleascm/gatedseq/pkg/sequence"
	"github.com/kleascm/gatedseq/pkg/wire"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func buildSample(t *testing.T, schema *record.Schema) *record.Record {
	t.Helper()
	b := record.NewBuilder(schema)
	require.NoError(t, record.Add(b, "ids", int64(1), int64(-2), int64(300)))
	require.NoError(t, record.Add(b, "tags", "a", "b", "c"))
	require.NoError(t, record.Add(b, "deltas", int64(-1), int64(1), int64(-3612)))
	require.NoError(t, record.Add(b, "flags", true, false, true))
	require.NoError(t, record.Add(b, "weights", 0.5, math.Inf(1)))
	require.NoError(t, record.Add(b, "crcs", uint32(0x9abcdef0)))
	require.NoError(t, record.Add(b, "blobs", "\x00\xff"))
	require.NoError(t, record.Add(b, "counters", uint64(math.MaxUint64)))
	r, err := b.Build()
	require.NoError(t, err)
	return r
}

func TestNewRecordFieldsShareEmptySingleton(t *testing.T) {
	r := record.New(sampleSchema(t))
	ids, err := record.Get[int64](r, "ids")
	require.NoError(t, err)
	assert.True(t, sequence.IsEmptySingleton(ids))
	assert.True(t, r.Frozen())

	_, err = ids.Append(1)
	assert.ErrorIs(t, err, sequence.ErrImmutable)
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	schema := sampleSchema(t)
	r := buildSample(t, schema)
	assert.True(t, r.Frozen())

	data, err := r.Marshal()
	require.NoError(t, err)

	parsed, err := record.Unmarshal(schema, data)
	require.NoError(t, err)
	assert.True(t, parsed.Frozen())
	assert.True(t, parsed.Equal(r))
	assert.NotEqual(t, r.ID, parsed.ID)

	tags, err := record.Get[string](parsed, "tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tags.Slice())
	assert.False(t, tags.IsMutable())

	_, err = tags.Append("d")
	assert.ErrorIs(t, err, sequence.ErrImmutable)
	assert.Equal(t, 3, tags.Len())

	flags, err := record.Get[bool](parsed, "flags")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, flags.Slice())

	deltas, err := record.Get[int64](parsed, "deltas")
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 1, -3612}, deltas.Slice())

	counters, err := record.Get[uint64](parsed, "counters")
	require.NoError(t, err)
	assert.Equal(t, []uint64{math.MaxUint64}, counters.Slice())

	again, err := parsed.Marshal()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestUnmarshalAcceptsPackedAndUnpacked(t *testing.T) {
	schema := sampleSchema(t)

	// ids is declared packed, deltas is not; send them the other way round.
	var data []byte
	data = wire.AppendRepeatedScalars(data, 1, wire.KindInt64, []uint64{5, 6})
	data = wire.AppendPacked(data, 3, wire.KindSint64, []uint64{
		protowire.EncodeZigZag(-7), protowire.EncodeZigZag(8),
	})
	data = wire.AppendRepeatedScalars(data, 1, wire.KindInt64, []uint64{7})

	r, err := record.Unmarshal(schema, data)
	require.NoError(t, err)

	ids, err := record.Get[int64](r, "ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6, 7}, ids.Slice())

	deltas, err := record.Get[int64](r, "deltas")
	require.NoError(t, err)
	assert.Equal(t, []int64{-7, 8}, deltas.Slice())
}

func TestUnmarshalEmptyPackedRunKeepsSingleton(t *testing.T) {
	schema := sampleSchema(t)
	data := protowire.AppendTag(nil, 1, protowire.BytesType)
	data = protowire.AppendBytes(data, nil)

	r, err := record.Unmarshal(schema, data)
	require.NoError(t, err)

	ids, err := record.Get[int64](r, "ids")
	require.NoError(t, err)
	assert.True(t, sequence.IsEmptySingleton(ids))
}

func TestUnmarshalKeepsUnknownFields(t *testing.T) {
	schema := sampleSchema(t)
	unknown := protowire.AppendTag(nil, 99, protowire.VarintType)
	unknown = protowire.AppendVarint(unknown, 42)

	data := wire.AppendStrings(nil, 2, []string{"x"})
	data = append(data, unknown...)

	r, err := record.Unmarshal(schema, data)
	require.NoError(t, err)
	assert.Equal(t, unknown, r.Unknown())

	out, err := r.Marshal()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestUnmarshalErrors(t *testing.T) {
	schema := sampleSchema(t)

	t.Run("invalid utf8", func(t *testing.T) {
		data := wire.AppendStrings(nil, 2, []string{"\xff"})
		_, err := record.Unmarshal(schema, data)
		assert.ErrorIs(t, err, wire.ErrInvalidUTF8)
	})

	t.Run("bytes allow anything", func(t *testing.T) {
		data := wire.AppendStrings(nil, 7, []string{"\xff"})
		_, err := record.Unmarshal(schema, data)
		assert.NoError(t, err)
	})

	t.Run("wrong wire type", func(t *testing.T) {
		data := protowire.AppendTag(nil, 6, protowire.VarintType)
		data = protowire.AppendVarint(data, 1)
		_, err := record.Unmarshal(schema, data)
		assert.ErrorIs(t, err, wire.ErrWireType)
	})

	t.Run("truncated", func(t *testing.T) {
		data := protowire.AppendTag(nil, 1, protowire.VarintType)
		data = append(data, 0x80)
		_, err := record.Unmarshal(schema, data)
		assert.ErrorIs(t, err, wire.ErrMalformed)
	})
}

func TestBuilderCopyOnWrite(t *testing.T) {
	schema := sampleSchema(t)
	original := buildSample(t, schema)
	originalTags, err := record.Get[string](original, "tags")
	require.NoError(t, err)

	b := original.ToBuilder()
	require.NoError(t, record.Add(b, "tags", "d"))
	require.NoError(t, record.Edit(b, "ids", func(s *sequence.Sequence[int64]) error {
		_, err := s.RemoveAt(0)
		return err
	}))
	require.NoError(t, b.Clear("blobs"))

	derived, err := b.Build()
	require.NoError(t, err)
	assert.True(t, derived.Frozen())

	assert.Equal(t, []string{"a", "b", "c"}, originalTags.Slice())
	derivedTags, err := record.Get[string](derived, "tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, derivedTags.Slice())

	ids, err := record.Get[int64](derived, "ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{-2, 300}, ids.Slice())

	n, err := original.Len("blobs")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = derived.Len("blobs")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Untouched fields are shared, not copied.
	origWeights, _ := record.Get[float64](original, "weights")
	derivedWeights, _ := record.Get[float64](derived, "weights")
	assert.Same(t, origWeights, derivedWeights)
}

func TestBuilderRejectsReuse(t *testing.T) {
	b := record.NewBuilder(sampleSchema(t))
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	assert.ErrorIs(t, err, record.ErrBuilderUsed)
	assert.ErrorIs(t, record.Add(b, "ids", int64(1)), record.ErrBuilderUsed)
	assert.ErrorIs(t, b.Clear("ids"), record.ErrBuilderUsed)
	assert.ErrorIs(t, b.MergeWire(nil), record.ErrBuilderUsed)
}

func TestBuilderFieldErrors(t *testing.T) {
	b := record.NewBuilder(sampleSchema(t))
	assert.ErrorIs(t, record.Add(b, "nope", int64(1)), record.ErrUnknownField)
	assert.ErrorIs(t, record.Add(b, "ids", "not an int"), record.ErrKindMismatch)
	assert.ErrorIs(t, b.Clear("nope"), record.ErrUnknownField)

	r := record.New(sampleSchema(t))
	_, err := record.Get[string](r, "ids")
	assert.ErrorIs(t, err, record.ErrKindMismatch)
	_, err = r.Len("nope")
	assert.ErrorIs(t, err, record.ErrUnknownField)
}

func TestMerge(t *testing.T) {
	schema := sampleSchema(t)
	other := buildSample(t, schema)
	otherTags, _ := record.Get[string](other, "tags")

	b := record.NewBuilder(schema)
	require.NoError(t, record.Add(b, "ids", int64(9)))
	require.NoError(t, b.Merge(other))
	merged, err := b.Build()
	require.NoError(t, err)

	// Empty field adopts the other record's frozen list.
	tags, _ := record.Get[string](merged, "tags")
	assert.Same(t, otherTags, tags)

	ids, _ := record.Get[int64](merged, "ids")
	assert.Equal(t, []int64{9, 1, -2, 300}, ids.Slice())

	otherIDs, _ := record.Get[int64](other, "ids")
	assert.Equal(t, []int64{1, -2, 300}, otherIDs.Slice())

	// Writing to an adopted list copies it first.
	b = merged.ToBuilder()
	require.NoError(t, record.Add(b, "tags", "z"))
	_, err = b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, otherTags.Slice())
}

func TestMergeSchemaMismatch(t *testing.T) {
	other, err := record.NewSchema("other", record.FieldSpec{Name: "ids", Number: 1, Kind: wire.KindInt64})
	require.NoError(t, err)

	b := record.NewBuilder(sampleSchema(t))
	assert.ErrorIs(t, b.Merge(record.New(other)), record.ErrSchemaMismatch)
}

func TestMergeWire(t *testing.T) {
	schema := sampleSchema(t)
	first := buildSample(t, schema)

	b := first.ToBuilder()
	require.NoError(t, b.MergeWire(wire.AppendStrings(nil, 2, []string{"d"})))
	r, err := b.Build()
	require.NoError(t, err)

	tags, _ := record.Get[string](r, "tags")
	assert.Equal(t, []string{"a", "b", "c", "d"}, tags.Slice())
	firstTags, _ := record.Get[string](first, "tags")
	assert.Equal(t, []string{"a", "b", "c"}, firstTags.Slice())
}

func TestJSONRoundTrip(t *testing.T) {
	schema := sampleSchema(t)
	r := buildSample(t, schema)

	data, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tags":["a","b","c"]`)
	assert.Contains(t, string(data), `"weights":[0.5,"Infinity"]`)
	assert.Contains(t, string(data), `"counters":[18446744073709551615]`)

	parsed, err := record.FromJSON(schema, data)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(r))
	assert.True(t, parsed.Frozen())
}

func TestFromJSON(t *testing.T) {
	schema := sampleSchema(t)

	r, err := record.FromJSON(schema, []byte(`{"ids": ["12", 13], "flags": true, "tags": null}`))
	require.NoError(t, err)
	ids, _ := record.Get[int64](r, "ids")
	assert.Equal(t, []int64{12, 13}, ids.Slice())
	flags, _ := record.Get[bool](r, "flags")
	assert.Equal(t, []bool{true}, flags.Slice())
	tags, _ := record.Get[string](r, "tags")
	assert.True(t, sequence.IsEmptySingleton(tags))

	_, err = record.FromJSON(schema, []byte(`{"ids": [1.5]}`))
	assert.ErrorIs(t, err, record.ErrKindMismatch)

	_, err = record.FromJSON(schema, []byte(`{"crcs": [4294967296]}`))
	assert.ErrorIs(t, err, record.ErrKindMismatch)

	_, err = record.FromJSON(schema, []byte(`{"blobs": ["not base64!"]}`))
	assert.ErrorIs(t, err, record.ErrKindMismatch)

	_, err = record.FromJSON(schema, []byte(`{"nope": [1]}`))
	assert.ErrorIs(t, err, record.ErrUnknownField)

	_, err = record.FromJSON(schema, []byte(`[1, 2]`))
	assert.ErrorIs(t, err, record.ErrInvalidJSON)

	_, err = record.FromJSON(schema, []byte(`{"ids": [`))
	assert.ErrorIs(t, err, record.ErrInvalidJSON)
}

func TestCodecLogs(t *testing.T) {
	schema := sampleSchema(t)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	codec := record.NewCodec(schema, logger)

	data, err := codec.Encode(buildSample(t, schema))
	require.NoError(t, err)

	r, err := codec.Decode(data)
	require.NoError(t, err)
	assert.True(t, r.Frozen())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Record decoded", entry.Message)
	assert.Equal(t, r.ID.String(), entry.Data["record_id"])

	_, err = codec.Decode([]byte{0x0a, 0x05})
	assert.Error(t, err)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	_, err = record.NewCodec(schema, nil).DecodeJSON([]byte(`{"ids":[1]}`))
	assert.NoError(t, err)
}
