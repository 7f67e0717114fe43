package dta

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestRoundTrip_WritableVersions(t *testing.T) {
	for _, v := range []Version{Version6, Version7, Version8} {
		t.Run(v.String(), func(t *testing.T) {
			want := sampleDataset()

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, want, v, nil))

			got, err := Decode(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, v, got.Version)
			assert.Equal(t, HostByteOrder(), got.ByteOrder)
			assertSameDataset(t, want, got)

			require.Len(t, got.LabelTables, 1)
			assert.Equal(t, "sexlbl", got.LabelTables[0].Name)
			assert.Equal(t, []int32{1, 2}, got.LabelTables[0].Codes())
			assert.Equal(t, []string{"male", "female"}, got.LabelTables[0].Labels())

			label, ok := got.LabelTable("sexlbl").Lookup(got.Column("sex").Values[1])
			assert.True(t, ok)
			assert.Equal(t, "female", label)
		})
	}
}

func TestRoundTrip_ReadOnlyVersions(t *testing.T) {
	t.Run("5", func(t *testing.T) {
		want := sampleDataset()
		b := encodeFixture(t, want, Version5)

		got, err := Decode(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, Version5, got.Version)
		assertSameDataset(t, want, got)
		assert.Empty(t, got.LabelTables, "version 5 files carry no value labels")
	})

	t.Run("7/SE", func(t *testing.T) {
		want := sampleDataset()
		b := encodeFixture(t, want, Version7SE)
		assert.Equal(t, byte(253), b[headerLen(Version7SE)], "extended numbering for long")

		got, err := Decode(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, Version7SE, got.Version)
		assertSameDataset(t, want, got)
		require.Len(t, got.LabelTables, 1)
	})
}

func TestEncode_RejectsReadOnlyVersions(t *testing.T) {
	for _, v := range []Version{Version5, Version7SE} {
		var buf bytes.Buffer
		err := Encode(&buf, sampleDataset(), v, nil)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, "version %s", v)
		assert.Zero(t, buf.Len(), "nothing is written for version %s", v)
	}
}

func TestRoundTrip_ByteOrders(t *testing.T) {
	var streams [][]byte
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		b := encodeFixture(t, sampleDataset(), Version8, withByteOrder(order))
		assert.Equal(t, byte(order), b[1])

		got, err := Decode(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, order, got.ByteOrder)
		assertSameDataset(t, sampleDataset(), got)
		streams = append(streams, b)
	}
	assert.NotEqual(t, streams[0], streams[1])
}

func TestRoundTrip_Sentinels(t *testing.T) {
	ds := &Dataset{
		Rows: 1,
		Columns: []*Column{
			{Name: "b", Type: TypeByte, Values: []Value{Missing()}},
			{Name: "i", Type: TypeInt, Values: []Value{Missing()}},
			{Name: "l", Type: TypeLong, Values: []Value{Missing()}},
			{Name: "f", Type: TypeFloat, Values: []Value{Missing()}},
			{Name: "d", Type: TypeDouble, Values: []Value{Missing()}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, Version8, nil))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	for _, c := range got.Columns {
		assert.True(t, c.Values[0].IsMissing(), "column %s", c.Name)
	}

	raw, err := Decode(bytes.NewReader(buf.Bytes()), WithRawSentinels())
	require.NoError(t, err)
	want := []Value{
		Int(127),
		Int(32767),
		Int(math.MaxInt32),
		Real(math.Ldexp(1, 127)),
		Real(math.Ldexp(1, 1023)),
	}
	for i, c := range raw.Columns {
		assert.Equal(t, want[i], c.Values[0], "column %s", c.Name)
	}

	// a second trip through the raw values lands on the same bytes
	var again bytes.Buffer
	require.NoError(t, Encode(&again, raw, Version8, nil))
	assert.Equal(t, buf.Bytes(), again.Bytes())
}

func TestEncode_IntegerMaximaReadBackAsMissing(t *testing.T) {
	ds := &Dataset{
		Rows: 2,
		Columns: []*Column{
			{Name: "b", Type: TypeByte, Values: []Value{Int(127), Int(126)}},
			{Name: "i", Type: TypeInt, Values: []Value{Int(32767), Int(32766)}},
			{Name: "l", Type: TypeLong, Values: []Value{Int(math.MaxInt32), Int(math.MaxInt32 - 1)}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, Version8, nil))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	raw, err := Decode(bytes.NewReader(buf.Bytes()), WithRawSentinels())
	require.NoError(t, err)
	for i, c := range got.Columns {
		assert.True(t, c.Values[0].IsMissing(), "column %s", c.Name)
		assert.Equal(t, ds.Columns[i].Values[1], c.Values[1], "column %s", c.Name)
		assert.Equal(t, ds.Columns[i].Values[0], raw.Columns[i].Values[0], "column %s", c.Name)
	}
}

func TestRoundTrip_NonFiniteReals(t *testing.T) {
	ds := &Dataset{
		Rows: 3,
		Columns: []*Column{
			{Name: "d", Type: TypeDouble, Values: []Value{Real(math.NaN()), Real(math.Inf(1)), Real(math.Inf(-1))}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, Version8, nil))
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	for _, v := range got.Columns[0].Values {
		assert.True(t, v.IsMissing())
	}
}

func TestRoundTrip_ZeroRows(t *testing.T) {
	ds := &Dataset{
		Rows: 0,
		Columns: []*Column{
			{Name: "n", Type: TypeDouble, Values: []Value{}},
			{Name: "s", Type: TypeString(5), Values: []Value{}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, Version8, nil))
	assert.Equal(t, dataOffset(Version8, 2), buf.Len())

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Zero(t, got.Rows)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, TypeString(0), got.Columns[1].Type)
	assert.Empty(t, got.Columns[0].Values)
}

func TestRoundTrip_EmptyStringColumn(t *testing.T) {
	ds := &Dataset{
		Rows: 3,
		Columns: []*Column{
			{Name: "note", Type: TypeString(20), Values: []Value{Text(""), Missing(), Text("")}},
			{Name: "n", Type: TypeByte, Values: []Value{Int(1), Int(2), Int(3)}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, Version8, nil))
	assert.Equal(t, dataOffset(Version8, 2)+3, buf.Len(), "a width-0 column takes no bytes per row")

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, TypeString(0), got.Columns[0].Type)
	assert.Equal(t, []Value{Text(""), Text(""), Text("")}, got.Columns[0].Values)
	assert.Equal(t, []Value{Int(1), Int(2), Int(3)}, got.Columns[1].Values)
}

func TestDecode_TruncatedDataMatrix(t *testing.T) {
	ds := sampleDataset()
	b := encodeFixture(t, ds, Version8)
	start := dataOffset(Version8, len(ds.Columns))
	end := start + ds.Rows*rowWidth(ds)

	for _, cut := range []int{start + 1, start + rowWidth(ds), end - 1} {
		got, err := Decode(bytes.NewReader(b[:cut]))
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrTruncatedStream, "cut at %d", cut)

		_, err = Decode(io.MultiReader(bytes.NewReader(b[:cut])))
		assert.ErrorIs(t, err, ErrTruncatedStream, "unsized stream cut at %d", cut)
	}

	got, err := Decode(bytes.NewReader(b[:end]))
	require.NoError(t, err, "a file ending after the data matrix is complete")
	assert.Empty(t, got.LabelTables)
}

func TestDecode_HugeObservationCount(t *testing.T) {
	ds := &Dataset{Rows: 1, Columns: []*Column{{Name: "x", Type: TypeDouble, Values: []Value{Real(1)}}}}
	b := encodeFixture(t, ds, Version8, withByteOrder(LittleEndian))
	// claim two billion rows
	copy(b[6:10], []byte{0x00, 0x94, 0x35, 0x77})

	_, err := Decode(bytes.NewReader(b))
	assert.ErrorIs(t, err, ErrTruncatedStream)

	// an unsized reader cannot vouch for the rows, so the cell limit applies
	_, err = Decode(io.MultiReader(bytes.NewReader(b)))
	assert.ErrorIs(t, err, ErrMalformedHeader)
	_, err = Decode(io.MultiReader(bytes.NewReader(b)), WithLimits(Limits{MaxCells: math.MaxInt32}))
	assert.ErrorIs(t, err, ErrTruncatedStream)
}

func TestDecode_ZeroWidthRowsAreLimited(t *testing.T) {
	ds := &Dataset{Rows: 1, Columns: []*Column{{Name: "s", Type: TypeString(0), Values: []Value{Text("")}}}}
	b := encodeFixture(t, ds, Version8, withByteOrder(LittleEndian))

	binary.LittleEndian.PutUint32(b[6:10], math.MaxInt32)
	_, err := Decode(bytes.NewReader(b))
	assert.ErrorIs(t, err, ErrMalformedHeader)

	binary.LittleEndian.PutUint32(b[6:10], 1000)
	_, err = Decode(bytes.NewReader(b), WithLimits(Limits{MaxCells: 999}))
	assert.ErrorIs(t, err, ErrMalformedHeader)

	got, err := Decode(bytes.NewReader(b), WithLimits(Limits{MaxCells: 1000}))
	require.NoError(t, err)
	assert.Equal(t, 1000, got.Rows)
	require.Len(t, got.Columns[0].Values, 1000)
	assert.Equal(t, Text(""), got.Columns[0].Values[999])
}

func TestDecode_NoColumnsManyRows(t *testing.T) {
	ds := &Dataset{Rows: 1}
	b := encodeFixture(t, ds, Version8, withByteOrder(LittleEndian))
	binary.LittleEndian.PutUint32(b[6:10], math.MaxInt32)

	got, err := Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, got.Rows)
	assert.Empty(t, got.Columns)
}

func TestEncode_InvalidDatasets(t *testing.T) {
	testCases := []struct {
		name string
		ds   *Dataset
	}{
		{"row count mismatch", &Dataset{Rows: 2, Columns: []*Column{{Name: "x", Type: TypeByte, Values: []Value{Int(1)}}}}},
		{"text in numeric column", &Dataset{Rows: 1, Columns: []*Column{{Name: "x", Type: TypeInt, Values: []Value{Text("1")}}}}},
		{"number in string column", &Dataset{Rows: 1, Columns: []*Column{{Name: "x", Type: TypeString(3), Values: []Value{Int(1)}}}}},
		{"real in integer column", &Dataset{Rows: 1, Columns: []*Column{{Name: "x", Type: TypeLong, Values: []Value{Real(1.5)}}}}},
		{"byte out of range", &Dataset{Rows: 1, Columns: []*Column{{Name: "x", Type: TypeByte, Values: []Value{Int(128)}}}}},
		{"int out of range", &Dataset{Rows: 1, Columns: []*Column{{Name: "x", Type: TypeInt, Values: []Value{Int(-40000)}}}}},
		{"long out of range", &Dataset{Rows: 1, Columns: []*Column{{Name: "x", Type: TypeLong, Values: []Value{Int(1 << 31)}}}}},
		{"string too wide", &Dataset{Rows: 1, Columns: []*Column{{Name: "x", Type: TypeString(1), Values: []Value{Text(strings.Repeat("a", 300))}}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Encode(io.Discard, tc.ds, Version8, nil)
			assert.ErrorIs(t, err, ErrInvalidDataset)
		})
	}
}

func TestEncode_IntegersIntoRealColumns(t *testing.T) {
	ds := &Dataset{Rows: 1, Columns: []*Column{{Name: "x", Type: TypeDouble, Values: []Value{Int(42)}}}}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, Version8, nil))
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Real(42), got.Columns[0].Values[0])
}

func TestEncode_TruncatesNames(t *testing.T) {
	ds := &Dataset{
		Rows: 1,
		Columns: []*Column{
			{Name: "a_rather_long_variable_name", Label: strings.Repeat("l", 100), Type: TypeByte, Values: []Value{Int(1)}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, Version6, nil))
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "a_rather", got.Columns[0].Name)
	assert.Len(t, got.Columns[0].Label, 80)

	buf.Reset()
	require.NoError(t, Encode(&buf, ds, Version8, nil))
	got, err = Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "a_rather_long_variable_name", got.Columns[0].Name)
}

func TestEncode_HeaderFields(t *testing.T) {
	ds := &Dataset{Rows: 0, Columns: []*Column{}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, Version8, nil))
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, defaultLabel, got.Label)
	assert.Empty(t, got.Timestamp)

	buf.Reset()
	ds.Label = "Mine"
	stamp := time.Date(2024, time.March, 5, 14, 7, 33, 0, time.UTC)
	require.NoError(t, Encode(&buf, ds, Version8, nil, WithTimestamp(stamp)))
	got, err = Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Label)
	assert.Equal(t, "05 Mar 2024 14:07", got.Timestamp)
}

func TestRoundTrip_Charmap(t *testing.T) {
	ds := &Dataset{
		Label: "Städte",
		Rows:  2,
		Columns: []*Column{
			{Name: "stadt", Type: TypeString(6), Format: "%6s", Label: "Größe", Values: []Value{Text("Zürich"), Text("Köln")}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, Version8, nil, WithCharmap(charmap.ISO8859_1)))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte{'Z', 0xfc, 'r'}), "text is stored as latin-1")

	got, err := Decode(bytes.NewReader(buf.Bytes()), WithCharmap(charmap.ISO8859_1))
	require.NoError(t, err)
	assert.Equal(t, TypeString(6), got.Columns[0].Type)
	assertSameDataset(t, ds, got)

	raw, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Text("Z\xfcrich"), raw.Columns[0].Values[0], "without a charmap bytes pass through")

	err = Encode(io.Discard, &Dataset{Rows: 1, Columns: []*Column{{Name: "s", Type: TypeString(1), Values: []Value{Text("日本")}}}}, Version8, nil, WithCharmap(charmap.ISO8859_1))
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestDecode_Idempotent(t *testing.T) {
	var first bytes.Buffer
	require.NoError(t, Encode(&first, sampleDataset(), Version8, nil))
	got, err := Decode(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, Encode(&second, got, Version8, nil))
	assert.Equal(t, first.Bytes(), second.Bytes())
}
