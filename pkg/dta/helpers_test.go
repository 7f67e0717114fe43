package dta

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleDataset covers every storage kind, missing cells and a label table.
func sampleDataset() *Dataset {
	sex := NewLabelTableFromLabels("sexlbl", "male", "female")
	return &Dataset{
		Label: "Survey extract",
		Rows:  4,
		Columns: []*Column{
			{Name: "id", Type: TypeLong, Format: "%12.0g", Label: "Respondent", Values: []Value{Int(1), Int(2), Int(-70000), Int(2147483646)}},
			{Name: "age", Type: TypeByte, Format: "%8.0g", Label: "Age in years", Values: []Value{Int(34), Missing(), Int(-5), Int(100)}},
			{Name: "sex", Type: TypeInt, Format: "%8.0g", ValueLabel: "sexlbl", Label: "Sex", Values: []Value{Int(1), Int(2), Int(2), Missing()}},
			{Name: "income", Type: TypeDouble, Format: "%10.0g", Values: []Value{Real(1234.5), Missing(), Real(-0.25), Real(1e300)}},
			{Name: "score", Type: TypeFloat, Format: "%9.0g", Values: []Value{Real(0.5), Real(-2), Missing(), Real(3.25)}},
			{Name: "city", Type: TypeString(9), Format: "%9s", Label: "City", Values: []Value{Text("Amsterdam"), Text("Oslo"), Text(""), Text("Lima")}},
			{Name: "born", Type: TypeLong, Format: "%td", Values: []Value{Int(0), Int(-1), Int(365), Missing()}},
		},
		LabelTables: []*LabelTable{sex},
	}
}

// encodeFixture writes ds in any generation, including the read-only ones.
func encodeFixture(t *testing.T, ds *Dataset, v Version, opts ...Option) []byte {
	t.Helper()
	var buf bytes.Buffer
	e := &Encoder{w: &buf, version: v, opts: newOptions(opts)}
	require.NoError(t, e.write(ds, nil))
	return buf.Bytes()
}

// headerLen is the size of the fixed preamble.
func headerLen(v Version) int {
	return 4 + 2 + 4 + v.labelWidth() + timestampWidth
}

// dataOffset is where the data matrix starts for a file with nvar columns.
func dataOffset(v Version, nvar int) int {
	nw := v.nameWidth() + 1
	descLen := nvar*(1+nw+formatWidth+nw+v.labelWidth()) + 2*(nvar+1) + 1 + charLen(v)
	return headerLen(v) + descLen
}

func charLen(v Version) int {
	if v.longCharacteristics() {
		return 4
	}
	return 2
}

func rowWidth(ds *Dataset) int {
	n := 0
	for _, c := range ds.Columns {
		n += c.Type.Width
	}
	return n
}

func assertSameDataset(t *testing.T, want, got *Dataset) {
	t.Helper()
	assert.Equal(t, want.Label, got.Label)
	assert.Equal(t, want.Rows, got.Rows)
	require.Len(t, got.Columns, len(want.Columns))
	for i, wc := range want.Columns {
		gc := got.Columns[i]
		assert.Equal(t, wc.Name, gc.Name, "column %d name", i)
		assert.Equal(t, wc.Type, gc.Type, "column %q type", wc.Name)
		assert.Equal(t, wc.Format, gc.Format, "column %q format", wc.Name)
		assert.Equal(t, wc.ValueLabel, gc.ValueLabel, "column %q value label", wc.Name)
		assert.Equal(t, wc.Label, gc.Label, "column %q label", wc.Name)
		assert.Equal(t, wc.Values, gc.Values, "column %q values", wc.Name)
	}
}
