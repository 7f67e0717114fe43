package dta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/elliotchance/orderedmap/v3"
)

// LabelTable is a named mapping from integer codes to labels. Iteration
// follows insertion order, which is also the order tables are written in.
type LabelTable struct {
	Name   string
	labels *orderedmap.OrderedMap[int32, string]
}

// NewLabelTable returns an empty table.
func NewLabelTable(name string) *LabelTable {
	return &LabelTable{
		Name:   name,
		labels: orderedmap.NewOrderedMap[int32, string](),
	}
}

// NewLabelTableFromLabels numbers labels 1..N in the given order, the same
// numbering the encoder writes.
func NewLabelTableFromLabels(name string, labels ...string) *LabelTable {
	t := NewLabelTable(name)
	for i, l := range labels {
		t.Set(int32(i+1), l)
	}
	return t
}

// Set adds or replaces the label for code. A replaced code keeps its position.
func (t *LabelTable) Set(code int32, label string) {
	t.labels.Set(code, label)
}

// Get returns the label for code.
func (t *LabelTable) Get(code int32) (string, bool) {
	return t.labels.Get(code)
}

func (t *LabelTable) Len() int {
	return t.labels.Len()
}

// All iterates codes and labels in table order.
func (t *LabelTable) All() iter.Seq2[int32, string] {
	return t.labels.AllFromFront()
}

// Codes returns the codes in table order.
func (t *LabelTable) Codes() []int32 {
	codes := make([]int32, 0, t.Len())
	for code := range t.All() {
		codes = append(codes, code)
	}
	return codes
}

// Labels returns the labels in table order.
func (t *LabelTable) Labels() []string {
	labels := make([]string, 0, t.Len())
	for _, label := range t.All() {
		labels = append(labels, label)
	}
	return labels
}

// Lookup returns the label for an integer cell, if any.
func (t *LabelTable) Lookup(v Value) (string, bool) {
	n, ok := v.Int()
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return "", false
	}
	return t.Get(int32(n))
}

// readLabelTables reads tables until the stream ends. Running out of input
// exactly where a new table would start is the normal end of the file.
func readLabelTables(r *wireReader, v Version, limits Limits, text *textCodec) ([]*LabelTable, error) {
	var tables []*LabelTable
	for {
		if _, err := r.readInt32(); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return tables, nil
			}
			return nil, err
		}
		t, err := readLabelTable(r, v, limits, text)
		if err != nil {
			return nil, fmt.Errorf("label table %d: %w", len(tables), err)
		}
		tables = append(tables, t)
	}
}

func readLabelTable(r *wireReader, v Version, limits Limits, text *textCodec) (*LabelTable, error) {
	name, err := r.readFixed(v.nameWidth() + 1)
	if err != nil {
		return nil, err
	}
	if err := r.skip(3); err != nil {
		return nil, err
	}
	n, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	textLen, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 || int(n) > limits.MaxLabels {
		return nil, fmt.Errorf("%w: label count %d", ErrMalformedLabelTable, n)
	}
	if textLen < 0 || int(textLen) > limits.MaxLabelText {
		return nil, fmt.Errorf("%w: text length %d", ErrMalformedLabelTable, textLen)
	}
	if err := r.require(8*int64(n)+int64(textLen), "label table"); err != nil {
		return nil, err
	}

	offsets := make([]int32, n)
	for i := range offsets {
		if offsets[i], err = r.readInt32(); err != nil {
			return nil, err
		}
	}
	codes := make([]int32, n)
	for i := range codes {
		if codes[i], err = r.readInt32(); err != nil {
			return nil, err
		}
	}
	blob, err := r.readFixed(int(textLen))
	if err != nil {
		return nil, err
	}

	t := NewLabelTable(text.decode(name))
	for i, off := range offsets {
		if off < 0 || int(off) >= len(blob) {
			return nil, fmt.Errorf("%w: offset %d outside %d bytes of text", ErrMalformedLabelTable, off, len(blob))
		}
		t.Set(codes[i], text.decode(blob[off:]))
	}
	return t, nil
}

// emittedTable is a label table scheduled for output under a wire name.
type emittedTable struct {
	name  string
	table *LabelTable
}

// tablesToEmit returns each distinct table referenced by the columns once,
// in order of first reference. Tables without a name take their column's.
// Names are compared as written, after truncation to the name field.
func tablesToEmit(tables []*LabelTable, descs []descriptor, nameWidth int, text *textCodec) ([]emittedTable, error) {
	var out []emittedTable
	seen := make(map[string]int)
	for i, t := range tables {
		if t == nil {
			continue
		}
		name := descs[i].valueLabel
		wire, err := text.field(name, nameWidth)
		if err != nil {
			return nil, fmt.Errorf("label table %q: %w", name, err)
		}
		if j, ok := seen[string(wire)]; ok {
			if prev := out[j]; prev.table != t {
				return nil, fmt.Errorf("%w: label tables %q and %q are both written as %q",
					ErrInvalidDataset, prev.name, name, wire)
			}
			continue
		}
		seen[string(wire)] = len(out)
		out = append(out, emittedTable{name: name, table: t})
	}
	return out, nil
}

// writeLabelTables writes each table with codes renumbered 1..N in table
// order; the caller's codes are not preserved.
func writeLabelTables(w *wireWriter, v Version, tables []emittedTable, text *textCodec) error {
	nameWidth := v.nameWidth()
	for _, e := range tables {
		labels := e.table.Labels()
		encoded := make([][]byte, len(labels))
		textLen := 0
		for i, l := range labels {
			b, err := text.encode(l)
			if err != nil {
				return fmt.Errorf("label table %q: %w", e.name, err)
			}
			if bytes.IndexByte(b, 0) >= 0 {
				return fmt.Errorf("%w: label table %q: label %q contains NUL", ErrInvalidDataset, e.name, l)
			}
			encoded[i] = b
			textLen += len(b) + 1
		}
		n := len(labels)
		if int64(8*(n+1))+int64(textLen) > math.MaxInt32 {
			return fmt.Errorf("%w: label table %q is too large", ErrInvalidDataset, e.name)
		}

		if err := w.writeInt32(int32(8*(n+1) + textLen)); err != nil {
			return err
		}
		if err := writeTextField(w, text, e.name, nameWidth, nameWidth+1); err != nil {
			return err
		}
		if err := w.writeZeros(3); err != nil {
			return err
		}
		if err := w.writeInt32(int32(n)); err != nil {
			return err
		}
		if err := w.writeInt32(int32(textLen)); err != nil {
			return err
		}
		off := 0
		for _, b := range encoded {
			if err := w.writeInt32(int32(off)); err != nil {
				return err
			}
			off += len(b) + 1
		}
		for i := range encoded {
			if err := w.writeInt32(int32(i + 1)); err != nil {
				return err
			}
		}
		if err := writeLabelText(w, encoded, textLen); err != nil {
			return fmt.Errorf("label table %q: %w", e.name, err)
		}
	}
	return nil
}

// writeLabelText writes NUL-terminated labels and checks the running total
// against the declared text length.
func writeLabelText(w *wireWriter, labels [][]byte, declared int) error {
	left := declared
	for _, b := range labels {
		left -= len(b) + 1
		if left < 0 {
			return fmt.Errorf("%w: declared %d bytes", ErrLabelTableOverrun, declared)
		}
		if err := w.write(b); err != nil {
			return err
		}
		if err := w.writeUint8(0); err != nil {
			return err
		}
	}
	if left > 0 {
		return fmt.Errorf("%w: %d of %d declared bytes unwritten", ErrLabelTableUnderrun, left, declared)
	}
	return nil
}
