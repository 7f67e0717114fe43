package dta

import "fmt"

const formatWidth = 12

// descriptor is one column's metadata as it appears on the wire.
type descriptor struct {
	typ        StorageType
	name       string
	format     string
	valueLabel string
	label      string
}

// readDescriptors reads the descriptor table: types, names, sort list,
// formats, value label names, column labels and the characteristics blocks.
func readDescriptors(r *wireReader, h *header, text *textCodec) ([]descriptor, error) {
	v := h.version
	scheme := v.scheme()
	descs := make([]descriptor, h.nvar)

	for i := range descs {
		tag, err := r.readUint8()
		if err != nil {
			return nil, err
		}
		typ, err := scheme.decode(tag)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		descs[i].typ = typ
	}

	nameWidth := v.nameWidth() + 1
	for i := range descs {
		b, err := r.readFixed(nameWidth)
		if err != nil {
			return nil, err
		}
		descs[i].name = text.decode(b)
	}

	// sort list, not interpreted
	if err := r.skip(2 * int64(h.nvar+1)); err != nil {
		return nil, err
	}

	for i := range descs {
		b, err := r.readFixed(formatWidth)
		if err != nil {
			return nil, err
		}
		descs[i].format = text.decode(b)
	}

	for i := range descs {
		b, err := r.readFixed(nameWidth)
		if err != nil {
			return nil, err
		}
		descs[i].valueLabel = text.decode(b)
	}

	labelWidth := v.labelWidth()
	for i := range descs {
		b, err := r.readFixed(labelWidth)
		if err != nil {
			return nil, err
		}
		descs[i].label = text.decode(b)
	}

	if err := skipCharacteristics(r, v); err != nil {
		return nil, err
	}
	return descs, nil
}

func readCharacteristicLength(r *wireReader, v Version) (int64, error) {
	if v.longCharacteristics() {
		n, err := r.readInt32()
		return int64(n), err
	}
	n, err := r.readInt16()
	return int64(n), err
}

// skipCharacteristics discards characteristics blocks up to the zero
// terminator, whose length must itself be zero.
func skipCharacteristics(r *wireReader, v Version) error {
	for {
		flag, err := r.readUint8()
		if err != nil {
			return err
		}
		n, err := readCharacteristicLength(r, v)
		if err != nil {
			return err
		}
		if flag == 0 {
			if n != 0 {
				return fmt.Errorf("%w: %d", ErrMalformedCharacteristics, n)
			}
			return nil
		}
		if n < 0 {
			return fmt.Errorf("%w: negative block length %d", ErrMalformedCharacteristics, n)
		}
		if err := r.skip(n); err != nil {
			return err
		}
	}
}

// buildDescriptors derives the wire descriptors for an encode. String widths
// come from the longest encoded cell of each column.
func buildDescriptors(ds *Dataset, v Version, tables []*LabelTable, text *textCodec) ([]descriptor, error) {
	descs := make([]descriptor, len(ds.Columns))
	for i, c := range ds.Columns {
		typ := c.Type
		switch {
		case typ.IsString():
			width := 0
			for _, val := range c.Values {
				s, _ := val.Text()
				b, err := text.encode(s)
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", c.Name, err)
				}
				width = max(width, len(b))
			}
			typ = TypeString(width)
		case typ.Kind == 0:
			return nil, fmt.Errorf("%w: column %q has no storage type", ErrInvalidDataset, c.Name)
		default:
			typ = numericType(typ.Kind)
		}
		if _, err := v.scheme().encode(typ); err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}

		format := c.Format
		if format == "" {
			format = defaultFormat(typ)
		}
		valueLabel := c.ValueLabel
		if t := tables[i]; t != nil {
			valueLabel = t.Name
			if valueLabel == "" {
				valueLabel = c.Name
			}
		}
		descs[i] = descriptor{
			typ:        typ,
			name:       c.Name,
			format:     format,
			valueLabel: valueLabel,
			label:      c.Label,
		}
	}
	return descs, nil
}

func writeDescriptors(w *wireWriter, v Version, descs []descriptor, text *textCodec) error {
	scheme := v.scheme()
	for _, d := range descs {
		tag, err := scheme.encode(d.typ)
		if err != nil {
			return err
		}
		if err := w.writeUint8(tag); err != nil {
			return err
		}
	}

	nameWidth := v.nameWidth()
	for _, d := range descs {
		if err := writeTextField(w, text, d.name, nameWidth, nameWidth+1); err != nil {
			return err
		}
	}

	if err := w.writeZeros(2 * (len(descs) + 1)); err != nil {
		return err
	}

	for _, d := range descs {
		if err := writeTextField(w, text, d.format, formatWidth-1, formatWidth); err != nil {
			return err
		}
	}

	for _, d := range descs {
		if err := writeTextField(w, text, d.valueLabel, nameWidth, nameWidth+1); err != nil {
			return err
		}
	}

	labelWidth := v.labelWidth()
	for _, d := range descs {
		if err := writeTextField(w, text, d.label, labelWidth-1, labelWidth); err != nil {
			return err
		}
	}

	return writeCharacteristics(w, v)
}

// writeCharacteristics emits only the terminator: a zero flag and a zero
// length.
func writeCharacteristics(w *wireWriter, v Version) error {
	if err := w.writeUint8(0); err != nil {
		return err
	}
	if v.longCharacteristics() {
		return w.writeInt32(0)
	}
	return w.writeInt16(0)
}

// writeTextField truncates s to limit bytes and pads it to width.
func writeTextField(w *wireWriter, text *textCodec, s string, limit, width int) error {
	b, err := text.field(s, limit)
	if err != nil {
		return err
	}
	return w.writeFixed(b, width)
}
