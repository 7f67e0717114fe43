package dta

import (
	"fmt"
	"math"
)

// maxRowHint caps the initial column capacity when the stream length
// cannot vouch for the observation count.
const maxRowHint = 1 << 16

// readMatrix fills cols row by row. Cell widths come from the column types.
func readMatrix(r *wireReader, nobs int, cols []*Column, raw bool, limits Limits, text *textCodec) error {
	var rowWidth, maxString int64
	for _, c := range cols {
		rowWidth += int64(c.Type.Width)
		if c.Type.IsString() {
			maxString = max(maxString, int64(c.Type.Width))
		}
	}
	if err := r.require(int64(nobs)*rowWidth, "data matrix"); err != nil {
		return err
	}
	// zero-width cells consume no input, so only the limit bounds them
	if cells := int64(nobs) * int64(len(cols)); cells > int64(limits.MaxCells) {
		return fmt.Errorf("%w: %d observations of %d variables exceed the limit of %d cells",
			ErrMalformedHeader, nobs, len(cols), limits.MaxCells)
	}
	if len(cols) == 0 {
		return nil
	}

	capHint := nobs
	if r.size < 0 || rowWidth == 0 {
		capHint = min(nobs, maxRowHint)
	}
	for _, c := range cols {
		c.Values = make([]Value, 0, capHint)
	}

	scratch := make([]byte, maxString)
	for i := 0; i < nobs; i++ {
		for _, c := range cols {
			v, err := readCell(r, c.Type, raw, text, scratch)
			if err != nil {
				return fmt.Errorf("row %d, column %q: %w", i, c.Name, err)
			}
			c.Values = append(c.Values, v)
		}
	}
	return nil
}

// readCell decodes one cell. Unless raw is set, sentinel bit patterns
// become Missing.
func readCell(r *wireReader, t StorageType, raw bool, text *textCodec, scratch []byte) (Value, error) {
	switch t.Kind {
	case KindByte:
		v, err := r.readInt8()
		if err != nil {
			return Value{}, err
		}
		if !raw && v == byteMissing {
			return Missing(), nil
		}
		return Int(int64(v)), nil
	case KindInt:
		v, err := r.readInt16()
		if err != nil {
			return Value{}, err
		}
		if !raw && v == int16Missing {
			return Missing(), nil
		}
		return Int(int64(v)), nil
	case KindLong:
		v, err := r.readInt32()
		if err != nil {
			return Value{}, err
		}
		if !raw && v == int32Missing {
			return Missing(), nil
		}
		return Int(int64(v)), nil
	case KindFloat:
		v, err := r.readFloat32()
		if err != nil {
			return Value{}, err
		}
		if !raw && v == float32Missing {
			return Missing(), nil
		}
		return Real(float64(v)), nil
	case KindDouble:
		v, err := r.readFloat64()
		if err != nil {
			return Value{}, err
		}
		if !raw && v == float64Missing {
			return Missing(), nil
		}
		return Real(v), nil
	case KindString:
		b := scratch[:t.Width]
		if err := r.readFull(b); err != nil {
			return Value{}, err
		}
		return Text(text.decode(b)), nil
	}
	return Value{}, fmt.Errorf("%w: kind %s", ErrUnknownColumnType, t.Kind)
}

// writeMatrix writes every row using the widths fixed in descs.
func writeMatrix(w *wireWriter, ds *Dataset, descs []descriptor, text *textCodec) error {
	for i := 0; i < ds.Rows; i++ {
		for j, c := range ds.Columns {
			if err := writeCell(w, descs[j].typ, c.Values[i], text); err != nil {
				return fmt.Errorf("row %d, column %q: %w", i, c.Name, err)
			}
		}
	}
	return nil
}

func writeCell(w *wireWriter, t StorageType, v Value, text *textCodec) error {
	if t.IsString() {
		s, ok := v.Text()
		if !ok && !v.IsMissing() {
			return fmt.Errorf("%w: %v in a string column", ErrInvalidDataset, v)
		}
		b, err := text.encode(s)
		if err != nil {
			return err
		}
		if len(b) > t.Width {
			return fmt.Errorf("%w: %d byte string wider than declared width %d", ErrInvalidDataset, len(b), t.Width)
		}
		return w.writeFixed(b, t.Width)
	}

	if v.IsMissing() {
		return writeMissing(w, t)
	}

	if t.IsReal() {
		f, ok := v.Float()
		if !ok {
			return fmt.Errorf("%w: %q in a %s column", ErrInvalidDataset, v.String(), t)
		}
		if t.Kind == KindFloat {
			return w.writeFloat32(f)
		}
		return w.writeFloat64(f)
	}

	n, ok := v.Int()
	if !ok {
		return fmt.Errorf("%w: %q in a %s column", ErrInvalidDataset, v.String(), t)
	}
	// The maximum of each kind is its missing sentinel: 127, 32767 and
	// MaxInt32 are written as is and read back as Missing unless the
	// decoder runs WithRawSentinels.
	switch t.Kind {
	case KindByte:
		if n < math.MinInt8 || n > math.MaxInt8 {
			return fmt.Errorf("%w: %d out of range for byte", ErrInvalidDataset, n)
		}
		return w.writeInt8(int8(n))
	case KindInt:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return fmt.Errorf("%w: %d out of range for int", ErrInvalidDataset, n)
		}
		return w.writeInt16(int16(n))
	case KindLong:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("%w: %d out of range for long", ErrInvalidDataset, n)
		}
		return w.writeInt32(int32(n))
	}
	return fmt.Errorf("%w: kind %s", ErrInvalidDataset, t.Kind)
}

func writeMissing(w *wireWriter, t StorageType) error {
	switch t.Kind {
	case KindByte:
		return w.writeInt8(byteMissing)
	case KindInt:
		return w.writeInt16(int16Missing)
	case KindLong:
		return w.writeInt32(int32Missing)
	case KindFloat:
		return w.writeFloat32(math.NaN())
	case KindDouble:
		return w.writeFloat64(math.NaN())
	}
	return fmt.Errorf("%w: kind %s", ErrInvalidDataset, t.Kind)
}
