package dta

import (
	"fmt"
	"time"
)

const (
	timestampWidth  = 18
	defaultLabel    = "Written by dtafile."
	timestampLayout = "02 Jan 2006 15:04"
)

// header is the fixed-size preamble.
type header struct {
	version   Version
	order     ByteOrder
	nvar      int
	nobs      int
	label     string
	timestamp string
}

// readHeader detects the generation and switches r to the declared byte
// order before reading any multi-byte field.
func readHeader(r *wireReader, text *textCodec) (*header, error) {
	tag, err := r.readUint8()
	if err != nil {
		return nil, err
	}
	version, err := versionFromTag(tag)
	if err != nil {
		return nil, err
	}

	orderByte, err := r.readUint8()
	if err != nil {
		return nil, err
	}
	order := ByteOrder(orderByte)
	if order != BigEndian && order != LittleEndian {
		return nil, fmt.Errorf("%w: byte order %d", ErrUnsupportedFormat, orderByte)
	}
	r.setOrder(order)

	// filetype and padding
	if err := r.skip(2); err != nil {
		return nil, err
	}

	nvar, err := r.readInt16()
	if err != nil {
		return nil, err
	}
	if nvar < 0 {
		return nil, fmt.Errorf("%w: variable count %d", ErrMalformedHeader, nvar)
	}
	nobs, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	if nobs < 0 {
		return nil, fmt.Errorf("%w: observation count %d", ErrMalformedHeader, nobs)
	}

	label, err := r.readFixed(version.labelWidth())
	if err != nil {
		return nil, err
	}
	stamp, err := r.readFixed(timestampWidth)
	if err != nil {
		return nil, err
	}

	return &header{
		version:   version,
		order:     order,
		nvar:      int(nvar),
		nobs:      int(nobs),
		label:     text.decode(label),
		timestamp: text.decode(stamp),
	}, nil
}

func writeHeader(w *wireWriter, h *header, text *textCodec) error {
	if err := w.writeUint8(h.version.Tag()); err != nil {
		return err
	}
	if err := w.writeUint8(uint8(w.bo)); err != nil {
		return err
	}
	if err := w.writeUint8(1); err != nil { // filetype
		return err
	}
	if err := w.writeUint8(0); err != nil {
		return err
	}
	if err := w.writeInt16(int16(h.nvar)); err != nil {
		return err
	}
	if err := w.writeInt32(int32(h.nobs)); err != nil {
		return err
	}

	label := h.label
	if label == "" {
		label = defaultLabel
	}
	width := h.version.labelWidth()
	b, err := text.field(label, width-1)
	if err != nil {
		return err
	}
	if err := w.writeFixed(b, width); err != nil {
		return err
	}
	return w.writeFixed([]byte(h.timestamp), timestampWidth)
}

// formatTimestamp renders the creation time; the zero time gives an empty
// (zero-filled) field.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}
