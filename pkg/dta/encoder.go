package dta

import (
	"fmt"
	"io"
	"math"
)

// Encoder writes datasets in one target generation.
type Encoder struct {
	w       io.Writer
	version Version
	opts    options
}

// NewEncoder creates an encoder for version 6, 7 or 8. The caller owns w.
func NewEncoder(w io.Writer, v Version, opts ...Option) *Encoder {
	return &Encoder{w: w, version: v, opts: newOptions(opts)}
}

// Encode writes ds to w as generation v.
func Encode(w io.Writer, ds *Dataset, v Version, labels []*LabelTable, opts ...Option) error {
	return NewEncoder(w, v, opts...).Encode(ds, labels)
}

// Encode writes ds. labels is parallel to ds.Columns and names the table to
// emit for each column; nil entries emit none. A nil slice resolves each
// column's ValueLabel against ds.LabelTables instead.
func (e *Encoder) Encode(ds *Dataset, labels []*LabelTable) error {
	if !e.version.Writable() {
		return fmt.Errorf("%w: cannot write version %s, only 6, 7 and 8", ErrUnsupportedFormat, e.version)
	}
	return e.write(ds, labels)
}

// write serialises ds in any generation; Encode restricts the choice.
func (e *Encoder) write(ds *Dataset, labels []*LabelTable) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	if len(ds.Columns) > math.MaxInt16 {
		return fmt.Errorf("%w: %d variables", ErrInvalidDataset, len(ds.Columns))
	}
	if ds.Rows > math.MaxInt32 {
		return fmt.Errorf("%w: %d observations", ErrInvalidDataset, ds.Rows)
	}
	if labels == nil {
		labels = ds.ColumnLabelTables()
	}
	if len(labels) != len(ds.Columns) {
		return fmt.Errorf("%w: %d label tables for %d columns", ErrInvalidDataset, len(labels), len(ds.Columns))
	}

	log := e.opts.logger
	text := newTextCodec(e.opts.charmap)
	descs, err := buildDescriptors(ds, e.version, labels, text)
	if err != nil {
		return err
	}
	emitted, err := tablesToEmit(labels, descs, e.version.nameWidth(), text)
	if err != nil {
		return err
	}

	w := newWireWriter(e.w, e.opts.order)
	h := &header{
		version:   e.version,
		order:     e.opts.order,
		nvar:      len(ds.Columns),
		nobs:      ds.Rows,
		label:     ds.Label,
		timestamp: formatTimestamp(e.opts.timestamp),
	}
	if err := writeHeader(w, h, text); err != nil {
		return err
	}
	if err := writeDescriptors(w, e.version, descs, text); err != nil {
		return err
	}
	log.Debug("wrote descriptors", "version", e.version.String(), "variables", len(descs), "offset", w.offset)

	if err := writeMatrix(w, ds, descs, text); err != nil {
		return err
	}
	log.Debug("wrote data", "observations", ds.Rows, "offset", w.offset)

	if e.version.hasValueLabels() {
		if err := writeLabelTables(w, e.version, emitted, text); err != nil {
			return err
		}
		log.Debug("wrote value labels", "tables", len(emitted))
	}

	return w.flush()
}
