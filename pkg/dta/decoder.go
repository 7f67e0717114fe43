package dta

import (
	"io"
)

// Decoder reads one dataset from a stream.
type Decoder struct {
	r    io.Reader
	opts options
}

// NewDecoder creates a decoder reading from r. The caller owns r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: newOptions(opts)}
}

// Decode reads the whole stream in a single forward pass. On any error no
// dataset is returned.
func Decode(r io.Reader, opts ...Option) (*Dataset, error) {
	return NewDecoder(r, opts...).Decode()
}

// Decode parses the header, descriptor table, data matrix and value label
// dictionary.
func (d *Decoder) Decode() (*Dataset, error) {
	log := d.opts.logger
	r := newWireReader(d.r)
	text := newTextCodec(d.opts.charmap)

	h, err := readHeader(r, text)
	if err != nil {
		return nil, err
	}
	log.Debug("read header",
		"version", h.version.String(),
		"byte_order", h.order.String(),
		"variables", h.nvar,
		"observations", h.nobs)

	descs, err := readDescriptors(r, h, text)
	if err != nil {
		return nil, err
	}
	log.Debug("read descriptors", "offset", r.offset)

	cols := make([]*Column, len(descs))
	for i, desc := range descs {
		cols[i] = &Column{
			Name:       desc.name,
			Type:       desc.typ,
			Format:     desc.format,
			ValueLabel: desc.valueLabel,
			Label:      desc.label,
		}
	}
	if err := readMatrix(r, h.nobs, cols, d.opts.rawSentinels, d.opts.limits, text); err != nil {
		return nil, err
	}
	log.Debug("read data", "offset", r.offset)

	var tables []*LabelTable
	if h.version.hasValueLabels() {
		tables, err = readLabelTables(r, h.version, d.opts.limits, text)
		if err != nil {
			return nil, err
		}
		log.Debug("read value labels", "tables", len(tables))
	}

	return &Dataset{
		Version:     h.version,
		ByteOrder:   h.order,
		Label:       h.label,
		Timestamp:   h.timestamp,
		Rows:        h.nobs,
		Columns:     cols,
		LabelTables: tables,
	}, nil
}
