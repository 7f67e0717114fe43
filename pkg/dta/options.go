package dta

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Limits bounds allocations driven by length fields read from the stream.
type Limits struct {
	MaxLabels    int // entries in one label table
	MaxLabelText int // bytes of label text in one table
	MaxCells     int // observations times variables in the data matrix
}

// DefaultLimits are used unless WithLimits overrides them.
var DefaultLimits = Limits{
	MaxLabels:    1 << 20,
	MaxLabelText: 64 << 20,
	MaxCells:     1 << 26,
}

type options struct {
	charmap      *charmap.Charmap
	rawSentinels bool
	limits       Limits
	logger       *slog.Logger
	timestamp    time.Time
	order        ByteOrder
}

// Option configures a Decoder or Encoder.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		limits: DefaultLimits,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		order:  HostByteOrder(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithCharmap transcodes every text field through a single-byte character
// set. Without it text bytes are passed through unchanged.
func WithCharmap(cm *charmap.Charmap) Option {
	return func(o *options) { o.charmap = cm }
}

// WithRawSentinels disables missing-value translation on decode: sentinel
// bit patterns come back as ordinary numbers.
func WithRawSentinels() Option {
	return func(o *options) { o.rawSentinels = true }
}

// WithLimits replaces DefaultLimits. Zero fields keep their default.
func WithLimits(l Limits) Option {
	return func(o *options) {
		if l.MaxLabels > 0 {
			o.limits.MaxLabels = l.MaxLabels
		}
		if l.MaxLabelText > 0 {
			o.limits.MaxLabelText = l.MaxLabelText
		}
		if l.MaxCells > 0 {
			o.limits.MaxCells = l.MaxCells
		}
	}
}

// WithLogger logs phase boundaries at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimestamp sets the creation time written by the encoder. By default
// the timestamp field is zero-filled.
func WithTimestamp(t time.Time) Option {
	return func(o *options) { o.timestamp = t }
}

// withByteOrder overrides the host byte order on encode.
func withByteOrder(order ByteOrder) Option {
	return func(o *options) { o.order = order }
}

// CharmapByName maps a config or flag value to a character set. "" and "raw"
// return nil, meaning no transcoding.
func CharmapByName(name string) (*charmap.Charmap, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "raw":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252", "win1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("unknown charset %q", name)
}

// textCodec converts fixed-width wire text to Go strings and back.
type textCodec struct {
	dec *encoding.Decoder
	enc *encoding.Encoder
}

func newTextCodec(cm *charmap.Charmap) *textCodec {
	if cm == nil {
		return &textCodec{}
	}
	return &textCodec{dec: cm.NewDecoder(), enc: cm.NewEncoder()}
}

// decode trims at the first NUL.
func (t *textCodec) decode(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if t.dec == nil || len(b) == 0 {
		return string(b)
	}
	out, err := t.dec.Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func (t *textCodec) encode(s string) ([]byte, error) {
	if t.enc == nil || s == "" {
		return []byte(s), nil
	}
	out, err := t.enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not representable in the target charset: %w", ErrInvalidDataset, s, err)
	}
	return out, nil
}

// field encodes s and truncates it to width bytes.
func (t *textCodec) field(s string, width int) ([]byte, error) {
	b, err := t.encode(s)
	if err != nil {
		return nil, err
	}
	if len(b) > width {
		b = b[:width]
	}
	return b, nil
}
