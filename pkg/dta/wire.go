package dta

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"io/fs"
	"math"
)

// ByteOrder is the byte order declared in the file header.
type ByteOrder uint8

const (
	BigEndian    ByteOrder = 1 // HILO
	LittleEndian ByteOrder = 2 // LOHI
)

func (o ByteOrder) String() string {
	switch o {
	case BigEndian:
		return "big-endian"
	case LittleEndian:
		return "little-endian"
	}
	return fmt.Sprintf("ByteOrder(%d)", uint8(o))
}

func (o ByteOrder) binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// HostByteOrder is the byte order of the running machine.
func HostByteOrder() ByteOrder {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 1 {
		return LittleEndian
	}
	return BigEndian
}

// Missing-value sentinels, one reserved bit pattern per numeric kind.
const (
	byteMissing  = 127
	int16Missing = 32767
	int32Missing = math.MaxInt32
)

var (
	float32Missing = math.Float32frombits(0x7f000000)         // 2^127
	float64Missing = math.Float64frombits(0x7fe0000000000000) // 2^1023
)

// wireReader reads the primitive fields of a file in its declared byte
// order. size is the number of bytes the stream had left when decoding
// started, or -1 when the stream cannot tell.
type wireReader struct {
	r      *bufio.Reader
	bo     ByteOrder
	order  binary.ByteOrder
	buf    [8]byte
	offset int64
	size   int64
}

func newWireReader(r io.Reader) *wireReader {
	wr := &wireReader{
		r:    bufio.NewReader(r),
		size: streamSize(r),
	}
	wr.setOrder(LittleEndian)
	return wr
}

// streamSize reports the unread length of r without consuming it.
func streamSize(r io.Reader) int64 {
	switch s := r.(type) {
	case interface{ Len() int }:
		return int64(s.Len())
	case interface {
		Stat() (fs.FileInfo, error)
		io.Seeker
	}:
		fi, err := s.Stat()
		if err != nil || !fi.Mode().IsRegular() {
			return -1
		}
		cur, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			return -1
		}
		return fi.Size() - cur
	}
	return -1
}

func (r *wireReader) setOrder(o ByteOrder) {
	r.bo = o
	r.order = o.binary()
}

// remaining returns the bytes left in the stream, or -1 if unknown.
func (r *wireReader) remaining() int64 {
	if r.size < 0 {
		return -1
	}
	return r.size - r.offset
}

// require fails fast when the stream is known to hold fewer than n bytes.
func (r *wireReader) require(n int64, what string) error {
	if rem := r.remaining(); rem >= 0 && n > rem {
		return fmt.Errorf("%w: %s needs %d bytes at offset %d, %d remain", ErrTruncatedStream, what, n, r.offset, rem)
	}
	return nil
}

func (r *wireReader) fill(n int) ([]byte, error) {
	b := r.buf[:n]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, r.short(n, err)
	}
	r.offset += int64(n)
	return b, nil
}

func (r *wireReader) short(n int, err error) error {
	return fmt.Errorf("%w: reading %d bytes at offset %d: %w", ErrTruncatedStream, n, r.offset, err)
}

func (r *wireReader) readUint8() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *wireReader) readInt8() (int8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// readInt16 assembles the value from two bytes in declared order and
// re-bases it from unsigned to signed.
func (r *wireReader) readInt16() (int16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	var u int
	if r.bo == BigEndian {
		u = int(b[0])<<8 | int(b[1])
	} else {
		u = int(b[1])<<8 | int(b[0])
	}
	if u > int16Missing {
		u -= 65536
	}
	return int16(u), nil
}

func (r *wireReader) readInt32() (int32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(b)), nil
}

func (r *wireReader) readFloat32() (float32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(r.order.Uint32(b)), nil
}

func (r *wireReader) readFloat64() (float64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

// readFixed reads exactly n bytes into a new slice.
func (r *wireReader) readFixed(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative field length %d at offset %d", ErrTruncatedStream, n, r.offset)
	}
	if err := r.require(int64(n), "fixed field"); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if err := r.readFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

// readFull fills b, which callers may reuse as scratch space.
func (r *wireReader) readFull(b []byte) error {
	if _, err := io.ReadFull(r.r, b); err != nil {
		return r.short(len(b), err)
	}
	r.offset += int64(len(b))
	return nil
}

// skip discards n bytes without buffering them.
func (r *wireReader) skip(n int64) error {
	if err := r.require(n, "skipped block"); err != nil {
		return err
	}
	got, err := io.CopyN(io.Discard, r.r, n)
	r.offset += got
	if err != nil {
		return fmt.Errorf("%w: skipping %d bytes at offset %d: %w", ErrTruncatedStream, n, r.offset, err)
	}
	return nil
}

// wireWriter writes primitive fields in a fixed byte order.
type wireWriter struct {
	w      *bufio.Writer
	bo     ByteOrder
	order  binary.ByteOrder
	buf    [8]byte
	offset int64
}

func newWireWriter(w io.Writer, order ByteOrder) *wireWriter {
	return &wireWriter{
		w:     bufio.NewWriter(w),
		bo:    order,
		order: order.binary(),
	}
}

func (w *wireWriter) write(b []byte) error {
	n, err := w.w.Write(b)
	w.offset += int64(n)
	if err != nil {
		return fmt.Errorf("%w: writing %d bytes at offset %d: %w", ErrTruncatedStream, len(b), w.offset, err)
	}
	return nil
}

func (w *wireWriter) writeUint8(v uint8) error {
	w.buf[0] = v
	return w.write(w.buf[:1])
}

func (w *wireWriter) writeInt8(v int8) error {
	return w.writeUint8(uint8(v))
}

// writeInt16 emits the two bytes explicitly in the writer's order.
func (w *wireWriter) writeInt16(v int16) error {
	u := uint16(v)
	if w.bo == BigEndian {
		w.buf[0], w.buf[1] = byte(u>>8), byte(u)
	} else {
		w.buf[0], w.buf[1] = byte(u), byte(u>>8)
	}
	return w.write(w.buf[:2])
}

func (w *wireWriter) writeInt32(v int32) error {
	w.order.PutUint32(w.buf[:4], uint32(v))
	return w.write(w.buf[:4])
}

// writeFloat32 substitutes the sentinel for non-finite values, including
// doubles that overflow single precision.
func (w *wireWriter) writeFloat32(v float64) error {
	f := float32(v)
	if math.IsNaN(v) || math.IsInf(float64(f), 0) {
		f = float32Missing
	}
	w.order.PutUint32(w.buf[:4], math.Float32bits(f))
	return w.write(w.buf[:4])
}

func (w *wireWriter) writeFloat64(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = float64Missing
	}
	w.order.PutUint64(w.buf[:8], math.Float64bits(v))
	return w.write(w.buf[:8])
}

// writeFixed writes b followed by zero padding up to width.
func (w *wireWriter) writeFixed(b []byte, width int) error {
	if len(b) > width {
		return fmt.Errorf("%w: %d bytes do not fit a %d byte field", ErrInvalidDataset, len(b), width)
	}
	if len(b) > 0 {
		if err := w.write(b); err != nil {
			return err
		}
	}
	return w.writeZeros(width - len(b))
}

func (w *wireWriter) writeZeros(n int) error {
	var zero [64]byte
	for n > 0 {
		chunk := min(n, len(zero))
		if err := w.write(zero[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func (w *wireWriter) flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("%w: flushing at offset %d: %w", ErrTruncatedStream, w.offset, err)
	}
	return nil
}
