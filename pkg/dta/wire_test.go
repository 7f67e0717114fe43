package dta

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func newTestReader(b []byte, order ByteOrder) *wireReader {
	r := newWireReader(bytes.NewReader(b))
	r.setOrder(order)
	return r
}

func TestWireReader_Int16Rebasing(t *testing.T) {
	testCases := []struct {
		name  string
		order ByteOrder
		raw   []byte
		want  int16
	}{
		{"little positive", LittleEndian, []byte{0x34, 0x12}, 0x1234},
		{"big positive", BigEndian, []byte{0x12, 0x34}, 0x1234},
		{"little minus one", LittleEndian, []byte{0xff, 0xff}, -1},
		{"big minimum", BigEndian, []byte{0x80, 0x00}, -32768},
		{"little sentinel stays positive", LittleEndian, []byte{0xff, 0x7f}, 32767},
		{"big just above sentinel", BigEndian, []byte{0x80, 0x01}, -32767},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestReader(tc.raw, tc.order)
			got, err := r.readInt16()
			if err != nil {
				t.Fatalf("readInt16 failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("readInt16 = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWireReader_ByteSwapping(t *testing.T) {
	little := []byte{0x78, 0x56, 0x34, 0x12}
	big := []byte{0x12, 0x34, 0x56, 0x78}

	for _, tc := range []struct {
		order ByteOrder
		raw   []byte
	}{{LittleEndian, little}, {BigEndian, big}} {
		r := newTestReader(tc.raw, tc.order)
		got, err := r.readInt32()
		if err != nil {
			t.Fatalf("%s: readInt32 failed: %v", tc.order, err)
		}
		if got != 0x12345678 {
			t.Errorf("%s: readInt32 = %#x, want 0x12345678", tc.order, got)
		}
	}
}

func TestWireWriter_RoundTrip(t *testing.T) {
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := newWireWriter(&buf, order)
			if err := w.writeInt8(-12); err != nil {
				t.Fatal(err)
			}
			if err := w.writeInt16(-300); err != nil {
				t.Fatal(err)
			}
			if err := w.writeInt32(-70000); err != nil {
				t.Fatal(err)
			}
			if err := w.writeFloat32(1.5); err != nil {
				t.Fatal(err)
			}
			if err := w.writeFloat64(-2.25e10); err != nil {
				t.Fatal(err)
			}
			if err := w.writeFixed([]byte("ab"), 4); err != nil {
				t.Fatal(err)
			}
			if err := w.flush(); err != nil {
				t.Fatal(err)
			}

			if buf.Len() != 1+2+4+4+8+4 {
				t.Fatalf("wrote %d bytes", buf.Len())
			}

			r := newTestReader(buf.Bytes(), order)
			i8, _ := r.readInt8()
			i16, _ := r.readInt16()
			i32, _ := r.readInt32()
			f32, _ := r.readFloat32()
			f64, _ := r.readFloat64()
			fixed, err := r.readFixed(4)
			if err != nil {
				t.Fatal(err)
			}
			if i8 != -12 || i16 != -300 || i32 != -70000 || f32 != 1.5 || f64 != -2.25e10 {
				t.Errorf("got %d %d %d %v %v", i8, i16, i32, f32, f64)
			}
			if !bytes.Equal(fixed, []byte{'a', 'b', 0, 0}) {
				t.Errorf("fixed = %v", fixed)
			}
		})
	}
}

func TestWireWriter_NonFiniteBecomesSentinel(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		var buf bytes.Buffer
		w := newWireWriter(&buf, LittleEndian)
		if err := w.writeFloat32(f); err != nil {
			t.Fatal(err)
		}
		if err := w.writeFloat64(f); err != nil {
			t.Fatal(err)
		}
		if err := w.flush(); err != nil {
			t.Fatal(err)
		}

		r := newTestReader(buf.Bytes(), LittleEndian)
		f32, _ := r.readFloat32()
		f64, _ := r.readFloat64()
		if f32 != float32Missing {
			t.Errorf("float32 of %v = %v, want sentinel", f, f32)
		}
		if f64 != float64Missing {
			t.Errorf("float64 of %v = %v, want sentinel", f, f64)
		}
	}

	// a double too large for single precision overflows to the sentinel
	var buf bytes.Buffer
	w := newWireWriter(&buf, LittleEndian)
	if err := w.writeFloat32(1e300); err != nil {
		t.Fatal(err)
	}
	w.flush()
	f32, _ := newTestReader(buf.Bytes(), LittleEndian).readFloat32()
	if f32 != float32Missing {
		t.Errorf("float32 overflow = %v, want sentinel", f32)
	}
}

func TestWireReader_SentinelTranslation(t *testing.T) {
	testCases := []struct {
		name string
		typ  StorageType
		raw  []byte
		lit  Value
	}{
		{"byte", TypeByte, []byte{0x7f}, Int(127)},
		{"int", TypeInt, []byte{0xff, 0x7f}, Int(32767)},
		{"long", TypeLong, []byte{0xff, 0xff, 0xff, 0x7f}, Int(math.MaxInt32)},
		{"float", TypeFloat, []byte{0x00, 0x00, 0x00, 0x7f}, Real(math.Ldexp(1, 127))},
		{"double", TypeDouble, []byte{0, 0, 0, 0, 0, 0, 0xe0, 0x7f}, Real(math.Ldexp(1, 1023))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text := newTextCodec(nil)

			got, err := readCell(newTestReader(tc.raw, LittleEndian), tc.typ, false, text, nil)
			if err != nil {
				t.Fatalf("readCell failed: %v", err)
			}
			if !got.IsMissing() {
				t.Errorf("translated read = %v, want missing", got)
			}

			got, err = readCell(newTestReader(tc.raw, LittleEndian), tc.typ, true, text, nil)
			if err != nil {
				t.Fatalf("raw readCell failed: %v", err)
			}
			if !got.Equal(tc.lit) {
				t.Errorf("raw read = %v, want %v", got, tc.lit)
			}
		})
	}
}

func TestWireReader_ShortRead(t *testing.T) {
	r := newTestReader([]byte{1, 2, 3}, LittleEndian)
	_, err := r.readInt32()
	if !errors.Is(err, ErrTruncatedStream) {
		t.Fatalf("expected ErrTruncatedStream, got %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected the io error to stay visible, got %v", err)
	}

	// the known stream length rejects oversized fields before allocating
	r = newTestReader([]byte{1, 2, 3}, LittleEndian)
	if _, err := r.readFixed(1 << 30); !errors.Is(err, ErrTruncatedStream) {
		t.Errorf("expected ErrTruncatedStream for oversized field, got %v", err)
	}
	if err := r.skip(10); !errors.Is(err, ErrTruncatedStream) {
		t.Errorf("expected ErrTruncatedStream for oversized skip, got %v", err)
	}
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.after {
		n := w.after
		w.after = 0
		return n, io.ErrShortWrite
	}
	w.after -= len(p)
	return len(p), nil
}

func TestWireWriter_ShortWrite(t *testing.T) {
	w := newWireWriter(&failingWriter{after: 3}, LittleEndian)
	if err := w.writeInt32(1); err != nil {
		t.Fatalf("buffered write failed early: %v", err)
	}
	if err := w.flush(); !errors.Is(err, ErrTruncatedStream) {
		t.Errorf("expected ErrTruncatedStream, got %v", err)
	}
}

func TestStreamSize(t *testing.T) {
	if got := streamSize(bytes.NewReader(make([]byte, 42))); got != 42 {
		t.Errorf("bytes.Reader size = %d, want 42", got)
	}
	if got := streamSize(io.MultiReader(bytes.NewReader(make([]byte, 42)))); got != -1 {
		t.Errorf("opaque reader size = %d, want -1", got)
	}
}
