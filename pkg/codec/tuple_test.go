package codec

import (
	"bytes"
	"testing"
)

func TestTupleCodecRoundTrip(t *testing.T) {
	// Fixed-width, variable-length, fixed-width: the variable field in the
	// middle forces the left-to-right walk.
	c := TupleOf(ScalarField[uint32](), BytesField(), ScalarField[int64]())
	tuple := Tuple{uint32(7), []byte("middle"), int64(-42)}

	want := SizeOf[uint32]() + LengthSize + 6 + SizeOf[int64]()
	if got := c.PayloadLength(tuple); got != want {
		t.Fatalf("PayloadLength = %d, want %d", got, want)
	}

	buf := make([]byte, want)
	if n := c.Encode(tuple, buf); n != want {
		t.Fatalf("Encode wrote %d bytes, want %d", n, want)
	}
	if got := c.EncodedLength(buf); got != want {
		t.Errorf("EncodedLength from bytes = %d, want %d", got, want)
	}

	var out Tuple
	if n := c.Decode(buf, &out); n != want {
		t.Errorf("Decode consumed %d bytes, want %d", n, want)
	}
	if got := out[0].(uint32); got != 7 {
		t.Errorf("field 0 = %d, want 7", got)
	}
	if got := out[1].([]byte); !bytes.Equal(got, []byte("middle")) {
		t.Errorf("field 1 = %q, want %q", got, "middle")
	}
	if got := out[2].(int64); got != -42 {
		t.Errorf("field 2 = %d, want -42", got)
	}
}

func TestTupleCodecFieldLengthsAddUp(t *testing.T) {
	c := TupleOf(ScalarField[uint16](), BytesField(), BytesField())
	tuple := Tuple{uint16(1), []byte("ab"), []byte("")}

	buf := make([]byte, c.PayloadLength(tuple))
	c.Encode(tuple, buf)

	sum := SizeOf[uint16]() + (LengthSize + 2) + (LengthSize + 0)
	if got := c.EncodedLength(buf); got != sum {
		t.Errorf("EncodedLength = %d, want sum of field lengths %d", got, sum)
	}
}

func TestTupleCodecSkipAdvances(t *testing.T) {
	c := TupleOf(BytesField(), ScalarField[uint8]())
	tuple := Tuple{[]byte("skip me"), uint8(9)}

	buf := make([]byte, c.PayloadLength(tuple))
	n := c.Encode(tuple, buf)

	// Skipping must advance exactly as far as decoding would have.
	if adv := c.Decode(buf, nil); adv != n {
		t.Errorf("skip advance = %d, want %d", adv, n)
	}
}

func TestEmptyTupleCodec(t *testing.T) {
	c := TupleOf()
	if c.Arity() != 0 {
		t.Fatalf("Arity = %d, want 0", c.Arity())
	}
	if c.PayloadLength(Tuple{}) != 0 {
		t.Error("empty tuple must encode to zero bytes")
	}
	if c.EncodedLength(nil) != 0 {
		t.Error("EncodedLength of empty tuple must be zero")
	}
	var out Tuple
	if n := c.Decode(nil, &out); n != 0 {
		t.Errorf("decode of empty tuple advanced %d bytes", n)
	}
}

func TestTupleCodecArityMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on arity mismatch")
		}
	}()
	TupleOf(ScalarField[uint32]()).Encode(Tuple{uint32(1), uint32(2)}, make([]byte, 8))
}

func TestTupleCodecTypeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on field type mismatch")
		}
	}()
	TupleOf(ScalarField[uint32]()).Encode(Tuple{"not a uint32"}, make([]byte, 4))
}
