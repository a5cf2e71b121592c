package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestPairCodecKeySuppression(t *testing.T) {
	// Key type equals PMNK type, so the payload must carry the value only.
	c := NewScalarBytesPairCodec[uint32, uint32]()
	if !c.Suppressed() {
		t.Fatal("identical key and pmnk types must suppress the key")
	}

	key, value := uint32(42), []byte("hello")

	valueOnly := BytesCodec{}.PayloadLength(value)
	if got := c.PayloadLength(key, value); got != valueOnly {
		t.Fatalf("PayloadLength = %d, want value-only length %d", got, valueOnly)
	}

	buf := make([]byte, c.PayloadLength(key, value))
	c.Encode(key, value, buf)

	// Exact layout: [5 as uint16 descriptor]["hello"], no key bytes.
	want := []byte{5, 0, 'h', 'e', 'l', 'l', 'o'}
	if !bytes.Equal(buf, want) {
		t.Fatalf("payload = %v, want %v", buf, want)
	}

	// Decoding the key without the pmnk is a contract violation.
	var outK uint32
	var outV []byte
	if err := c.Decode(buf, &outK, &outV, nil); !errors.Is(err, ErrMissingPMNK) {
		t.Fatalf("decode without pmnk: err = %v, want ErrMissingPMNK", err)
	}
	if outK != 0 || outV != nil {
		t.Fatal("failed decode must not write to outputs")
	}

	pmnk := c.PMNK(key)
	if pmnk != 42 {
		t.Fatalf("PMNK = %d, want 42", pmnk)
	}
	if err := c.Decode(buf, &outK, &outV, &pmnk); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outK != 42 {
		t.Errorf("key = %d, want 42", outK)
	}
	if !bytes.Equal(outV, []byte("hello")) {
		t.Errorf("value = %q, want %q", outV, "hello")
	}
}

func TestPairCodecValueOnlyDecodeNeedsNoPMNK(t *testing.T) {
	c := NewScalarBytesPairCodec[uint32, uint32]()
	buf := make([]byte, c.PayloadLength(9, []byte("v")))
	c.Encode(9, []byte("v"), buf)

	// Skipping the key skips the contract: only a requested key needs the
	// pmnk.
	var outV []byte
	if err := c.Decode(buf, nil, &outV, nil); err != nil {
		t.Fatalf("value-only decode: %v", err)
	}
	if !bytes.Equal(outV, []byte("v")) {
		t.Errorf("value = %q, want %q", outV, "v")
	}
}

func TestPairCodecBytesKeyStoredExplicitly(t *testing.T) {
	// A byte-string key can never equal a scalar PMNK type, so the full
	// key is stored, length-prefixed, ahead of the value.
	c := NewBytesPairCodec[uint32]()
	if c.Suppressed() {
		t.Fatal("bytes key must not be suppressed")
	}

	key, value := []byte("alphabet"), []byte("letters")

	if got := c.PMNK(key); got != 0x616c7068 {
		t.Fatalf("PMNK(%q) = %#x, want 0x616c7068", key, got)
	}

	n := c.PayloadLength(key, value)
	if want := (LengthSize + 8) + (LengthSize + 7); n != want {
		t.Fatalf("PayloadLength = %d, want %d", n, want)
	}

	buf := make([]byte, n)
	c.Encode(key, value, buf)

	var outK, outV []byte
	if err := c.Decode(buf, &outK, &outV, nil); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(outK, key) || !bytes.Equal(outV, value) {
		t.Errorf("round trip = (%q, %q), want (%q, %q)", outK, outV, key, value)
	}
}

func TestPairCodecScalarNarrowPMNK(t *testing.T) {
	// Key wider than the PMNK: the key must be stored, and decode needs no
	// pmnk argument.
	c := NewScalarPairCodec[uint64, int64, uint32]()
	if c.Suppressed() {
		t.Fatal("wider key must not be suppressed")
	}

	key, value := uint64(0x0102030405060708), int64(-5)

	if got := c.PayloadLength(key, value); got != 16 {
		t.Fatalf("PayloadLength = %d, want 16", got)
	}

	buf := make([]byte, 16)
	c.Encode(key, value, buf)

	if got := c.EncodedLength(buf); got != 16 {
		t.Errorf("EncodedLength = %d, want 16", got)
	}

	var outK uint64
	var outV int64
	if err := c.Decode(buf, &outK, &outV, nil); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outK != key || outV != value {
		t.Errorf("round trip = (%#x, %d), want (%#x, %d)", outK, outV, key, value)
	}
}

func TestPairCodecLengthSelfDescription(t *testing.T) {
	c := NewBytesPairCodec[uint32]()

	pairs := [][2][]byte{
		{[]byte("k"), []byte("v")},
		{[]byte(""), []byte("")},
		{[]byte("longer key material"), bytes.Repeat([]byte("v"), 300)},
	}
	for _, p := range pairs {
		n := c.PayloadLength(p[0], p[1])
		buf := make([]byte, n)
		if wrote := c.Encode(p[0], p[1], buf); wrote != n {
			t.Fatalf("Encode wrote %d, PayloadLength said %d", wrote, n)
		}
		if got := c.EncodedLength(buf); got != n {
			t.Errorf("EncodedLength = %d, want %d for key %q", got, n, p[0])
		}
	}
}

func TestPairCodecTupleValue(t *testing.T) {
	// A tuple-valued record through the explicit constructor.
	vc := TupleOf(ScalarField[uint32](), BytesField(), ScalarField[uint32]())
	c := NewPairCodec[[]byte, Tuple, uint16](BytesCodec{}, vc, PMNKFromBytes[uint16])

	key := []byte("row:1")
	value := Tuple{uint32(1), []byte("payload"), uint32(2)}

	buf := make([]byte, c.PayloadLength(key, value))
	c.Encode(key, value, buf)

	var outK []byte
	var outV Tuple
	if err := c.Decode(buf, &outK, &outV, nil); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(outK, key) {
		t.Errorf("key = %q, want %q", outK, key)
	}
	if outV[0].(uint32) != 1 || !bytes.Equal(outV[1].([]byte), []byte("payload")) || outV[2].(uint32) != 2 {
		t.Errorf("tuple value mismatch: %v", outV)
	}
}

func TestPairCodecScalarSuppressedRoundTrip(t *testing.T) {
	c := NewScalarPairCodec[int64, float64, int64]()
	if !c.Suppressed() {
		t.Fatal("expected suppression for identical types")
	}

	key, value := int64(-99), 1.25
	buf := make([]byte, c.PayloadLength(key, value))
	c.Encode(key, value, buf)

	if got := c.PayloadLength(key, value); got != SizeOf[float64]() {
		t.Fatalf("PayloadLength = %d, want 8", got)
	}

	pmnk := c.PMNK(key)
	var outK int64
	var outV float64
	if err := c.Decode(buf, &outK, &outV, &pmnk); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outK != key || outV != value {
		t.Errorf("round trip = (%d, %v), want (%d, %v)", outK, outV, key, value)
	}
}
