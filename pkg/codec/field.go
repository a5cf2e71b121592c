package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// LengthSize is the width in bytes of the length descriptor that prefixes
// every variable-length field. It is fixed for the format; changing it
// invalidates previously encoded bytes.
const LengthSize = 2

// FieldCodec defines length, encode and decode policies for one value type.
//
// Encode and Decode return the number of bytes written or consumed so that
// callers can advance through a buffer holding several fields. A nil out
// pointer on Decode skips materializing the value but still returns the
// advance, which is what a caller needs to step over a field it does not
// want.
type FieldCodec[T any] interface {
	// PayloadLength returns the encoded length of an in-memory value.
	PayloadLength(v T) int
	// EncodedLength returns the length of the encoded value starting at
	// buf, read from the bytes alone.
	EncodedLength(buf []byte) int
	// Encode writes v's encoding at the start of dst.
	Encode(v T, dst []byte) int
	// Decode reads one encoded value from the start of src into out.
	Decode(src []byte, out *T) int
}

// NopCodec encodes nothing and decodes nothing. The pair codec substitutes
// it for the key codec when the key is fully recoverable from the PMNK.
type NopCodec[T any] struct{}

func (NopCodec[T]) PayloadLength(T) int      { return 0 }
func (NopCodec[T]) EncodedLength([]byte) int { return 0 }
func (NopCodec[T]) Encode(T, []byte) int     { return 0 }
func (NopCodec[T]) Decode([]byte, *T) int    { return 0 }

// ScalarCodec stores a fixed-width scalar as its raw native representation,
// exactly SizeOf[T]() bytes, no length prefix.
type ScalarCodec[T Scalar] struct{}

func (ScalarCodec[T]) PayloadLength(T) int      { return SizeOf[T]() }
func (ScalarCodec[T]) EncodedLength([]byte) int { return SizeOf[T]() }

func (ScalarCodec[T]) Encode(v T, dst []byte) int {
	return copyIn(dst, v)
}

func (ScalarCodec[T]) Decode(src []byte, out *T) int {
	if out != nil {
		*out = copyOut[T](src)
	}
	return SizeOf[T]()
}

// BytesCodec stores a byte string as a uint16 little-endian length
// descriptor followed by the raw content. EncodedLength reads only the
// descriptor, so stepping over a string is O(1) regardless of its size.
type BytesCodec struct{}

func (BytesCodec) PayloadLength(v []byte) int {
	return LengthSize + len(v)
}

func (BytesCodec) EncodedLength(buf []byte) int {
	return LengthSize + int(binary.LittleEndian.Uint16(buf))
}

func (BytesCodec) Encode(v []byte, dst []byte) int {
	if len(v) > math.MaxUint16 {
		panic(fmt.Sprintf("codec: %d-byte value exceeds the length descriptor range", len(v)))
	}
	binary.LittleEndian.PutUint16(dst, uint16(len(v)))
	copy(dst[LengthSize:], v)
	return LengthSize + len(v)
}

func (BytesCodec) Decode(src []byte, out *[]byte) int {
	n := int(binary.LittleEndian.Uint16(src))
	if out != nil {
		*out = append([]byte(nil), src[LengthSize:LengthSize+n]...)
	}
	return LengthSize + n
}
