package codec

import "unsafe"

// Scalar enumerates the fixed-width numeric types the codec can store
// directly. Anything outside this set must go through BytesCodec or a
// TupleCodec; using it with ScalarCodec is a compile error.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// maxScalarWidth bounds the scratch space used for reinterpretation.
const maxScalarWidth = 8

// SizeOf returns the encoded (and in-memory) width of T in bytes.
func SizeOf[T Scalar]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// The three functions below are the only places in the package that
// reinterpret raw memory. Everything else works with owned values and byte
// slices of known length.

// copyIn writes the native representation of v at the start of dst and
// returns the number of bytes written. dst must have room for SizeOf[T]()
// bytes.
func copyIn[T Scalar](dst []byte, v T) int {
	n := int(unsafe.Sizeof(v))
	copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(&v)), n))
	return n
}

// copyOut reads a native representation of T from the start of src. src
// must hold at least SizeOf[T]() bytes.
func copyOut[T Scalar](src []byte) T {
	var v T
	n := int(unsafe.Sizeof(v))
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), n), src[:n])
	return v
}

// SwapEndian returns v with its byte order reversed. It is total over the
// scalar domain and never allocates; swapping twice yields the original
// value.
func SwapEndian[T Scalar](v T) T {
	n := int(unsafe.Sizeof(v))
	b := unsafe.Slice((*byte)(unsafe.Pointer(&v)), n)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return v
}
