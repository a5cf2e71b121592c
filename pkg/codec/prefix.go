package codec

import "fmt"

// checkPMNKWidth rejects PMNK types wider than the key type. The width
// relation between two independent type parameters cannot be expressed as a
// Go compile-time constraint, so the check runs once when a codec or
// prefixer is constructed and panics on misuse.
func checkPMNKWidth[K Scalar, P Scalar]() {
	if kw, pw := SizeOf[K](), SizeOf[P](); pw > kw {
		panic(fmt.Sprintf("codec: pmnk type is %d bytes, wider than the %d-byte key type", pw, kw))
	}
}

// PMNKFromScalar extracts the poor man's normalized key of type P from a
// scalar key. When K and P have the same width the key's bytes are
// reinterpreted unchanged, so the PMNK keeps the exact representation of
// the key rather than its numerically converted value.
//
// When K is wider, the key is first brought into a canonical order that
// exposes its most-significant bytes first, truncated to P's width, and
// converted back to native order. Truncating the native representation
// directly would keep the low-order bytes and lose the bytes that determine
// sort order; the double conversion keeps the sort-significant prefix while
// leaving PMNK values comparable with ordinary fixed-width comparison.
func PMNKFromScalar[K Scalar, P Scalar](key K) P {
	checkPMNKWidth[K, P]()
	var scratch [maxScalarWidth]byte
	if SizeOf[K]() == SizeOf[P]() {
		copyIn(scratch[:], key)
		return copyOut[P](scratch[:])
	}
	copyIn(scratch[:], SwapEndian(key))
	return SwapEndian(copyOut[P](scratch[:]))
}

// PMNKFromBytes extracts a PMNK of type P from the leading bytes of a byte
// string key. Keys shorter than P's width are zero-padded on the right, so
// a proper prefix sorts before any longer key sharing it. The result is
// ordered so that comparing two PMNKs numerically agrees with comparing the
// original keys lexicographically over their first SizeOf[P]() bytes.
func PMNKFromBytes[P Scalar](key []byte) P {
	var scratch [maxScalarWidth]byte
	n := SizeOf[P]()
	if len(key) < n {
		n = len(key)
	}
	copy(scratch[:n], key[:n])
	return SwapEndian(copyOut[P](scratch[:]))
}
