package codec

import "errors"

// ErrMissingPMNK is returned by PairCodec.Decode when the record's key was
// suppressed at encode time and no PMNK was supplied to reconstruct it.
var ErrMissingPMNK = errors.New("codec: pmnk required to decode a suppressed key")

// PairCodec combines a key codec and a value codec into the record layout
// consumed by the slot array: key bytes (if any) immediately followed by
// value bytes.
//
// When the key type K and the PMNK type P are identical, the PMNK held in
// the page's slot directory already is the key, so the key codec is
// replaced by a NopCodec and no key bytes are stored in the payload.
// Decoding such a record requires the caller to pass the slot's PMNK back
// in.
type PairCodec[K any, V any, P Scalar] struct {
	key        FieldCodec[K]
	value      FieldCodec[V]
	extract    func(K) P
	suppressed bool
}

// NewPairCodec builds a PairCodec from explicit key and value field codecs
// and a PMNK extraction function. Most callers want one of the default
// constructors below instead; use this form for tuple-valued records or
// custom field codecs.
func NewPairCodec[K any, V any, P Scalar](key FieldCodec[K], value FieldCodec[V], extract func(K) P) *PairCodec[K, V, P] {
	c := &PairCodec[K, V, P]{key: key, value: value, extract: extract}
	var zero K
	if _, same := any(zero).(P); same {
		c.key = NopCodec[K]{}
		c.suppressed = true
	}
	return c
}

// NewScalarPairCodec selects codecs for a scalar key and a scalar value.
func NewScalarPairCodec[K Scalar, V Scalar, P Scalar]() *PairCodec[K, V, P] {
	return NewPairCodec[K, V, P](ScalarCodec[K]{}, ScalarCodec[V]{}, PMNKFromScalar[K, P])
}

// NewScalarBytesPairCodec selects codecs for a scalar key and a byte-string
// value.
func NewScalarBytesPairCodec[K Scalar, P Scalar]() *PairCodec[K, []byte, P] {
	return NewPairCodec[K, []byte, P](ScalarCodec[K]{}, BytesCodec{}, PMNKFromScalar[K, P])
}

// NewBytesScalarPairCodec selects codecs for a byte-string key and a scalar
// value.
func NewBytesScalarPairCodec[V Scalar, P Scalar]() *PairCodec[[]byte, V, P] {
	return NewPairCodec[[]byte, V, P](BytesCodec{}, ScalarCodec[V]{}, PMNKFromBytes[P])
}

// NewBytesPairCodec selects codecs for byte-string keys and values, the
// common case for an uninterpreted key-value store.
func NewBytesPairCodec[P Scalar]() *PairCodec[[]byte, []byte, P] {
	return NewPairCodec[[]byte, []byte, P](BytesCodec{}, BytesCodec{}, PMNKFromBytes[P])
}

// PMNK extracts the fixed-width comparison key the slot array stores
// alongside the payload.
func (c *PairCodec[K, V, P]) PMNK(key K) P { return c.extract(key) }

// Suppressed reports whether key bytes are omitted from payloads because
// the PMNK represents the key losslessly.
func (c *PairCodec[K, V, P]) Suppressed() bool { return c.suppressed }

// PayloadLength returns the payload size the slot array must allocate for
// the pair. The key contributes zero bytes when suppressed.
func (c *PairCodec[K, V, P]) PayloadLength(key K, value V) int {
	return c.key.PayloadLength(key) + c.value.PayloadLength(value)
}

// EncodedLength returns the length of the encoded record starting at buf,
// computed from the bytes alone.
func (c *PairCodec[K, V, P]) EncodedLength(buf []byte) int {
	n := c.key.EncodedLength(buf)
	return n + c.value.EncodedLength(buf[n:])
}

// Encode writes the record at the start of dst and returns the number of
// bytes written, which always equals PayloadLength(key, value).
func (c *PairCodec[K, V, P]) Encode(key K, value V, dst []byte) int {
	n := c.key.Encode(key, dst)
	return n + c.value.Encode(value, dst[n:])
}

// Decode reads the record at the start of src. A nil key or value pointer
// skips that part. When the key is suppressed, a requested key is rebuilt
// from pmnk; omitting pmnk in that case is a contract violation and fails
// before anything is written to the outputs.
func (c *PairCodec[K, V, P]) Decode(src []byte, key *K, value *V, pmnk *P) error {
	if c.suppressed && key != nil && pmnk == nil {
		return ErrMissingPMNK
	}
	n := c.key.Decode(src, key)
	c.value.Decode(src[n:], value)
	if c.suppressed && key != nil {
		// Safe: suppression implies K and P are the identical type.
		*key = any(*pmnk).(K)
	}
	return nil
}
