package codec

import "fmt"

// Tuple is an ordered, fixed-arity record of heterogeneously typed fields.
type Tuple = []any

// Field is the type-erased per-field codec a TupleCodec iterates over. The
// concrete field set of a tuple is registered once, via TupleOf, and never
// varies per instance.
type Field interface {
	payloadLength(v any) int
	encodedLength(buf []byte) int
	encode(v any, dst []byte) int
	decode(src []byte) (any, int)
}

// ScalarField returns the tuple field descriptor for a fixed-width scalar.
func ScalarField[T Scalar]() Field { return scalarField[T]{} }

// BytesField returns the tuple field descriptor for a length-prefixed byte
// string.
func BytesField() Field { return bytesField{} }

type scalarField[T Scalar] struct{}

func (scalarField[T]) value(v any) T {
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("codec: tuple field holds %T, codec expects %T", v, t))
	}
	return t
}

func (f scalarField[T]) payloadLength(v any) int {
	return ScalarCodec[T]{}.PayloadLength(f.value(v))
}

func (scalarField[T]) encodedLength(buf []byte) int {
	return ScalarCodec[T]{}.EncodedLength(buf)
}

func (f scalarField[T]) encode(v any, dst []byte) int {
	return ScalarCodec[T]{}.Encode(f.value(v), dst)
}

func (scalarField[T]) decode(src []byte) (any, int) {
	var out T
	n := ScalarCodec[T]{}.Decode(src, &out)
	return out, n
}

type bytesField struct{}

func (bytesField) value(v any) []byte {
	b, ok := v.([]byte)
	if !ok {
		panic(fmt.Sprintf("codec: tuple field holds %T, codec expects []byte", v))
	}
	return b
}

func (f bytesField) payloadLength(v any) int {
	return BytesCodec{}.PayloadLength(f.value(v))
}

func (bytesField) encodedLength(buf []byte) int {
	return BytesCodec{}.EncodedLength(buf)
}

func (f bytesField) encode(v any, dst []byte) int {
	return BytesCodec{}.Encode(f.value(v), dst)
}

func (bytesField) decode(src []byte) (any, int) {
	var out []byte
	n := BytesCodec{}.Decode(src, &out)
	return out, n
}

// TupleCodec encodes a fixed-arity record by applying each registered field
// codec in declaration order and concatenating the results without padding.
//
// Because a variable-length field may appear at any position, every
// operation that works from encoded bytes must walk the fields strictly
// left to right: each step determines field N's length and thereby where
// field N+1 starts. There is no sub-linear way to find a later field.
type TupleCodec struct {
	fields []Field
}

// TupleOf builds a TupleCodec over the given ordered field descriptors. An
// empty field list is valid and encodes to zero bytes.
func TupleOf(fields ...Field) *TupleCodec {
	return &TupleCodec{fields: fields}
}

// Arity returns the number of fields in the tuple.
func (c *TupleCodec) Arity() int { return len(c.fields) }

func (c *TupleCodec) checkArity(t Tuple) {
	if len(t) != len(c.fields) {
		panic(fmt.Sprintf("codec: tuple has %d fields, codec expects %d", len(t), len(c.fields)))
	}
}

// PayloadLength returns the total encoded length of t.
func (c *TupleCodec) PayloadLength(t Tuple) int {
	c.checkArity(t)
	n := 0
	for i, f := range c.fields {
		n += f.payloadLength(t[i])
	}
	return n
}

// EncodedLength returns the length of the encoded tuple starting at buf,
// computed from the bytes alone.
func (c *TupleCodec) EncodedLength(buf []byte) int {
	n := 0
	for _, f := range c.fields {
		n += f.encodedLength(buf[n:])
	}
	return n
}

// Encode writes t's fields contiguously at the start of dst.
func (c *TupleCodec) Encode(t Tuple, dst []byte) int {
	c.checkArity(t)
	n := 0
	for i, f := range c.fields {
		n += f.encode(t[i], dst[n:])
	}
	return n
}

// Decode reads one encoded tuple from the start of src into out. A nil out
// still advances past every field, since later records' positions depend on
// the skipped lengths.
func (c *TupleCodec) Decode(src []byte, out *Tuple) int {
	if out == nil {
		return c.EncodedLength(src)
	}
	vals := make(Tuple, len(c.fields))
	n := 0
	for i, f := range c.fields {
		v, adv := f.decode(src[n:])
		vals[i] = v
		n += adv
	}
	*out = vals
	return n
}
