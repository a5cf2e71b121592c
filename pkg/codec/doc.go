// Package codec converts typed keys and values into the flat byte layout
// used by the slot array inside a B-tree page. A page stores, per record, a
// fixed-width comparison key (a poor man's normalized key, PMNK) in the slot
// directory and an opaque variable-length payload in the page heap; this
// package produces both.
//
// # Payload Format
//
// A record payload is the concatenation of the key encoding and the value
// encoding, with no separators or padding:
//
//	[key bytes?][value bytes]
//
// The key bytes are omitted entirely when the key type and the PMNK type are
// identical, since the PMNK held in the slot directory already represents
// the key losslessly. Decoding such a record requires the caller to hand the
// PMNK back in; see PairCodec.Decode.
//
// Field encodings:
//   - Scalars occupy exactly their in-memory width, native representation,
//     no length prefix.
//   - Byte strings are prefixed with a uint16 little-endian length
//     descriptor followed by the raw content bytes. The descriptor alone
//     determines the encoded length, so records can be skipped without
//     reading their content.
//   - Tuples are the concatenation of their field encodings in declaration
//     order.
//
// # Preconditions
//
// The codec performs no bounds checking: callers size destination buffers
// with PayloadLength before encoding, and must hand Decode a buffer that
// holds a complete record. Buffer capacity is a caller contract, not a
// runtime check. All codecs are stateless and safe for concurrent use on
// disjoint buffers.
package codec
