// Package slot implements the slotted page that backs B-tree leaves: a
// directory of fixed-width poor man's normalized keys (PMNKs) growing from
// the front of the page, and opaque payload bytes growing from the back.
//
// The directory keeps slots in PMNK order so lookups binary-search the
// fixed-width area without touching payloads. Payload bytes are
// uninterpreted here; callers encode and decode them with pkg/codec and
// size them with the codec's PayloadLength before inserting.
//
// # Page Image
//
// A page is a single contiguous byte image, little-endian:
//
//	[count uint16][tail uint16]               header, 4 bytes
//	[pmnk][offset uint16][length uint16] ...  slot directory, sorted
//	        ... free space ...
//	[payload bytes]                           heap, grows down from the end
//
// tail is the offset of the lowest payload byte in use.
package slot

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/sayounara/foster-btree/pkg/codec"
)

const (
	headerSize = 4

	// DefaultPageSize matches the common 4K block size.
	DefaultPageSize = 4096

	// MaxPageSize is bounded by the uint16 offsets in the header and slot
	// directory.
	MaxPageSize = math.MaxUint16
)

// Errors reported by page operations.
var (
	ErrPageFull = &PageError{"not enough free space in page"}
	ErrBadImage = &PageError{"malformed page image"}
)

// PageError represents a slotted-page error.
type PageError struct {
	Message string
}

func (e *PageError) Error() string {
	return e.Message
}

// Page is a slotted page keyed by fixed-width PMNKs of type P.
type Page[P codec.Scalar] struct {
	buf       []byte
	slotWidth int
}

// NewPage allocates an empty page of the given image size.
func NewPage[P codec.Scalar](size int) (*Page[P], error) {
	w := codec.SizeOf[P]() + 4
	if size < headerSize+w || size > MaxPageSize {
		return nil, fmt.Errorf("slot: page size %d out of range [%d, %d]", size, headerSize+w, MaxPageSize)
	}
	p := &Page[P]{buf: make([]byte, size), slotWidth: w}
	p.setTail(size)
	return p, nil
}

// FromImage wraps an existing page image, validating its header and slot
// directory. The page takes ownership of img.
func FromImage[P codec.Scalar](img []byte) (*Page[P], error) {
	w := codec.SizeOf[P]() + 4
	if len(img) < headerSize || len(img) > MaxPageSize {
		return nil, ErrBadImage
	}
	p := &Page[P]{buf: img, slotWidth: w}
	count, tail := p.count(), p.tail()
	if tail > len(img) || headerSize+count*w > tail {
		return nil, ErrBadImage
	}
	for i := 0; i < count; i++ {
		off, ln := p.extent(i)
		if off < tail || off+ln > len(img) {
			return nil, ErrBadImage
		}
	}
	return p, nil
}

// Image returns the page's backing byte image. The slice aliases the page;
// callers persisting it must copy or stop mutating first.
func (p *Page[P]) Image() []byte { return p.buf }

// Size returns the page image size in bytes.
func (p *Page[P]) Size() int { return len(p.buf) }

// Count returns the number of records in the page.
func (p *Page[P]) Count() int { return p.count() }

// FreeSpace returns the bytes available for one more slot plus payload.
func (p *Page[P]) FreeSpace() int {
	return p.tail() - headerSize - p.count()*p.slotWidth
}

// PMNK returns the comparison key of slot i.
func (p *Page[P]) PMNK(i int) P {
	var out P
	codec.ScalarCodec[P]{}.Decode(p.buf[p.slotOffset(i):], &out)
	return out
}

// Payload returns the payload bytes of slot i, aliasing the page image.
func (p *Page[P]) Payload(i int) []byte {
	off, ln := p.extent(i)
	return p.buf[off : off+ln]
}

// Search returns the index of the first slot whose PMNK is >= pmnk, and
// whether that slot holds pmnk exactly. Equal PMNKs are adjacent; callers
// resolving a full key scan forward from the returned index.
func (p *Page[P]) Search(pmnk P) (int, bool) {
	lo, hi := 0, p.count()
	for lo < hi {
		mid := (lo + hi) / 2
		if p.PMNK(mid) < pmnk {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < p.count() && p.PMNK(lo) == pmnk
}

// Insert adds a record, keeping the directory sorted. Among equal PMNKs the
// new record is placed last. Returns the slot index, or ErrPageFull when
// the slot entry plus payload does not fit.
func (p *Page[P]) Insert(pmnk P, payload []byte) (int, error) {
	if p.slotWidth+len(payload) > p.FreeSpace() {
		return 0, ErrPageFull
	}

	newTail := p.tail() - len(payload)
	copy(p.buf[newTail:], payload)

	// Upper bound: first slot strictly greater.
	lo, hi := 0, p.count()
	for lo < hi {
		mid := (lo + hi) / 2
		if pmnk < p.PMNK(mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	count := p.count()
	base := headerSize
	copy(p.buf[base+(lo+1)*p.slotWidth:base+(count+1)*p.slotWidth],
		p.buf[base+lo*p.slotWidth:base+count*p.slotWidth])
	p.writeSlot(lo, pmnk, newTail, len(payload))
	p.setCount(count + 1)
	p.setTail(newTail)
	return lo, nil
}

// Delete removes slot i and compacts the payload heap so FreeSpace stays
// exact.
func (p *Page[P]) Delete(i int) {
	off, ln := p.extent(i)
	tail := p.tail()

	// Close the payload hole: everything below the deleted extent slides
	// up by its length.
	copy(p.buf[tail+ln:off+ln], p.buf[tail:off])

	count := p.count()
	base := headerSize
	copy(p.buf[base+i*p.slotWidth:base+(count-1)*p.slotWidth],
		p.buf[base+(i+1)*p.slotWidth:base+count*p.slotWidth])
	p.setCount(count - 1)
	p.setTail(tail + ln)

	// Fix offsets of the payloads that moved.
	for j := 0; j < count-1; j++ {
		jOff, jLn := p.extent(j)
		if jOff < off {
			p.writeExtent(j, jOff+ln, jLn)
		}
	}
}

// Range calls fn for each slot in PMNK order until fn returns false.
func (p *Page[P]) Range(fn func(i int, pmnk P, payload []byte) bool) {
	for i := 0; i < p.count(); i++ {
		if !fn(i, p.PMNK(i), p.Payload(i)) {
			return
		}
	}
}

func (p *Page[P]) count() int {
	return int(binary.LittleEndian.Uint16(p.buf[0:]))
}

func (p *Page[P]) setCount(n int) {
	binary.LittleEndian.PutUint16(p.buf[0:], uint16(n))
}

func (p *Page[P]) tail() int {
	return int(binary.LittleEndian.Uint16(p.buf[2:]))
}

func (p *Page[P]) setTail(n int) {
	binary.LittleEndian.PutUint16(p.buf[2:], uint16(n))
}

func (p *Page[P]) slotOffset(i int) int {
	return headerSize + i*p.slotWidth
}

func (p *Page[P]) extent(i int) (off, ln int) {
	so := p.slotOffset(i) + p.slotWidth - 4
	return int(binary.LittleEndian.Uint16(p.buf[so:])), int(binary.LittleEndian.Uint16(p.buf[so+2:]))
}

func (p *Page[P]) writeExtent(i, off, ln int) {
	so := p.slotOffset(i) + p.slotWidth - 4
	binary.LittleEndian.PutUint16(p.buf[so:], uint16(off))
	binary.LittleEndian.PutUint16(p.buf[so+2:], uint16(ln))
}

func (p *Page[P]) writeSlot(i int, pmnk P, off, ln int) {
	codec.ScalarCodec[P]{}.Encode(pmnk, p.buf[p.slotOffset(i):])
	p.writeExtent(i, off, ln)
}
