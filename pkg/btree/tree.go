// Package btree provides B-tree operations over slotted pages whose records
// are produced by pkg/codec. Leaves hold encoded key-value records keyed by
// a fixed-width PMNK; internal nodes route by PMNK separators and live in
// memory.
package btree

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sayounara/foster-btree/pkg/codec"
	"github.com/sayounara/foster-btree/pkg/slot"
)

// Config holds tree construction parameters.
type Config struct {
	// PageSize is the leaf page image size; slot.DefaultPageSize when zero.
	PageSize int
}

// Tree is a B-tree over codec-encoded records. K and V are the key and
// value types of the pair codec, P its PMNK type. Because distinct keys may
// share a PMNK, the tree resolves candidates by decoding full keys and
// comparing them with the equality function supplied at construction.
//
// All operations are safe for concurrent use.
type Tree[K any, V any, P codec.Scalar] struct {
	mu       sync.RWMutex
	codec    *codec.PairCodec[K, V, P]
	eq       func(a, b K) bool
	pageSize int
	root     *node[P]
	height   int
	size     int
}

// node is either a leaf wrapping a slotted page or an internal routing node
// with PMNK separators. Separator i bounds children i and i+1: a record
// with pmnk > keys[i] lives in child i+1 or later. Because PMNKs collide,
// a run of equal PMNKs may span several leaves; descent for an equal PMNK
// goes left and lookups continue the run through the leaf chain.
type node[P codec.Scalar] struct {
	leaf     bool
	keys     []P
	children []*node[P]
	parent   *node[P]
	next     *node[P]
	page     *slot.Page[P]
}

// New builds an empty tree over the given pair codec. eq decides full-key
// equality and must agree with the codec's key type.
func New[K any, V any, P codec.Scalar](pairCodec *codec.PairCodec[K, V, P], eq func(a, b K) bool, cfg Config) (*Tree[K, V, P], error) {
	if pairCodec == nil {
		return nil, errors.New("btree: nil codec")
	}
	if eq == nil {
		return nil, errors.New("btree: nil key equality function")
	}
	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = slot.DefaultPageSize
	}
	page, err := slot.NewPage[P](pageSize)
	if err != nil {
		return nil, err
	}
	return &Tree[K, V, P]{
		codec:    pairCodec,
		eq:       eq,
		pageSize: pageSize,
		root:     &node[P]{leaf: true, page: page},
		height:   1,
	}, nil
}

// Len returns the number of records in the tree.
func (t *Tree[K, V, P]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Height returns the current tree height.
func (t *Tree[K, V, P]) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.height
}

// Insert adds a key-value pair. Inserting a key that is already present
// fails with a KeyExistsError carrying the key.
func (t *Tree[K, V, P]) Insert(key K, value V) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pmnk := t.codec.PMNK(key)
	if _, _, ok := t.find(pmnk, key); ok {
		return &KeyExistsError{Key: key}
	}
	if err := t.insertInLeaf(t.descend(pmnk), pmnk, t.encode(key, value)); err != nil {
		return err
	}
	t.size++
	return nil
}

// Put inserts or replaces the value for key.
func (t *Tree[K, V, P]) Put(key K, value V) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pmnk := t.codec.PMNK(key)
	if leaf, idx, ok := t.find(pmnk, key); ok {
		// Replace: the new encoding may differ in length, so reinsert.
		// The old record is kept aside so a failed insert does not lose
		// the key.
		old := append([]byte(nil), leaf.page.Payload(idx)...)
		leaf.page.Delete(idx)
		err := t.insertInLeaf(leaf, pmnk, t.encode(key, value))
		if err != nil {
			if rerr := t.insertInLeaf(t.descend(pmnk), pmnk, old); rerr != nil {
				return rerr
			}
		}
		return err
	}
	if err := t.insertInLeaf(t.descend(pmnk), pmnk, t.encode(key, value)); err != nil {
		return err
	}
	t.size++
	return nil
}

// Get returns the value stored for key, or a KeyNotFoundError.
func (t *Tree[K, V, P]) Get(key K) (V, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var zero V
	pmnk := t.codec.PMNK(key)
	leaf, idx, ok := t.find(pmnk, key)
	if !ok {
		return zero, &KeyNotFoundError{Key: key}
	}

	var value V
	if err := t.codec.Decode(leaf.page.Payload(idx), nil, &value, &pmnk); err != nil {
		return zero, err
	}
	return value, nil
}

// Delete removes key, or fails with a KeyNotFoundError. Pages are not
// merged on underflow; space is reclaimed within each page.
func (t *Tree[K, V, P]) Delete(key K) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pmnk := t.codec.PMNK(key)
	leaf, idx, ok := t.find(pmnk, key)
	if !ok {
		return &KeyNotFoundError{Key: key}
	}
	leaf.page.Delete(idx)
	t.size--
	return nil
}

// Scan calls fn for every record in ascending PMNK order until fn returns
// false. The relative order of records sharing a PMNK is unspecified.
func (t *Tree[K, V, P]) Scan(fn func(key K, value V) bool) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for leaf := t.leftmost(); leaf != nil; leaf = leaf.next {
		for i := 0; i < leaf.page.Count(); i++ {
			pmnk := leaf.page.PMNK(i)
			var key K
			var value V
			if err := t.codec.Decode(leaf.page.Payload(i), &key, &value, &pmnk); err != nil {
				return err
			}
			if !fn(key, value) {
				return nil
			}
		}
	}
	return nil
}

func (t *Tree[K, V, P]) encode(key K, value V) []byte {
	payload := make([]byte, t.codec.PayloadLength(key, value))
	t.codec.Encode(key, value, payload)
	return payload
}

// descend walks from the root to the leftmost leaf that may hold pmnk. A
// pmnk equal to a separator descends left, because a run of equal PMNKs can
// begin on the left side of its separator; find follows the leaf chain from
// there.
func (t *Tree[K, V, P]) descend(pmnk P) *node[P] {
	cur := t.root
	for !cur.leaf {
		cur = cur.children[childIndex(cur.keys, pmnk)]
	}
	return cur
}

func (t *Tree[K, V, P]) leftmost() *node[P] {
	cur := t.root
	for !cur.leaf {
		cur = cur.children[0]
	}
	return cur
}

// childIndex returns the child to follow for pmnk: the first separator
// greater than or equal to pmnk, so an equal PMNK descends left of its
// separator.
func childIndex[P codec.Scalar](keys []P, pmnk P) int {
	for i, k := range keys {
		if pmnk <= k {
			return i
		}
	}
	return len(keys)
}

// find locates the slot holding exactly key. Descent lands left of an equal
// separator, so the search follows the leaf chain past leaves that end
// before pmnk and while a run of equal PMNKs continues. Collisions are
// resolved by decoding each candidate's full key.
func (t *Tree[K, V, P]) find(pmnk P, key K) (*node[P], int, bool) {
	for l := t.descend(pmnk); l != nil; l = l.next {
		start, found := l.page.Search(pmnk)
		if !found {
			if start < l.page.Count() {
				return nil, 0, false
			}
			// Every record here sorts before pmnk; the record may live
			// in the next leaf.
			continue
		}
		for i := start; i < l.page.Count(); i++ {
			if l.page.PMNK(i) != pmnk {
				return nil, 0, false
			}
			var candidate K
			if err := t.codec.Decode(l.page.Payload(i), &candidate, nil, &pmnk); err != nil {
				return nil, 0, false
			}
			if t.eq(candidate, key) {
				return l, i, true
			}
		}
	}
	return nil, 0, false
}

// insertInLeaf places an encoded payload, splitting the leaf when full.
func (t *Tree[K, V, P]) insertInLeaf(leaf *node[P], pmnk P, payload []byte) error {
	_, err := leaf.page.Insert(pmnk, payload)
	if err == nil {
		return nil
	}
	if !errors.Is(err, slot.ErrPageFull) {
		return err
	}

	right, sep, err := t.splitLeaf(leaf)
	if err != nil {
		return err
	}
	target := leaf
	if sep < pmnk {
		target = right
	}
	if _, err := target.page.Insert(pmnk, payload); err != nil {
		return fmt.Errorf("btree: record does not fit a fresh page: %w", err)
	}
	return nil
}

// splitLeaf moves the upper half of a full leaf into a new right sibling
// and pushes the separator up. The split point prefers a PMNK boundary
// near the middle; a page dominated by one PMNK run splits inside the run,
// which lookups handle by following the leaf chain.
func (t *Tree[K, V, P]) splitLeaf(leaf *node[P]) (*node[P], P, error) {
	var zero P
	page := leaf.page
	count := page.Count()
	if count < 2 {
		return nil, zero, errors.New("btree: cannot split a page with fewer than two records")
	}

	splitAt, _ := page.Search(page.PMNK(count / 2))
	if splitAt == 0 {
		splitAt = count / 2
	}

	newPage, err := slot.NewPage[P](t.pageSize)
	if err != nil {
		return nil, zero, err
	}
	for i := splitAt; i < count; i++ {
		if _, err := newPage.Insert(page.PMNK(i), page.Payload(i)); err != nil {
			return nil, zero, err
		}
	}
	for i := count - 1; i >= splitAt; i-- {
		page.Delete(i)
	}

	right := &node[P]{
		leaf:   true,
		page:   newPage,
		parent: leaf.parent,
		next:   leaf.next,
	}
	leaf.next = right

	sep := newPage.PMNK(0)
	t.insertInParent(leaf, sep, right)
	return right, sep, nil
}

// insertInParent links a freshly split-off right sibling under the parent,
// creating a new root when the split node was the root.
func (t *Tree[K, V, P]) insertInParent(left *node[P], sep P, right *node[P]) {
	parent := left.parent
	if parent == nil {
		root := &node[P]{
			keys:     []P{sep},
			children: []*node[P]{left, right},
		}
		left.parent = root
		right.parent = root
		t.root = root
		t.height++
		return
	}

	idx := childIndex(parent.keys, sep)
	parent.keys = append(parent.keys, sep)
	copy(parent.keys[idx+1:], parent.keys[idx:])
	parent.keys[idx] = sep

	parent.children = append(parent.children, right)
	copy(parent.children[idx+2:], parent.children[idx+1:])
	parent.children[idx+1] = right
	right.parent = parent

	if len(parent.keys) > maxSeparators {
		t.splitInternal(parent)
	}
}

// maxSeparators bounds the fan-out of internal nodes.
const maxSeparators = 64

// splitInternal splits an overflowing routing node, promoting its middle
// separator.
func (t *Tree[K, V, P]) splitInternal(n *node[P]) {
	mid := len(n.keys) / 2
	sep := n.keys[mid]

	right := &node[P]{
		keys:     append([]P{}, n.keys[mid+1:]...),
		children: append([]*node[P]{}, n.children[mid+1:]...),
		parent:   n.parent,
	}
	for _, child := range right.children {
		child.parent = right
	}

	n.keys = n.keys[:mid]
	n.children = n.children[:mid+1]

	t.insertInParent(n, sep, right)
}
