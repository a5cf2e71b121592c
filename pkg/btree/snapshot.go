package btree

import (
	"errors"
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/sayounara/foster-btree/pkg/codec"
	"github.com/sayounara/foster-btree/pkg/slot"
	"github.com/sayounara/foster-btree/pkg/store"
)

// manifestName is the metadata key under which the ordered page-ID list of
// the latest snapshot lives.
const manifestName = "manifest"

// Snapshot writes every leaf page image to ps and records their
// left-to-right order in a manifest, replacing any previous snapshot. The
// caller must not mutate the tree concurrently with a snapshot.
func (t *Tree[K, V, P]) Snapshot(ps *store.PageStore) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	old, err := loadManifest(ps)
	if err != nil && !errors.Is(err, store.ErrPageNotFound) {
		return err
	}

	var ids []ksuid.KSUID
	for leaf := t.leftmost(); leaf != nil; leaf = leaf.next {
		img := append([]byte(nil), leaf.page.Image()...)
		id, err := ps.Create(img)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	// The previous snapshot stays restorable until the new manifest is
	// durable; only then can its pages go.
	if err := ps.PutMeta(manifestName, encodeManifest(ids)); err != nil {
		return err
	}
	for _, id := range old {
		if err := ps.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

// Restore rebuilds a tree from the latest snapshot in ps. A store without a
// snapshot yields an empty tree.
func Restore[K any, V any, P codec.Scalar](pairCodec *codec.PairCodec[K, V, P], eq func(a, b K) bool, cfg Config, ps *store.PageStore) (*Tree[K, V, P], error) {
	t, err := New(pairCodec, eq, cfg)
	if err != nil {
		return nil, err
	}

	ids, err := loadManifest(ps)
	if errors.Is(err, store.ErrPageNotFound) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}

	// Replay records leaf by leaf. Pages arrive in ascending PMNK order,
	// so inserts append at the right edge and rebuild an equivalent tree.
	for _, id := range ids {
		img, err := ps.Read(id)
		if err != nil {
			return nil, fmt.Errorf("btree: reading snapshot page %s: %w", id, err)
		}
		page, err := slot.FromImage[P](img)
		if err != nil {
			return nil, fmt.Errorf("btree: snapshot page %s: %w", id, err)
		}
		for i := 0; i < page.Count(); i++ {
			pmnk := page.PMNK(i)
			payload := append([]byte(nil), page.Payload(i)...)
			if err := t.insertInLeaf(t.descend(pmnk), pmnk, payload); err != nil {
				return nil, err
			}
			t.size++
		}
	}
	return t, nil
}

// The manifest is itself codec-encoded: a sequence of length-prefixed page
// IDs, decodable without any out-of-band record count.
func encodeManifest(ids []ksuid.KSUID) []byte {
	var bc codec.BytesCodec
	n := 0
	for _, id := range ids {
		n += bc.PayloadLength(id.Bytes())
	}
	buf := make([]byte, n)
	off := 0
	for _, id := range ids {
		off += bc.Encode(id.Bytes(), buf[off:])
	}
	return buf
}

func loadManifest(ps *store.PageStore) ([]ksuid.KSUID, error) {
	buf, err := ps.GetMeta(manifestName)
	if err != nil {
		return nil, err
	}

	var bc codec.BytesCodec
	var ids []ksuid.KSUID
	for off := 0; off < len(buf); {
		var raw []byte
		off += bc.Decode(buf[off:], &raw)
		id, err := ksuid.FromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("btree: malformed snapshot manifest: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
