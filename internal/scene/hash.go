package scene

import (
	"encoding/binary"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"
)

const digestCacheSize = 8192

// Digest is a blake3 digest of an instance's whole subtree: class, name,
// properties, tags, attributes and the children's digests in order. Equal
// digests mean structurally identical subtrees.
type Digest [32]byte

// Hasher computes subtree digests with a bounded cache. A Hasher must only
// be used against snapshots that are not mutated while it is alive; digests
// are keyed by Ref and never invalidated.
type Hasher struct {
	cache *lru.Cache[Ref, Digest]
}

func NewHasher() *Hasher {
	cache, _ := lru.New[Ref, Digest](digestCacheSize)
	return &Hasher{cache: cache}
}

// SubtreeDigest returns the digest for ref's subtree, computing and caching
// it on first use. The zero Digest is returned for unknown refs.
func (h *Hasher) SubtreeDigest(tree Provider, ref Ref) Digest {
	if digest, ok := h.cache.Get(ref); ok {
		return digest
	}
	inst := tree.Get(ref)
	if inst == nil {
		return Digest{}
	}

	hasher := blake3.New()
	writeString(hasher, inst.Class)
	writeString(hasher, inst.Name)

	names := make([]string, 0, len(inst.Properties))
	for name := range inst.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeString(hasher, name)
		writeValue(hasher, inst.Properties[name])
	}

	tags := inst.Tags.ToSlice()
	sort.Strings(tags)
	for _, tag := range tags {
		writeString(hasher, tag)
	}

	names = names[:0]
	for name := range inst.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeString(hasher, name)
		writeValue(hasher, inst.Attributes[name])
	}

	for _, child := range inst.Children() {
		childDigest := h.SubtreeDigest(tree, child)
		hasher.Write(childDigest[:])
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	h.cache.Add(ref, digest)
	return digest
}

func writeString(h *blake3.Hasher, s string) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
	h.Write(buf[:])
	h.Write([]byte(s))
}

func writeValue(h *blake3.Hasher, v Value) {
	if v == nil {
		h.Write([]byte{0xff})
		return
	}
	h.Write([]byte{byte(v.Kind())})
	writeString(h, v.String())
}
