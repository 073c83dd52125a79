package engine

import (
	"hash/fnv"

	"github.com/google/btree"
)

// entry is the unit stored in a Shard's btree: a key and its committed
// value. Ordering is by key only, so the tree can locate, insert, and walk
// entries without the value ever participating in the comparison.
type entry struct {
	key   string
	value string
}

func entryLess(a, b entry) bool {
	return a.key < b.key
}

// Shard owns one partition of the committed key -> value map. No locking of
// its own: callers must hold the appropriate KeyLock before calling any
// method here. The backing store is a btree rather than a bare map so that
// ShowAll (see engine.go) can walk each shard's keys in a stable order; the
// engine makes no isolation or ordering promise to callers on top of that.
type Shard struct {
	tree *btree.BTreeG[entry]
}

func newShard() *Shard {
	return &Shard{tree: btree.NewG(32, entryLess)}
}

// read returns the committed value for k, if any.
func (s *Shard) read(k string) (string, bool) {
	e, ok := s.tree.Get(entry{key: k})
	return e.value, ok
}

// write sets the committed value for k.
func (s *Shard) write(k, v string) {
	s.tree.ReplaceOrInsert(entry{key: k, value: v})
}

// erase removes k from the committed map. A no-op if k is absent.
func (s *Shard) erase(k string) {
	s.tree.Delete(entry{key: k})
}

// ascend walks every committed (key, value) pair in key order, stopping
// early if fn returns false.
func (s *Shard) ascend(fn func(key, value string) bool) {
	s.tree.Ascend(func(e entry) bool {
		return fn(e.key, e.value)
	})
}

// ShardRouter owns an ordered, fixed list of shards and maps a key to its
// owning shard via a stable hash. The mapping is fixed for the router's
// lifetime: shard_of(k) always lands on the same shard as long as the
// shard count does not change.
type ShardRouter struct {
	shards []*Shard
}

// NewShardRouter builds a router over n freshly allocated, empty shards.
// n must be positive; the caller (Engine construction) enforces a default
// of 10 per spec.
func NewShardRouter(n int) *ShardRouter {
	shards := make([]*Shard, n)
	for i := range shards {
		shards[i] = newShard()
	}
	return &ShardRouter{shards: shards}
}

// shardOf is pure, total, and deterministic within a process: the same key
// bytes always hash to the same shard index.
func (r *ShardRouter) shardOf(k string) *Shard {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k))
	idx := h.Sum64() % uint64(len(r.shards))
	return r.shards[idx]
}

// all returns every shard in router order, for operations (ShowAll) that
// must visit the whole committed set.
func (r *ShardRouter) all() []*Shard {
	return r.shards
}
