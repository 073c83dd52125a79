package engine

// Cache is the optional adapter the Engine invokes on committed-intent
// writes and deletes — i.e. on Put/Delete against a live transaction's
// buffer, not on actual shard commit, matching
// original_source/server/data_store/data_store.py's `caching_strategy`
// hook. A nil Cache means no cache is attached.
type Cache interface {
	Add(key, value string)
	Remove(key string)
}
