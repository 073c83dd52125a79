package engine

// undoEntry is the committed value a key had the first time a transaction
// touched it, or "absent" if the key did not exist yet. It lets rollback
// restore exactly the pre-transaction shard state.
type undoEntry struct {
	value   string
	existed bool
}

// Transaction is a single connection's isolated write buffer: writes not
// yet committed, keys marked for deletion, and the undo log needed to
// restore shard state on rollback. Every field here is mutated only by
// calls carrying this transaction's id while the owning TransactionManager's
// mutex is held.
type Transaction struct {
	ID int64

	changes    map[string]string
	tombstones map[string]struct{}
	undo       map[string]undoEntry
}

func newTransaction(id int64) *Transaction {
	return &Transaction{
		ID:         id,
		changes:    make(map[string]string),
		tombstones: make(map[string]struct{}),
		undo:       make(map[string]undoEntry),
	}
}

// captureUndo records the committed value current held for k the first time
// this transaction touches k, and only the first time (first-touch
// semantics): if k is deleted, then re-put, then re-deleted, the undo entry
// from the very first touch is preserved, not overwritten.
func (t *Transaction) captureUndo(k string, current string, existed bool) {
	if _, ok := t.undo[k]; ok {
		return
	}
	t.undo[k] = undoEntry{value: current, existed: existed}
}

// put buffers a write. current/existed is the committed value observed in
// the shard at the moment the caller's lock was acquired.
func (t *Transaction) put(k, v string, current string, existed bool) {
	t.captureUndo(k, current, existed)
	t.changes[k] = v
	delete(t.tombstones, k)
}

// delete buffers a tombstone.
func (t *Transaction) delete(k string, current string, existed bool) {
	t.captureUndo(k, current, existed)
	t.tombstones[k] = struct{}{}
	delete(t.changes, k)
}

// readOwn resolves a GET against this transaction's own buffer before
// falling back to the committed value supplied by the caller.
func (t *Transaction) readOwn(k string, committed string, committedExisted bool) (string, bool) {
	if _, tombstoned := t.tombstones[k]; tombstoned {
		return "", false
	}
	if v, ok := t.changes[k]; ok {
		return v, true
	}
	return committed, committedExisted
}

// touchedKeys reports every key this transaction has written or deleted.
// getTransactionIDForKey does not use it; it checks a single key with
// touches.
func (t *Transaction) touchedKeys() []string {
	keys := make([]string, 0, len(t.changes)+len(t.tombstones))
	for k := range t.changes {
		keys = append(keys, k)
	}
	for k := range t.tombstones {
		if _, alreadyCounted := t.changes[k]; !alreadyCounted {
			keys = append(keys, k)
		}
	}
	return keys
}

// touches reports whether this transaction's buffer references k at all.
func (t *Transaction) touches(k string) bool {
	if _, ok := t.changes[k]; ok {
		return true
	}
	_, ok := t.tombstones[k]
	return ok
}

// commit drains the buffer into shards, routing each key to its owning
// shard rather than fanning every change out to every shard (see DESIGN.md,
// spec §9 item 1). Buffers are cleared on return.
func (t *Transaction) commit(router *ShardRouter) {
	for k, v := range t.changes {
		router.shardOf(k).write(k, v)
	}
	for k := range t.tombstones {
		router.shardOf(k).erase(k)
	}
	t.clearBuffers()
}

// rollbackBuffer discards buffered changes without touching shards.
func (t *Transaction) rollbackBuffer() {
	t.clearBuffers()
}

// undoToShards restores, for every key this transaction captured an undo
// entry for, the committed value (or absence) that existed at first touch.
// Writes reach shards only at commit, so for a key nobody else committed
// since first touch this rewrites the value the shard already holds. If
// another transaction committed the same key in between (the WRITE acquire
// rule lets a second transaction take a key already held WRITE), that
// committed value is overwritten by the first-touch value. It is kept for
// symmetry per spec §9 item 3, so an implementation that chooses to
// materialize writes eagerly still rolls back its own writes.
func (t *Transaction) undoToShards(router *ShardRouter) {
	for k, u := range t.undo {
		shard := router.shardOf(k)
		if u.existed {
			shard.write(k, u.value)
		} else {
			shard.erase(k)
		}
	}
}

func (t *Transaction) clearBuffers() {
	t.changes = make(map[string]string)
	t.tombstones = make(map[string]struct{})
	t.undo = make(map[string]undoEntry)
}
