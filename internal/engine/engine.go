package engine

// Row is one entry of a ShowAll snapshot: the committed value for a key and,
// best-effort, the id of a live transaction currently buffering a change to
// that key (see ShowAll for the isolation caveat).
type Row struct {
	Value string
	TxnID *int64
}

// Engine is the public façade over the shard set, lock table, and
// transaction manager: begin/put/get/delete/commit/rollback/commit_all/
// show_all. Every method holds the transaction manager's mutex for its
// whole duration, serializing buffer mutation and lock acquisition across
// every concurrently connected client.
type Engine struct {
	router *ShardRouter
	txns   *TransactionManager
	cache  Cache
}

// New builds an Engine over numShards shards; a non-positive numShards
// falls back to 10. cache may be nil, in which case writes and deletes are not mirrored anywhere.
func New(numShards int, cache Cache) *Engine {
	if numShards <= 0 {
		numShards = 10
	}
	return &Engine{
		router: NewShardRouter(numShards),
		txns:   NewTransactionManager(),
		cache:  cache,
	}
}

// Begin starts a new transaction and returns its id. Acquires no locks.
func (e *Engine) Begin() int64 {
	return e.txns.Begin()
}

// Put buffers a write to k under tid, first taking a WRITE lock on k.
func (e *Engine) Put(k, v string, tid int64) error {
	e.txns.Lock()
	defer e.txns.Unlock()

	tx, err := e.txns.transaction(tid)
	if err != nil {
		return err
	}
	if err := e.txns.acquire(k, LockWrite, tid); err != nil {
		return err
	}

	shard := e.router.shardOf(k)
	current, existed := shard.read(k)
	tx.put(k, v, current, existed)

	if e.cache != nil {
		e.cache.Add(k, v)
	}
	return nil
}

// Get resolves a read against tid's own buffer, falling back to committed
// shard state, after taking a READ lock on k.
func (e *Engine) Get(k string, tid int64) (string, bool, error) {
	e.txns.Lock()
	defer e.txns.Unlock()

	tx, err := e.txns.transaction(tid)
	if err != nil {
		return "", false, err
	}
	if err := e.txns.acquire(k, LockRead, tid); err != nil {
		return "", false, err
	}

	shard := e.router.shardOf(k)
	committed, existed := shard.read(k)
	v, ok := tx.readOwn(k, committed, existed)
	return v, ok, nil
}

// Delete buffers a tombstone for k under tid, first taking a WRITE lock.
func (e *Engine) Delete(k string, tid int64) error {
	e.txns.Lock()
	defer e.txns.Unlock()

	tx, err := e.txns.transaction(tid)
	if err != nil {
		return err
	}
	if err := e.txns.acquire(k, LockWrite, tid); err != nil {
		return err
	}

	shard := e.router.shardOf(k)
	current, existed := shard.read(k)
	tx.delete(k, current, existed)

	if e.cache != nil {
		e.cache.Remove(k)
	}
	return nil
}

// Commit drains tid's buffer into shards and releases its locks.
func (e *Engine) Commit(tid int64) error {
	e.txns.Lock()
	defer e.txns.Unlock()

	if _, err := e.txns.transaction(tid); err != nil {
		return err
	}
	e.txns.commit(tid, e.router)
	return nil
}

// Rollback discards tid's buffer, restoring any pre-commit state it
// captured, and releases its locks.
func (e *Engine) Rollback(tid int64) error {
	e.txns.Lock()
	defer e.txns.Unlock()

	if _, err := e.txns.transaction(tid); err != nil {
		return err
	}
	e.txns.rollback(tid, e.router)
	return nil
}

// CommitAll commits every live transaction, independently and in begin
// order. Not atomic across transactions.
func (e *Engine) CommitAll() {
	e.txns.Lock()
	defer e.txns.Unlock()
	e.txns.commitAll(e.router)
}

// ShowAll returns a best-effort snapshot of every shard's committed state,
// each row annotated with the id of a live transaction that has buffered a
// change to that key, if any. The walk holds the manager mutex, so no commit
// interleaves with it, but the result carries no isolation guarantee: it
// is stale as soon as the mutex is released, and each row names at most
// one live transaction even when several have buffered the key.
func (e *Engine) ShowAll() map[string]Row {
	e.txns.Lock()
	defer e.txns.Unlock()

	out := make(map[string]Row)
	for _, shard := range e.router.all() {
		shard.ascend(func(key, value string) bool {
			row := Row{Value: value}
			if tid, ok := e.txns.getTransactionIDForKey(key); ok {
				id := tid
				row.TxnID = &id
			}
			out[key] = row
			return true
		})
	}
	return out
}
