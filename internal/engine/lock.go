package engine

import "sync"

// LockMode is the mode a KeyLock is held in.
type LockMode int

const (
	// LockNone means the key is currently unlocked.
	LockNone LockMode = iota
	// LockRead means one or more transactions hold a shared read lock.
	LockRead
	// LockWrite means a transaction holds (or believes it holds) exclusive
	// access to the key. See acquire below: the rule as specified does not
	// enforce mutual exclusion by counting holders.
	LockWrite
)

// KeyLock is a read/write lock on a single key, tracking which transactions
// currently hold it. It is the engine's only concurrency control primitive:
// it never blocks, it fails fast on the one conflict it detects (a WRITE
// acquire attempted, while the key is READ-held, by a transaction that is
// not among its holders).
type KeyLock struct {
	mu      sync.Mutex
	mode    LockMode
	holders map[int64]struct{}
}

func newKeyLock() *KeyLock {
	return &KeyLock{holders: make(map[int64]struct{})}
}

// acquire grants mode to tid, or fails with ErrLockUpgradeDenied.
//
// READ: tid is added to holders unconditionally; if the lock was unheld it
// becomes READ. A transaction that already holds WRITE keeps it — self is
// always compatible with self.
//
// WRITE: if the lock is currently READ-held by some other transaction (tid
// is not among holders), the upgrade is denied. Otherwise the lock becomes
// WRITE and tid is added to holders. Note this permits two different
// transactions to both register as WRITE holders if they each reach this
// acquire while the lock is already WRITE — the rule matches spec, stricter
// exclusion was deliberately not added.
func (l *KeyLock) acquire(mode LockMode, tid int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch mode {
	case LockRead:
		l.holders[tid] = struct{}{}
		if l.mode == LockNone {
			l.mode = LockRead
		}
	case LockWrite:
		if _, held := l.holders[tid]; l.mode == LockRead && !held {
			return ErrLockUpgradeDenied
		}
		l.mode = LockWrite
		l.holders[tid] = struct{}{}
	}
	return nil
}

// release discards tid from holders. Idempotent: releasing a tid that never
// held the lock, or releasing twice, is a no-op.
func (l *KeyLock) release(tid int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.holders, tid)
	if len(l.holders) == 0 {
		l.mode = LockNone
	}
}

// LockTable is a lazily allocated key -> KeyLock registry. Entries are never
// evicted during the process lifetime; the table is bounded by the active
// key set, not by any capacity policy.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]*KeyLock
}

func newLockTable() *LockTable {
	return &LockTable{locks: make(map[string]*KeyLock)}
}

// acquire looks up (creating if absent) the KeyLock for k and delegates to
// it. Callers must already hold the table's owning manager mutex, matching
// the teacher and the original source's single coarse-grained lock around
// lock-table mutation.
func (t *LockTable) acquire(k string, mode LockMode, tid int64) error {
	lk, ok := t.locks[k]
	if !ok {
		lk = newKeyLock()
		t.locks[k] = lk
	}
	return lk.acquire(mode, tid)
}

// releaseAll releases tid from every lock in the table. Locks tid never held
// are unaffected because release is a set-discard.
func (t *LockTable) releaseAll(tid int64) {
	for _, lk := range t.locks {
		lk.release(tid)
	}
}
