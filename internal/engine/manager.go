package engine

import (
	"log/slog"
	"sync"
)

// TransactionManager allocates transaction ids, tracks live transactions,
// brokers lock acquisition, and drives commit/rollback. A single mutex
// serializes every operation: lock acquisition, buffer mutation, and shard
// mutation all happen under it, matching the original source's one
// coarse-grained RLock around the whole manager.
type TransactionManager struct {
	mu     sync.Mutex
	nextID int64
	live   map[int64]*Transaction
	// order tracks insertion order of live transactions so
	// getTransactionIDForKey has a stable, documented tie-break (first
	// begun, first matched) instead of Go's randomized map iteration.
	order []int64
	locks *LockTable
}

// NewTransactionManager returns a manager with no live transactions.
func NewTransactionManager() *TransactionManager {
	return &TransactionManager{
		live:  make(map[int64]*Transaction),
		locks: newLockTable(),
	}
}

// Begin allocates the next transaction id, strictly greater than every id
// returned before it in this process, and registers a fresh Transaction.
func (m *TransactionManager) Begin() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.live[id] = newTransaction(id)
	m.order = append(m.order, id)
	slog.Debug("transaction begun", "tid", id)
	return id
}

// acquire takes the table's lock for k in mode on behalf of tid. Must be
// called with m.mu held.
func (m *TransactionManager) acquire(k string, mode LockMode, tid int64) error {
	return m.locks.acquire(k, mode, tid)
}

// transaction returns the live transaction for tid, or an
// UnknownTransactionError. Must be called with m.mu held.
func (m *TransactionManager) transaction(tid int64) (*Transaction, error) {
	tx, ok := m.live[tid]
	if !ok {
		return nil, &UnknownTransactionError{TxnID: tid}
	}
	return tx, nil
}

// getTransactionIDForKey returns the id of the first live transaction, in
// begin order, whose buffer touches k. Used only by ShowAll. If multiple
// live transactions touched k, the first one begun wins — a documented,
// stable tie-break, not a guarantee about commit order.
func (m *TransactionManager) getTransactionIDForKey(k string) (int64, bool) {
	for _, id := range m.order {
		tx, ok := m.live[id]
		if ok && tx.touches(k) {
			return id, true
		}
	}
	return 0, false
}

// commit drains tid's buffer into router, releases its locks, and removes
// it from live. A no-op if tid is not live.
func (m *TransactionManager) commit(tid int64, router *ShardRouter) {
	tx, ok := m.live[tid]
	if !ok {
		return
	}
	tx.commit(router)
	m.releaseAndForget(tid)
	slog.Debug("transaction committed", "tid", tid)
}

// rollback restores any shard state this transaction's undo log captured,
// discards its buffer, releases its locks, and removes it from live. A
// no-op if tid is not live. Writes never reach shards before commit, so
// undoToShards changes shard state only for a key another transaction
// committed after this one first touched it; see
// Transaction.undoToShards's doc comment.
func (m *TransactionManager) rollback(tid int64, router *ShardRouter) {
	tx, ok := m.live[tid]
	if !ok {
		return
	}
	tx.undoToShards(router)
	tx.rollbackBuffer()
	m.releaseAndForget(tid)
	slog.Debug("transaction rolled back", "tid", tid)
}

// commitAll commits every currently live transaction. Not atomic across
// transactions: each commits independently, in begin order, under the same
// manager mutex a caller already holds. A later transaction's commit does
// not undo an earlier one's (open question, see DESIGN.md).
func (m *TransactionManager) commitAll(router *ShardRouter) {
	ids := make([]int64, len(m.order))
	copy(ids, m.order)
	for _, id := range ids {
		m.commit(id, router)
	}
}

// releaseAndForget releases every lock tid holds and removes it from live
// and from the begin-order slice. Must be called with m.mu held.
func (m *TransactionManager) releaseAndForget(tid int64) {
	m.locks.releaseAll(tid)
	delete(m.live, tid)
	for i, id := range m.order {
		if id == tid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Lock exposes the manager's mutex to the Engine façade, which holds it for
// the duration of each public operation to serialize buffer mutation and
// lock acquisition, matching the original source's single-lock discipline.
func (m *TransactionManager) Lock()   { m.mu.Lock() }
func (m *TransactionManager) Unlock() { m.mu.Unlock() }
