package engine

import "testing"

func TestGetTransactionIDForKeyStableTieBreak(t *testing.T) {
	m := NewTransactionManager()
	router := NewShardRouter(4)

	t1 := m.Begin()
	t2 := m.Begin()

	m.Lock()
	tx1, _ := m.transaction(t1)
	tx1.put("shared", "from-t1", "", false)

	tx2, _ := m.transaction(t2)
	tx2.put("shared", "from-t2", "", false)

	id, ok := m.getTransactionIDForKey("shared")
	m.Unlock()

	if !ok {
		t.Fatalf("expected a transaction id for 'shared'")
	}
	if id != t1 {
		t.Fatalf("expected the first transaction begun (%d) to win the tie-break, got %d", t1, id)
	}
	_ = router
}

func TestManagerCommitRemovesFromLive(t *testing.T) {
	m := NewTransactionManager()
	router := NewShardRouter(4)

	tid := m.Begin()

	m.Lock()
	tx, _ := m.transaction(tid)
	tx.put("k", "v", "", false)
	m.commit(tid, router)
	_, err := m.transaction(tid)
	m.Unlock()

	if err == nil {
		t.Fatalf("expected transaction to be gone from live after commit")
	}
	if v, ok := router.shardOf("k").read("k"); !ok || v != "v" {
		t.Fatalf("expected committed value to land in the owning shard, got %q ok=%v", v, ok)
	}
}

func TestManagerRollbackUnknownIsNoOp(t *testing.T) {
	m := NewTransactionManager()
	router := NewShardRouter(4)

	m.Lock()
	m.rollback(999, router) // must not panic
	m.commit(999, router)   // must not panic
	m.Unlock()
}
