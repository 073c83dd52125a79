package engine

import (
	"errors"
	"sync"
	"testing"
)

func TestPutGetRoundtrip(t *testing.T) {
	e := New(10, nil)

	t1 := e.Begin()
	if err := e.Put("k1", "v1", t1); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := e.Commit(t1); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	t2 := e.Begin()
	v, ok, err := e.Get("k1", t2)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || v != "v1" {
		t.Fatalf("expected v1, got %q (ok=%v)", v, ok)
	}
}

func TestDeleteAfterCommit(t *testing.T) {
	e := New(10, nil)

	t1 := e.Begin()
	mustPut(t, e, "k1", "v1", t1)
	mustCommit(t, e, t1)

	t3 := e.Begin()
	if err := e.Delete("k1", t3); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	mustCommit(t, e, t3)

	t4 := e.Begin()
	_, ok, err := e.Get("k1", t4)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("expected key to be gone after delete+commit")
	}
}

func TestRollbackIsolation(t *testing.T) {
	e := New(10, nil)

	t1 := e.Begin()
	mustPut(t, e, "a", "1", t1)
	mustCommit(t, e, t1)

	t2 := e.Begin()
	mustPut(t, e, "a", "2", t2)
	v, ok, err := e.Get("a", t2)
	if err != nil || !ok || v != "2" {
		t.Fatalf("expected read-your-writes to see 2, got %q ok=%v err=%v", v, ok, err)
	}
	if err := e.Rollback(t2); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	t3 := e.Begin()
	v, ok, err = e.Get("a", t3)
	if err != nil || !ok || v != "1" {
		t.Fatalf("expected rollback to restore 1, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestLockUpgradeDenied(t *testing.T) {
	e := New(10, nil)

	t1 := e.Begin()
	t2 := e.Begin()

	if _, _, err := e.Get("k", t1); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	err := e.Put("k", "x", t2)
	if !errors.Is(err, ErrLockUpgradeDenied) {
		t.Fatalf("expected ErrLockUpgradeDenied, got %v", err)
	}
}

func TestLockUpgradeAllowedForHolder(t *testing.T) {
	e := New(10, nil)

	t1 := e.Begin()
	if _, _, err := e.Get("k", t1); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := e.Put("k", "x", t1); err != nil {
		t.Fatalf("same-holder upgrade should succeed, got %v", err)
	}
}

func TestUnknownTransaction(t *testing.T) {
	e := New(10, nil)

	err := e.Put("k", "v", 999)
	var utErr *UnknownTransactionError
	if !errors.As(err, &utErr) {
		t.Fatalf("expected *UnknownTransactionError, got %v", err)
	}
	if err.Error() != "Invalid transaction ID 999" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestTombstoneThenPutClearsIt(t *testing.T) {
	e := New(10, nil)

	t1 := e.Begin()
	mustPut(t, e, "k", "v1", t1)
	mustCommit(t, e, t1)

	t2 := e.Begin()
	if err := e.Delete("k", t2); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := e.Get("k", t2); ok {
		t.Fatalf("expected tombstoned key to read as absent within the same txn")
	}
	mustPut(t, e, "k", "v2", t2)
	v, ok, _ := e.Get("k", t2)
	if !ok || v != "v2" {
		t.Fatalf("expected put after delete to resurrect the key, got %q ok=%v", v, ok)
	}
}

func TestCommitAllNotAtomicButCompletesEach(t *testing.T) {
	e := New(10, nil)

	t1 := e.Begin()
	mustPut(t, e, "x", "1", t1)
	t2 := e.Begin()
	mustPut(t, e, "y", "2", t2)

	e.CommitAll()

	t3 := e.Begin()
	v, ok, _ := e.Get("x", t3)
	if !ok || v != "1" {
		t.Fatalf("expected x=1 after commit_all, got %q ok=%v", v, ok)
	}
	v, ok, _ = e.Get("y", t3)
	if !ok || v != "2" {
		t.Fatalf("expected y=2 after commit_all, got %q ok=%v", v, ok)
	}
}

func TestShowAllBestEffortAnnotatesLiveTransaction(t *testing.T) {
	e := New(10, nil)

	t1 := e.Begin()
	mustPut(t, e, "a", "1", t1)
	mustCommit(t, e, t1)

	t2 := e.Begin()
	mustPut(t, e, "a", "2", t2)

	rows := e.ShowAll()
	row, ok := rows["a"]
	if !ok {
		t.Fatalf("expected key 'a' in ShowAll result")
	}
	if row.Value != "1" {
		t.Fatalf("expected committed value '1' (buffered write is not yet committed), got %q", row.Value)
	}
	if row.TxnID == nil || *row.TxnID != t2 {
		t.Fatalf("expected ShowAll to annotate the live transaction touching 'a'")
	}
}

func TestBeginIDsMonotonic(t *testing.T) {
	e := New(10, nil)
	prev := int64(0)
	for i := 0; i < 100; i++ {
		id := e.Begin()
		if id <= prev {
			t.Fatalf("expected strictly increasing ids, got %d after %d", id, prev)
		}
		prev = id
	}
}

func TestConcurrentDisjointKeysDoNotRace(t *testing.T) {
	e := New(10, nil)

	var wg sync.WaitGroup
	const n = 50
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			tid := e.Begin()
			k := keyFor(i)
			if err := e.Put(k, "v", tid); err != nil {
				t.Errorf("put failed: %v", err)
				return
			}
			if err := e.Commit(tid); err != nil {
				t.Errorf("commit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	rows := e.ShowAll()
	if len(rows) != n {
		t.Fatalf("expected %d committed keys, got %d", n, len(rows))
	}
}

func keyFor(i int) string {
	return string(rune('a'+i%26)) + string(rune('0'+i/26))
}

func mustPut(t *testing.T, e *Engine, k, v string, tid int64) {
	t.Helper()
	if err := e.Put(k, v, tid); err != nil {
		t.Fatalf("put(%q,%q,%d) failed: %v", k, v, tid, err)
	}
}

func mustCommit(t *testing.T, e *Engine, tid int64) {
	t.Helper()
	if err := e.Commit(tid); err != nil {
		t.Fatalf("commit(%d) failed: %v", tid, err)
	}
}
