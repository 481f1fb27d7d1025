package gasprice

import (
	"math/big"
	"testing"
)

func TestRollingQueueInsertCoalescesWithinSecond(t *testing.T) {
	q := newRollingQueue(10)

	q.Insert(big.NewInt(10), 0)
	q.Insert(big.NewInt(8), 500)
	q.Insert(big.NewInt(12), 1500)

	if got := q.Depth(); got != 2 {
		t.Fatalf("Depth() = %d, want 2", got)
	}

	tail := q.entries[len(q.entries)-1]
	if tail.price.Cmp(big.NewInt(12)) != 0 || tail.tsMs != 1500 {
		t.Errorf("tail = %+v, want price 12 at ts 1500", tail)
	}

	first := q.entries[0]
	if first.price.Cmp(big.NewInt(8)) != 0 || first.tsMs != 500 {
		t.Errorf("first entry = %+v, want price 8 at ts 500", first)
	}
}

// Record (10 gwei, t=0), (8 gwei, t=500), (12 gwei, t=1500). The tracked
// minimum is 8 gwei.
func TestRollingQueueMinimumAcrossBuckets(t *testing.T) {
	q := newRollingQueue(10)
	q.Insert(big.NewInt(10), 0)
	q.Insert(big.NewInt(8), 500)
	q.Insert(big.NewInt(12), 1500)

	min, ok := q.Min()
	if !ok {
		t.Fatal("Min() reported empty queue")
	}
	if min.Cmp(big.NewInt(8)) != 0 {
		t.Errorf("Min() = %s, want 8", min)
	}
}

func TestRollingQueueInsertHigherWithinSameSecondIsNoop(t *testing.T) {
	q := newRollingQueue(10)
	q.Insert(big.NewInt(10), 0)
	q.Insert(big.NewInt(15), 300)

	if got := q.Depth(); got != 1 {
		t.Fatalf("Depth() = %d, want 1", got)
	}
	tail := q.entries[0]
	if tail.price.Cmp(big.NewInt(10)) != 0 {
		t.Errorf("tail price = %s, want unchanged 10", tail.price)
	}
}

func TestRollingQueueEvictsOverCapacity(t *testing.T) {
	q := newRollingQueue(3)
	for i := int64(0); i < 5; i++ {
		q.Insert(big.NewInt(100+i), i*1000)
	}

	if got := q.Depth(); got != 3 {
		t.Fatalf("Depth() = %d, want 3", got)
	}

	min, ok := q.Min()
	if !ok {
		t.Fatal("Min() reported empty queue")
	}
	// entries for i=2,3,4 remain: prices 102,103,104.
	if min.Cmp(big.NewInt(102)) != 0 {
		t.Errorf("Min() = %s, want 102 after eviction", min)
	}
}

func TestRollingQueueMinOnEmpty(t *testing.T) {
	q := newRollingQueue(10)
	if _, ok := q.Min(); ok {
		t.Error("Min() on empty queue should report not-ok")
	}
}
