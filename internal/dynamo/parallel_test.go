package dynamo

import (
	"sync/atomic"
	"testing"
)

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1001} {
		seen := make([]int32, n)
		ParallelFor(n, 3, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}

func TestParallelForSmallRunsInline(t *testing.T) {
	calls := 0
	ParallelFor(5, 10, func(start, end int) {
		calls++
		if start != 0 || end != 5 {
			t.Errorf("expected [0,5), got [%d,%d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected one call, got %d", calls)
	}
}
