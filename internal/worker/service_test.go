package worker

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSweepLoopWaitsOutSlowRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const interval = 40 * time.Millisecond
	const runCost = 40 * time.Millisecond

	var mu sync.Mutex
	var starts []time.Time

	done := make(chan struct{})
	go func() {
		runSweepLoop(ctx, interval, func() {
			mu.Lock()
			starts = append(starts, time.Now())
			count := len(starts)
			mu.Unlock()

			time.Sleep(runCost)
			if count >= 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweep loop did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(starts) < 3 {
		t.Fatalf("sweep should keep running, got %d runs", len(starts))
	}
	// 间隔从上一次执行结束后起算：相邻两次开始至少相隔 执行耗时+间隔
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < runCost+interval-5*time.Millisecond {
			t.Fatalf("run %d started %v after previous, want at least %v", i, gap, runCost+interval)
		}
	}
}
