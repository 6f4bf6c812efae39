package syncer

import (
	"sync"
	"testing"
)

func TestInFlight_AcquireRelease(t *testing.T) {
	g := NewInFlight()

	if !g.TryAcquire(1, "item-1") {
		t.Fatal("first acquire should succeed")
	}
	if g.TryAcquire(1, "item-1") {
		t.Error("second acquire on the same slot should fail")
	}
	if !g.TryAcquire(1, "item-2") {
		t.Error("different item should not be blocked")
	}
	if !g.TryAcquire(2, "item-1") {
		t.Error("different user should not be blocked")
	}

	g.Release(1, "item-1")
	if !g.TryAcquire(1, "item-1") {
		t.Error("acquire after release should succeed")
	}
}

func TestInFlight_ConcurrentAcquire(t *testing.T) {
	g := NewInFlight()

	var wg sync.WaitGroup
	wins := make(chan struct{}, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire(1, "item-1") {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("%d goroutines won the slot, want exactly 1", count)
	}
}
