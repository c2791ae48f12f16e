package attendance

import (
	"sync"
	"testing"
)

func TestKeyedLock_SerializesSameKey(t *testing.T) {
	t.Parallel()

	locks := newKeyedLock()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("B1|2025-03-10")
			current := counter
			counter = current + 1
			unlock()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("expected 50 increments, got %d", counter)
	}
	if n := locks.size(); n != 0 {
		t.Fatalf("expected lock entries to be released, got %d", n)
	}
}

func TestKeyedLock_IndependentKeys(t *testing.T) {
	t.Parallel()

	locks := newKeyedLock()
	unlockA := locks.Lock("A")
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("B")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}
