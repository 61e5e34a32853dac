package replication

import (
	"sync"
	"testing"
)

func TestNameSet_SecondAddOfSameNameLoses(t *testing.T) {
	s := newNameSet()
	if !s.add("foo") {
		t.Fatal("first add should win")
	}
	if s.add("foo") {
		t.Fatal("second add of the same name should lose")
	}
}

func TestNameSet_ConcurrentAddsExactlyOneWinner(t *testing.T) {
	s := newNameSet()
	var wins int32
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.add("contested") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
}
