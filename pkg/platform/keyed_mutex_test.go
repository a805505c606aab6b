package platform

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 20

	counter := 0

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock := km.Lock("conv-1")
			defer unlock()

			counter++
		}()
	}

	wg.Wait()
	assert.Equal(t, workers, counter)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	unlockA := km.Lock("conv-a")

	done := make(chan struct{})

	go func() {
		unlockB := km.Lock("conv-b")
		unlockB()
		close(done)
	}()

	<-done // conv-b must not wait on conv-a
	unlockA()
}

func TestKeyedMutex_DropsReleasedEntries(t *testing.T) {
	km := NewKeyedMutex()

	unlock := km.Lock("conv-1")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}
