package accounting

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerLocks_ReleasedKeysAreEvicted(t *testing.T) {
	locks := newOwnerLocks()

	for i := 0; i < 100; i++ {
		unlock := locks.lock(fmt.Sprintf("attendance:u%d", i))
		unlock()
	}

	assert.Equal(t, 0, locks.size())
}

func TestOwnerLocks_SerializesSameKey(t *testing.T) {
	locks := newOwnerLocks()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				unlock := locks.lock("attendance:u1")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20*500, counter)
	assert.Equal(t, 0, locks.size())
}

func TestOwnerLocks_HeldKeyStaysUntilLastRelease(t *testing.T) {
	locks := newOwnerLocks()

	unlock := locks.lock("attendance:u1")
	assert.Equal(t, 1, locks.size())

	other := locks.lock("attendance:u2")
	assert.Equal(t, 2, locks.size())
	other()
	assert.Equal(t, 1, locks.size())

	unlock()
	assert.Equal(t, 0, locks.size())
}
