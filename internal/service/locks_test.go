package service_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"realty-booking-engine/internal/service"
)

func TestLockTable_SerializesSameKey(t *testing.T) {
	table := service.NewLockTable()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := table.Lock("booking:1:5")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestLockTable_IndependentKeys(t *testing.T) {
	table := service.NewLockTable()

	unlockA := table.Lock("payment:1")
	done := make(chan struct{})
	go func() {
		unlockB := table.Lock("payment:2")
		unlockB()
		close(done)
	}()

	// A held lock on one key must not stall a different key.
	<-done
	unlockA()
}

func TestLockTable_ReusableAfterRelease(t *testing.T) {
	table := service.NewLockTable()

	unlock := table.Lock("refund-request:9")
	unlock()
	unlock = table.Lock("refund-request:9")
	unlock()
}
