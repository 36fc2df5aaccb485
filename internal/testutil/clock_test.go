package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestStepClock_AdvancesByStep(t *testing.T) {
	clock := NewStepClock(epoch, 10*time.Millisecond)

	first := clock.Now()
	second := clock.Now()

	assert.Equal(t, epoch, first)
	assert.Equal(t, 10*time.Millisecond, second.Sub(first))
	assert.Equal(t, epoch.Add(20*time.Millisecond), clock.Peek())
}

func TestStepClock_PeekDoesNotAdvance(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)

	assert.Equal(t, epoch, clock.Peek())
	assert.Equal(t, epoch, clock.Peek())
}

func TestStepClock_ThreadSafe(t *testing.T) {
	clock := NewStepClock(epoch, time.Millisecond)
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				clock.Now()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, epoch.Add(numGoroutines*callsPerGoroutine*time.Millisecond), clock.Peek())
}
