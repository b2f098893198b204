package refresh_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/stretchr/testify/assert"
)

func TestSignal_TriggerNotifiesEachSubscriberOnce(t *testing.T) {
	s := refresh.NewSignal()

	var a, b int
	s.Subscribe(func() { a++ })
	s.Subscribe(func() { b++ })

	s.Trigger()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	s.Trigger()
	s.Trigger()
	assert.Equal(t, 3, a)
	assert.Equal(t, 3, b)
}

func TestSignal_NoReplayForLateSubscribers(t *testing.T) {
	s := refresh.NewSignal()

	// Nobody listening: the trigger is lost.
	s.Trigger()

	var calls int
	s.Subscribe(func() { calls++ })
	assert.Equal(t, 0, calls, "late subscriber must not see past triggers")

	s.Trigger()
	assert.Equal(t, 1, calls)
}

func TestSignal_Unsubscribe(t *testing.T) {
	s := refresh.NewSignal()

	var calls int
	unsubscribe := s.Subscribe(func() { calls++ })
	assert.Equal(t, 1, s.Len())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, s.Len())

	s.Trigger()
	assert.Equal(t, 0, calls)
}

func TestSignal_FanOutIsSynchronousAndOrdered(t *testing.T) {
	s := refresh.NewSignal()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		s.Subscribe(func() { order = append(order, i) })
	}

	s.Trigger()
	// Trigger has returned, so every callback already ran.
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestSignal_UnsubscribeDuringFanOut(t *testing.T) {
	s := refresh.NewSignal()

	var first, second int
	var unsubscribeSecond func()
	s.Subscribe(func() {
		first++
		unsubscribeSecond()
	})
	unsubscribeSecond = s.Subscribe(func() { second++ })

	s.Trigger()
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second, "removal applies to the next trigger")

	s.Trigger()
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second)
}

func TestSignal_ConcurrentTriggers(t *testing.T) {
	s := refresh.NewSignal()

	var calls atomic.Int64
	s.Subscribe(func() { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Trigger()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), calls.Load())
}
