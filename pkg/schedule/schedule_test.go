package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualRunsInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.AfterFunc(3*time.Second, func() { got = append(got, "c") })
	m.AfterFunc(time.Second, func() { got = append(got, "a") })
	m.AfterFunc(2*time.Second, func() { got = append(got, "b") })

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 2, m.Pending())

	m.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 3500*time.Millisecond, m.Elapsed())
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	m.Advance(time.Minute)
	assert.False(t, fired)
	assert.Zero(t, m.Pending())
}

func TestManualNestedScheduleWithinWindow(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	m.AfterFunc(time.Second, func() {
		at = append(at, m.Elapsed())
		m.AfterFunc(time.Second, func() { at = append(at, m.Elapsed()) })
	})

	m.Advance(5 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, at)
}

func TestManualDelays(t *testing.T) {
	m := NewManual()
	m.AfterFunc(4*time.Second, func() {})
	m.AfterFunc(2*time.Second, func() {})
	m.Advance(time.Second)

	assert.Equal(t, []time.Duration{time.Second, 3 * time.Second}, m.Delays())
}

func TestSerialReentrantTasksRunAfterCurrent(t *testing.T) {
	var s Serial
	var got []int
	s.Do(func() {
		got = append(got, 1)
		s.Do(func() { got = append(got, 3) })
		got = append(got, 2)
	})
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestSerialNoConcurrentTasks(t *testing.T) {
	var (
		s       Serial
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(func() {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()
				time.Sleep(100 * time.Microsecond)
				mu.Lock()
				active--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestSerialSchedulerStopAfterFireBeforeRun(t *testing.T) {
	var s Serial
	m := NewManual()
	sched := s.Scheduler(m)

	fired := false
	var timer Timer
	s.Do(func() {
		timer = sched.AfterFunc(time.Second, func() { fired = true })
	})

	s.Do(func() {
		// firing while a task runs queues the callback behind it
		m.Advance(time.Second)
		assert.True(t, timer.Stop())
	})
	assert.False(t, fired)
}

func TestWallScheduler(t *testing.T) {
	done := make(chan struct{})
	Wall().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for wall timer")
	}
}
