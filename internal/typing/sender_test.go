package typing

import (
	"testing"
	"time"

	"livechat/pkg/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signal struct {
	topic  string
	active bool
	at     time.Duration
}

func newTestSender(t *testing.T) (*Sender, *schedule.Manual, *[]signal) {
	t.Helper()
	clock := schedule.NewManual()
	var got []signal
	s := NewSender(clock, DefaultIdle, func(topic string, active bool) {
		got = append(got, signal{topic: topic, active: active, at: clock.Elapsed()})
	})
	return s, clock, &got
}

func TestSenderDebouncesStart(t *testing.T) {
	s, clock, got := newTestSender(t)

	s.Keystroke("1")
	clock.Advance(500 * time.Millisecond)
	s.Keystroke("1")
	clock.Advance(1500 * time.Millisecond)
	s.Keystroke("1")

	require.Equal(t, []signal{{topic: "1", active: true}}, *got)
	assert.True(t, s.Active("1"))
	assert.Equal(t, 1, clock.Pending())
}

func TestSenderIdleWindowEmitsStop(t *testing.T) {
	s, clock, got := newTestSender(t)

	s.Keystroke("1")
	clock.Advance(time.Second)
	s.Keystroke("1")
	clock.Advance(1999 * time.Millisecond)
	assert.Len(t, *got, 1)

	clock.Advance(time.Millisecond)
	assert.Equal(t, []signal{
		{topic: "1", active: true},
		{topic: "1", active: false, at: 3 * time.Second},
	}, *got)
	assert.False(t, s.Active("1"))

	s.Keystroke("1")
	assert.Equal(t, signal{topic: "1", active: true, at: 3 * time.Second}, (*got)[2])
}

func TestSenderExplicitStop(t *testing.T) {
	s, clock, got := newTestSender(t)

	s.Keystroke("1")
	s.Stop("1")
	s.Stop("1")
	clock.Advance(10 * time.Second)

	assert.Equal(t, []signal{
		{topic: "1", active: true},
		{topic: "1", active: false},
	}, *got)
	assert.Equal(t, 0, clock.Pending())
}

func TestSenderTopicsAreIndependent(t *testing.T) {
	s, clock, got := newTestSender(t)

	s.Keystroke("1")
	clock.Advance(time.Second)
	s.Keystroke("2")
	clock.Advance(time.Second)

	assert.Equal(t, []signal{
		{topic: "1", active: true},
		{topic: "2", active: true, at: time.Second},
		{topic: "1", active: false, at: 2 * time.Second},
	}, *got)
	assert.True(t, s.Active("2"))
}

func TestSenderResetIsSilent(t *testing.T) {
	s, clock, got := newTestSender(t)

	s.Keystroke("1")
	s.Keystroke("2")
	s.Reset()
	clock.Advance(10 * time.Second)

	assert.Len(t, *got, 2)
	assert.False(t, s.Active("1"))
	assert.Equal(t, 0, clock.Pending())
}

func TestSenderIgnoresEmptyTopic(t *testing.T) {
	s, clock, got := newTestSender(t)
	s.Keystroke("")
	assert.Empty(t, *got)
	assert.Equal(t, 0, clock.Pending())
}
