package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kind int

const (
	kindA kind = iota
	kindB
)

func TestDispatchOrderAndIsolation(t *testing.T) {
	b := New[kind, string]()
	var got []string
	b.Register(kindA, func(v string) { got = append(got, "a1:"+v) })
	b.Register(kindB, func(v string) { got = append(got, "b1:"+v) })
	b.Register(kindA, func(v string) { got = append(got, "a2:"+v) })

	n := b.Dispatch(kindA, "x")
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a1:x", "a2:x"}, got)

	got = nil
	assert.Equal(t, 1, b.Dispatch(kindB, "y"))
	assert.Equal(t, []string{"b1:y"}, got)
}

func TestDispatchWithoutCallbacks(t *testing.T) {
	b := New[kind, int]()
	assert.Equal(t, 0, b.Dispatch(kindA, 1))
	assert.Equal(t, 0, b.Len(kindA))
}

func TestRegistrationIsIdempotent(t *testing.T) {
	b := New[kind, int]()
	calls := 0
	unregister := b.Register(kindA, func(int) { calls++ })
	b.Register(kindA, func(int) { calls += 10 })
	require.Equal(t, 2, b.Len(kindA))

	unregister()
	unregister()
	assert.Equal(t, 1, b.Len(kindA))

	b.Dispatch(kindA, 0)
	assert.Equal(t, 10, calls)
}

func TestUnregisterDuringDispatch(t *testing.T) {
	b := New[kind, int]()
	var got []string
	var unregisterSecond Registration
	b.Register(kindA, func(int) {
		got = append(got, "first")
		unregisterSecond()
	})
	unregisterSecond = b.Register(kindA, func(int) { got = append(got, "second") })

	b.Dispatch(kindA, 0)
	assert.Equal(t, []string{"first", "second"}, got)

	got = nil
	b.Dispatch(kindA, 0)
	assert.Equal(t, []string{"first"}, got)
}

func TestRegisterDuringDispatchWaitsForNextPass(t *testing.T) {
	b := New[kind, int]()
	late := 0
	b.Register(kindA, func(int) {
		b.Register(kindA, func(int) { late++ })
	})

	b.Dispatch(kindA, 0)
	assert.Equal(t, 0, late)
	b.Dispatch(kindA, 0)
	assert.Equal(t, 1, late)
}

func TestPanicIsRecovered(t *testing.T) {
	b := New[kind, int]()
	var recovered []any
	b.OnPanic(func(k kind, r any) {
		assert.Equal(t, kindA, k)
		recovered = append(recovered, r)
	})

	after := 0
	b.Register(kindA, func(int) { panic("boom") })
	b.Register(kindA, func(int) { after++ })

	assert.NotPanics(t, func() { b.Dispatch(kindA, 0) })
	assert.Equal(t, 1, after)
	assert.Equal(t, []any{"boom"}, recovered)
}

func TestNilCallbackIsIgnored(t *testing.T) {
	b := New[kind, int]()
	unregister := b.Register(kindA, nil)
	assert.Equal(t, 0, b.Len(kindA))
	assert.NotPanics(t, func() { unregister() })
}
