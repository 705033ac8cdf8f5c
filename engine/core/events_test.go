package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listener struct{ name string }

func newEventSystem(t *testing.T, queued int) *EventSystem {
	t.Helper()
	es, err := NewEventSystem(&EventSystemConfig{MaxQueuedEvents: queued})
	require.NoError(t, err)
	return es
}

func TestNewEventSystemRejectsZeroQueue(t *testing.T) {
	_, err := NewEventSystem(&EventSystemConfig{})
	assert.Error(t, err)
}

func TestEventRegisterRejectsDuplicateListener(t *testing.T) {
	es := newEventSystem(t, 4)
	l := &listener{"a"}
	cb := func(EventContext) bool { return false }

	assert.True(t, es.Register(EVENT_CODE_FRACTAL_REGENERATE, l, cb))
	assert.False(t, es.Register(EVENT_CODE_FRACTAL_REGENERATE, l, cb))
	assert.True(t, es.Register(EVENT_CODE_SCENE_CHANGED, l, cb))
	assert.False(t, es.Register(EVENT_CODE_SCENE_CHANGED, &listener{"b"}, nil))
}

func TestEventFireStopsAtFirstHandler(t *testing.T) {
	es := newEventSystem(t, 4)
	var calls []string
	es.Register(EVENT_CODE_FRACTAL_REGENERATE, &listener{"first"}, func(EventContext) bool {
		calls = append(calls, "first")
		return true
	})
	es.Register(EVENT_CODE_FRACTAL_REGENERATE, &listener{"second"}, func(EventContext) bool {
		calls = append(calls, "second")
		return false
	})

	assert.True(t, es.Fire(EventContext{Type: EVENT_CODE_FRACTAL_REGENERATE}))
	assert.Equal(t, []string{"first"}, calls)
	assert.False(t, es.Fire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))
}

func TestEventUnregister(t *testing.T) {
	es := newEventSystem(t, 4)
	l := &listener{"a"}
	fired := 0
	es.Register(EVENT_CODE_FRACTAL_REGENERATE, l, func(EventContext) bool {
		fired++
		return true
	})

	assert.True(t, es.Unregister(EVENT_CODE_FRACTAL_REGENERATE, l))
	assert.False(t, es.Unregister(EVENT_CODE_FRACTAL_REGENERATE, l))
	es.Fire(EventContext{Type: EVENT_CODE_FRACTAL_REGENERATE})
	assert.Zero(t, fired)
}

func TestEventPostIsDeliveredOnDispatch(t *testing.T) {
	es := newEventSystem(t, 2)
	var got []interface{}
	es.Register(EVENT_CODE_SCENE_CHANGED, &listener{"a"}, func(ctx EventContext) bool {
		got = append(got, ctx.Data)
		return true
	})

	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_SCENE_CHANGED, Data: "one.toml"}))
	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_SCENE_CHANGED, Data: "two.toml"}))
	assert.Error(t, es.Post(EventContext{Type: EVENT_CODE_SCENE_CHANGED, Data: "three.toml"}))
	assert.Empty(t, got)

	assert.Equal(t, 2, es.Dispatch())
	assert.Equal(t, []interface{}{"one.toml", "two.toml"}, got)
	assert.Zero(t, es.Dispatch())
}

func TestEventPostFromManyGoroutines(t *testing.T) {
	es := newEventSystem(t, 64)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = es.Post(EventContext{Type: EVENT_CODE_FRACTAL_REGENERATE})
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, es.Dispatch())
}
