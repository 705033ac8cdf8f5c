package core

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-fractals/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// A watched scene file was created or written.
	/* Context usage:
	 * Data: string, the scene file path
	 */
	EVENT_CODE_SCENE_CHANGED SystemEventCode = 0x10

	// The fractal must be generated again on the next tick.
	EVENT_CODE_FRACTAL_REGENERATE SystemEventCode = 0x11

	// A generation pass completed.
	/* Context usage:
	 * Data: int, the number of emitted instances
	 */
	EVENT_CODE_FRACTAL_GENERATED SystemEventCode = 0x12

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	Type   SystemEventCode
	Sender interface{}
	Data   interface{}
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type EventSystemConfig struct {
	// Maximum number of events that can wait between two dispatches.
	MaxQueuedEvents int
}

// EventSystem routes events to registered listeners. Fire dispatches
// immediately on the caller's goroutine; Post queues the event until the
// next Dispatch, which the engine calls once per tick.
type EventSystem struct {
	mu         sync.Mutex
	registered map[SystemEventCode][]*registeredEvent
	queue      *containers.RingQueue[EventContext]
}

func NewEventSystem(config *EventSystemConfig) (*EventSystem, error) {
	if config.MaxQueuedEvents <= 0 {
		err := fmt.Errorf("func NewEventSystem - config.MaxQueuedEvents must be > 0")
		LogError(err.Error())
		return nil, err
	}
	return &EventSystem{
		registered: make(map[SystemEventCode][]*registeredEvent),
		queue:      containers.NewRingQueue[EventContext](config.MaxQueuedEvents),
	}, nil
}

func (es *EventSystem) Shutdown() error {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.registered = make(map[SystemEventCode][]*registeredEvent)
	for !es.queue.IsEmpty() {
		_, _ = es.queue.Dequeue()
	}
	return nil
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listeners will not be registered again and will cause this to return false.
 */
func (es *EventSystem) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	for _, e := range es.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	es.registered[code] = append(es.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// Unregister returns false if the listener was never registered for code.
func (es *EventSystem) Unregister(code SystemEventCode, listener interface{}) bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	events := es.registered[code]
	for i, e := range events {
		if e.listener == listener {
			es.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 */
func (es *EventSystem) Fire(context EventContext) bool {
	es.mu.Lock()
	events := make([]*registeredEvent, len(es.registered[context.Type]))
	copy(events, es.registered[context.Type])
	es.mu.Unlock()

	for _, e := range events {
		if e.callback(context) {
			return true
		}
	}
	return false
}

// Post queues an event for the next Dispatch. Safe to call from any goroutine.
func (es *EventSystem) Post(context EventContext) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	if err := es.queue.Enqueue(context); err != nil {
		return fmt.Errorf("failed to post event %d: %w", context.Type, err)
	}
	return nil
}

// Dispatch fires every queued event in order and returns how many were fired.
func (es *EventSystem) Dispatch() int {
	es.mu.Lock()
	pending := make([]EventContext, 0, es.queue.Len())
	for !es.queue.IsEmpty() {
		ctx, err := es.queue.Dequeue()
		if err != nil {
			break
		}
		pending = append(pending, ctx)
	}
	es.mu.Unlock()

	for _, ctx := range pending {
		es.Fire(ctx)
	}
	return len(pending)
}
