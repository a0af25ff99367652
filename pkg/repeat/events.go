package repeat

import (
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/control"
)

// EventType distinguishes row lifecycle notifications.
type EventType string

const (
	EventRowAdded   EventType = "row_added"
	EventRowRemoved EventType = "row_removed"
)

// Event describes a row that was added to or removed from a repeated group.
type Event struct {
	Type EventType
	// Field is the name of the groupArray descriptor.
	Field string
	// Path is the dotted control path of the array inside the form.
	Path  string
	Index int
	Group *control.Group
	// Row is the materialised row value (a row facade when produced by the
	// form builder).
	Row Row
}

// Handler observes row events.
type Handler func(Event)

// Bus fans out row events to subscribers in subscription order.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[EventType][]subscription
}

type subscription struct {
	id int
	fn Handler
}

// NewBus returns an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventType][]subscription)}
}

// OnAdded subscribes fn to row additions and returns an unsubscribe func.
func (b *Bus) OnAdded(fn Handler) func() {
	return b.subscribe(EventRowAdded, fn)
}

// OnRemoved subscribes fn to row removals and returns an unsubscribe func.
func (b *Bus) OnRemoved(fn Handler) func() {
	return b.subscribe(EventRowRemoved, fn)
}

func (b *Bus) subscribe(kind EventType, fn Handler) func() {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[EventType][]subscription)
	}
	b.next++
	id := b.next
	b.handlers[kind] = append(b.handlers[kind], subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(kind, id) })
	}
}

func (b *Bus) unsubscribe(kind EventType, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[kind]
	for idx, sub := range subs {
		if sub.id == id {
			b.handlers[kind] = append(subs[:idx:idx], subs[idx+1:]...)
			return
		}
	}
}

// Publish delivers evt to the subscribers of its type. Handlers run outside
// the bus lock so they may subscribe, unsubscribe or mutate rows.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[evt.Type]...)
	b.mu.RUnlock()
	for _, sub := range subs {
		sub.fn(evt)
	}
}
