package event

import "reflect"

// Bus is a double-buffered event bus. Events emitted in tick N are
// dispatched in tick N+1 by EventDispatchSystem, after SwapBuffers.
// Accessed only from the game loop goroutine, no locks.
type Bus struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
	order    []reflect.Type // first-seen order, keeps dispatch deterministic
	seen     map[reflect.Type]bool
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
		seen:     make(map[reflect.Type]bool),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (b *Bus) track(t reflect.Type) {
	if !b.seen[t] {
		b.seen[t] = true
		b.order = append(b.order, t)
	}
}

// Emit queues an event into the back buffer (dispatched next tick).
// A nil bus drops the event so optional wiring stays cheap.
func Emit[T any](b *Bus, ev T) {
	if b == nil {
		return
	}
	t := typeOf[T]()
	b.track(t)
	b.back[t] = append(b.back[t], ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeOf[T]()
	b.track(t)
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// Pending returns the number of events waiting in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
// Types are visited in first-seen order, events in emission order.
func (b *Bus) DispatchAll() int {
	n := 0
	for _, t := range b.order {
		events := b.front[t]
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
			n++
		}
	}
	return n
}
