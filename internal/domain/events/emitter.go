// Package events provides subscription primitives for host-side editor
// events. Subscriptions return a Disposable; a Disposer aggregates them so a
// caller can tear down everything it registered with one call.
package events

import "sync"

// Disposable releases a single subscription. Safe to call more than once.
type Disposable func()

// Emitter is a fan-out signal. Emit delivers the payload to every live
// subscriber in registration order.
type Emitter struct {
	mu       sync.Mutex
	seq      int
	handlers map[int]func(any)
	order    []int
}

// NewEmitter creates an empty emitter
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[int]func(any))}
}

// Subscribe registers a handler and returns its disposable
func (e *Emitter) Subscribe(fn func(any)) Disposable {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.seq
	e.seq++
	e.handlers[id] = fn
	e.order = append(e.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.handlers, id)
		})
	}
}

// Emit delivers payload to every live subscriber
func (e *Emitter) Emit(payload any) {
	e.mu.Lock()
	fns := make([]func(any), 0, len(e.handlers))
	for _, id := range e.order {
		if fn, ok := e.handlers[id]; ok {
			fns = append(fns, fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}

// SubscriberCount returns the number of live subscriptions
func (e *Emitter) SubscriberCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}

// Disposer aggregates disposables so registered subscriptions can be torn
// down together. Dispose is idempotent.
type Disposer struct {
	mu       sync.Mutex
	disposed bool
	fns      []Disposable
}

// Add registers a disposable with the aggregate. If the disposer has already
// been disposed the disposable is released immediately.
func (d *Disposer) Add(fn Disposable) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		fn()
		return
	}
	d.fns = append(d.fns, fn)
	d.mu.Unlock()
}

// Len returns the number of registered disposables
func (d *Disposer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fns)
}

// Dispose releases every registered disposable in reverse order
func (d *Disposer) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	fns := d.fns
	d.fns = nil
	d.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
