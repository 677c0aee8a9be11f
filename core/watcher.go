// Package core implements tools shared by the store components.
package core

import (
	"reflect"
	"sync"
)

// Observer is the interface to implement to watch events. An observer whose
// dynamic type is not comparable is always added and can never be removed.
type Observer interface {
	NotifyCallback(event interface{})
}

// Observable provides primitives to add and remove observers and to notify
// them of new events.
type Observable interface {
	// Add adds the observer to the list of observers that will be notified of
	// new events. Adding the same observer twice has no effect.
	Add(observer Observer)

	// Remove removes the observer from the list thus stopping it from receiving
	// new events.
	Remove(observer Observer)

	// Notify notifies the observers of a new event.
	Notify(event interface{})
}

// Watcher is an implementation of the Observable interface that notifies the
// observers in the order they were added.
//
// - implements core.Observable
type Watcher struct {
	sync.Mutex

	observers []Observer
}

// NewWatcher creates a new empty watcher.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Add implements core.Observable.
func (w *Watcher) Add(observer Observer) {
	w.Lock()
	defer w.Unlock()

	if isComparable(observer) {
		for _, o := range w.observers {
			if o == observer {
				return
			}
		}
	}

	w.observers = append(w.observers, observer)
}

// Remove implements core.Observable.
func (w *Watcher) Remove(observer Observer) {
	if !isComparable(observer) {
		return
	}

	w.Lock()
	defer w.Unlock()

	for i, o := range w.observers {
		if o == observer {
			w.observers = append(w.observers[:i:i], w.observers[i+1:]...)
			return
		}
	}
}

// Notify implements core.Observable. The list of observers is copied before
// the callbacks are called, so that an observer can add or remove observers.
func (w *Watcher) Notify(event interface{}) {
	w.Lock()
	observers := make([]Observer, len(w.observers))
	copy(observers, w.observers)
	w.Unlock()

	for _, o := range observers {
		o.NotifyCallback(event)
	}
}

// Len returns the number of observers.
func (w *Watcher) Len() int {
	w.Lock()
	defer w.Unlock()

	return len(w.observers)
}

// isComparable returns true when the observer can be compared with ==. Values
// of different dynamic types are unequal without panicking, so only the
// observer given by the caller needs to be checked.
func isComparable(observer Observer) bool {
	return observer == nil || reflect.TypeOf(observer).Comparable()
}
