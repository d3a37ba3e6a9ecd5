package tracker

import (
	"fmt"
	"reflect"
)

// Target is an addressable element: anything listeners can be attached to
// and detached from. Implementations must be comparable with == (pointer
// types are the usual choice).
type Target interface {
	AddListener(eventType string, cb *Callback) error
	RemoveListener(eventType string, cb *Callback) error
}

// Event is the payload platforms hand to callbacks.
type Event struct {
	Type   string
	Target Target
	Data   map[string]any
}

// Callback is an identity-comparable handle around a listener function.
type Callback struct {
	fn func(Event)
}

// NewCallback wraps fn in a handle.
func NewCallback(fn func(Event)) *Callback {
	return &Callback{fn: fn}
}

// Invoke calls the wrapped function. Nil handles are ignored.
func (c *Callback) Invoke(e Event) {
	if c == nil || c.fn == nil {
		return
	}
	c.fn(e)
}

// Registration is one tracked listener attachment.
type Registration struct {
	// ID is assigned by the tracker and increases with insertion order.
	ID uint64

	Target    Target
	EventType string
	Callback  *Callback

	// Name is the optional user label; empty means unnamed.
	Name string
}

// Matches reports whether r binds exactly this target, event type and callback.
func (r Registration) Matches(target Target, eventType string, cb *Callback) bool {
	return r.Target == target && r.EventType == eventType && r.Callback == cb
}

// String returns a compact description for logs.
func (r Registration) String() string {
	if r.Name != "" {
		return fmt.Sprintf("#%d %v %s (%s)", r.ID, r.Target, r.EventType, r.Name)
	}
	return fmt.Sprintf("#%d %v %s", r.ID, r.Target, r.EventType)
}

// checkTarget rejects nil targets, typed nil pointers and targets that
// would panic under ==. The check is on the value, so a struct whose
// interface field holds a slice is rejected too.
func checkTarget(target Target) error {
	if target == nil {
		return ErrNilTarget
	}
	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			return ErrNilTarget
		}
	}
	if !v.Comparable() {
		return ErrTargetNotComparable
	}
	return nil
}

func checkCallback(cb *Callback) error {
	if cb == nil || cb.fn == nil {
		return ErrNilCallback
	}
	return nil
}
