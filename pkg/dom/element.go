package dom

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/vango-dev/eventmanager/pkg/tracker"
)

// ErrDestroyed is returned when listeners are attached to or detached from
// a destroyed element.
var ErrDestroyed = errors.New("dom: element destroyed")

// Element is an in-memory UI element with a per-event listener table.
// It implements tracker.Target.
type Element struct {
	tag string
	id  string

	mu        sync.Mutex
	listeners map[string][]*tracker.Callback
	destroyed bool
}

var _ tracker.Target = (*Element)(nil)

// NewElement creates an element with the given tag and id.
func NewElement(tag, id string) *Element {
	return &Element{
		tag:       tag,
		id:        id,
		listeners: make(map[string][]*tracker.Callback),
	}
}

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// ID returns the element's id.
func (e *Element) ID() string { return e.id }

// String returns a selector-like description, e.g. "button#save".
func (e *Element) String() string {
	if e.id == "" {
		return e.tag
	}
	return fmt.Sprintf("%s#%s", e.tag, e.id)
}

// AddListener attaches cb for eventType. Attaching an already attached
// callback for the same event type does nothing.
func (e *Element) AddListener(eventType string, cb *tracker.Callback) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return fmt.Errorf("%w: %s", ErrDestroyed, e)
	}
	if slices.Contains(e.listeners[eventType], cb) {
		return nil
	}
	e.listeners[eventType] = append(e.listeners[eventType], cb)
	return nil
}

// RemoveListener detaches cb for eventType. Detaching an unknown callback
// does nothing.
func (e *Element) RemoveListener(eventType string, cb *tracker.Callback) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return fmt.Errorf("%w: %s", ErrDestroyed, e)
	}
	list := e.listeners[eventType]
	i := slices.Index(list, cb)
	if i < 0 {
		return nil
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(e.listeners, eventType)
	} else {
		e.listeners[eventType] = list
	}
	return nil
}

// ListenerCount returns the number of listeners attached for eventType.
func (e *Element) ListenerCount(eventType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[eventType])
}

// Dispatch invokes the listeners attached for eventType, in attach order,
// and returns how many were called. Listeners added or removed during the
// dispatch do not affect it.
func (e *Element) Dispatch(eventType string, data map[string]any) int {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return 0
	}
	list := slices.Clone(e.listeners[eventType])
	e.mu.Unlock()

	ev := tracker.Event{Type: eventType, Target: e, Data: data}
	for _, cb := range list {
		cb.Invoke(ev)
	}
	return len(list)
}

// Destroy drops all listeners. Later attach and detach calls fail with
// ErrDestroyed; trackers holding records for the element are not told.
func (e *Element) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroyed = true
	clear(e.listeners)
}

// Destroyed reports whether Destroy has been called.
func (e *Element) Destroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.destroyed
}
