package bridge

import (
	"errors"
	"slices"
	"sync"

	"github.com/vango-dev/eventmanager/pkg/tracker"
)

// Element is a remote element addressed by hydration ID. It implements
// tracker.Target.
type Element struct {
	conn *Conn
	hid  string

	// opMu serializes AddListener and RemoveListener, including the
	// listen/unlisten write, so the forwarding state sent to the client
	// always matches the listener table.
	opMu sync.Mutex

	mu        sync.Mutex
	listeners map[string][]*tracker.Callback
}

var _ tracker.Target = (*Element)(nil)

func newElement(c *Conn, hid string) *Element {
	return &Element{
		conn:      c,
		hid:       hid,
		listeners: make(map[string][]*tracker.Callback),
	}
}

// HID returns the element's hydration ID.
func (e *Element) HID() string { return e.hid }

// String returns the hydration ID.
func (e *Element) String() string { return e.hid }

// AddListener attaches cb for eventType. The first listener for an event
// type asks the client to start forwarding it; if that write fails the
// attachment is rolled back and the error returned.
func (e *Element) AddListener(eventType string, cb *tracker.Callback) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if e.conn.Closed() {
		return ErrClosed
	}

	e.mu.Lock()
	if slices.Contains(e.listeners[eventType], cb) {
		e.mu.Unlock()
		return nil
	}
	first := len(e.listeners[eventType]) == 0
	e.listeners[eventType] = append(e.listeners[eventType], cb)
	e.mu.Unlock()

	if !first {
		return nil
	}
	if err := e.conn.send(Frame{Op: OpListen, HID: e.hid, Event: eventType}); err != nil {
		e.drop(eventType, cb)
		return err
	}
	return nil
}

// RemoveListener detaches cb for eventType. Removing the last listener for
// an event type tells the client to stop forwarding it; if that write
// fails the listener is restored and the error returned. On a closed
// connection the local listener is dropped and nil returned.
func (e *Element) RemoveListener(eventType string, cb *tracker.Callback) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	last, found := e.drop(eventType, cb)
	if !found || !last || e.conn.Closed() {
		return nil
	}
	err := e.conn.send(Frame{Op: OpUnlisten, HID: e.hid, Event: eventType})
	switch {
	case err == nil, errors.Is(err, ErrClosed):
		return nil
	default:
		e.restore(eventType, cb)
		return err
	}
}

// ListenerCount returns the number of listeners attached for eventType.
func (e *Element) ListenerCount(eventType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[eventType])
}

func (e *Element) restore(eventType string, cb *tracker.Callback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[eventType] = append(e.listeners[eventType], cb)
}

// drop removes cb and reports whether it was the last listener for
// eventType and whether it was present at all.
func (e *Element) drop(eventType string, cb *tracker.Callback) (last, found bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	list := e.listeners[eventType]
	i := slices.Index(list, cb)
	if i < 0 {
		return false, false
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(e.listeners, eventType)
		return true, true
	}
	e.listeners[eventType] = list
	return false, true
}

func (e *Element) dispatch(eventType string, data map[string]any) {
	e.mu.Lock()
	list := slices.Clone(e.listeners[eventType])
	e.mu.Unlock()

	ev := tracker.Event{Type: eventType, Target: e, Data: data}
	for _, cb := range list {
		cb.Invoke(ev)
	}
}
