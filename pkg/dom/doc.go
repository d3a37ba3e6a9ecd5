// Package dom provides an in-memory addressable element for tracked
// listeners.
//
// Element mirrors the listener-table behavior of a browser element closely
// enough to exercise a tracker.Tracker in tests and tools: attaching the
// same callback twice for one event type is a no-op, detaching an unknown
// callback is a no-op, and Dispatch invokes listeners in attach order.
// Capture and bubbling are not modeled; Dispatch only reaches listeners on
// the element itself.
//
//	btn := dom.NewElement("button", "save")
//	t.Add(btn, dom.Click, onSave)
//	btn.Dispatch(dom.Click, nil)
package dom
