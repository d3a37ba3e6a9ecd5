package dom

import "strings"

// Mouse events
const (
	Click       = "click"
	DblClick    = "dblclick"
	MouseDown   = "mousedown"
	MouseUp     = "mouseup"
	MouseMove   = "mousemove"
	MouseEnter  = "mouseenter"
	MouseLeave  = "mouseleave"
	ContextMenu = "contextmenu"
	Wheel       = "wheel"
)

// Keyboard events
const (
	KeyDown = "keydown"
	KeyUp   = "keyup"
)

// Form events
const (
	Input  = "input"
	Change = "change"
	Submit = "submit"
	Focus  = "focus"
	Blur   = "blur"
	Reset  = "reset"
)

// Pointer and touch events
const (
	PointerDown = "pointerdown"
	PointerUp   = "pointerup"
	PointerMove = "pointermove"
	TouchStart  = "touchstart"
	TouchEnd    = "touchend"
)

// Scroll events
const (
	Scroll    = "scroll"
	ScrollEnd = "scrollend"
)

// EventName converts a handler prop key such as "onclick" into the event
// type "click". Keys without the "on" prefix are returned lowercased.
func EventName(key string) string {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "on") && len(key) > 2 {
		return key[2:]
	}
	return key
}

// PropKey is the inverse of EventName.
func PropKey(eventType string) string {
	return "on" + strings.ToLower(eventType)
}
