// Package bridge exposes elements living in a remote thin client as
// tracker targets.
//
// A Conn wraps one WebSocket connection. Attaching the first listener for
// an event type on a remote Element sends a "listen" frame so the client
// starts forwarding that event; detaching the last one sends "unlisten".
// Events forwarded by the client arrive as "event" frames and are
// dispatched to the element's callbacks by ReadLoop.
//
// # Wire Format
//
// Frames are JSON text messages:
//
//	{"op":"listen","hid":"h3","event":"click"}
//	{"op":"unlisten","hid":"h3","event":"click"}
//	{"op":"event","hid":"h3","event":"click","data":{"x":12,"y":40}}
//
// HIDs are the hydration IDs the client uses to find elements.
//
// # Usage
//
//	func handleWS(w http.ResponseWriter, r *http.Request) {
//	    conn, err := bridge.Upgrade(w, r)
//	    if err != nil {
//	        return
//	    }
//	    defer conn.Close()
//
//	    t := tracker.New()
//	    t.Add(conn.Element("h1"), "click", onClick)
//	    defer t.RemoveAll()
//
//	    conn.ReadLoop(r.Context())
//	}
package bridge
