// Package tracker keeps a registry of event listeners attached to UI
// elements so they can be removed later in bulk, one by one, or by a
// user-assigned name.
//
// Long-lived components that attach listeners directly tend to leak them:
// the callback stays reachable from the element long after the component
// that owned it is gone. A Tracker records every listener it attaches and
// offers the matching removal operations.
//
// # Targets and Callbacks
//
// Any value implementing Target can be tracked. Go function values are not
// comparable, so callbacks are wrapped in a *Callback handle; the same
// handle identifies the listener when it is removed:
//
//	t := tracker.New()
//	save := tracker.NewCallback(func(e tracker.Event) { ... })
//
//	if err := t.AddNamed(button, "click", save, "save"); err != nil {
//	    return err
//	}
//	...
//	t.RemoveNamed("save")
//
// # Names
//
// The empty string means "unnamed". AddNamed, RemoveNamed and Named reject
// it with a *ValidationError wrapping ErrEmptyName, so RemoveNamed("") is
// an error rather than a no-op. Removing a non-empty name that matches
// nothing logs a warning and returns nil.
//
// # Errors
//
// Invalid arguments yield a *ValidationError and leave the registry
// untouched. Failures reported by the target's AddListener or
// RemoveListener are wrapped in a *RegistrationError naming the operation.
//
// # Remove All
//
// RemoveAll detaches every record independently. A record leaves the
// registry as soon as its own detach succeeds, so after a partial failure
// the registry holds exactly the listeners that are still attached.
package tracker
