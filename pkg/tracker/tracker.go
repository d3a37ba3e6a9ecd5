package tracker

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
)

// Tracker is a registry of listener attachments. The zero value is not
// usable; create one with New.
//
// Target calls are made without holding the tracker's lock, so a target
// or callback may call back into the Tracker.
type Tracker struct {
	mu      sync.Mutex
	records []Registration
	nextID  uint64

	logger    *slog.Logger
	observers []Observer
}

// New creates an empty Tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		logger: slog.Default().With("component", "tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add attaches cb to target for eventType and records the attachment.
func (t *Tracker) Add(target Target, eventType string, cb *Callback) error {
	return t.add(target, eventType, cb, "", false)
}

// AddNamed is Add with a name that RemoveNamed and Named can later match.
// Names need not be unique.
func (t *Tracker) AddNamed(target Target, eventType string, cb *Callback, name string) error {
	return t.add(target, eventType, cb, name, true)
}

func (t *Tracker) add(target Target, eventType string, cb *Callback, name string, named bool) error {
	if err := validateTriple(OpAdd, target, eventType, cb); err != nil {
		t.failed(OpAdd, err)
		return err
	}
	if named && name == "" {
		err := invalid(OpAdd, "name", ErrEmptyName)
		t.failed(OpAdd, err)
		return err
	}

	if err := target.AddListener(eventType, cb); err != nil {
		rerr := &RegistrationError{Op: OpAdd, EventType: eventType, Name: name, Err: err}
		t.failed(OpAdd, rerr)
		return rerr
	}

	t.mu.Lock()
	t.nextID++
	r := Registration{
		ID:        t.nextID,
		Target:    target,
		EventType: eventType,
		Callback:  cb,
		Name:      name,
	}
	t.records = append(t.records, r)
	t.mu.Unlock()

	t.logger.Debug("listener added", "id", r.ID, "event", eventType, "name", name)
	for _, o := range t.observers {
		o.Added(r)
	}
	return nil
}

// Remove detaches cb from target for eventType and deletes every record
// with that exact triple. The detach is attempted even when nothing is
// recorded; a missing record is not an error.
func (t *Tracker) Remove(target Target, eventType string, cb *Callback) error {
	if err := validateTriple(OpRemove, target, eventType, cb); err != nil {
		t.failed(OpRemove, err)
		return err
	}
	if err := target.RemoveListener(eventType, cb); err != nil {
		rerr := &RegistrationError{Op: OpRemove, EventType: eventType, Err: err}
		t.failed(OpRemove, rerr)
		return rerr
	}
	t.deleteMatching(OpRemove, target, eventType, cb)
	return nil
}

// RemoveNamed removes every listener recorded under name, in insertion
// order. Each removal detaches the listener and deletes all records with
// the same triple. The first detach failure stops the walk; listeners
// removed before it stay removed.
//
// When no listener carries name, a warning is logged and nil is returned.
// An empty name is rejected with a *ValidationError.
func (t *Tracker) RemoveNamed(name string) error {
	if name == "" {
		err := invalid(OpRemoveNamed, "name", ErrEmptyName)
		t.failed(OpRemoveNamed, err)
		return err
	}

	matches := t.collect(func(r Registration) bool { return r.Name == name })
	if len(matches) == 0 {
		t.logger.Warn("no tracked listeners with name", "name", name)
		return nil
	}

	for _, r := range matches {
		if !t.contains(r.ID) {
			continue // deleted with an earlier duplicate
		}
		if err := r.Target.RemoveListener(r.EventType, r.Callback); err != nil {
			rerr := &RegistrationError{Op: OpRemoveNamed, EventType: r.EventType, Name: name, Err: err}
			t.failed(OpRemoveNamed, rerr)
			return rerr
		}
		t.deleteMatching(OpRemoveNamed, r.Target, r.EventType, r.Callback)
	}
	return nil
}

// RemoveTarget detaches every listener recorded for target. Records are
// deleted one by one as their detach succeeds; see RemoveAll.
func (t *Tracker) RemoveTarget(target Target) error {
	if err := checkTarget(target); err != nil {
		verr := invalid(OpRemoveTarget, "target", err)
		t.failed(OpRemoveTarget, verr)
		return verr
	}
	matches := t.collect(func(r Registration) bool { return r.Target == target })
	return t.detachEach(OpRemoveTarget, matches)
}

// RemoveAll detaches every tracked listener.
//
// Each record is deleted as soon as its own detach succeeds, and every
// record is attempted. If any detach fails, the returned
// *RegistrationError joins all failures and the registry keeps exactly the
// records that could not be detached.
func (t *Tracker) RemoveAll() error {
	return t.detachEach(OpRemoveAll, t.All())
}

func (t *Tracker) detachEach(op Op, records []Registration) error {
	var errs []error
	for _, r := range records {
		if err := r.Target.RemoveListener(r.EventType, r.Callback); err != nil {
			t.logger.Debug("detach failed", "op", op, "id", r.ID, "event", r.EventType, "error", err)
			errs = append(errs, err)
			continue
		}
		t.deleteID(op, r.ID)
	}
	if len(errs) == 0 {
		return nil
	}
	rerr := &RegistrationError{Op: op, Err: errors.Join(errs...)}
	t.failed(op, rerr)
	return rerr
}

// Named returns a snapshot of the records labeled name, in insertion order.
// The result is never nil. An empty name is rejected with a
// *ValidationError.
func (t *Tracker) Named(name string) ([]Registration, error) {
	if name == "" {
		return nil, invalid(OpNamed, "name", ErrEmptyName)
	}
	return t.collect(func(r Registration) bool { return r.Name == name }), nil
}

// All returns a snapshot of every record, in insertion order.
func (t *Tracker) All() []Registration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.records)
}

// Len returns the number of records.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

func (t *Tracker) collect(match func(Registration) bool) []Registration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Registration, 0)
	for _, r := range t.records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (t *Tracker) contains(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.ContainsFunc(t.records, func(r Registration) bool { return r.ID == id })
}

func (t *Tracker) deleteMatching(op Op, target Target, eventType string, cb *Callback) {
	t.delete(op, func(r Registration) bool { return r.Matches(target, eventType, cb) })
}

func (t *Tracker) deleteID(op Op, id uint64) {
	t.delete(op, func(r Registration) bool { return r.ID == id })
}

func (t *Tracker) delete(op Op, match func(Registration) bool) {
	var removed []Registration

	t.mu.Lock()
	kept := t.records[:0]
	for _, r := range t.records {
		if match(r) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	clear(t.records[len(kept):])
	t.records = kept
	t.mu.Unlock()

	for _, r := range removed {
		t.logger.Debug("listener removed", "op", op, "id", r.ID, "event", r.EventType, "name", r.Name)
		for _, o := range t.observers {
			o.Removed(r, op)
		}
	}
}

func (t *Tracker) failed(op Op, err error) {
	for _, o := range t.observers {
		o.Failed(op, err)
	}
}

func validateTriple(op Op, target Target, eventType string, cb *Callback) error {
	if err := checkTarget(target); err != nil {
		return invalid(op, "target", err)
	}
	if eventType == "" {
		return invalid(op, "event type", ErrEmptyEventType)
	}
	if err := checkCallback(cb); err != nil {
		return invalid(op, "callback", err)
	}
	return nil
}
