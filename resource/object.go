package resource

import "fmt"

// Object is the state shared by every resource handle: identity, the epoch
// link, the delete-request flag and the reference count that stands in for
// the scripting engine's ownership plus internal bindings.
//
// Objects are owned by a single context and are not safe for concurrent use.
type Object struct {
	owner      *Owner
	onFinalize func()
	id         ID
	epoch      Epoch
	refs       int32
	kind       Kind

	deleteRequested bool
	finalized       bool
}

// Init sets up an object for the owner's current epoch and registers it in
// the owner's table with one reference held by the caller. Init on an owner
// without a live epoch produces an object that is never usable.
func (o *Object) Init(owner *Owner, kind Kind, self Handle) {
	o.owner = owner
	o.kind = kind
	o.id = owner.NextID()
	o.epoch, _ = owner.Current()
	o.refs = 1
	owner.table.Insert(self)
}

// Base returns the object itself so embedding types satisfy Handle.
func (o *Object) Base() *Object { return o }

// ID returns the object's stable identifier.
func (o *Object) ID() ID { return o.id }

// Kind returns the resource kind.
func (o *Object) Kind() Kind { return o.kind }

// Epoch returns the epoch the object was created under.
func (o *Object) Epoch() Epoch { return o.epoch }

// Owner returns the owning context's epoch holder.
func (o *Object) Owner() *Owner { return o.owner }

func (o *Object) String() string {
	return fmt.Sprintf("%s#%d", o.kind, o.id)
}

// IsForOwner reports whether the object was created by owner's current epoch.
func (o *Object) IsForOwner(owner *Owner) bool {
	if o == nil || owner == nil || o.owner != owner {
		return false
	}
	cur, live := owner.Current()
	return live && cur == o.epoch
}

// DeleteRequested reports whether an explicit delete was issued.
func (o *Object) DeleteRequested() bool { return o.deleteRequested }

// RequestDelete sets the delete flag once. It returns false if the flag was
// already set.
func (o *Object) RequestDelete(self Handle) bool {
	if o.deleteRequested {
		return false
	}
	o.deleteRequested = true
	o.owner.table.notify(Event{
		Type:   EventDeleteRequested,
		Handle: self,
		ID:     o.id,
		Epoch:  o.epoch,
		Kind:   o.kind,
	})
	return true
}

// SetFinalizer installs the hook run when the last reference is released.
func (o *Object) SetFinalizer(fn func()) { o.onFinalize = fn }

// Retain adds a reference.
func (o *Object) Retain() {
	if o == nil || o.finalized {
		return
	}
	o.refs++
}

// Release drops a reference and finalizes the object when none remain.
func (o *Object) Release() {
	if o == nil || o.finalized || o.refs <= 0 {
		return
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	o.finalized = true
	if o.onFinalize != nil {
		o.onFinalize()
	}
	o.owner.table.finalize(o)
}

// Refs returns the current reference count.
func (o *Object) Refs() int32 { return o.refs }

// Finalized reports whether the last reference has been released.
func (o *Object) Finalized() bool { return o.finalized }

// ref is satisfied by pointer handle types; comparable lets Assign tell a
// nil pointer apart without calling methods on it.
type ref interface {
	comparable
	Handle
}

// Assign replaces *slot with v, retaining v and releasing the previous
// value. It is the owning-pointer assignment used for every internal binding.
func Assign[T ref](slot *T, v T) {
	var zero T
	old := *slot
	if v != zero {
		v.Base().Retain()
	}
	*slot = v
	if old != zero {
		old.Base().Release()
	}
}

// Clear releases *slot and sets it to the zero value.
func Clear[T ref](slot *T) {
	var zero T
	Assign(slot, zero)
}
