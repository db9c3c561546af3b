package resource

import "testing"

func TestObject_EpochValidity(t *testing.T) {
	owner := NewOwner()
	first := owner.Begin()

	h := newTestHandle(owner, KindTexture)
	if h.Epoch() != first {
		t.Fatalf("Epoch = %d, want %d", h.Epoch(), first)
	}
	if !h.IsForOwner(owner) {
		t.Fatal("handle should belong to the live epoch")
	}

	owner.End()
	if h.IsForOwner(owner) {
		t.Fatal("handle must be stale after End")
	}

	second := owner.Begin()
	if second == first {
		t.Fatal("epochs must not repeat")
	}
	if h.IsForOwner(owner) {
		t.Fatal("handle must stay stale after a new epoch begins")
	}

	fresh := newTestHandle(owner, KindTexture)
	if !fresh.IsForOwner(owner) {
		t.Fatal("new handle should be usable")
	}
	if fresh.ID() <= h.ID() {
		t.Fatal("ids must keep increasing across epochs")
	}
}

func TestObject_ForeignOwner(t *testing.T) {
	a, b := NewOwner(), NewOwner()
	a.Begin()
	b.Begin()

	h := newTestHandle(a, KindBuffer)
	if h.IsForOwner(b) {
		t.Fatal("handle must not be usable with another owner even with equal epochs")
	}

	var nilObject *Object
	if nilObject.IsForOwner(a) {
		t.Fatal("nil object is never usable")
	}
}

func TestObject_CreatedWhileNotLive(t *testing.T) {
	owner := NewOwner()
	h := newTestHandle(owner, KindBuffer)
	if h.IsForOwner(owner) {
		t.Fatal("handle created without a live epoch must be unusable")
	}
	owner.Begin()
	if h.IsForOwner(owner) {
		t.Fatal("handle created without a live epoch must stay unusable")
	}
}

func TestObject_RefCounting(t *testing.T) {
	owner := NewOwner()
	owner.Begin()

	finalized := 0
	h := newTestHandle(owner, KindShader)
	h.SetFinalizer(func() { finalized++ })

	h.Retain()
	h.Release()
	if h.Finalized() || finalized != 0 {
		t.Fatal("finalized too early")
	}
	if h.Refs() != 1 {
		t.Fatalf("Refs = %d, want 1", h.Refs())
	}

	h.Release()
	if !h.Finalized() || finalized != 1 {
		t.Fatal("expected finalization on last release")
	}

	h.Release()
	h.Retain()
	if finalized != 1 || h.Refs() != 0 {
		t.Fatal("finalized object must ignore further retain/release")
	}
}

func TestObject_RequestDeleteOnce(t *testing.T) {
	owner := NewOwner()
	owner.Begin()
	h := newTestHandle(owner, KindSampler)

	if !h.RequestDelete(h) {
		t.Fatal("first RequestDelete should succeed")
	}
	if h.RequestDelete(h) {
		t.Fatal("second RequestDelete should report already requested")
	}
	if !h.DeleteRequested() {
		t.Fatal("DeleteRequested should be true")
	}
}

func TestAssignAndClear(t *testing.T) {
	owner := NewOwner()
	owner.Begin()

	a := newTestHandle(owner, KindBuffer)
	b := newTestHandle(owner, KindBuffer)

	var slot *testHandle
	Assign(&slot, a)
	if a.Refs() != 2 {
		t.Fatalf("a.Refs = %d, want 2", a.Refs())
	}

	Assign(&slot, b)
	if a.Refs() != 1 || b.Refs() != 2 {
		t.Fatalf("after reassign: a=%d b=%d", a.Refs(), b.Refs())
	}

	Assign(&slot, b)
	if b.Refs() != 2 {
		t.Fatalf("self-assign changed refs: %d", b.Refs())
	}

	Clear(&slot)
	if slot != nil || b.Refs() != 1 {
		t.Fatalf("Clear: slot=%v b=%d", slot, b.Refs())
	}

	Clear(&slot)
}

func TestKindString(t *testing.T) {
	if KindTransformFeedback.String() != "transformFeedback" {
		t.Fatalf("got %q", KindTransformFeedback.String())
	}
	if Kind(200).String() != "kind(200)" {
		t.Fatalf("got %q", Kind(200).String())
	}
}
