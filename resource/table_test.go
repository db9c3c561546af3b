package resource

import (
	"testing"
)

type testHandle struct {
	Object
}

func newTestHandle(owner *Owner, kind Kind) *testHandle {
	h := &testHandle{}
	h.Init(owner, kind, h)
	return h
}

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_InsertGet(t *testing.T) {
	owner := NewOwner()
	owner.Begin()

	h := newTestHandle(owner, KindBuffer)
	if h.ID() == 0 {
		t.Fatal("Expected non-zero id")
	}

	got, ok := owner.Table().Get(h.ID())
	if !ok || got != Handle(h) {
		t.Fatal("Get failed")
	}

	if _, ok := owner.Table().GetTyped(h.ID(), KindBuffer); !ok {
		t.Fatal("GetTyped with correct kind failed")
	}
	if _, ok := owner.Table().GetTyped(h.ID(), KindTexture); ok {
		t.Fatal("GetTyped with wrong kind should fail")
	}
	if _, ok := owner.Table().Get(0); ok {
		t.Fatal("id 0 should be invalid")
	}
}

func TestTable_Observer(t *testing.T) {
	owner := NewOwner()
	owner.Begin()
	obs := &testObserver{}
	unsubscribe := owner.Table().Subscribe(obs)

	h := newTestHandle(owner, KindTexture)
	h.RequestDelete(h)
	h.Release()

	want := []EventType{EventCreated, EventDeleteRequested, EventFinalized}
	if len(obs.events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(obs.events))
	}
	for i, typ := range want {
		if obs.events[i].Type != typ {
			t.Fatalf("event %d: got %s, want %s", i, obs.events[i].Type, typ)
		}
		if obs.events[i].ID != h.ID() {
			t.Fatalf("event %d: wrong id", i)
		}
	}

	unsubscribe()
	newTestHandle(owner, KindTexture)
	if len(obs.events) != len(want) {
		t.Fatal("observer still notified after unsubscribe")
	}
}

func TestTable_OrphanOnEnd(t *testing.T) {
	owner := NewOwner()
	owner.Begin()
	obs := &testObserver{}
	owner.Table().Subscribe(obs)

	a := newTestHandle(owner, KindBuffer)
	b := newTestHandle(owner, KindProgram)
	if owner.Table().Len() != 2 {
		t.Fatalf("Len = %d, want 2", owner.Table().Len())
	}

	owner.End()
	if owner.Table().Len() != 0 {
		t.Fatalf("Len = %d after End, want 0", owner.Table().Len())
	}

	var orphaned []ID
	for _, e := range obs.events {
		if e.Type == EventOrphaned {
			orphaned = append(orphaned, e.ID)
		}
	}
	if len(orphaned) != 2 || orphaned[0] != a.ID() || orphaned[1] != b.ID() {
		t.Fatalf("orphaned = %v, want [%d %d]", orphaned, a.ID(), b.ID())
	}

	// Orphaned handles are still allocated, just stale.
	if a.Finalized() {
		t.Fatal("orphaning must not finalize")
	}
}

func TestTable_Each(t *testing.T) {
	owner := NewOwner()
	owner.Begin()
	for i := 0; i < 3; i++ {
		newTestHandle(owner, KindQuery)
	}

	var ids []ID
	owner.Table().Each(func(h Handle) bool {
		ids = append(ids, h.Base().ID())
		return true
	})
	if len(ids) != 3 || ids[0] >= ids[1] || ids[1] >= ids[2] {
		t.Fatalf("Each not in id order: %v", ids)
	}

	count := 0
	owner.Table().Each(func(Handle) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Expected early termination, visited %d", count)
	}
}
