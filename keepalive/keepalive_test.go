package keepalive

import "testing"

type parent struct {
	name      string
	destroyed int
}

func newToken(p *parent) (*Ref[parent], Weak[parent]) {
	return New(p, func(p *parent) { p.destroyed++ })
}

func TestToken_LastReleaseKills(t *testing.T) {
	p := &parent{name: "shader"}
	ref, weak := newToken(p)

	if !weak.Alive() {
		t.Fatal("new token must be alive")
	}

	attached := ref.Clone()
	ref.Release()
	if !weak.Alive() || p.destroyed != 0 {
		t.Fatal("token died while an attachment still referenced it")
	}

	attached.Release()
	if weak.Alive() {
		t.Fatal("token still alive after last release")
	}
	if p.destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1", p.destroyed)
	}
}

func TestToken_DoubleRelease(t *testing.T) {
	p := &parent{}
	ref, weak := newToken(p)
	other := ref.Clone()

	ref.Release()
	ref.Release()
	if !weak.Alive() {
		t.Fatal("double release of one Ref must not drop another Ref")
	}
	other.Release()
	if p.destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1", p.destroyed)
	}
}

func TestWeak_Lock(t *testing.T) {
	p := &parent{}
	ref, weak := newToken(p)

	locked, ok := weak.Lock()
	if !ok {
		t.Fatal("Lock on live token failed")
	}
	if weak.Refs() != 2 {
		t.Fatalf("Refs = %d, want 2", weak.Refs())
	}
	ref.Release()
	locked.Release()

	if _, ok := weak.Lock(); ok {
		t.Fatal("Lock on dead token must fail")
	}
	if locked.Clone() != nil {
		t.Fatal("Clone of released ref must be nil")
	}
}

func TestWeak_Zero(t *testing.T) {
	var w Weak[parent]
	if w.Alive() || w.Parent() != nil || w.Refs() != 0 {
		t.Fatal("zero Weak must be dead")
	}
	if _, ok := w.Lock(); ok {
		t.Fatal("zero Weak must not lock")
	}

	var r *Ref[parent]
	r.Release()
	if r.Clone() != nil {
		t.Fatal("nil Ref clone must be nil")
	}
}
