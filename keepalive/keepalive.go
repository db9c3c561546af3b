// Package keepalive implements shared liveness tokens with weak observers.
//
// A Token stays alive while at least one strong Ref to it exists. Weak
// observers can check liveness or upgrade to a new Ref without keeping the
// token alive themselves. When the last Ref is released the token dies and
// its death callback runs once with the parent. The token drops its parent
// pointer at that point.
//
// Programs and shaders each own one token. A program's attachment record
// holds a Ref to the attached shader's token, which is what keeps a
// delete-requested shader alive while it is still attached:
//
//	ref, weak := keepalive.New(shader, func(s *Shader) { s.destroy() })
//	attached := ref.Clone() // program attachment
//	ref.Release()           // deleteShader: weak.Alive() stays true
//	attached.Release()      // detachShader: callback runs, weak.Alive() is false
//
// Tokens are not safe for concurrent use.
package keepalive

// Token is a shared liveness marker for a parent object.
type Token[P any] struct {
	parent *P
	onDead func(*P)
	refs   int
	dead   bool
}

// Ref is one strong reference to a token. Releasing a Ref twice is a no-op.
type Ref[P any] struct {
	token    *Token[P]
	released bool
}

// Weak observes a token without keeping it alive.
type Weak[P any] struct {
	token *Token[P]
}

// New creates a live token for parent with a single strong reference.
func New[P any](parent *P, onDead func(*P)) (*Ref[P], Weak[P]) {
	t := &Token[P]{parent: parent, onDead: onDead, refs: 1}
	return &Ref[P]{token: t}, Weak[P]{token: t}
}

// Clone returns another strong reference to the same token. Cloning a
// released Ref returns nil.
func (r *Ref[P]) Clone() *Ref[P] {
	if r == nil || r.released || r.token.dead {
		return nil
	}
	r.token.refs++
	return &Ref[P]{token: r.token}
}

// Release drops this reference. Releasing the last reference kills the
// token and runs the death callback.
func (r *Ref[P]) Release() {
	if r == nil || r.released {
		return
	}
	r.released = true
	t := r.token
	t.refs--
	if t.refs > 0 || t.dead {
		return
	}
	t.dead = true
	parent := t.parent
	t.parent = nil
	if parent != nil && t.onDead != nil {
		t.onDead(parent)
	}
}

// Weak returns a weak observer of the same token.
func (r *Ref[P]) Weak() Weak[P] {
	if r == nil {
		return Weak[P]{}
	}
	return Weak[P]{token: r.token}
}

// Lock upgrades to a strong reference if the token is still alive.
func (w Weak[P]) Lock() (*Ref[P], bool) {
	if !w.Alive() {
		return nil, false
	}
	w.token.refs++
	return &Ref[P]{token: w.token}, true
}

// Alive reports whether any strong reference remains.
func (w Weak[P]) Alive() bool {
	return w.token != nil && !w.token.dead
}

// Parent returns the token's parent, or nil once it was cleared or the
// token died.
func (w Weak[P]) Parent() *P {
	if w.token == nil {
		return nil
	}
	return w.token.parent
}

// Refs returns the number of live strong references.
func (w Weak[P]) Refs() int {
	if w.token == nil || w.token.dead {
		return 0
	}
	return w.token.refs
}
