package dispatch

import "sync/atomic"

// NoGC is a scope during which script-heap memory referenced by call
// arguments must not be moved or reclaimed. The scripting side creates it
// around a call that passes heap-backed bytes; the dispatcher ends it once
// the executor has consumed those bytes.
type NoGC struct {
	onDone func()
	done   atomic.Bool
}

// NewNoGC opens a guard. onDone, if set, runs once when the guard ends.
func NewNoGC(onDone func()) *NoGC {
	return &NoGC{onDone: onDone}
}

// Active reports whether the guard is still open.
func (g *NoGC) Active() bool {
	return g != nil && !g.done.Load()
}

// Done ends the guard. Only the first call has an effect.
func (g *NoGC) Done() {
	if g == nil || !g.done.CompareAndSwap(false, true) {
		return
	}
	if g.onDone != nil {
		g.onDone()
	}
}
