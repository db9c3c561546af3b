package dispatch

import (
	"go.uber.org/zap"

	"github.com/wippyai/glproxy/errors"
)

// Dispatcher routes validated calls to one executor for one context
// generation. It numbers calls in submission order, ends NoGC guards once
// their bytes are consumed and turns the first executor error into a
// single failure report.
//
// A Dispatcher is used from the context's goroutine only.
type Dispatcher struct {
	exec      Executor
	onFailure func(error)
	err       error
	seq       uint64
	failed    bool
}

// NewDispatcher creates a dispatcher over exec. onFailure runs at most once,
// on the first executor error.
func NewDispatcher(exec Executor, onFailure func(error)) *Dispatcher {
	return &Dispatcher{exec: exec, onFailure: onFailure}
}

// Run submits a call. Calls after a failure are dropped.
func (d *Dispatcher) Run(method Method, args ...any) {
	d.submit(nil, method, args)
}

// RunWithGCData submits a call whose arguments reference script-heap bytes.
// The guard ends only after the executor has consumed the arguments, and
// always ends before RunWithGCData returns.
func (d *Dispatcher) RunWithGCData(guard *NoGC, method Method, args ...any) {
	d.submit(guard, method, args)
}

func (d *Dispatcher) submit(guard *NoGC, method Method, args []any) {
	defer guard.Done()
	if d.failed {
		return
	}
	d.seq++
	if err := d.exec.Submit(Call{Seq: d.seq, Method: method, Args: args}); err != nil {
		d.Fail(errors.ExecutorFailure(errors.PhaseDispatch, method.String(), err))
	}
}

// Query runs a call synchronously and decodes its result into out. It
// reports false if the dispatcher has failed or the call did not complete;
// out is left untouched in that case.
func (d *Dispatcher) Query(out any, method Method, args ...any) bool {
	if d.failed {
		return false
	}
	d.seq++
	reply, err := d.exec.Query(Call{Seq: d.seq, Method: method, Args: args})
	if err != nil {
		d.Fail(errors.ExecutorFailure(errors.PhaseDispatch, method.String(), err))
		return false
	}
	if out == nil {
		return true
	}
	if err := reply.Decode(out); err != nil {
		d.Fail(err)
		return false
	}
	return true
}

// Fail marks the dispatcher failed and reports err once.
func (d *Dispatcher) Fail(err error) {
	if d.failed {
		return
	}
	d.failed = true
	d.err = err
	Logger().Warn("dispatch failed", zap.Uint64("seq", d.seq), zap.Error(err))
	if d.onFailure != nil {
		d.onFailure(err)
	}
}

// Failed reports whether an executor error has been seen.
func (d *Dispatcher) Failed() bool { return d.failed }

// Err returns the error that failed the dispatcher, if any.
func (d *Dispatcher) Err() error { return d.err }

// Calls returns the number of calls dispatched so far.
func (d *Dispatcher) Calls() uint64 { return d.seq }

// Close closes the executor. The dispatcher drops every later call without
// reporting a failure.
func (d *Dispatcher) Close() error {
	d.failed = true
	if d.exec == nil {
		return nil
	}
	return d.exec.Close()
}
