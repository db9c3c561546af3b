package dispatch

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/glproxy/errors"
)

// DefaultQueryTimeout bounds how long a Query waits for its reply.
const DefaultQueryTimeout = 30 * time.Second

// Remote executes calls in another process or goroutine over a byte
// stream. Calls are encoded as CBOR frames and written in submission
// order; the peer executes them in the order read.
//
// A Remote owns exactly one goroutine, which reads frames, completes
// pending queries and hands notifications to the Notifier. A read or write
// failure is reported once as a NotifyTransportError notification.
type Remote struct {
	conn    io.ReadWriteCloser
	reader  *FrameReader
	notify  Notifier
	pending map[uint64]chan *Frame
	done    chan struct{}
	err     error
	timeout time.Duration
	seq     uint64
	mu      sync.Mutex
	wmu     sync.Mutex
	failed  sync.Once
	closing atomic.Bool
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithQueryTimeout sets how long Query waits for a reply.
func WithQueryTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRemote starts a remote executor over conn.
func NewRemote(conn io.ReadWriteCloser, notify Notifier, opts ...RemoteOption) *Remote {
	r := &Remote{
		conn:    conn,
		reader:  NewFrameReader(conn),
		notify:  notify,
		pending: make(map[uint64]chan *Frame),
		done:    make(chan struct{}),
		timeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.readLoop()
	return r
}

// Handshake asks the peer to create a context.
func (r *Remote) Handshake(ctx context.Context, req InitRequest) (InitResult, error) {
	var res InitResult
	reply, err := r.roundTrip(ctx, &Frame{Kind: FrameHello, Hello: &req}, "hello")
	if err != nil {
		return res, err
	}
	if err := reply.Decode(&res); err != nil {
		return res, err
	}
	return res, nil
}

// Submit encodes and writes a call without waiting for a result.
func (r *Remote) Submit(call Call) error {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	return r.send(&Frame{Kind: FrameCall, Seq: seq, Method: call.Method, Args: call.Args}, call.Method.String())
}

// Query writes a call and waits for its reply.
func (r *Remote) Query(call Call) (Reply, error) {
	return r.roundTrip(context.Background(), &Frame{
		Kind:      FrameCall,
		Method:    call.Method,
		Args:      call.Args,
		WantReply: true,
	}, call.Method.String())
}

func (r *Remote) roundTrip(ctx context.Context, f *Frame, name string) (Reply, error) {
	ch := make(chan *Frame, 1)
	r.mu.Lock()
	r.seq++
	f.Seq = r.seq
	r.pending[f.Seq] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, f.Seq)
		r.mu.Unlock()
	}()

	if err := r.send(f, name); err != nil {
		return Reply{}, err
	}

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		if reply.Error != "" {
			return Reply{}, errors.New(errors.PhaseExecute, errors.KindExecutorFailure).
				Method(name).
				Detail("%s", reply.Error).
				Build()
		}
		return RawReply(reply.Value), nil
	case <-r.done:
		return Reply{}, errors.ExecutorFailure(errors.PhaseTransport, name, r.Err())
	case <-ctx.Done():
		return Reply{}, errors.Wrap(errors.PhaseTransport, errors.KindTimeout, ctx.Err(), name)
	case <-timer.C:
		err := errors.Timeout(errors.PhaseTransport, name)
		r.fail(err)
		return Reply{}, err
	}
}

func (r *Remote) send(f *Frame, name string) error {
	data, err := MarshalFrame(f)
	if err != nil {
		return err
	}

	r.wmu.Lock()
	defer r.wmu.Unlock()

	select {
	case <-r.done:
		return errors.ExecutorFailure(errors.PhaseTransport, name, r.Err())
	default:
	}

	if _, err := r.conn.Write(data); err != nil {
		wrapped := errors.ExecutorFailure(errors.PhaseTransport, name, err)
		r.fail(wrapped)
		return wrapped
	}
	return nil
}

func (r *Remote) readLoop() {
	for {
		f, err := r.reader.Read()
		if err != nil {
			r.fail(err)
			return
		}

		switch f.Kind {
		case FrameReply:
			r.mu.Lock()
			ch := r.pending[f.Seq]
			delete(r.pending, f.Seq)
			r.mu.Unlock()
			if ch == nil {
				Logger().Debug("reply for unknown sequence", zap.Uint64("seq", f.Seq))
				continue
			}
			ch <- f
		case FrameNotify:
			if r.notify != nil {
				r.notify(*f.Note)
			}
		default:
			Logger().Warn("unexpected frame from executor", zap.Stringer("kind", f.Kind))
		}
	}
}

// fail records the first transport error, wakes waiters and reports the
// failure unless the executor is being closed deliberately.
func (r *Remote) fail(err error) {
	r.failed.Do(func() {
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		close(r.done)
		_ = r.conn.Close()

		if r.closing.Load() {
			return
		}
		Logger().Warn("executor transport failed", zap.Error(err))
		if r.notify != nil {
			r.notify(Notification{Kind: NotifyTransportError, Detail: err.Error()})
		}
	})
}

// Err returns the error that ended the transport, if any.
func (r *Remote) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Done is closed when the transport ends.
func (r *Remote) Done() <-chan struct{} {
	return r.done
}

// Close shuts the transport down without reporting a failure.
func (r *Remote) Close() error {
	r.closing.Store(true)
	r.fail(errors.Closed(errors.PhaseTransport, "remote executor"))
	return nil
}
