package dispatch

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/glproxy/errors"
)

// Executor runs dispatched calls in submission order, at most once each.
//
// Submit must have consumed every byte argument before it returns: either
// handed it to an in-process handler or encoded it into a frame. Callers
// rely on this to end a NoGC guard right after Submit.
type Executor interface {
	// Submit runs or enqueues a call without waiting for a result.
	Submit(call Call) error
	// Query runs a call and waits for its result. All earlier submitted
	// calls have executed by the time the result is available.
	Query(call Call) (Reply, error)
	// Close releases the executor. Further calls fail.
	Close() error
}

// Handler is the host-side receiver of calls. Returning an error means the
// executor itself failed; GL-level errors are recorded by the handler and
// reported through MethodGetError.
type Handler interface {
	Handle(call Call) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(call Call) (any, error)

func (f HandlerFunc) Handle(call Call) (any, error) { return f(call) }

// Reply is the result of a Query. In-process replies carry the handler's
// Go value; remote replies carry the encoded value.
type Reply struct {
	value any
	raw   cbor.RawMessage
}

// NewReply wraps an in-process result value.
func NewReply(v any) Reply { return Reply{value: v} }

// RawReply wraps an encoded result value.
func RawReply(raw []byte) Reply { return Reply{raw: raw} }

// Decode stores the reply value in the value pointed to by out.
func (r Reply) Decode(out any) error {
	if r.raw != nil {
		if err := cbor.Unmarshal(r.raw, out); err != nil {
			return errors.InvalidFrame(errors.PhaseDecode, "decode reply value", err)
		}
		return nil
	}

	ov := reflect.ValueOf(out)
	if ov.Kind() != reflect.Pointer || ov.IsNil() {
		return errors.InvalidInput(errors.PhaseDecode, "reply target must be a non-nil pointer")
	}
	dst := ov.Elem()
	if r.value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(r.value)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
		return nil
	case isNumeric(src.Kind()) && isNumeric(dst.Kind()):
		dst.Set(src.Convert(dst.Type()))
		return nil
	}

	// Fall back to a codec round-trip so in-process and remote replies
	// decode identically.
	raw, err := encMode.Marshal(r.value)
	if err != nil {
		return errors.InvalidFrame(errors.PhaseEncode, "encode reply value", err)
	}
	return RawReply(raw).Decode(out)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Local executes calls on an in-process handler immediately.
type Local struct {
	handler Handler
	closed  bool
}

// NewLocal creates an executor that invokes h directly.
func NewLocal(h Handler) *Local {
	return &Local{handler: h}
}

// Submit invokes the handler and discards its result.
func (l *Local) Submit(call Call) error {
	_, err := l.invoke(call)
	return err
}

// Query invokes the handler and returns its result.
func (l *Local) Query(call Call) (Reply, error) {
	v, err := l.invoke(call)
	if err != nil {
		return Reply{}, err
	}
	return NewReply(v), nil
}

func (l *Local) invoke(call Call) (any, error) {
	if l.closed {
		return nil, errors.Closed(errors.PhaseDispatch, "local executor")
	}
	if !call.Method.Valid() {
		return nil, errors.UnknownMethod(errors.PhaseDispatch, uint16(call.Method))
	}
	return l.handler.Handle(call)
}

// Close marks the executor closed. If the handler implements io.Closer it
// is closed too.
func (l *Local) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if c, ok := l.handler.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
