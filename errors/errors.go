package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConnect   Phase = "connect"   // executor creation / handshake
	PhaseDispatch  Phase = "dispatch"  // routing a call to the executor
	PhaseTransport Phase = "transport" // cross-process link
	PhaseEncode    Phase = "encode"    // call to wire frame
	PhaseDecode    Phase = "decode"    // wire frame to call/reply
	PhaseExecute   Phase = "execute"   // host-side execution
	PhaseRestore   Phase = "restore"   // context restore attempt
	PhaseConfig    Phase = "config"    // configuration loading
	PhaseValidate  Phase = "validate"  // argument validation
)

// Kind categorizes the error
type Kind string

const (
	KindClosed          Kind = "closed"
	KindUnknownMethod   Kind = "unknown_method"
	KindInvalidFrame    Kind = "invalid_frame"
	KindInvalidInput    Kind = "invalid_input"
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindNotInitialized  Kind = "not_initialized"
	KindExecutorFailure Kind = "executor_failure"
	KindContextLost     Kind = "context_lost"
	KindRestoreFailed   Kind = "restore_failed"
	KindUnsupported     Kind = "unsupported"
	KindTimeout         Kind = "timeout"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Method string
	Object string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Method != "" {
		b.WriteString(" in ")
		b.WriteString(e.Method)
	}

	if e.Object != "" {
		b.WriteString(" on ")
		b.WriteString(e.Object)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Method sets the dispatched method name
func (b *Builder) Method(name string) *Builder {
	b.err.Method = name
	return b
}

// Object sets the affected resource, e.g. "program#3"
func (b *Builder) Object(name string) *Builder {
	b.err.Object = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Closed creates an error for operations on a closed executor or transport
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s closed", what),
	}
}

// UnknownMethod creates an error for a method id with no registration
func UnknownMethod(phase Phase, id uint16) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownMethod,
		Detail: fmt.Sprintf("method id %d not registered", id),
		Value:  id,
	}
}

// InvalidFrame creates a malformed wire frame error
func InvalidFrame(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidFrame,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidArgument creates an error for a host-side argument that cannot be decoded
func InvalidArgument(method string, index int, want string, got any) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindInvalidArgument,
		Method: method,
		Detail: fmt.Sprintf("argument %d: want %s, got %T", index, want, got),
		Value:  got,
	}
}

// ExecutorFailure wraps a transport or executor error that ends the context
func ExecutorFailure(phase Phase, method string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExecutorFailure,
		Method: method,
		Cause:  cause,
	}
}

// RestoreFailed creates a restore failure error
func RestoreFailed(cause error) *Error {
	return &Error{
		Phase:  PhaseRestore,
		Kind:   KindRestoreFailed,
		Detail: "recreate executor context",
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Timeout creates an error for a reply that did not arrive in time
func Timeout(phase Phase, method string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTimeout,
		Method: method,
		Detail: "no reply from executor",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ConfigLoad creates a configuration loading error
func ConfigLoad(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("load %s", path),
		Cause:  cause,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// HasKind reports whether err's chain contains an *Error of the given kind.
func HasKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if stderrors.As(err, &e) {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}
