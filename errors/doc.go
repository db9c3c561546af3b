// Package errors provides structured error types for the glproxy module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the dispatched method name, the affected object and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidFrame).
//		Method("bufferData").
//		Detail("truncated argument list").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownMethod(errors.PhaseDispatch, id)
//	err := errors.ExecutorFailure(errors.PhaseTransport, "flush", ioErr)
//
// These errors describe Go-level failures (transport, configuration, executor
// creation). Script-facing validation failures never surface as Go errors; they
// are reported through the context's warning channel and GL error queue.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
