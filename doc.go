// Package glproxy is a client-side WebGL command proxy.
//
// Script-facing calls are validated locally and forwarded to an executor
// that owns the real GPU objects. The executor may run in the same process
// or in another one reached over a framed stream.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	glproxy/
//	├── webgl/           Client context: validation, bookkeeping, loss and restore
//	├── dispatch/        Method table, Dispatcher, local and remote executors, wire frames
//	├── host/            Reference in-memory executor, frame server and connectors
//	├── resource/        Object ids, generations, ref-counted handle tables
//	├── keepalive/       Shared liveness tokens for programs and shaders
//	├── taskqueue/       Single-threaded task queue the context runs on
//	├── glenum/          GL enum values checked by validation
//	├── config/          glproxy.toml loading, connector and logger setup
//	├── errors/          Structured error types for debugging
//	└── cmd/glconsole/   Script runner and interactive console
//
// # Quick Start
//
// Create a context against an in-process executor:
//
//	opts := webgl.DefaultOptions()
//	opts.Connector = &host.InProcess{}
//	ctx, err := webgl.New(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	ctx.ClearColor(0, 0, 0, 1)
//	ctx.Clear(glenum.ColorBufferBit)
//	ctx.Queue().RunPending() // automatic flush, warnings, notifications
//
// Use host.Pipe to push every call through the wire codec, or host.Spawn to
// run the executor as a child process (glconsole -serve).
//
// # Context Loss
//
// Loss ends the current generation. Every handle created before it stays
// unusable, including after a restore. A lost event whose default is
// prevented allows RestoreContext; losses caused by the executor or driver
// are restored automatically in that case.
//
// # Thread Safety
//
// A Context is NOT thread-safe. It belongs to the goroutine that drains its
// task queue. Executors may deliver notifications from other goroutines;
// they are posted to the queue and handled on its goroutine.
package glproxy
