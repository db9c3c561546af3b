// Package webgl is the client side of a proxied WebGL context.
//
// A Context validates every call locally against its current Generation,
// keeps the bookkeeping the API exposes (bindings, cached state, link
// results, query availability) and forwards accepted calls to an executor
// through a dispatch.Dispatcher. The executor may run in-process or in
// another process; the Context does not care which.
//
// # Handles
//
// Every resource (Buffer, Texture, Program, ...) embeds resource.Object.
// A handle is usable only while the generation that created it is the
// context's current one and no delete was requested. Loss ends the
// generation, so every outstanding handle becomes unusable at once and stays
// unusable after a restore.
//
// Handles start with one reference, held by the caller. Release drops it;
// when the last reference goes away the executor-side object is deleted
// unless it was deleted explicitly already. Programs and shaders are kept
// alive by keepalive tokens as long as a live program references them.
//
// # Threading
//
// A Context is owned by one goroutine, the one draining its task queue.
// Executor notifications, deferred warnings, availability updates and the
// automatic flush are all tasks on that queue:
//
//	ctx, err := webgl.New(opts)
//	...
//	ctx.Clear(glenum.ColorBufferBit)
//	ctx.Queue().RunPending() // flushes, delivers warnings
//
// # Errors
//
// Script-facing misuse never returns a Go error and never panics. It is
// reported as a warning tagged with the outermost API call name and, while
// the context is live, as a GL error code returned by GetError.
package webgl
