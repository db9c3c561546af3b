// Package dispatch routes validated GL calls to a host executor.
//
// Every forwarded operation has a stable numeric Method id from a static
// table. A Dispatcher hands calls to an Executor, which is either Local
// (the host Handler runs in-process, immediately) or Remote (calls are
// encoded as CBOR frames and written to a stream read by a host Server).
// Call sites are identical in both cases:
//
//	d := dispatch.NewDispatcher(exec, onLoss)
//	d.Run(dispatch.MethodBindTexture, target, id)
//
//	var status uint32
//	d.Query(&status, dispatch.MethodCheckFramebufferStatus, target)
//
// # Argument lifetime
//
// Arguments that alias script-heap memory are passed with RunWithGCData
// and a NoGC guard. Executors consume byte arguments before Submit
// returns, so the dispatcher ends the guard right after Submit:
//
//	guard := dispatch.NewNoGC(heap.Unpin)
//	d.RunWithGCData(guard, dispatch.MethodBufferSubData, target, offset, heapBytes)
//
// # Wire protocol
//
// A remote session starts with a hello frame carrying an InitRequest,
// answered by a reply with the InitResult. Call frames carry a sequence
// number, method id and arguments; only calls that want a reply get one.
// Notify frames carry asynchronous reports: query availability, sync
// completion, link and compile results, host errors and context loss.
//
// # Failures
//
// The first executor error fails the Dispatcher and runs its failure
// callback once. Later calls are dropped. The client treats this as an
// implicit context loss.
package dispatch
