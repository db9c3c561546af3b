// Package host provides a reference executor for glproxy contexts.
//
// A Device keeps the bookkeeping a GL driver exposes to a client (objects,
// bindings, fixed-function state, shader compile and program link results,
// query and fence status, the GL error queue) without rendering anything.
// Compilation and linking scan declarations in the shader source, which is
// enough to produce realistic uniform and attribute tables.
//
// Devices reach a client through a dispatch.Connector:
//
//	InProcess  dispatch.Local over a Device in the same process
//	Pipe       dispatch.Remote over net.Pipe to a Server goroutine
//	Spawn      dispatch.Remote over the stdio of an executor subprocess
//
// Tests use Device.FailNext and Device.LoseContext to inject executor
// crashes and driver resets.
package host
