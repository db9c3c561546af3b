package webgl

import (
	"time"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/taskqueue"
)

// DefaultMaxWarnings is the number of warnings a context reports before it
// goes quiet.
const DefaultMaxWarnings = 32

// DefaultConnectTimeout bounds executor creation and restore attempts.
const DefaultConnectTimeout = 10 * time.Second

// Options configure a Context.
type Options struct {
	// Connector creates the executor side. Required.
	Connector dispatch.Connector
	// Queue is the task queue the context runs on. A new one is created
	// if nil.
	Queue *taskqueue.Queue
	// Compositor receives presented frames. Optional.
	Compositor Compositor
	// OnWarning receives every script-facing warning, on a later task.
	OnWarning func(string)
	// PinHeap enters a region in which script-heap bytes passed to a call
	// must stay put and returns the function that leaves it. Optional.
	PinHeap func() (unpin func())

	Attributes dispatch.Attributes

	ConnectTimeout time.Duration
	// MaxWarnings caps reported warnings; negative means unlimited.
	MaxWarnings int
	// AutoFlush schedules one executor flush per task queue turn in which
	// commands were issued.
	AutoFlush bool
	// ForwardFlush sends explicit Flush calls to the executor. When false
	// Flush only settles the pending automatic flush.
	ForwardFlush bool
}

// DefaultOptions returns the options a browser-like context starts with.
func DefaultOptions() Options {
	return Options{
		Attributes: dispatch.Attributes{
			Width:              300,
			Height:             150,
			Alpha:              true,
			Depth:              true,
			Antialias:          true,
			PremultipliedAlpha: true,
			WebGL2:             true,
			ColorSpace:         "srgb",
		},
		ConnectTimeout: DefaultConnectTimeout,
		MaxWarnings:    DefaultMaxWarnings,
		AutoFlush:      true,
		ForwardFlush:   true,
	}
}
