package host

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/errors"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

// DefaultLimits are the limits a Device reports unless overridden.
var DefaultLimits = dispatch.Limits{
	MaxTextureSize:       4096,
	MaxTextureUnits:      16,
	MaxVertexAttribs:     16,
	MaxColorAttachments:  4,
	MaxDrawBuffers:       4,
	MaxUniformBindings:   24,
	MaxTransformFeedback: 4,
	MaxViewportDims:      4096,
	MaxBufferSize:        1 << 30,
}

// DefaultExtensions are the extensions a Device advertises.
var DefaultExtensions = []string{
	"EXT_color_buffer_float",
	"OES_texture_float_linear",
	"WEBGL_debug_renderer_info",
	glenum.LoseContextExtension,
}

type bindingKey struct {
	target uint32
	index  uint32
}

type object struct {
	compile    *dispatch.CompileResult
	link       *dispatch.LinkResult
	attached   map[uint32]uint64
	attribLocs map[string]int32
	params     map[uint32]int64
	source     string
	data       []byte
	varyings   []string
	id         uint64
	queryValue uint64
	queryStart uint64
	kind       resource.Kind
	shaderType uint32
	target     uint32
	signaled   bool
	available  bool
}

// Device is an in-memory executor. It keeps the bookkeeping a GL driver
// would expose (objects, bindings, fixed-function state, compile and link
// results, query and sync status, the error queue) without rendering.
//
// Devices are safe for concurrent use; calls are serialized.
type Device struct {
	notify  dispatch.Notifier
	failErr error

	objects   map[uint64]*object
	buffers   map[uint32]uint64
	indexed   map[bindingKey]uint64
	textures  map[bindingKey]uint64
	samplers  map[uint32]uint64
	queries   map[uint32]uint64
	enabled   map[uint32]bool
	pixel     map[uint32]int64
	exts      map[string]bool
	attribs   map[uint32]bool
	tfState   struct{ active, paused bool }
	info      dispatch.InitResult
	req       dispatch.InitRequest
	outbox    []dispatch.Notification
	calls     []dispatch.Method
	glErrors  []uint32
	syncs     []uint64
	viewport  [4]int64
	scissor   [4]int64
	color     [4]float64
	blend     [4]float64
	depth     [2]float64
	mask      [4]bool
	blendFunc [2]uint32
	depthFunc uint32
	drawFB    uint64
	readFB    uint64
	rb        uint64
	program   uint64
	vao       uint64
	tf        uint64
	draws     uint64
	frames    uint64
	unit      uint32
	mu        sync.Mutex
	lost      bool
	closed    bool
}

// NewDevice creates a device for req. Notifications are delivered to
// notify after the call that produced them returns.
func NewDevice(req dispatch.InitRequest, notify dispatch.Notifier) *Device {
	d := &Device{
		notify:    notify,
		req:       req,
		objects:   make(map[uint64]*object),
		buffers:   make(map[uint32]uint64),
		indexed:   make(map[bindingKey]uint64),
		textures:  make(map[bindingKey]uint64),
		samplers:  make(map[uint32]uint64),
		queries:   make(map[uint32]uint64),
		enabled:   map[uint32]bool{glenum.Dither: true},
		pixel:     map[uint32]int64{glenum.PackAlignment: 4, glenum.UnpackAlignment: 4},
		exts:      make(map[string]bool),
		attribs:   make(map[uint32]bool),
		viewport:  [4]int64{0, 0, int64(req.Attributes.Width), int64(req.Attributes.Height)},
		scissor:   [4]int64{0, 0, int64(req.Attributes.Width), int64(req.Attributes.Height)},
		depth:     [2]float64{0, 1},
		mask:      [4]bool{true, true, true, true},
		blendFunc: [2]uint32{glenum.One, glenum.Zero},
		depthFunc: glenum.Less,
		info: dispatch.InitResult{
			Vendor:     "glproxy",
			Renderer:   "glproxy reference device",
			Extensions: append([]string(nil), DefaultExtensions...),
			Limits:     DefaultLimits,
		},
	}
	return d
}

// Info returns what the device reports at creation.
func (d *Device) Info() dispatch.InitResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

// Handle executes one call.
func (d *Device) Handle(call dispatch.Call) (any, error) {
	v, out, err := d.handle(call)
	if d.notify != nil {
		for _, n := range out {
			d.notify(n)
		}
	}
	return v, err
}

// handle runs one call under the lock and collects the notifications it
// produced. A panicking handler fails the call instead of the process.
func (d *Device) handle(call dispatch.Call) (v any, out []dispatch.Notification, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		out = d.outbox
		d.outbox = nil
	}()
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("handler panicked",
				zap.Stringer("method", call.Method),
				zap.Any("panic", r))
			v, err = nil, errors.ExecutorFailure(errors.PhaseExecute, call.Method.String(), fmt.Errorf("panic: %v", r))
		}
	}()
	v, err = d.handleLocked(call)
	return
}

func (d *Device) handleLocked(call dispatch.Call) (any, error) {
	if d.closed {
		return nil, errors.Closed(errors.PhaseExecute, "device")
	}
	if d.failErr != nil {
		err := d.failErr
		d.failErr = nil
		return nil, errors.ExecutorFailure(errors.PhaseExecute, call.Method.String(), err)
	}
	h, ok := handlers[call.Method]
	if !ok {
		return nil, errors.UnknownMethod(errors.PhaseExecute, uint16(call.Method))
	}
	d.calls = append(d.calls, call.Method)

	if d.lost {
		// A lost driver context ignores everything but error polling.
		if call.Method == dispatch.MethodGetError {
			return glenum.ContextLostWebGL, nil
		}
		return nil, nil
	}

	r := &argReader{method: call.Method, args: call.Args}
	v := h(d, r)
	if r.err != nil {
		Logger().Warn("bad call arguments", zap.Stringer("method", call.Method), zap.Error(r.err))
		return nil, r.err
	}
	return v, nil
}

// glError records a GL error and reports it as a host warning.
func (d *Device) glError(code uint32, method dispatch.Method, msg string) {
	found := false
	for _, e := range d.glErrors {
		if e == code {
			found = true
			break
		}
	}
	if !found {
		d.glErrors = append(d.glErrors, code)
	}
	d.post(dispatch.Notification{
		Kind:   dispatch.NotifyHostError,
		Value:  uint64(code),
		Detail: method.String() + ": " + msg,
	})
}

func (d *Device) post(n dispatch.Notification) {
	d.outbox = append(d.outbox, n)
}

func (d *Device) lookup(id uint64, kind resource.Kind) *object {
	if id == 0 {
		return nil
	}
	o := d.objects[id]
	if o == nil || o.kind != kind {
		return nil
	}
	return o
}

// FailNext makes the next call fail as if the executor crashed.
func (d *Device) FailNext(err error) {
	d.mu.Lock()
	d.failErr = err
	d.mu.Unlock()
}

// LoseContext simulates a driver reset: the device stops executing calls
// and reports the loss.
func (d *Device) LoseContext() {
	d.mu.Lock()
	if d.lost {
		d.mu.Unlock()
		return
	}
	d.lost = true
	d.mu.Unlock()

	Logger().Info("device lost", zap.String("session", d.req.Session))
	if d.notify != nil {
		d.notify(dispatch.Notification{Kind: dispatch.NotifyContextLost, Reason: dispatch.LossDriver})
	}
}

// Close releases the device. Later calls fail.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.objects = nil
	return nil
}

// Calls returns the methods executed so far, in order.
func (d *Device) Calls() []dispatch.Method {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dispatch.Method(nil), d.calls...)
}

// CallCount returns how many times method was executed.
func (d *Device) CallCount(method dispatch.Method) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, m := range d.calls {
		if m == method {
			n++
		}
	}
	return n
}

// Has reports whether an object with id exists on the device.
func (d *Device) Has(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.objects[id]
	return ok
}

// Objects returns the number of live device objects.
func (d *Device) Objects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}

// BufferData returns a copy of a buffer's contents.
func (d *Device) BufferData(id uint64) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o := d.lookup(id, resource.KindBuffer); o != nil {
		return append([]byte(nil), o.data...)
	}
	return nil
}

// Session returns the session id the device was created for.
func (d *Device) Session() string {
	return d.req.Session
}
