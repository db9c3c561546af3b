package webgl

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

// Frame is one presented drawing buffer.
type Frame struct {
	ColorSpace string
	ContextID  uuid.UUID
	Handle     uint64
	Generation resource.Epoch
	Width      int32
	Height     int32
}

// Compositor receives presented frames.
type Compositor interface {
	PresentFrame(Frame) error
}

// Flush settles the pending automatic flush. With ForwardFlush set, a
// flush is sent to the executor even if none was pending.
func (c *Context) Flush() {
	defer c.scope("flush")()
	g := c.live()
	if g == nil {
		return
	}
	pending := c.flushTask.Cancel()
	c.flushTask = nil
	if pending || c.opts.ForwardFlush {
		g.disp.Run(dispatch.MethodFlush)
	}
}

// Finish waits until the executor has completed every command.
func (c *Context) Finish() {
	defer c.scope("finish")()
	g := c.live()
	if g == nil {
		return
	}
	c.flushTask.Cancel()
	c.flushTask = nil
	g.disp.Query(nil, dispatch.MethodFinish)
}

// GetSupportedExtensions lists the extensions GetExtension can enable, or
// nil while the context is lost.
func (c *Context) GetSupportedExtensions() []string {
	defer c.scope("getSupportedExtensions")()
	g := c.live()
	if g == nil {
		return nil
	}
	out := append([]string(nil), g.info.Extensions...)
	if !slices.Contains(out, glenum.LoseContextExtension) {
		out = append(out, glenum.LoseContextExtension)
	}
	return out
}

// GetExtension enables and returns the named extension. WEBGL_lose_context
// returns a *LoseContextExtension; anything else an *Extension. Unknown
// names yield nil.
func (c *Context) GetExtension(name string) any {
	defer c.scope("getExtension")()
	g := c.live()
	if g == nil {
		return nil
	}
	if strings.EqualFold(name, glenum.LoseContextExtension) {
		return c.loseExt
	}
	var canonical string
	for _, e := range g.info.Extensions {
		if strings.EqualFold(e, name) {
			canonical = e
			break
		}
	}
	if canonical == "" {
		return nil
	}
	if ext := g.extensions[canonical]; ext != nil {
		return ext
	}
	var ok bool
	if !g.disp.Query(&ok, dispatch.MethodEnableExtension, canonical) || !ok {
		return nil
	}
	ext := &Extension{Name: canonical}
	g.extensions[canonical] = ext
	return ext
}

// DrawingBufferWidth returns the width of the drawing buffer.
func (c *Context) DrawingBufferWidth() int32 { return c.opts.Attributes.Width }

// DrawingBufferHeight returns the height of the drawing buffer.
func (c *Context) DrawingBufferHeight() int32 { return c.opts.Attributes.Height }

// DrawingBufferColorSpace returns the color space tag of the drawing
// buffer.
func (c *Context) DrawingBufferColorSpace() string { return c.opts.Attributes.ColorSpace }

// CanvasDirty reports whether something was drawn to the default
// framebuffer since the last presentation.
func (c *Context) CanvasDirty() bool { return c.canvasDirty }

// LossReason returns why the context was last lost.
func (c *Context) LossReason() dispatch.LossReason { return c.lossReason }

// OnBeforePaintTransaction presents the canvas if it was drawn to.
func (c *Context) OnBeforePaintTransaction() {
	if err := c.Present(); err != nil {
		Logger().Warn("present failed", zap.Stringer("context", c.id), zap.Error(err))
	}
}

// Present hands the drawing buffer to the compositor if the canvas is
// dirty. The error is the compositor's.
func (c *Context) Present() error {
	g := c.live()
	if g == nil || !c.canvasDirty {
		return nil
	}
	var info *dispatch.FrameInfo
	if !g.disp.Query(&info, dispatch.MethodPresent) || info == nil {
		return nil
	}
	c.canvasDirty = false
	frame := Frame{
		Handle:     info.Handle,
		Width:      info.Width,
		Height:     info.Height,
		ColorSpace: c.opts.Attributes.ColorSpace,
		ContextID:  c.id,
		Generation: g.epoch,
	}
	Logger().Debug("present",
		zap.Stringer("context", c.id),
		zap.Uint64("frame", frame.Handle),
		zap.Uint64("epoch", uint64(frame.Generation)))
	if c.opts.Compositor == nil {
		return nil
	}
	return c.opts.Compositor.PresentFrame(frame)
}
