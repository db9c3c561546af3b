package webgl

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
)

// scope names the API call being executed. Nested scopes keep the
// outermost name, so warnings from helpers carry the caller's name.
//
//	defer c.scope("bindTexture")()
func (c *Context) scope(name string) func() {
	if c.scopeDepth == 0 {
		c.scopeName = name
	}
	c.scopeDepth++
	return func() {
		c.scopeDepth--
		if c.scopeDepth == 0 {
			c.scopeName = ""
		}
	}
}

// enqueueError records code for GetError while the context is live and
// reports the message as a warning.
func (c *Context) enqueueError(code uint32, format string, args ...any) {
	if c.status == StatusLive {
		c.recordError(code)
	}
	c.enqueueWarning(fmt.Sprintf(format, args...))
}

// recordError appends code to the error queue unless it is already
// pending. The queue holds each code at most once, oldest first.
func (c *Context) recordError(code uint32) {
	if code == glenum.NoError {
		return
	}
	for _, e := range c.glErrors {
		if e == code {
			return
		}
	}
	c.glErrors = append(c.glErrors, code)
}

func (c *Context) enqueueWarning(msg string) {
	c.postWarning(c.tag("WebGL warning", msg))
}

func (c *Context) enqueuePerfWarning(msg string) {
	c.postWarning(c.tag("WebGL perf warning", msg))
}

func (c *Context) tag(prefix, msg string) string {
	if c.scopeName == "" {
		return prefix + ": " + msg
	}
	return prefix + ": " + c.scopeName + ": " + msg
}

// postWarning delivers text on a later task. After MaxWarnings warnings a
// final notice is sent and the rest are dropped.
func (c *Context) postWarning(text string) {
	limit := c.opts.MaxWarnings
	if limit >= 0 && c.warnings >= limit {
		return
	}
	c.warnings++
	c.deliver(text)
	if c.warnings == limit {
		c.deliver(fmt.Sprintf("WebGL warning: After reporting %d, no further warnings will be reported for this WebGL context.", limit))
	}
}

func (c *Context) deliver(text string) {
	onWarning := c.opts.OnWarning
	id := c.id
	c.queue.Post("warning", func() {
		Logger().Debug("webgl warning", zap.Stringer("context", id), zap.String("message", text))
		if onWarning != nil {
			onWarning(text)
		}
	})
}

// IsUsable reports whether h belongs to the current generation and was not
// deleted.
func (c *Context) IsUsable(h Handle) bool {
	return h.Base().IsForOwner(c.owner) && !h.IsDeleted()
}

// ValidateUsable checks h before use. It reports a failure as a warning
// and GL error and returns false; it never panics.
func (c *Context) ValidateUsable(h Handle, argName string) bool {
	if c.IsUsable(h) {
		return true
	}
	if !h.Base().IsForOwner(c.owner) {
		c.enqueueError(glenum.InvalidOperation, "`%s` is from a different (or lost) WebGL context.", argName)
		return false
	}
	c.enqueueError(h.deletedError(), "Object `%s` is already deleted.", argName)
	return false
}

// ValidateForContext is the check used by Delete* calls. A handle from a
// dead generation of this context fails silently; one from another context
// is reported.
func (c *Context) ValidateForContext(h Handle, argName string) bool {
	b := h.Base()
	if b.Owner() != c.owner {
		c.enqueueError(glenum.InvalidOperation, "`%s` is from a different WebGL context.", argName)
		return false
	}
	return b.IsForOwner(c.owner)
}

// valid validates a non-nullable handle argument.
func valid[H handleRef](c *Context, h H, argName string) bool {
	var zero H
	if h == zero {
		c.enqueueError(glenum.InvalidValue, "`%s` must not be null.", argName)
		return false
	}
	return c.ValidateUsable(any(h).(Handle), argName)
}

// validOrNil validates a nullable handle argument.
func validOrNil[H handleRef](c *Context, h H, argName string) bool {
	var zero H
	if h == zero {
		return true
	}
	return c.ValidateUsable(any(h).(Handle), argName)
}

func (c *Context) enumError(argName string, v uint32) {
	c.enqueueError(glenum.InvalidEnum, "Bad `%s`: 0x%04x", argName, v)
}

// GetError returns the oldest pending error and removes it. Locally
// recorded errors come first; a lost context reports nothing after that.
func (c *Context) GetError() uint32 {
	defer c.scope("getError")()
	if len(c.glErrors) > 0 {
		code := c.glErrors[0]
		c.glErrors = c.glErrors[1:]
		return code
	}
	g := c.live()
	if g == nil {
		return glenum.NoError
	}
	var code uint32
	if !g.disp.Query(&code, dispatch.MethodGetError) {
		return glenum.NoError
	}
	return code
}
