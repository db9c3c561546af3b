package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
)

func validDrawMode(mode uint32) bool {
	return mode <= glenum.TriangleFan
}

func indexTypeSize(typ uint32) int64 {
	switch typ {
	case glenum.UnsignedByte:
		return 1
	case glenum.UnsignedShort:
		return 2
	case glenum.UnsignedInt:
		return 4
	}
	return 0
}

// checkDraw validates the state every draw needs.
func (c *Context) checkDraw(g *Generation, mode uint32) bool {
	if !validDrawMode(mode) {
		c.enumError("mode", mode)
		return false
	}
	if g.program == nil || g.activeLink == nil {
		c.enqueueError(glenum.InvalidOperation, "The current program is not linked.")
		return false
	}
	for i, a := range g.vertexState().attribs {
		if a.enabled && a.buffer == nil {
			c.enqueueError(glenum.InvalidOperation, "Vertex attrib array %d is enabled but no buffer is bound.", i)
			return false
		}
	}
	if s := g.tfState(); s.active && !s.paused && s.program != g.program {
		c.enqueueError(glenum.InvalidOperation, "Transform feedback is active with a different program.")
		return false
	}
	return true
}

// afterDraw marks the canvas for presentation when the draw targeted the
// default framebuffer.
func (c *Context) afterDraw(g *Generation) {
	if g.drawFB == nil {
		c.canvasDirty = true
	}
}

// DrawArrays draws count vertices starting at first.
func (c *Context) DrawArrays(mode uint32, first, count int32) {
	defer c.scope("drawArrays")()
	c.drawArrays(mode, first, count, 1)
}

// DrawArraysInstanced draws instances copies of a vertex range.
func (c *Context) DrawArraysInstanced(mode uint32, first, count, instances int32) {
	defer c.scope("drawArraysInstanced")()
	c.drawArrays(mode, first, count, instances)
}

func (c *Context) drawArrays(mode uint32, first, count, instances int32) {
	g := c.live()
	if g == nil {
		return
	}
	if first < 0 || count < 0 || instances < 0 {
		c.enqueueError(glenum.InvalidValue, "`first`, `count` and `instanceCount` must be non-negative.")
		return
	}
	if !c.checkDraw(g, mode) {
		return
	}
	c.run(g, dispatch.MethodDrawArrays, mode, int64(first), int64(count), int64(instances))
	c.afterDraw(g)
}

// DrawElements draws count indices from the bound ELEMENT_ARRAY_BUFFER.
func (c *Context) DrawElements(mode uint32, count int32, typ uint32, offset int64) {
	defer c.scope("drawElements")()
	c.drawElements(mode, count, typ, offset, 1)
}

// DrawElementsInstanced draws instances copies of an indexed range.
func (c *Context) DrawElementsInstanced(mode uint32, count int32, typ uint32, offset int64, instances int32) {
	defer c.scope("drawElementsInstanced")()
	c.drawElements(mode, count, typ, offset, instances)
}

// DrawRangeElements is DrawElements with a hint of the index range used.
func (c *Context) DrawRangeElements(mode, start, end uint32, count int32, typ uint32, offset int64) {
	defer c.scope("drawRangeElements")()
	if end < start {
		c.enqueueError(glenum.InvalidValue, "`end` must be >= `start`.")
		return
	}
	c.drawElements(mode, count, typ, offset, 1)
}

func (c *Context) drawElements(mode uint32, count int32, typ uint32, offset int64, instances int32) {
	g := c.live()
	if g == nil {
		return
	}
	if count < 0 || offset < 0 || instances < 0 {
		c.enqueueError(glenum.InvalidValue, "`count`, `offset` and `instanceCount` must be non-negative.")
		return
	}
	size := indexTypeSize(typ)
	if size == 0 {
		c.enumError("type", typ)
		return
	}
	if offset%size != 0 {
		c.enqueueError(glenum.InvalidOperation, "`offset` must be a multiple of the index size (%d).", size)
		return
	}
	ib := g.vertexState().indexBuffer
	if ib == nil {
		c.enqueueError(glenum.InvalidOperation, "No ELEMENT_ARRAY_BUFFER bound.")
		return
	}
	if !inRange(offset, int64(count)*size, ib.size) {
		c.enqueueError(glenum.InvalidOperation, "Index range exceeds the ELEMENT_ARRAY_BUFFER size (%d).", ib.size)
		return
	}
	if !c.checkDraw(g, mode) {
		return
	}
	c.run(g, dispatch.MethodDrawElements, mode, int64(count), typ, offset, int64(instances))
	c.afterDraw(g)
}
