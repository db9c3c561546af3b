package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

const halfFloat = 0x140B

func vertexTypeSize(typ uint32) int64 {
	switch typ {
	case glenum.Byte, glenum.UnsignedByte:
		return 1
	case glenum.Short, glenum.UnsignedShort, halfFloat:
		return 2
	case glenum.Int, glenum.UnsignedInt, glenum.Float:
		return 4
	}
	return 0
}

// attribIndex validates a vertex attribute index.
func (c *Context) attribIndex(g *Generation, index uint32) bool {
	if int64(index) >= int64(g.info.Limits.MaxVertexAttribs) {
		c.enqueueError(glenum.InvalidValue, "`index` (%d) must be less than MAX_VERTEX_ATTRIBS (%d).", index, g.info.Limits.MaxVertexAttribs)
		return false
	}
	return true
}

// BindVertexArray binds va, or the default vertex array for nil.
func (c *Context) BindVertexArray(va *VertexArray) {
	defer c.scope("bindVertexArray")()
	if !validOrNil(c, va, "vao") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if va != nil {
		va.bound = true
	}
	resource.Assign(&g.vao, va)
	c.run(g, dispatch.MethodBindVertexArray, idOf(va))
	// The index buffer binding is vertex array state.
	c.run(g, dispatch.MethodBindBuffer, glenum.ElementArrayBuffer, idOf(g.vertexState().indexBuffer))
}

// EnableVertexAttribArray enables the array for attribute index.
func (c *Context) EnableVertexAttribArray(index uint32) {
	defer c.scope("enableVertexAttribArray")()
	c.setAttribArray(index, true)
}

// DisableVertexAttribArray disables the array for attribute index.
func (c *Context) DisableVertexAttribArray(index uint32) {
	defer c.scope("disableVertexAttribArray")()
	c.setAttribArray(index, false)
}

func (c *Context) setAttribArray(index uint32, on bool) {
	g := c.live()
	if g == nil || !c.attribIndex(g, index) {
		return
	}
	g.vertexState().attrib(index, g.info.Limits.MaxVertexAttribs).enabled = on
	c.run(g, dispatch.MethodVertexAttribArray, index, on)
}

// VertexAttribPointer sources attribute index from the bound ARRAY_BUFFER.
// With no buffer bound only offset 0 is accepted.
func (c *Context) VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride int32, offset int64) {
	defer c.scope("vertexAttribPointer")()
	g := c.live()
	if g == nil || !c.attribIndex(g, index) {
		return
	}
	if size < 1 || size > 4 {
		c.enqueueError(glenum.InvalidValue, "`size` must be 1, 2, 3 or 4.")
		return
	}
	typeSize := vertexTypeSize(typ)
	if typeSize == 0 {
		c.enumError("type", typ)
		return
	}
	if stride < 0 || stride > 255 {
		c.enqueueError(glenum.InvalidValue, "`stride` must be in [0, 255].")
		return
	}
	if offset < 0 {
		c.enqueueError(glenum.InvalidValue, "`offset` must be non-negative.")
		return
	}
	if int64(stride)%typeSize != 0 || offset%typeSize != 0 {
		c.enqueueError(glenum.InvalidOperation, "`stride` and `offset` must be multiples of the type size (%d).", typeSize)
		return
	}
	buf := g.buffers[glenum.ArrayBuffer]
	if buf == nil && offset != 0 {
		c.enqueueError(glenum.InvalidOperation, "No ARRAY_BUFFER is bound and `offset` is non-zero.")
		return
	}
	a := g.vertexState().attrib(index, g.info.Limits.MaxVertexAttribs)
	resource.Assign(&a.buffer, buf)
	a.size, a.typ, a.normalized, a.stride, a.offset = size, typ, normalized, stride, offset
	c.run(g, dispatch.MethodVertexAttribPointer, index, int64(size), typ, normalized, int64(stride), offset)
}

// VertexAttribDivisor sets the instancing divisor of attribute index.
func (c *Context) VertexAttribDivisor(index, divisor uint32) {
	defer c.scope("vertexAttribDivisor")()
	g := c.live()
	if g == nil || !c.attribIndex(g, index) {
		return
	}
	g.vertexState().attrib(index, g.info.Limits.MaxVertexAttribs).divisor = divisor
	c.run(g, dispatch.MethodVertexAttribDivisor, index, divisor)
}

// VertexAttrib4f sets the generic value used when the array is disabled.
func (c *Context) VertexAttrib4f(index uint32, x, y, z, w float32) {
	defer c.scope("vertexAttrib4f")()
	g := c.live()
	if g == nil || !c.attribIndex(g, index) {
		return
	}
	g.genericAttribs[index] = [4]float32{x, y, z, w}
	c.run(g, dispatch.MethodVertexAttrib4f, index, x, y, z, w)
}

// GetVertexAttrib answers attribute state from the bound vertex array.
func (c *Context) GetVertexAttrib(index, pname uint32) any {
	defer c.scope("getVertexAttrib")()
	g := c.live()
	if g == nil || !c.attribIndex(g, index) {
		return nil
	}
	a := *g.vertexState().attrib(index, g.info.Limits.MaxVertexAttribs)
	if a.typ == 0 {
		a.size, a.typ = 4, glenum.Float
	}
	switch pname {
	case glenum.VertexAttribArrayBufferBinding:
		return handleOrNil(a.buffer)
	case glenum.VertexAttribArrayEnabled:
		return a.enabled
	case glenum.VertexAttribArraySize:
		return a.size
	case glenum.VertexAttribArrayStride:
		return a.stride
	case glenum.VertexAttribArrayType:
		return a.typ
	case glenum.VertexAttribArrayNormalized:
		return a.normalized
	case glenum.VertexAttribArrayDivisor:
		return a.divisor
	case glenum.CurrentVertexAttrib:
		v, ok := g.genericAttribs[index]
		if !ok {
			v = [4]float32{0, 0, 0, 1}
		}
		return v[:]
	}
	c.enumError("pname", pname)
	return nil
}
