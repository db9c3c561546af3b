package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

func idOf[H handleRef](h H) uint64 {
	var zero H
	if h == zero {
		return 0
	}
	return uint64(h.Base().ID())
}

func validBufferTarget(target uint32) bool {
	switch target {
	case glenum.ArrayBuffer, glenum.ElementArrayBuffer,
		glenum.CopyReadBuffer, glenum.CopyWriteBuffer,
		glenum.PixelPackBuffer, glenum.PixelUnpackBuffer,
		glenum.TransformFeedbackBuffer, glenum.UniformBuffer:
		return true
	}
	return false
}

func validUsage(usage uint32) bool {
	switch usage {
	case 0x88E0, 0x88E1, 0x88E2, // STREAM_DRAW/READ/COPY
		0x88E4, 0x88E5, 0x88E6, // STATIC_*
		0x88E8, 0x88E9, 0x88EA: // DYNAMIC_*
		return true
	}
	return false
}

func (g *Generation) boundBuffer(target uint32) *Buffer {
	if target == glenum.ElementArrayBuffer {
		return g.vertexState().indexBuffer
	}
	return g.buffers[target]
}

// bindCompatible fixes b's kind on its first bind and rejects binds that
// would mix index and non-index use.
func (c *Context) bindCompatible(b *Buffer, target uint32) bool {
	if b == nil {
		return true
	}
	want := bufferNonIndex
	if target == glenum.ElementArrayBuffer {
		want = bufferIndex
	}
	switch {
	case b.kind == bufferUndefined:
		if target != glenum.CopyReadBuffer && target != glenum.CopyWriteBuffer {
			b.kind = want
		}
		return true
	case b.kind != want && target != glenum.CopyReadBuffer && target != glenum.CopyWriteBuffer:
		c.enqueueError(glenum.InvalidOperation, "Buffer already contains %s data.", b.kind)
		return false
	}
	return true
}

func (k bufferKind) String() string {
	switch k {
	case bufferIndex:
		return "element"
	case bufferNonIndex:
		return "non-element"
	}
	return "undefined"
}

// BindBuffer binds b (or nothing) to target.
func (c *Context) BindBuffer(target uint32, b *Buffer) {
	defer c.scope("bindBuffer")()
	if !validOrNil(c, b, "buffer") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if !validBufferTarget(target) {
		c.enumError("target", target)
		return
	}
	if target == glenum.TransformFeedbackBuffer && g.tfActive() {
		c.enqueueError(glenum.InvalidOperation, "Cannot change TRANSFORM_FEEDBACK_BUFFER while transform feedback is active.")
		return
	}
	if !c.bindCompatible(b, target) {
		return
	}
	if target == glenum.ElementArrayBuffer {
		resource.Assign(&g.vertexState().indexBuffer, b)
	} else {
		bindAt(g.buffers, target, b)
	}
	c.run(g, dispatch.MethodBindBuffer, target, idOf(b))
}

// BindBufferBase binds the whole of b to an indexed target.
func (c *Context) BindBufferBase(target, index uint32, b *Buffer) {
	defer c.scope("bindBufferBase")()
	c.bindIndexed(target, index, b, 0, 0)
}

// BindBufferRange binds [offset, offset+size) of b to an indexed target.
func (c *Context) BindBufferRange(target, index uint32, b *Buffer, offset, size int64) {
	defer c.scope("bindBufferRange")()
	if b != nil && (offset < 0 || size <= 0) {
		c.enqueueError(glenum.InvalidValue, "`offset` must be non-negative and `size` positive.")
		return
	}
	c.bindIndexed(target, index, b, offset, size)
}

func (c *Context) bindIndexed(target, index uint32, b *Buffer, offset, size int64) {
	if !validOrNil(c, b, "buffer") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	var slots []*Buffer
	switch target {
	case glenum.UniformBuffer:
		slots = g.uniformBuffers
	case glenum.TransformFeedbackBuffer:
		if g.tfActive() {
			c.enqueueError(glenum.InvalidOperation, "Cannot change TRANSFORM_FEEDBACK_BUFFER while transform feedback is active.")
			return
		}
		slots = g.tfState().buffers
	default:
		c.enumError("target", target)
		return
	}
	if int(index) >= len(slots) {
		c.enqueueError(glenum.InvalidValue, "`index` %d exceeds the number of binding points (%d).", index, len(slots))
		return
	}
	if !c.bindCompatible(b, target) {
		return
	}
	resource.Assign(&slots[index], b)
	bindAt(g.buffers, target, b)
	c.run(g, dispatch.MethodBindBufferRange, target, index, idOf(b), offset, size)
}

func (c *Context) validBufferFor(g *Generation, target uint32) *Buffer {
	if !validBufferTarget(target) {
		c.enumError("target", target)
		return nil
	}
	b := g.boundBuffer(target)
	if b == nil {
		c.enqueueError(glenum.InvalidOperation, "No buffer bound to `target` 0x%04x.", target)
		return nil
	}
	if target == glenum.TransformFeedbackBuffer && g.tfActive() {
		c.enqueueError(glenum.InvalidOperation, "Buffer is bound for active transform feedback.")
		return nil
	}
	return b
}

// BufferData allocates storage for the buffer bound to target and fills it
// with data.
func (c *Context) BufferData(target uint32, data []byte, usage uint32) {
	defer c.scope("bufferData")()
	c.bufferData(target, int64(len(data)), data, usage)
}

// BufferDataSize allocates size zeroed bytes for the buffer bound to target.
func (c *Context) BufferDataSize(target uint32, size int64, usage uint32) {
	defer c.scope("bufferData")()
	if size < 0 {
		c.enqueueError(glenum.InvalidValue, "`size` must be non-negative.")
		return
	}
	c.bufferData(target, size, nil, usage)
}

// inRange reports whether [offset, offset+n) lies within size bytes.
func inRange(offset, n, size int64) bool {
	return offset >= 0 && n >= 0 && n <= size && offset <= size-n
}

func (c *Context) bufferData(target uint32, size int64, data []byte, usage uint32) {
	g := c.live()
	if g == nil {
		return
	}
	if !validUsage(usage) {
		c.enumError("usage", usage)
		return
	}
	b := c.validBufferFor(g, target)
	if b == nil {
		return
	}
	if limit := g.info.Limits.MaxBufferSize; limit > 0 && size > limit {
		c.enqueueError(glenum.OutOfMemory, "`size` exceeds the maximum buffer size (%d).", limit)
		return
	}
	b.size = size
	if data == nil {
		c.run(g, dispatch.MethodBufferData, target, size, nil, usage)
		return
	}
	c.runWithBytes(g, dispatch.MethodBufferData, target, size, data, usage)
}

// BufferSubData overwrites part of the buffer bound to target.
func (c *Context) BufferSubData(target uint32, offset int64, data []byte) {
	defer c.scope("bufferSubData")()
	g := c.live()
	if g == nil {
		return
	}
	b := c.validBufferFor(g, target)
	if b == nil {
		return
	}
	if offset < 0 {
		c.enqueueError(glenum.InvalidValue, "`offset` must be non-negative.")
		return
	}
	if !inRange(offset, int64(len(data)), b.size) {
		c.enqueueError(glenum.InvalidValue, "`offset` + `data.length` exceeds the buffer size (%d).", b.size)
		return
	}
	if len(data) == 0 {
		return
	}
	c.runWithBytes(g, dispatch.MethodBufferSubData, target, offset, data)
}

// GetBufferSubData reads len(dst) bytes at offset from the buffer bound to
// target. It waits for the executor.
func (c *Context) GetBufferSubData(target uint32, offset int64, dst []byte) {
	defer c.scope("getBufferSubData")()
	g := c.live()
	if g == nil {
		return
	}
	b := c.validBufferFor(g, target)
	if b == nil {
		return
	}
	if !inRange(offset, int64(len(dst)), b.size) {
		c.enqueueError(glenum.InvalidValue, "`offset` + `dst.length` exceeds the buffer size (%d).", b.size)
		return
	}
	if len(dst) == 0 {
		return
	}
	var out []byte
	if g.disp.Query(&out, dispatch.MethodGetBufferSubData, target, offset, int64(len(dst))) {
		copy(dst, out)
	}
}

// CopyBufferSubData copies size bytes between the buffers bound to
// readTarget and writeTarget.
func (c *Context) CopyBufferSubData(readTarget, writeTarget uint32, readOffset, writeOffset, size int64) {
	defer c.scope("copyBufferSubData")()
	g := c.live()
	if g == nil {
		return
	}
	src := c.validBufferFor(g, readTarget)
	if src == nil {
		return
	}
	dst := c.validBufferFor(g, writeTarget)
	if dst == nil {
		return
	}
	if readOffset < 0 || writeOffset < 0 || size < 0 {
		c.enqueueError(glenum.InvalidValue, "Offsets and `size` must be non-negative.")
		return
	}
	if !inRange(readOffset, size, src.size) || !inRange(writeOffset, size, dst.size) {
		c.enqueueError(glenum.InvalidValue, "Copy range exceeds the buffer size.")
		return
	}
	if src == dst && readOffset < writeOffset+size && writeOffset < readOffset+size {
		c.enqueueError(glenum.InvalidValue, "Ranges overlap within the same buffer.")
		return
	}
	if src.kind != dst.kind && src.kind != bufferUndefined && dst.kind != bufferUndefined {
		c.enqueueError(glenum.InvalidOperation, "Cannot copy between element and non-element buffers.")
		return
	}
	c.run(g, dispatch.MethodCopyBufferSubData, readTarget, writeTarget, readOffset, writeOffset, size)
}
