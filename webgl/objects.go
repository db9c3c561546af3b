package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/keepalive"
	"github.com/wippyai/glproxy/resource"
)

// register initializes o under the current epoch. Handles created while
// the context is lost belong to no live epoch and are never usable.
func (c *Context) register(o *object, kind resource.Kind, self Handle) {
	o.ctx = c
	o.Init(c.owner, kind, self)
}

// create registers a handle that has a plain executor-side object and
// deletes that object when the last reference is released.
func (c *Context) create(o *object, kind resource.Kind, self Handle) {
	c.register(o, kind, self)
	o.SetFinalizer(func() { c.finalizeObject(self) })
	if g := c.live(); g != nil {
		c.run(g, dispatch.MethodCreateObject, uint8(kind), uint64(o.ID()))
	}
}

func (c *Context) finalizeObject(h Handle) {
	b := h.Base()
	if b.DeleteRequested() || !b.IsForOwner(c.owner) {
		return
	}
	if g := c.live(); g != nil {
		c.run(g, dispatch.MethodDeleteObject, uint8(b.Kind()), uint64(b.ID()))
	}
}

func (c *Context) deleteObject(g *Generation, h Handle) {
	b := h.Base()
	b.RequestDelete(h)
	c.run(g, dispatch.MethodDeleteObject, uint8(b.Kind()), uint64(b.ID()))
}

// CreateBuffer creates a buffer.
func (c *Context) CreateBuffer() *Buffer {
	defer c.scope("createBuffer")()
	b := &Buffer{}
	c.create(&b.object, resource.KindBuffer, b)
	return b
}

// CreateFramebuffer creates a framebuffer.
func (c *Context) CreateFramebuffer() *Framebuffer {
	defer c.scope("createFramebuffer")()
	fb := &Framebuffer{attachments: make(map[uint32]*attachment)}
	c.create(&fb.object, resource.KindFramebuffer, fb)
	return fb
}

// CreateRenderbuffer creates a renderbuffer.
func (c *Context) CreateRenderbuffer() *Renderbuffer {
	defer c.scope("createRenderbuffer")()
	rb := &Renderbuffer{}
	c.create(&rb.object, resource.KindRenderbuffer, rb)
	return rb
}

// CreateTexture creates a texture.
func (c *Context) CreateTexture() *Texture {
	defer c.scope("createTexture")()
	t := &Texture{}
	c.create(&t.object, resource.KindTexture, t)
	return t
}

// CreateSampler creates a sampler.
func (c *Context) CreateSampler() *Sampler {
	defer c.scope("createSampler")()
	s := &Sampler{}
	c.create(&s.object, resource.KindSampler, s)
	return s
}

// CreateQuery creates a query.
func (c *Context) CreateQuery() *Query {
	defer c.scope("createQuery")()
	q := &Query{}
	c.create(&q.object, resource.KindQuery, q)
	return q
}

// CreateTransformFeedback creates a transform feedback object.
func (c *Context) CreateTransformFeedback() *TransformFeedback {
	defer c.scope("createTransformFeedback")()
	tf := &TransformFeedback{}
	if g := c.live(); g != nil {
		tf.state.buffers = make([]*Buffer, max(g.info.Limits.MaxTransformFeedback, 0))
	}
	c.create(&tf.object, resource.KindTransformFeedback, tf)
	return tf
}

// CreateVertexArray creates a vertex array object.
func (c *Context) CreateVertexArray() *VertexArray {
	defer c.scope("createVertexArray")()
	va := &VertexArray{}
	c.create(&va.object, resource.KindVertexArray, va)
	return va
}

// CreateProgram creates a program. The program's keep-alive token is held
// by the returned handle until DeleteProgram or the last Release.
func (c *Context) CreateProgram() *Program {
	defer c.scope("createProgram")()
	p := &Program{
		attached: make(map[uint32]*shaderAttachment),
		link:     &linkState{res: &dispatch.LinkResult{}},
		nextMode: glenum.InterleavedAttribs,
		tfMode:   glenum.InterleavedAttribs,
	}
	c.register(&p.object, resource.KindProgram, p)
	p.keep, p.weak = keepalive.New(p, c.destroyProgram)
	p.SetFinalizer(p.keep.Release)
	if g := c.live(); g != nil {
		c.run(g, dispatch.MethodCreateObject, uint8(resource.KindProgram), uint64(p.ID()))
	}
	return p
}

// CreateShader creates a shader of the given type. An invalid type yields
// nil and INVALID_ENUM.
func (c *Context) CreateShader(typ uint32) *Shader {
	defer c.scope("createShader")()
	if typ != glenum.VertexShader && typ != glenum.FragmentShader {
		c.enumError("type", typ)
		return nil
	}
	s := &Shader{typ: typ}
	c.register(&s.object, resource.KindShader, s)
	s.keep, s.weak = keepalive.New(s, c.destroyShader)
	s.SetFinalizer(s.keep.Release)
	if g := c.live(); g != nil {
		c.run(g, dispatch.MethodCreateShader, uint64(s.ID()), typ)
	}
	return s
}

// destroyProgram runs when a program's keep-alive token dies: the
// executor object goes away and the attachments release their shaders.
func (c *Context) destroyProgram(p *Program) {
	if g := c.live(); g != nil && p.IsForOwner(c.owner) {
		c.run(g, dispatch.MethodDeleteObject, uint8(resource.KindProgram), uint64(p.ID()))
	}
	for typ, a := range p.attached {
		delete(p.attached, typ)
		a.keep.Release()
		a.shader.Release()
	}
}

func (c *Context) destroyShader(s *Shader) {
	if g := c.live(); g != nil && s.IsForOwner(c.owner) {
		c.run(g, dispatch.MethodDeleteObject, uint8(resource.KindShader), uint64(s.ID()))
	}
}

// DeleteBuffer deletes b and unbinds it everywhere in the current
// generation.
func (c *Context) DeleteBuffer(b *Buffer) {
	defer c.scope("deleteBuffer")()
	if b == nil || !c.ValidateForContext(b, "buffer") || b.DeleteRequested() {
		return
	}
	g := c.live()
	g.unbindBuffer(b)
	c.deleteObject(g, b)
}

// DeleteFramebuffer deletes fb.
func (c *Context) DeleteFramebuffer(fb *Framebuffer) {
	defer c.scope("deleteFramebuffer")()
	if fb == nil || !c.ValidateForContext(fb, "fb") || fb.DeleteRequested() {
		return
	}
	g := c.live()
	g.unbindFramebuffer(fb)
	fb.detach(func(*attachment) bool { return true })
	c.deleteObject(g, fb)
}

// DeleteRenderbuffer deletes rb.
func (c *Context) DeleteRenderbuffer(rb *Renderbuffer) {
	defer c.scope("deleteRenderbuffer")()
	if rb == nil || !c.ValidateForContext(rb, "rb") || rb.DeleteRequested() {
		return
	}
	g := c.live()
	g.unbindRenderbuffer(rb)
	c.deleteObject(g, rb)
}

// DeleteTexture deletes t.
func (c *Context) DeleteTexture(t *Texture) {
	defer c.scope("deleteTexture")()
	if t == nil || !c.ValidateForContext(t, "tex") || t.DeleteRequested() {
		return
	}
	g := c.live()
	g.unbindTexture(t)
	c.deleteObject(g, t)
}

// DeleteSampler deletes s.
func (c *Context) DeleteSampler(s *Sampler) {
	defer c.scope("deleteSampler")()
	if s == nil || !c.ValidateForContext(s, "sampler") || s.DeleteRequested() {
		return
	}
	g := c.live()
	g.unbindSampler(s)
	c.deleteObject(g, s)
}

// DeleteQuery deletes q. An active query is ended first.
func (c *Context) DeleteQuery(q *Query) {
	defer c.scope("deleteQuery")()
	if q == nil || !c.ValidateForContext(q, "query") || q.DeleteRequested() {
		return
	}
	g := c.live()
	for _, active := range g.queries {
		if active == q {
			c.EndQuery(q.target)
			break
		}
	}
	c.deleteObject(g, q)
}

// DeleteSync deletes s.
func (c *Context) DeleteSync(s *Sync) {
	defer c.scope("deleteSync")()
	if s == nil || !c.ValidateForContext(s, "sync") || s.DeleteRequested() {
		return
	}
	c.deleteObject(c.live(), s)
}

// DeleteTransformFeedback deletes tf. An active transform feedback cannot
// be deleted.
func (c *Context) DeleteTransformFeedback(tf *TransformFeedback) {
	defer c.scope("deleteTransformFeedback")()
	if tf == nil || !c.ValidateForContext(tf, "tf") || tf.DeleteRequested() {
		return
	}
	if tf.state.active {
		c.enqueueError(glenum.InvalidOperation, "Cannot delete a transform feedback while it is active.")
		return
	}
	g := c.live()
	if g.tf == tf {
		resource.Clear(&g.tf)
	}
	tf.state.release()
	c.deleteObject(g, tf)
}

// DeleteVertexArray deletes va, rebinding the default vertex array if it
// was bound.
func (c *Context) DeleteVertexArray(va *VertexArray) {
	defer c.scope("deleteVertexArray")()
	if va == nil || !c.ValidateForContext(va, "vao") || va.DeleteRequested() {
		return
	}
	g := c.live()
	if g.vao == va {
		resource.Clear(&g.vao)
	}
	va.state.release()
	c.deleteObject(g, va)
}

// DeleteProgram requests deletion of p. The executor object is deleted
// once nothing keeps the program alive, which is immediate unless it is
// the current program.
func (c *Context) DeleteProgram(p *Program) {
	defer c.scope("deleteProgram")()
	if p == nil || !c.ValidateForContext(p, "prog") || p.DeleteRequested() {
		return
	}
	p.RequestDelete(p)
	p.keep.Release()
}

// DeleteShader requests deletion of s. The executor object is deleted once
// no program has it attached.
func (c *Context) DeleteShader(s *Shader) {
	defer c.scope("deleteShader")()
	if s == nil || !c.ValidateForContext(s, "shader") || s.DeleteRequested() {
		return
	}
	s.RequestDelete(s)
	s.keep.Release()
}

// IsBuffer reports whether b is a usable buffer that has been bound.
func (c *Context) IsBuffer(b *Buffer) bool {
	defer c.scope("isBuffer")()
	return b != nil && c.IsUsable(b) && b.kind != bufferUndefined
}

// IsFramebuffer reports whether fb is a usable framebuffer that has been
// bound.
func (c *Context) IsFramebuffer(fb *Framebuffer) bool {
	defer c.scope("isFramebuffer")()
	return fb != nil && c.IsUsable(fb) && fb.bound
}

// IsRenderbuffer reports whether rb is a usable renderbuffer that has been
// bound.
func (c *Context) IsRenderbuffer(rb *Renderbuffer) bool {
	defer c.scope("isRenderbuffer")()
	return rb != nil && c.IsUsable(rb) && rb.bound
}

// IsTexture reports whether t is a usable texture that has been bound.
func (c *Context) IsTexture(t *Texture) bool {
	defer c.scope("isTexture")()
	return t != nil && c.IsUsable(t) && t.target != 0
}

// IsSampler reports whether s is a usable sampler.
func (c *Context) IsSampler(s *Sampler) bool {
	defer c.scope("isSampler")()
	return s != nil && c.IsUsable(s)
}

// IsQuery reports whether q is a usable query that has been begun.
func (c *Context) IsQuery(q *Query) bool {
	defer c.scope("isQuery")()
	return q != nil && c.IsUsable(q) && q.target != 0
}

// IsSync reports whether s is a usable sync.
func (c *Context) IsSync(s *Sync) bool {
	defer c.scope("isSync")()
	return s != nil && c.IsUsable(s)
}

// IsTransformFeedback reports whether tf is usable and has been bound.
func (c *Context) IsTransformFeedback(tf *TransformFeedback) bool {
	defer c.scope("isTransformFeedback")()
	return tf != nil && c.IsUsable(tf) && tf.bound
}

// IsVertexArray reports whether va is usable and has been bound.
func (c *Context) IsVertexArray(va *VertexArray) bool {
	defer c.scope("isVertexArray")()
	return va != nil && c.IsUsable(va) && va.bound
}

// IsProgram reports whether p is a usable program.
func (c *Context) IsProgram(p *Program) bool {
	defer c.scope("isProgram")()
	return p != nil && c.IsUsable(p)
}

// IsShader reports whether s is a usable shader.
func (c *Context) IsShader(s *Shader) bool {
	defer c.scope("isShader")()
	return s != nil && c.IsUsable(s)
}
