package host

import (
	"sort"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

func (d *Device) shaderSource(r *argReader) any {
	id, src := r.id(0), r.str(1)
	if r.err != nil {
		return nil
	}
	sh := d.lookup(id, resource.KindShader)
	if sh == nil {
		d.glError(glenum.InvalidValue, r.method, "no such shader")
		return nil
	}
	sh.source = src
	return nil
}

func (d *Device) compileShader(r *argReader) any {
	id := r.id(0)
	if r.err != nil {
		return nil
	}
	sh := d.lookup(id, resource.KindShader)
	if sh == nil {
		d.glError(glenum.InvalidValue, r.method, "no such shader")
		return nil
	}
	sh.compile = compileShader(sh.source)
	res := *sh.compile
	d.post(dispatch.Notification{Kind: dispatch.NotifyCompileResult, ID: id, Compile: &res})
	return nil
}

func (d *Device) getCompileResult(r *argReader) any {
	id := r.id(0)
	if r.err != nil {
		return nil
	}
	sh := d.lookup(id, resource.KindShader)
	if sh == nil || sh.compile == nil {
		return &dispatch.CompileResult{}
	}
	res := *sh.compile
	return &res
}

func (d *Device) attachShader(r *argReader) any {
	prog, shader := r.id(0), r.id(1)
	if r.err != nil {
		return nil
	}
	p, sh := d.lookup(prog, resource.KindProgram), d.lookup(shader, resource.KindShader)
	if p == nil || sh == nil {
		d.glError(glenum.InvalidValue, r.method, "no such object")
		return nil
	}
	if p.attached == nil {
		p.attached = make(map[uint32]uint64)
	}
	if _, ok := p.attached[sh.shaderType]; ok {
		d.glError(glenum.InvalidOperation, r.method, "shader of this type already attached")
		return nil
	}
	p.attached[sh.shaderType] = shader
	return nil
}

func (d *Device) detachShader(r *argReader) any {
	prog, shader := r.id(0), r.id(1)
	if r.err != nil {
		return nil
	}
	p := d.lookup(prog, resource.KindProgram)
	if p == nil {
		d.glError(glenum.InvalidValue, r.method, "no such program")
		return nil
	}
	for typ, id := range p.attached {
		if id == shader {
			delete(p.attached, typ)
			return nil
		}
	}
	d.glError(glenum.InvalidOperation, r.method, "shader not attached")
	return nil
}

func (d *Device) bindAttribLocation(r *argReader) any {
	prog, index, name := r.id(0), r.i64(1), r.str(2)
	if r.err != nil {
		return nil
	}
	p := d.lookup(prog, resource.KindProgram)
	if p == nil {
		d.glError(glenum.InvalidValue, r.method, "no such program")
		return nil
	}
	if p.attribLocs == nil {
		p.attribLocs = make(map[string]int32)
	}
	p.attribLocs[name] = int32(index)
	return nil
}

func (d *Device) transformFeedbackVaryings(r *argReader) any {
	prog, varyings := r.id(0), r.strs(1)
	r.u32(2)
	if r.err != nil {
		return nil
	}
	p := d.lookup(prog, resource.KindProgram)
	if p == nil {
		d.glError(glenum.InvalidValue, r.method, "no such program")
		return nil
	}
	p.varyings = varyings
	return nil
}

func (d *Device) linkProgram(r *argReader) any {
	prog, serial := r.id(0), r.id(1)
	if r.err != nil {
		return nil
	}
	p := d.lookup(prog, resource.KindProgram)
	if p == nil {
		d.glError(glenum.InvalidValue, r.method, "no such program")
		return nil
	}
	if d.tfState.active && d.program == prog {
		d.glError(glenum.InvalidOperation, r.method, "program in use by active transform feedback")
		return nil
	}
	vs := d.lookup(p.attached[glenum.VertexShader], resource.KindShader)
	fs := d.lookup(p.attached[glenum.FragmentShader], resource.KindShader)
	p.link = linkProgram(vs, fs, p.attribLocs, p.varyings, int32(d.info.Limits.MaxVertexAttribs), serial)

	res := *p.link
	d.post(dispatch.Notification{Kind: dispatch.NotifyLinkResult, ID: prog, Serial: serial, Link: &res})
	return nil
}

func (d *Device) getLinkResult(r *argReader) any {
	prog := r.id(0)
	if r.err != nil {
		return nil
	}
	p := d.lookup(prog, resource.KindProgram)
	if p == nil || p.link == nil {
		return &dispatch.LinkResult{}
	}
	res := *p.link
	return &res
}

func (d *Device) validateProgram(r *argReader) any {
	prog := r.id(0)
	if r.err != nil {
		return nil
	}
	p := d.lookup(prog, resource.KindProgram)
	return p != nil && p.link != nil && p.link.Success
}

func (d *Device) useProgram(r *argReader) any {
	prog := r.id(0)
	if r.err != nil {
		return nil
	}
	if prog != 0 {
		p := d.lookup(prog, resource.KindProgram)
		if p == nil || p.link == nil || !p.link.Success {
			d.glError(glenum.InvalidOperation, r.method, "program not linked")
			return nil
		}
	}
	d.program = prog
	return nil
}

func (d *Device) uniform(r *argReader) any {
	loc := r.i64(0)
	r.u32(1)
	r.flag(2)
	values := r.floats(3)
	if r.err != nil {
		return nil
	}
	p := d.lookup(d.program, resource.KindProgram)
	if p == nil {
		d.glError(glenum.InvalidOperation, r.method, "no program in use")
		return nil
	}
	if p.params == nil {
		p.params = make(map[uint32]int64)
	}
	p.params[uint32(loc)] = int64(len(values))
	return nil
}

// Fixed-function state

func (d *Device) setEnabled(r *argReader) any {
	capability, on := r.u32(0), r.flag(1)
	if r.err != nil {
		return nil
	}
	d.enabled[capability] = on
	return nil
}

func (d *Device) isEnabled(r *argReader) any {
	capability := r.u32(0)
	if r.err != nil {
		return nil
	}
	return d.enabled[capability]
}

func (d *Device) clearColor(r *argReader) any {
	c := [4]float64{r.f64(0), r.f64(1), r.f64(2), r.f64(3)}
	if r.err == nil {
		d.color = c
	}
	return nil
}

func (d *Device) blendColor(r *argReader) any {
	c := [4]float64{r.f64(0), r.f64(1), r.f64(2), r.f64(3)}
	if r.err == nil {
		d.blend = c
	}
	return nil
}

func (d *Device) blendFuncs(r *argReader) any {
	f := [2]uint32{r.u32(0), r.u32(1)}
	if r.err == nil {
		d.blendFunc = f
	}
	return nil
}

func (d *Device) depthFuncs(r *argReader) any {
	f := r.u32(0)
	if r.err == nil {
		d.depthFunc = f
	}
	return nil
}

func (d *Device) depthRange(r *argReader) any {
	v := [2]float64{r.f64(0), r.f64(1)}
	if r.err == nil {
		d.depth = v
	}
	return nil
}

func (d *Device) colorMask(r *argReader) any {
	m := [4]bool{r.flag(0), r.flag(1), r.flag(2), r.flag(3)}
	if r.err == nil {
		d.mask = m
	}
	return nil
}

func (d *Device) setViewport(r *argReader) any {
	v := [4]int64{r.i64(0), r.i64(1), r.i64(2), r.i64(3)}
	if r.err == nil {
		d.viewport = v
	}
	return nil
}

func (d *Device) setScissor(r *argReader) any {
	v := [4]int64{r.i64(0), r.i64(1), r.i64(2), r.i64(3)}
	if r.err == nil {
		d.scissor = v
	}
	return nil
}

func (d *Device) pixelStore(r *argReader) any {
	pname, param := r.u32(0), r.i64(1)
	if r.err == nil {
		d.pixel[pname] = param
	}
	return nil
}

func (d *Device) clear(r *argReader) any {
	mask := r.u32(0)
	if r.err != nil {
		return nil
	}
	if mask&^(glenum.ColorBufferBit|glenum.DepthBufferBit|glenum.StencilBufferBit) != 0 {
		d.glError(glenum.InvalidValue, r.method, "invalid mask bits")
		return nil
	}
	d.draws++
	return nil
}

func (d *Device) getParameter(r *argReader) any {
	pname := r.u32(0)
	if r.err != nil {
		return nil
	}
	lim := d.info.Limits
	switch pname {
	case glenum.Vendor:
		return d.info.Vendor
	case glenum.Renderer:
		return d.info.Renderer
	case glenum.Version:
		if d.req.Attributes.WebGL2 {
			return "WebGL 2.0"
		}
		return "WebGL 1.0"
	case glenum.MaxTextureSize:
		return int64(lim.MaxTextureSize)
	case glenum.MaxCombinedTextureImageUnits:
		return int64(lim.MaxTextureUnits)
	case glenum.MaxVertexAttribs:
		return int64(lim.MaxVertexAttribs)
	case glenum.MaxColorAttachments:
		return int64(lim.MaxColorAttachments)
	case glenum.MaxDrawBuffers:
		return int64(lim.MaxDrawBuffers)
	case glenum.MaxViewportDims:
		return []int64{int64(lim.MaxViewportDims), int64(lim.MaxViewportDims)}
	case glenum.Viewport:
		return append([]int64(nil), d.viewport[:]...)
	case glenum.ScissorBox:
		return append([]int64(nil), d.scissor[:]...)
	case glenum.ColorClearValue:
		return append([]float64(nil), d.color[:]...)
	case glenum.BlendColor:
		return append([]float64(nil), d.blend[:]...)
	case glenum.DepthRange:
		return append([]float64(nil), d.depth[:]...)
	case glenum.ColorWritemask:
		return append([]bool(nil), d.mask[:]...)
	case glenum.PackAlignment, glenum.UnpackAlignment, glenum.UnpackFlipYWebGL,
		glenum.UnpackPremultiplyAlphaWebGL, glenum.PackRowLength, glenum.UnpackRowLength:
		return d.pixel[pname]
	}
	d.glError(glenum.InvalidEnum, r.method, "unknown parameter")
	return nil
}

// Vertex specification and drawing

func (d *Device) bindVertexArray(r *argReader) any {
	id := r.id(0)
	if r.err == nil {
		d.vao = id
	}
	return nil
}

func (d *Device) vertexAttribArray(r *argReader) any {
	index, on := r.u32(0), r.flag(1)
	if r.err != nil {
		return nil
	}
	if int32(index) >= d.info.Limits.MaxVertexAttribs {
		d.glError(glenum.InvalidValue, r.method, "index out of range")
		return nil
	}
	d.attribs[index] = on
	return nil
}

func (d *Device) vertexAttribPointer(r *argReader) any {
	index := r.u32(0)
	r.i64(1)
	r.u32(2)
	r.flag(3)
	r.i64(4)
	r.i64(5)
	if r.err != nil {
		return nil
	}
	if int32(index) >= d.info.Limits.MaxVertexAttribs {
		d.glError(glenum.InvalidValue, r.method, "index out of range")
	}
	return nil
}

func (d *Device) validateDraw(method dispatch.Method) bool {
	p := d.lookup(d.program, resource.KindProgram)
	if p == nil || p.link == nil || !p.link.Success {
		d.glError(glenum.InvalidOperation, method, "no valid program in use")
		return false
	}
	return true
}

func (d *Device) drawArrays(r *argReader) any {
	r.u32(0)
	first, count, instances := r.i64(1), r.i64(2), r.i64(3)
	if r.err != nil {
		return nil
	}
	if first < 0 || count < 0 || instances < 0 {
		d.glError(glenum.InvalidValue, r.method, "negative first, count or instance count")
		return nil
	}
	if d.validateDraw(r.method) && count > 0 && instances > 0 {
		d.draws++
	}
	return nil
}

func (d *Device) drawElements(r *argReader) any {
	r.u32(0)
	count := r.i64(1)
	r.u32(2)
	r.i64(3)
	instances := r.i64(4)
	if r.err != nil {
		return nil
	}
	if d.boundBuffer(glenum.ElementArrayBuffer) == nil {
		d.glError(glenum.InvalidOperation, r.method, "no ELEMENT_ARRAY_BUFFER bound")
		return nil
	}
	if d.validateDraw(r.method) && count > 0 && instances > 0 {
		d.draws++
	}
	return nil
}

// Queries and syncs

func (d *Device) beginQuery(r *argReader) any {
	target, id := r.u32(0), r.id(1)
	if r.err != nil {
		return nil
	}
	q := d.lookup(id, resource.KindQuery)
	if q == nil {
		d.glError(glenum.InvalidOperation, r.method, "no such query")
		return nil
	}
	q.target = target
	q.queryStart = d.draws
	q.available = false
	d.queries[target] = id
	return nil
}

func (d *Device) endQuery(r *argReader) any {
	target := r.u32(0)
	if r.err != nil {
		return nil
	}
	q := d.lookup(d.queries[target], resource.KindQuery)
	delete(d.queries, target)
	if q == nil {
		d.glError(glenum.InvalidOperation, r.method, "no query active")
		return nil
	}
	n := d.draws - q.queryStart
	switch target {
	case glenum.AnySamplesPassed, glenum.AnySamplesPassedConservative:
		if n > 0 {
			n = 1
		}
	case glenum.TimeElapsed:
		n *= 1000
	}
	q.queryValue = n
	q.available = true
	d.post(dispatch.Notification{Kind: dispatch.NotifyQueryAvailable, ID: q.id, Value: n})
	return nil
}

func (d *Device) getQueryParameter(r *argReader) any {
	id, pname := r.id(0), r.u32(1)
	if r.err != nil {
		return nil
	}
	q := d.lookup(id, resource.KindQuery)
	if q == nil {
		d.glError(glenum.InvalidOperation, r.method, "no such query")
		return uint64(0)
	}
	switch pname {
	case glenum.QueryResultAvailable:
		if q.available {
			return uint64(1)
		}
		return uint64(0)
	case glenum.QueryResult:
		return q.queryValue
	}
	d.glError(glenum.InvalidEnum, r.method, "pname")
	return uint64(0)
}

func (d *Device) fenceSync(r *argReader) any {
	id := r.id(0)
	r.u32(1)
	r.u32(2)
	if r.err != nil {
		return nil
	}
	d.objects[id] = &object{id: id, kind: resource.KindSync}
	d.syncs = append(d.syncs, id)
	return nil
}

// signalSyncs completes every pending fence in creation order.
func (d *Device) signalSyncs() {
	sort.Slice(d.syncs, func(i, j int) bool { return d.syncs[i] < d.syncs[j] })
	for _, id := range d.syncs {
		if s := d.lookup(id, resource.KindSync); s != nil {
			s.signaled = true
			d.post(dispatch.Notification{Kind: dispatch.NotifySyncComplete, ID: id})
		}
	}
	d.syncs = nil
}

func (d *Device) clientWaitSync(r *argReader) any {
	id, flags := r.id(0), r.u32(1)
	r.i64(2)
	if r.err != nil {
		return nil
	}
	s := d.lookup(id, resource.KindSync)
	if s == nil {
		return glenum.WaitFailed
	}
	if s.signaled {
		return glenum.AlreadySignaled
	}
	if flags&glenum.SyncFlushCommandsBit != 0 {
		d.signalSyncs()
		return glenum.ConditionSatisfied
	}
	return glenum.TimeoutExpired
}

func (d *Device) getSyncParameter(r *argReader) any {
	id, pname := r.id(0), r.u32(1)
	if r.err != nil {
		return nil
	}
	s := d.lookup(id, resource.KindSync)
	if s == nil {
		d.glError(glenum.InvalidValue, r.method, "no such sync")
		return uint32(0)
	}
	switch pname {
	case glenum.ObjectType:
		return glenum.SyncFence
	case glenum.SyncCondition:
		return glenum.SyncGPUCommandsComplete
	case glenum.SyncFlags:
		return uint32(0)
	case glenum.SyncStatus:
		if s.signaled {
			return glenum.Signaled
		}
		return glenum.Unsignaled
	}
	d.glError(glenum.InvalidEnum, r.method, "pname")
	return uint32(0)
}

// Transform feedback

func (d *Device) bindTransformFeedback(r *argReader) any {
	id := r.id(0)
	if r.err == nil {
		d.tf = id
	}
	return nil
}

func (d *Device) beginTransformFeedback(r *argReader) any {
	r.u32(0)
	if r.err != nil {
		return nil
	}
	if d.tfState.active {
		d.glError(glenum.InvalidOperation, r.method, "already active")
		return nil
	}
	d.tfState.active, d.tfState.paused = true, false
	return nil
}

func (d *Device) endTransformFeedback(r *argReader) any {
	if !d.tfState.active {
		d.glError(glenum.InvalidOperation, r.method, "not active")
		return nil
	}
	d.tfState.active, d.tfState.paused = false, false
	return nil
}

func (d *Device) pauseTransformFeedback(r *argReader) any {
	if !d.tfState.active || d.tfState.paused {
		d.glError(glenum.InvalidOperation, r.method, "not active or already paused")
		return nil
	}
	d.tfState.paused = true
	return nil
}

func (d *Device) resumeTransformFeedback(r *argReader) any {
	if !d.tfState.active || !d.tfState.paused {
		d.glError(glenum.InvalidOperation, r.method, "not paused")
		return nil
	}
	d.tfState.paused = false
	return nil
}

// Misc

func (d *Device) enableExtension(r *argReader) any {
	name := r.str(0)
	if r.err != nil {
		return nil
	}
	for _, e := range d.info.Extensions {
		if e == name {
			d.exts[name] = true
			return true
		}
	}
	return false
}

func (d *Device) flush(r *argReader) any {
	d.signalSyncs()
	return nil
}

func (d *Device) finish(r *argReader) any {
	d.signalSyncs()
	return true
}

func (d *Device) getError(r *argReader) any {
	if len(d.glErrors) == 0 {
		return glenum.NoError
	}
	code := d.glErrors[0]
	d.glErrors = d.glErrors[1:]
	return code
}

func (d *Device) present(r *argReader) any {
	d.frames++
	return &dispatch.FrameInfo{
		Handle: d.frames,
		Width:  d.req.Attributes.Width,
		Height: d.req.Attributes.Height,
	}
}
