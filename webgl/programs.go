package webgl

import (
	"strconv"
	"strings"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

// ShaderSource replaces the source of s.
func (c *Context) ShaderSource(s *Shader, source string) {
	defer c.scope("shaderSource")()
	if !valid(c, s, "shader") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	s.source = source
	c.run(g, dispatch.MethodShaderSource, idOf(s), source)
}

// GetShaderSource returns the last source set on s.
func (c *Context) GetShaderSource(s *Shader) string {
	defer c.scope("getShaderSource")()
	if !valid(c, s, "shader") {
		return ""
	}
	return s.source
}

// CompileShader compiles s. The result arrives asynchronously and is
// fetched on demand if asked for first.
func (c *Context) CompileShader(s *Shader) {
	defer c.scope("compileShader")()
	if !valid(c, s, "shader") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	s.compiles++
	s.compile = nil
	c.run(g, dispatch.MethodCompileShader, idOf(s))
}

func (c *Context) ensureCompileResult(g *Generation, s *Shader) *dispatch.CompileResult {
	if s.compile != nil {
		return s.compile
	}
	if s.compiles == 0 {
		return &dispatch.CompileResult{}
	}
	var res *dispatch.CompileResult
	if !g.disp.Query(&res, dispatch.MethodGetCompileResult, idOf(s)) || res == nil {
		return &dispatch.CompileResult{}
	}
	s.compile = res
	return res
}

// GetShaderParameter answers SHADER_TYPE, DELETE_STATUS and
// COMPILE_STATUS.
func (c *Context) GetShaderParameter(s *Shader, pname uint32) any {
	defer c.scope("getShaderParameter")()
	if !valid(c, s, "shader") {
		return nil
	}
	g := c.live()
	if g == nil {
		return nil
	}
	switch pname {
	case glenum.ShaderType:
		return s.typ
	case glenum.DeleteStatus:
		return s.DeleteRequested()
	case glenum.CompileStatus:
		return c.ensureCompileResult(g, s).Success
	}
	c.enumError("pname", pname)
	return nil
}

// GetShaderInfoLog returns the compile log of s.
func (c *Context) GetShaderInfoLog(s *Shader) string {
	defer c.scope("getShaderInfoLog")()
	if !valid(c, s, "shader") {
		return ""
	}
	g := c.live()
	if g == nil {
		return ""
	}
	return c.ensureCompileResult(g, s).Log
}

// AttachShader attaches s to p. A program holds at most one shader per
// type, and the attachment keeps a deleted shader alive.
func (c *Context) AttachShader(p *Program, s *Shader) {
	defer c.scope("attachShader")()
	if !valid(c, p, "program") || !valid(c, s, "shader") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if a := p.attached[s.typ]; a != nil {
		if a.shader == s {
			c.enqueueError(glenum.InvalidOperation, "`shader` is already attached.")
		} else {
			c.enqueueError(glenum.InvalidOperation, "Only one of each type of shader may be attached to a program.")
		}
		return
	}
	keep, ok := s.weak.Lock()
	if !ok {
		c.enqueueError(glenum.InvalidValue, "Object `shader` is already deleted.")
		return
	}
	a := &shaderAttachment{keep: keep}
	resource.Assign(&a.shader, s)
	p.attached[s.typ] = a
	c.run(g, dispatch.MethodAttachShader, idOf(p), idOf(s))
}

// DetachShader detaches s from p. If s was deleted and this was its last
// attachment, it is destroyed now.
func (c *Context) DetachShader(p *Program, s *Shader) {
	defer c.scope("detachShader")()
	if !valid(c, p, "program") || !valid(c, s, "shader") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	a := p.attached[s.typ]
	if a == nil || a.shader != s {
		c.enqueueError(glenum.InvalidOperation, "`shader` is not attached.")
		return
	}
	delete(p.attached, s.typ)
	c.run(g, dispatch.MethodDetachShader, idOf(p), idOf(s))
	a.keep.Release()
	resource.Clear(&a.shader)
}

// GetAttachedShaders returns the shaders attached to p, vertex first.
func (c *Context) GetAttachedShaders(p *Program) []*Shader {
	defer c.scope("getAttachedShaders")()
	if !valid(c, p, "program") {
		return nil
	}
	var out []*Shader
	for _, typ := range []uint32{glenum.VertexShader, glenum.FragmentShader} {
		if a := p.attached[typ]; a != nil {
			out = append(out, a.shader)
		}
	}
	return out
}

func reservedName(name string) bool {
	return strings.HasPrefix(name, "gl_") || strings.HasPrefix(name, "webgl_") || strings.HasPrefix(name, "_webgl_")
}

// BindAttribLocation requests a location for an attribute at the next link.
func (c *Context) BindAttribLocation(p *Program, index uint32, name string) {
	defer c.scope("bindAttribLocation")()
	if !valid(c, p, "program") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if int32(index) >= g.info.Limits.MaxVertexAttribs {
		c.enqueueError(glenum.InvalidValue, "`index` must be less than MAX_VERTEX_ATTRIBS (%d).", g.info.Limits.MaxVertexAttribs)
		return
	}
	if reservedName(name) {
		c.enqueueError(glenum.InvalidOperation, "Name `%s` is reserved.", name)
		return
	}
	c.run(g, dispatch.MethodBindAttribLocation, idOf(p), int64(index), name)
}

// TransformFeedbackVaryings sets the varyings captured after the next link.
func (c *Context) TransformFeedbackVaryings(p *Program, varyings []string, mode uint32) {
	defer c.scope("transformFeedbackVaryings")()
	if !valid(c, p, "program") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	switch mode {
	case glenum.InterleavedAttribs:
	case glenum.SeparateAttribs:
		if limit := int(g.info.Limits.MaxTransformFeedback); len(varyings) > limit {
			c.enqueueError(glenum.InvalidValue, "Too many varyings for SEPARATE_ATTRIBS (max %d).", limit)
			return
		}
	default:
		c.enumError("bufferMode", mode)
		return
	}
	p.nextMode = mode
	c.run(g, dispatch.MethodTransformFeedbackVaryings, idOf(p), varyings, mode)
}

// LinkProgram links p. The result arrives asynchronously and is fetched
// on demand if asked for first.
func (c *Context) LinkProgram(p *Program) {
	defer c.scope("linkProgram")()
	if !valid(c, p, "program") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if p.activeTFs > 0 {
		c.enqueueError(glenum.InvalidOperation, "Program is in use by one or more active transform feedback objects.")
		return
	}
	c.serial++
	p.link = &linkState{serial: c.serial, pending: true}
	p.tfMode = p.nextMode
	p.locations = nil
	c.run(g, dispatch.MethodLinkProgram, idOf(p), c.serial)
}

// setLinkResult completes p's pending link. A successful relink of the
// current program replaces the active link result.
func (c *Context) setLinkResult(g *Generation, p *Program, res *dispatch.LinkResult) {
	p.link.res = res
	p.link.pending = false
	p.locations = nil
	if g.program == p && res.Success {
		g.activeLink = res
	}
}

func (c *Context) ensureLinkResult(g *Generation, p *Program) *dispatch.LinkResult {
	if !p.link.pending {
		return p.link.res
	}
	var res *dispatch.LinkResult
	if !g.disp.Query(&res, dispatch.MethodGetLinkResult, idOf(p)) || res == nil {
		return &dispatch.LinkResult{}
	}
	if c.live() == g {
		c.setLinkResult(g, p, res)
	}
	return res
}

// ValidateProgram validates p against the current state.
func (c *Context) ValidateProgram(p *Program) {
	defer c.scope("validateProgram")()
	if !valid(c, p, "program") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	var ok bool
	if g.disp.Query(&ok, dispatch.MethodValidateProgram, idOf(p)) {
		p.lastValidate = ok
	}
}

// UseProgram makes p current. The current program survives DeleteProgram
// until it is replaced.
func (c *Context) UseProgram(p *Program) {
	defer c.scope("useProgram")()
	if !validOrNil(c, p, "program") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if g.tfActive() {
		c.enqueueError(glenum.InvalidOperation, "Transform feedback is active and not paused.")
		return
	}
	var res *dispatch.LinkResult
	if p != nil {
		res = c.ensureLinkResult(g, p)
		if !res.Success {
			c.enqueueError(glenum.InvalidOperation, "Program has not been successfully linked.")
			return
		}
	}
	g.setProgram(p, res)
	c.run(g, dispatch.MethodUseProgram, idOf(p))
}

// GetProgramParameter answers program parameters from the link result.
func (c *Context) GetProgramParameter(p *Program, pname uint32) any {
	defer c.scope("getProgramParameter")()
	if !valid(c, p, "program") {
		return nil
	}
	g := c.live()
	if g == nil {
		return nil
	}
	switch pname {
	case glenum.DeleteStatus:
		return p.DeleteRequested()
	case glenum.AttachedShaders:
		return int32(len(p.attached))
	case glenum.ValidateStatus:
		return p.lastValidate
	}
	res := c.ensureLinkResult(g, p)
	switch pname {
	case glenum.LinkStatus:
		return res.Success
	case glenum.ActiveUniforms:
		return int32(len(res.Uniforms))
	case glenum.ActiveAttributes:
		return int32(len(res.Attributes))
	case glenum.TransformFeedbackVaryings:
		return int32(len(res.Varyings))
	case glenum.TransformFeedbackBufferMode:
		return p.tfMode
	}
	c.enumError("pname", pname)
	return nil
}

// GetProgramInfoLog returns the link log of p.
func (c *Context) GetProgramInfoLog(p *Program) string {
	defer c.scope("getProgramInfoLog")()
	if !valid(c, p, "program") {
		return ""
	}
	g := c.live()
	if g == nil {
		return ""
	}
	return c.ensureLinkResult(g, p).Log
}

func (c *Context) activeInfo(p *Program, index uint32, pick func(*dispatch.LinkResult) []dispatch.ActiveInfo) *ActiveInfo {
	if !valid(c, p, "program") {
		return nil
	}
	g := c.live()
	if g == nil {
		return nil
	}
	list := pick(c.ensureLinkResult(g, p))
	if int(index) >= len(list) {
		c.enqueueError(glenum.InvalidValue, "`index` %d is out of range.", index)
		return nil
	}
	info := list[index]
	name := info.Name
	if info.Size > 1 {
		name += "[0]"
	}
	return &ActiveInfo{Name: name, Type: info.Type, Size: info.Size}
}

// GetActiveUniform describes the active uniform at index.
func (c *Context) GetActiveUniform(p *Program, index uint32) *ActiveInfo {
	defer c.scope("getActiveUniform")()
	return c.activeInfo(p, index, func(r *dispatch.LinkResult) []dispatch.ActiveInfo { return r.Uniforms })
}

// GetActiveAttrib describes the active attribute at index.
func (c *Context) GetActiveAttrib(p *Program, index uint32) *ActiveInfo {
	defer c.scope("getActiveAttrib")()
	return c.activeInfo(p, index, func(r *dispatch.LinkResult) []dispatch.ActiveInfo { return r.Attributes })
}

// GetTransformFeedbackVarying describes the captured varying at index.
func (c *Context) GetTransformFeedbackVarying(p *Program, index uint32) *ActiveInfo {
	defer c.scope("getTransformFeedbackVarying")()
	return c.activeInfo(p, index, func(r *dispatch.LinkResult) []dispatch.ActiveInfo { return r.Varyings })
}

// uniformTable builds the name lookup for a link result. Array uniforms
// answer to their bare name, name[0] and each name[i].
func uniformTable(res *dispatch.LinkResult) map[string]uniformLoc {
	m := make(map[string]uniformLoc, len(res.Uniforms))
	for _, u := range res.Uniforms {
		m[u.Name] = uniformLoc{location: u.Location, elemType: u.Type, size: u.Size}
		if u.Size <= 1 {
			continue
		}
		for i := range u.Size {
			m[u.Name+"["+strconv.Itoa(int(i))+"]"] = uniformLoc{
				location: u.Location + i,
				elemType: u.Type,
				size:     u.Size - i,
			}
		}
	}
	return m
}

// GetUniformLocation looks name up in p's current link result. The
// returned location is only accepted while that link result is active.
func (c *Context) GetUniformLocation(p *Program, name string) *UniformLocation {
	defer c.scope("getUniformLocation")()
	if !valid(c, p, "program") {
		return nil
	}
	g := c.live()
	if g == nil {
		return nil
	}
	res := c.ensureLinkResult(g, p)
	if !res.Success {
		c.enqueueError(glenum.InvalidOperation, "Program is not linked.")
		return nil
	}
	if reservedName(name) {
		return nil
	}
	if p.locations == nil {
		p.locations = uniformTable(res)
	}
	loc, ok := p.locations[name]
	if !ok {
		return nil
	}
	l := &UniformLocation{link: res, location: loc.location, elemType: loc.elemType, size: loc.size}
	c.register(&l.object, resource.KindUniformLocation, l)
	return l
}

// GetAttribLocation returns the location of an active attribute, or -1.
func (c *Context) GetAttribLocation(p *Program, name string) int32 {
	defer c.scope("getAttribLocation")()
	if !valid(c, p, "program") {
		return -1
	}
	g := c.live()
	if g == nil {
		return -1
	}
	res := c.ensureLinkResult(g, p)
	if !res.Success {
		c.enqueueError(glenum.InvalidOperation, "Program is not linked.")
		return -1
	}
	if reservedName(name) {
		return -1
	}
	for _, a := range res.Attributes {
		if a.Name == name {
			return a.Location
		}
	}
	return -1
}
