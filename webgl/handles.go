package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/keepalive"
	"github.com/wippyai/glproxy/resource"
)

// Handle is implemented by every resource object a Context hands out.
type Handle interface {
	resource.Handle
	// IsDeleted reports whether the handle can no longer be used because
	// of a delete, regardless of its generation.
	IsDeleted() bool
	deletedError() uint32
}

type object struct {
	resource.Object
	ctx *Context
}

// IsDeleted reports whether a delete was requested.
func (o *object) IsDeleted() bool { return o.DeleteRequested() }

func (o *object) deletedError() uint32 { return glenum.InvalidOperation }

type bufferKind uint8

const (
	bufferUndefined bufferKind = iota
	bufferIndex
	bufferNonIndex
)

// Buffer is a WebGLBuffer.
type Buffer struct {
	object
	size int64
	kind bufferKind
}

// Framebuffer is a WebGLFramebuffer. It owns its attachment map.
type Framebuffer struct {
	object
	attachments map[uint32]*attachment
	bound       bool
}

type attachment struct {
	texture      *Texture
	renderbuffer *Renderbuffer
	texTarget    uint32
	level        int32
}

func (a *attachment) release() {
	resource.Clear(&a.texture)
	resource.Clear(&a.renderbuffer)
}

// Renderbuffer is a WebGLRenderbuffer.
type Renderbuffer struct {
	object
	bound bool
}

// Texture is a WebGLTexture. Its target sticks after the first bind.
type Texture struct {
	object
	target uint32
}

// Sampler is a WebGLSampler.
type Sampler struct {
	object
}

// Query is a WebGLQuery.
type Query struct {
	object
	result         uint64
	target         uint32
	canBeAvailable bool
	hasResult      bool
}

// Sync is a WebGLSync.
type Sync struct {
	object
	canBeAvailable bool
}

// TransformFeedback is a WebGLTransformFeedback.
type TransformFeedback struct {
	object
	state tfState
	bound bool
}

type tfState struct {
	program     *Program
	programKeep *keepalive.Ref[Program]
	buffers     []*Buffer
	active      bool
	paused      bool
}

func (s *tfState) releaseProgram() {
	if s.program != nil {
		s.program.activeTFs--
	}
	s.programKeep.Release()
	s.programKeep = nil
	resource.Clear(&s.program)
}

func (s *tfState) release() {
	s.releaseProgram()
	for i := range s.buffers {
		resource.Clear(&s.buffers[i])
	}
	s.buffers = nil
	s.active, s.paused = false, false
}

// VertexArray is a WebGLVertexArrayObject.
type VertexArray struct {
	object
	state vertexState
	bound bool
}

type vertexAttrib struct {
	buffer     *Buffer
	offset     int64
	size       int32
	stride     int32
	typ        uint32
	divisor    uint32
	enabled    bool
	normalized bool
}

type vertexState struct {
	indexBuffer *Buffer
	attribs     []vertexAttrib
}

func (s *vertexState) attrib(index uint32, count int32) *vertexAttrib {
	if len(s.attribs) < int(count) {
		grown := make([]vertexAttrib, count)
		copy(grown, s.attribs)
		s.attribs = grown
	}
	return &s.attribs[index]
}

func (s *vertexState) release() {
	resource.Clear(&s.indexBuffer)
	for i := range s.attribs {
		resource.Clear(&s.attribs[i].buffer)
	}
	s.attribs = nil
}

// Shader is a WebGLShader. It is kept alive by its own token reference and
// by every program it is attached to.
type Shader struct {
	object
	keep     *keepalive.Ref[Shader]
	weak     keepalive.Weak[Shader]
	compile  *dispatch.CompileResult
	source   string
	typ      uint32
	compiles uint64
	acked    uint64
}

// IsDeleted reports whether the shader's keep-alive token is dead.
func (s *Shader) IsDeleted() bool { return !s.weak.Alive() }

func (s *Shader) deletedError() uint32 { return glenum.InvalidValue }

// Type returns VERTEX_SHADER or FRAGMENT_SHADER.
func (s *Shader) Type() uint32 { return s.typ }

// Program is a WebGLProgram.
type Program struct {
	object
	keep      *keepalive.Ref[Program]
	weak      keepalive.Weak[Program]
	attached  map[uint32]*shaderAttachment
	link      *linkState
	locations map[string]uniformLoc
	tfMode    uint32
	nextMode  uint32
	activeTFs int

	lastValidate bool
}

type shaderAttachment struct {
	shader *Shader
	keep   *keepalive.Ref[Shader]
}

// linkState tracks a program's latest link. The result is immutable once
// set; a relink replaces the whole record.
type linkState struct {
	res     *dispatch.LinkResult
	serial  uint64
	pending bool
}

type uniformLoc struct {
	location int32
	elemType uint32
	size     int32
}

// IsDeleted reports whether the program's keep-alive token is dead.
func (p *Program) IsDeleted() bool { return !p.weak.Alive() }

func (p *Program) deletedError() uint32 { return glenum.InvalidValue }

// UniformLocation is a WebGLUniformLocation. It is valid only with the
// link result it was looked up from.
type UniformLocation struct {
	object
	link     *dispatch.LinkResult
	location int32
	elemType uint32
	size     int32
}

// Location returns the location number.
func (l *UniformLocation) Location() int32 { return l.location }

// ActiveInfo is a WebGLActiveInfo.
type ActiveInfo struct {
	Name string
	Type uint32
	Size int32
}

// Extension is an enabled extension object.
type Extension struct {
	Name string
}

type handleRef interface {
	comparable
	resource.Handle
}

// bindAt assigns v to m[k], keeping reference counts, and drops the key
// for nil.
func bindAt[K comparable, T handleRef](m map[K]T, k K, v T) {
	var zero T
	slot := m[k]
	resource.Assign(&slot, v)
	if slot == zero {
		delete(m, k)
		return
	}
	m[k] = slot
}

func clearMap[K comparable, T handleRef](m map[K]T) {
	for k := range m {
		bindAt(m, k, *new(T))
	}
}
