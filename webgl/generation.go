package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/keepalive"
	"github.com/wippyai/glproxy/resource"
)

// Generation is the state of one unbroken span of context validity: the
// dispatcher to its executor, what the executor reported at creation, and
// every binding and cached value. It is replaced wholesale on restore.
type Generation struct {
	disp *dispatch.Dispatcher
	info dispatch.InitResult

	extensions map[string]*Extension

	program     *Program
	programKeep *keepalive.Ref[Program]
	activeLink  *dispatch.LinkResult

	buffers        map[uint32]*Buffer
	uniformBuffers []*Buffer
	drawFB         *Framebuffer
	readFB         *Framebuffer
	renderbuffer   *Renderbuffer
	tf             *TransformFeedback
	vao            *VertexArray
	defaultTF      tfState
	defaultVAO     vertexState
	queries        map[uint32]*Query
	units          []texUnit
	activeUnit     uint32

	enabled        map[uint32]bool
	pixelStore     map[uint32]int32
	genericAttribs map[uint32][4]float32
	clearColor     [4]float32
	blendColor     [4]float32
	depthRange     [2]float32
	viewport       [4]int32
	scissor        [4]int32
	blendFunc      [2]uint32
	colorMask      [4]bool
	depthFunc      uint32

	epoch resource.Epoch
}

type texUnit struct {
	sampler  *Sampler
	textures map[uint32]*Texture
}

func newGeneration(epoch resource.Epoch, info dispatch.InitResult, attrs dispatch.Attributes) *Generation {
	g := &Generation{
		info:           info,
		epoch:          epoch,
		extensions:     make(map[string]*Extension),
		buffers:        make(map[uint32]*Buffer),
		queries:        make(map[uint32]*Query),
		units:          make([]texUnit, max(info.Limits.MaxTextureUnits, 1)),
		uniformBuffers: make([]*Buffer, max(info.Limits.MaxUniformBindings, 0)),
		enabled:        map[uint32]bool{glenum.Dither: true},
		pixelStore: map[uint32]int32{
			glenum.PackAlignment:               4,
			glenum.UnpackAlignment:             4,
			glenum.UnpackFlipYWebGL:            0,
			glenum.UnpackPremultiplyAlphaWebGL: 0,
			glenum.PackRowLength:               0,
			glenum.UnpackRowLength:             0,
		},
		genericAttribs: make(map[uint32][4]float32),
		depthRange:     [2]float32{0, 1},
		viewport:       [4]int32{0, 0, attrs.Width, attrs.Height},
		scissor:        [4]int32{0, 0, attrs.Width, attrs.Height},
		blendFunc:      [2]uint32{glenum.One, glenum.Zero},
		colorMask:      [4]bool{true, true, true, true},
		depthFunc:      glenum.Less,
	}
	for i := range g.units {
		g.units[i].textures = make(map[uint32]*Texture)
	}
	g.defaultTF.buffers = make([]*Buffer, max(info.Limits.MaxTransformFeedback, 0))
	return g
}

// Epoch returns the epoch the generation runs under.
func (g *Generation) Epoch() resource.Epoch { return g.epoch }

func (g *Generation) vertexState() *vertexState {
	if g.vao != nil {
		return &g.vao.state
	}
	return &g.defaultVAO
}

func (g *Generation) tfState() *tfState {
	if g.tf != nil {
		return &g.tf.state
	}
	return &g.defaultTF
}

func (g *Generation) unit() *texUnit {
	return &g.units[g.activeUnit]
}

func (g *Generation) tfActive() bool {
	s := g.tfState()
	return s.active && !s.paused
}

// setProgram makes p current, holding both a binding reference and a
// keep-alive reference so a delete while in use is deferred.
func (g *Generation) setProgram(p *Program, res *dispatch.LinkResult) {
	var keep *keepalive.Ref[Program]
	if p != nil {
		keep, _ = p.weak.Lock()
	}
	// The old keep-alive ref goes first: dropping the binding may finalize
	// the program, and its token must die while the parent is still set.
	g.programKeep.Release()
	g.programKeep = keep
	resource.Assign(&g.program, p)
	g.activeLink = res
}

// unbindBuffer removes b from every binding point, as a delete does.
func (g *Generation) unbindBuffer(b *Buffer) {
	for target, bound := range g.buffers {
		if bound == b {
			bindAt(g.buffers, target, nil)
		}
	}
	for i, bound := range g.uniformBuffers {
		if bound == b {
			resource.Clear(&g.uniformBuffers[i])
		}
	}
	vs := g.vertexState()
	if vs.indexBuffer == b {
		resource.Clear(&vs.indexBuffer)
	}
	for i := range vs.attribs {
		if vs.attribs[i].buffer == b {
			resource.Clear(&vs.attribs[i].buffer)
		}
	}
	tf := g.tfState()
	for i, bound := range tf.buffers {
		if bound == b {
			resource.Clear(&tf.buffers[i])
		}
	}
}

func (g *Generation) unbindTexture(t *Texture) {
	for i := range g.units {
		for target, bound := range g.units[i].textures {
			if bound == t {
				bindAt(g.units[i].textures, target, nil)
			}
		}
	}
	for _, fb := range []*Framebuffer{g.drawFB, g.readFB} {
		if fb != nil {
			fb.detach(func(a *attachment) bool { return a.texture == t })
		}
	}
}

func (g *Generation) unbindRenderbuffer(rb *Renderbuffer) {
	if g.renderbuffer == rb {
		resource.Clear(&g.renderbuffer)
	}
	for _, fb := range []*Framebuffer{g.drawFB, g.readFB} {
		if fb != nil {
			fb.detach(func(a *attachment) bool { return a.renderbuffer == rb })
		}
	}
}

func (g *Generation) unbindFramebuffer(fb *Framebuffer) {
	if g.drawFB == fb {
		resource.Clear(&g.drawFB)
	}
	if g.readFB == fb {
		resource.Clear(&g.readFB)
	}
}

func (g *Generation) unbindSampler(s *Sampler) {
	for i := range g.units {
		if g.units[i].sampler == s {
			resource.Clear(&g.units[i].sampler)
		}
	}
}

// release drops every binding. Called once the epoch has ended.
func (g *Generation) release() {
	g.setProgram(nil, nil)
	clearMap(g.buffers)
	for i := range g.uniformBuffers {
		resource.Clear(&g.uniformBuffers[i])
	}
	resource.Clear(&g.drawFB)
	resource.Clear(&g.readFB)
	resource.Clear(&g.renderbuffer)
	if g.tf != nil {
		g.tf.state.release()
	}
	resource.Clear(&g.tf)
	g.defaultTF.release()
	resource.Clear(&g.vao)
	g.defaultVAO.release()
	clearMap(g.queries)
	for i := range g.units {
		resource.Clear(&g.units[i].sampler)
		clearMap(g.units[i].textures)
	}
}

func (fb *Framebuffer) detach(match func(*attachment) bool) {
	for point, a := range fb.attachments {
		if match(a) {
			a.release()
			delete(fb.attachments, point)
		}
	}
}
