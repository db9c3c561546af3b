package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

// BindTransformFeedback binds tf, or the default object for nil.
func (c *Context) BindTransformFeedback(target uint32, tf *TransformFeedback) {
	defer c.scope("bindTransformFeedback")()
	if !validOrNil(c, tf, "tf") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if target != glenum.TransformFeedback {
		c.enumError("target", target)
		return
	}
	if g.tfActive() {
		c.enqueueError(glenum.InvalidOperation, "Currently bound transform feedback is active and not paused.")
		return
	}
	if tf != nil {
		tf.bound = true
	}
	resource.Assign(&g.tf, tf)
	c.run(g, dispatch.MethodBindTransformFeedback, idOf(tf))
}

// BeginTransformFeedback starts capturing into the bound buffers. The
// current program is kept alive until EndTransformFeedback.
func (c *Context) BeginTransformFeedback(primitiveMode uint32) {
	defer c.scope("beginTransformFeedback")()
	g := c.live()
	if g == nil {
		return
	}
	switch primitiveMode {
	case glenum.Points, glenum.Lines, glenum.Triangles:
	default:
		c.enumError("primitiveMode", primitiveMode)
		return
	}
	s := g.tfState()
	if s.active {
		c.enqueueError(glenum.InvalidOperation, "Already active.")
		return
	}
	p := g.program
	if p == nil || g.activeLink == nil {
		c.enqueueError(glenum.InvalidOperation, "No program in use.")
		return
	}
	varyings := len(g.activeLink.Varyings)
	if varyings == 0 {
		c.enqueueError(glenum.InvalidOperation, "Program has no transform feedback varyings.")
		return
	}
	need := 1
	if p.tfMode == glenum.SeparateAttribs {
		need = varyings
	}
	if need > len(s.buffers) {
		c.enqueueError(glenum.InvalidOperation, "Not enough transform feedback binding points.")
		return
	}
	for i := range need {
		if s.buffers[i] == nil {
			c.enqueueError(glenum.InvalidOperation, "No buffer bound to TRANSFORM_FEEDBACK_BUFFER index %d.", i)
			return
		}
	}
	keep, ok := p.weak.Lock()
	if !ok {
		c.enqueueError(glenum.InvalidOperation, "Program is deleted.")
		return
	}
	s.active, s.paused = true, false
	resource.Assign(&s.program, p)
	s.programKeep = keep
	p.activeTFs++
	c.run(g, dispatch.MethodBeginTransformFeedback, primitiveMode)
}

// EndTransformFeedback stops capturing and releases the program.
func (c *Context) EndTransformFeedback() {
	defer c.scope("endTransformFeedback")()
	g := c.live()
	if g == nil {
		return
	}
	s := g.tfState()
	if !s.active {
		c.enqueueError(glenum.InvalidOperation, "Not active.")
		return
	}
	s.active, s.paused = false, false
	c.run(g, dispatch.MethodEndTransformFeedback)
	s.releaseProgram()
}

// PauseTransformFeedback pauses an active capture.
func (c *Context) PauseTransformFeedback() {
	defer c.scope("pauseTransformFeedback")()
	g := c.live()
	if g == nil {
		return
	}
	s := g.tfState()
	if !s.active || s.paused {
		c.enqueueError(glenum.InvalidOperation, "Not active or already paused.")
		return
	}
	s.paused = true
	c.run(g, dispatch.MethodPauseTransformFeedback)
}

// ResumeTransformFeedback resumes a paused capture. The program that began
// it must be current.
func (c *Context) ResumeTransformFeedback() {
	defer c.scope("resumeTransformFeedback")()
	g := c.live()
	if g == nil {
		return
	}
	s := g.tfState()
	if !s.active || !s.paused {
		c.enqueueError(glenum.InvalidOperation, "Not paused.")
		return
	}
	if g.program != s.program {
		c.enqueueError(glenum.InvalidOperation, "Cannot resume with a different program current.")
		return
	}
	s.paused = false
	c.run(g, dispatch.MethodResumeTransformFeedback)
}
