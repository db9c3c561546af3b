package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
)

func validCapability(capability uint32) bool {
	switch capability {
	case glenum.Blend, glenum.CullFace, glenum.DepthTest, glenum.Dither,
		glenum.PolygonOffsetFill, glenum.RasterizerDiscard, glenum.SampleAlphaToCoverage,
		glenum.SampleCoverage, glenum.ScissorTest, glenum.StencilTest:
		return true
	}
	return false
}

// Enable turns a capability on.
func (c *Context) Enable(capability uint32) {
	defer c.scope("enable")()
	c.setEnabled(capability, true)
}

// Disable turns a capability off.
func (c *Context) Disable(capability uint32) {
	defer c.scope("disable")()
	c.setEnabled(capability, false)
}

func (c *Context) setEnabled(capability uint32, on bool) {
	g := c.live()
	if g == nil {
		return
	}
	if !validCapability(capability) {
		c.enumError("cap", capability)
		return
	}
	g.enabled[capability] = on
	c.run(g, dispatch.MethodSetEnabled, capability, on)
}

// IsEnabled reports whether a capability is on. Values not set through
// this context are fetched once and cached.
func (c *Context) IsEnabled(capability uint32) bool {
	defer c.scope("isEnabled")()
	g := c.live()
	if g == nil {
		return false
	}
	if !validCapability(capability) {
		c.enumError("cap", capability)
		return false
	}
	if on, ok := g.enabled[capability]; ok {
		return on
	}
	var on bool
	if !g.disp.Query(&on, dispatch.MethodIsEnabled, capability) {
		return false
	}
	g.enabled[capability] = on
	return on
}

// ClearColor sets the color Clear fills with.
func (c *Context) ClearColor(r, gr, b, a float32) {
	defer c.scope("clearColor")()
	g := c.live()
	if g == nil {
		return
	}
	g.clearColor = [4]float32{r, gr, b, a}
	c.run(g, dispatch.MethodClearColor, r, gr, b, a)
}

// BlendColor sets the constant blend color.
func (c *Context) BlendColor(r, gr, b, a float32) {
	defer c.scope("blendColor")()
	g := c.live()
	if g == nil {
		return
	}
	g.blendColor = [4]float32{r, gr, b, a}
	c.run(g, dispatch.MethodBlendColor, r, gr, b, a)
}

func validBlendFactor(f uint32) bool {
	switch {
	case f == glenum.Zero, f == glenum.One:
		return true
	case f >= glenum.SrcColor && f <= glenum.SrcAlphaSaturate:
		return true
	case f >= 0x8001 && f <= 0x8004: // CONSTANT_COLOR .. ONE_MINUS_CONSTANT_ALPHA
		return true
	}
	return false
}

func isConstantColor(f uint32) bool { return f == 0x8001 || f == 0x8002 }

func isConstantAlpha(f uint32) bool { return f == 0x8003 || f == 0x8004 }

// BlendFunc sets the source and destination blend factors.
func (c *Context) BlendFunc(sfactor, dfactor uint32) {
	defer c.scope("blendFunc")()
	g := c.live()
	if g == nil {
		return
	}
	if !validBlendFactor(sfactor) {
		c.enumError("sfactor", sfactor)
		return
	}
	if !validBlendFactor(dfactor) {
		c.enumError("dfactor", dfactor)
		return
	}
	if isConstantColor(sfactor) && isConstantAlpha(dfactor) || isConstantAlpha(sfactor) && isConstantColor(dfactor) {
		c.enqueueError(glenum.InvalidOperation, "CONSTANT_COLOR and CONSTANT_ALPHA cannot be used together.")
		return
	}
	g.blendFunc = [2]uint32{sfactor, dfactor}
	c.run(g, dispatch.MethodBlendFunc, sfactor, dfactor)
}

// DepthFunc sets the depth comparison.
func (c *Context) DepthFunc(fn uint32) {
	defer c.scope("depthFunc")()
	g := c.live()
	if g == nil {
		return
	}
	if fn < glenum.Never || fn > glenum.Always {
		c.enumError("func", fn)
		return
	}
	g.depthFunc = fn
	c.run(g, dispatch.MethodDepthFunc, fn)
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}

// DepthRange sets the depth range mapping. Values are clamped to [0, 1].
func (c *Context) DepthRange(near, far float32) {
	defer c.scope("depthRange")()
	g := c.live()
	if g == nil {
		return
	}
	if near > far {
		c.enqueueError(glenum.InvalidOperation, "`zNear` must not be greater than `zFar`.")
		return
	}
	near, far = clamp01(near), clamp01(far)
	g.depthRange = [2]float32{near, far}
	c.run(g, dispatch.MethodDepthRange, near, far)
}

// ColorMask sets which color channels draws write.
func (c *Context) ColorMask(r, gr, b, a bool) {
	defer c.scope("colorMask")()
	g := c.live()
	if g == nil {
		return
	}
	g.colorMask = [4]bool{r, gr, b, a}
	c.run(g, dispatch.MethodColorMask, r, gr, b, a)
}

// Viewport sets the viewport rectangle.
func (c *Context) Viewport(x, y, width, height int32) {
	defer c.scope("viewport")()
	g := c.live()
	if g == nil {
		return
	}
	if width < 0 || height < 0 {
		c.enqueueError(glenum.InvalidValue, "`width` and `height` must be non-negative.")
		return
	}
	limit := g.info.Limits.MaxViewportDims
	width, height = min(width, limit), min(height, limit)
	g.viewport = [4]int32{x, y, width, height}
	c.run(g, dispatch.MethodViewport, int64(x), int64(y), int64(width), int64(height))
}

// Scissor sets the scissor box.
func (c *Context) Scissor(x, y, width, height int32) {
	defer c.scope("scissor")()
	g := c.live()
	if g == nil {
		return
	}
	if width < 0 || height < 0 {
		c.enqueueError(glenum.InvalidValue, "`width` and `height` must be non-negative.")
		return
	}
	g.scissor = [4]int32{x, y, width, height}
	c.run(g, dispatch.MethodScissor, int64(x), int64(y), int64(width), int64(height))
}

// PixelStorei sets a pixel storage parameter.
func (c *Context) PixelStorei(pname uint32, param int32) {
	defer c.scope("pixelStorei")()
	g := c.live()
	if g == nil {
		return
	}
	switch pname {
	case glenum.PackAlignment, glenum.UnpackAlignment:
		if param != 1 && param != 2 && param != 4 && param != 8 {
			c.enqueueError(glenum.InvalidValue, "Alignment must be 1, 2, 4 or 8.")
			return
		}
	case glenum.PackRowLength, glenum.UnpackRowLength:
		if param < 0 {
			c.enqueueError(glenum.InvalidValue, "Row length must be non-negative.")
			return
		}
	case glenum.UnpackFlipYWebGL, glenum.UnpackPremultiplyAlphaWebGL:
		if param != 0 {
			param = 1
		}
	case glenum.UnpackColorspaceConversionWebGL:
	default:
		c.enumError("pname", pname)
		return
	}
	g.pixelStore[pname] = param
	c.run(g, dispatch.MethodPixelStore, pname, int64(param))
}

// Clear clears the buffers selected by mask.
func (c *Context) Clear(mask uint32) {
	defer c.scope("clear")()
	g := c.live()
	if g == nil {
		return
	}
	if mask&^(glenum.ColorBufferBit|glenum.DepthBufferBit|glenum.StencilBufferBit) != 0 {
		c.enqueueError(glenum.InvalidValue, "Invalid mask bits: 0x%x.", mask)
		return
	}
	c.run(g, dispatch.MethodClear, mask)
	c.afterDraw(g)
}

// handleOrNil keeps a nil binding from turning into a typed nil interface.
func handleOrNil[H handleRef](h H) any {
	var zero H
	if h == zero {
		return nil
	}
	return h
}

// GetParameter answers bindings, cached state and limits locally and asks
// the executor for the rest.
func (c *Context) GetParameter(pname uint32) any {
	defer c.scope("getParameter")()
	g := c.live()
	if g == nil {
		return nil
	}
	lim := g.info.Limits
	switch pname {
	case glenum.ArrayBufferBinding:
		return handleOrNil(g.buffers[glenum.ArrayBuffer])
	case glenum.ElementArrayBufferBinding:
		return handleOrNil(g.vertexState().indexBuffer)
	case glenum.UniformBufferBinding:
		return handleOrNil(g.buffers[glenum.UniformBuffer])
	case glenum.TransformFeedbackBufferBinding:
		return handleOrNil(g.buffers[glenum.TransformFeedbackBuffer])
	case glenum.FramebufferBinding:
		return handleOrNil(g.drawFB)
	case glenum.ReadFramebufferBinding:
		return handleOrNil(g.readFB)
	case glenum.RenderbufferBinding:
		return handleOrNil(g.renderbuffer)
	case glenum.TextureBinding2D:
		return handleOrNil(g.unit().textures[glenum.Texture2D])
	case glenum.TextureBindingCubeMap:
		return handleOrNil(g.unit().textures[glenum.TextureCubeMap])
	case glenum.ActiveTexture:
		return glenum.Texture0 + g.activeUnit
	case glenum.SamplerBinding:
		return handleOrNil(g.unit().sampler)
	case glenum.CurrentProgram:
		return handleOrNil(g.program)
	case glenum.VertexArrayBinding:
		return handleOrNil(g.vao)
	case glenum.TransformFeedbackBinding:
		return handleOrNil(g.tf)
	case glenum.TransformFeedbackActive:
		return g.tfState().active
	case glenum.TransformFeedbackPaused:
		return g.tfState().paused
	case glenum.Viewport:
		return append([]int32(nil), g.viewport[:]...)
	case glenum.ScissorBox:
		return append([]int32(nil), g.scissor[:]...)
	case glenum.ColorClearValue:
		return append([]float32(nil), g.clearColor[:]...)
	case glenum.BlendColor:
		return append([]float32(nil), g.blendColor[:]...)
	case glenum.DepthRange:
		return append([]float32(nil), g.depthRange[:]...)
	case glenum.ColorWritemask:
		return append([]bool(nil), g.colorMask[:]...)
	case glenum.UnpackFlipYWebGL, glenum.UnpackPremultiplyAlphaWebGL:
		return g.pixelStore[pname] != 0
	case glenum.PackAlignment, glenum.UnpackAlignment, glenum.PackRowLength,
		glenum.UnpackRowLength, glenum.UnpackColorspaceConversionWebGL:
		return g.pixelStore[pname]
	case glenum.MaxTextureSize:
		return lim.MaxTextureSize
	case glenum.MaxCombinedTextureImageUnits:
		return lim.MaxTextureUnits
	case glenum.MaxVertexAttribs:
		return lim.MaxVertexAttribs
	case glenum.MaxColorAttachments:
		return lim.MaxColorAttachments
	case glenum.MaxDrawBuffers:
		return lim.MaxDrawBuffers
	case glenum.MaxViewportDims:
		return []int32{lim.MaxViewportDims, lim.MaxViewportDims}
	case glenum.Vendor, glenum.Renderer, glenum.Version:
		var s string
		if !g.disp.Query(&s, dispatch.MethodGetParameter, pname) {
			return nil
		}
		return s
	}
	if validCapability(pname) {
		return c.IsEnabled(pname)
	}
	c.enumError("pname", pname)
	return nil
}
