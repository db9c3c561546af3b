package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

func validFramebufferTarget(target uint32) bool {
	switch target {
	case glenum.Framebuffer, glenum.DrawFramebuffer, glenum.ReadFramebuffer:
		return true
	}
	return false
}

func (g *Generation) framebufferFor(target uint32) *Framebuffer {
	if target == glenum.ReadFramebuffer {
		return g.readFB
	}
	return g.drawFB
}

func (g *Generation) validAttachment(attachment uint32) bool {
	switch attachment {
	case glenum.DepthAttachment, glenum.StencilAttachment, glenum.DepthStencilAttachment:
		return true
	}
	return attachment >= glenum.ColorAttachment0 &&
		attachment < glenum.ColorAttachment0+uint32(max(g.info.Limits.MaxColorAttachments, 1))
}

// BindFramebuffer binds fb, or the default framebuffer for nil.
func (c *Context) BindFramebuffer(target uint32, fb *Framebuffer) {
	defer c.scope("bindFramebuffer")()
	if !validOrNil(c, fb, "fb") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if !validFramebufferTarget(target) {
		c.enumError("target", target)
		return
	}
	if fb != nil {
		fb.bound = true
	}
	switch target {
	case glenum.Framebuffer:
		resource.Assign(&g.drawFB, fb)
		resource.Assign(&g.readFB, fb)
	case glenum.DrawFramebuffer:
		resource.Assign(&g.drawFB, fb)
	case glenum.ReadFramebuffer:
		resource.Assign(&g.readFB, fb)
	}
	c.run(g, dispatch.MethodBindFramebuffer, target, idOf(fb))
}

// attachTarget returns the framebuffer whose attachments a call for target
// and attachment may change, or nil after reporting why not.
func (c *Context) attachTarget(g *Generation, target, attachment uint32) *Framebuffer {
	if !validFramebufferTarget(target) {
		c.enumError("target", target)
		return nil
	}
	if !g.validAttachment(attachment) {
		c.enumError("attachment", attachment)
		return nil
	}
	fb := g.framebufferFor(target)
	if fb == nil {
		c.enqueueError(glenum.InvalidOperation, "Cannot modify the default framebuffer's attachments.")
		return nil
	}
	return fb
}

func (fb *Framebuffer) setAttachment(point uint32, a *attachment) {
	if old := fb.attachments[point]; old != nil {
		old.release()
		delete(fb.attachments, point)
	}
	if a != nil {
		fb.attachments[point] = a
	}
}

// FramebufferTexture2D attaches level of tex to the bound framebuffer.
func (c *Context) FramebufferTexture2D(target, attachmentPoint, texTarget uint32, tex *Texture, level int32) {
	defer c.scope("framebufferTexture2D")()
	if !validOrNil(c, tex, "texture") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	fb := c.attachTarget(g, target, attachmentPoint)
	if fb == nil {
		return
	}
	cube := texTarget >= glenum.TextureCubeMapPositiveX && texTarget <= glenum.TextureCubeMapNegativeZ
	if texTarget != glenum.Texture2D && !cube {
		c.enumError("texImageTarget", texTarget)
		return
	}
	if level < 0 {
		c.enqueueError(glenum.InvalidValue, "`level` must be non-negative.")
		return
	}
	var a *attachment
	if tex != nil {
		want := uint32(glenum.Texture2D)
		if cube {
			want = glenum.TextureCubeMap
		}
		if tex.target != 0 && tex.target != want {
			c.enqueueError(glenum.InvalidOperation, "`texImageTarget` does not match the texture's target.")
			return
		}
		a = &attachment{texTarget: texTarget, level: level}
		resource.Assign(&a.texture, tex)
	}
	fb.setAttachment(attachmentPoint, a)
	c.run(g, dispatch.MethodFramebufferAttach, target, attachmentPoint, texTarget, idOf(tex), uint64(0), int64(level))
}

// FramebufferRenderbuffer attaches rb to the bound framebuffer. rb must have
// been bound at least once.
func (c *Context) FramebufferRenderbuffer(target, attachmentPoint, rbTarget uint32, rb *Renderbuffer) {
	defer c.scope("framebufferRenderbuffer")()
	if !validOrNil(c, rb, "rb") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	fb := c.attachTarget(g, target, attachmentPoint)
	if fb == nil {
		return
	}
	if rbTarget != glenum.Renderbuffer {
		c.enumError("renderbuffertarget", rbTarget)
		return
	}
	var a *attachment
	if rb != nil {
		if !rb.bound {
			c.enqueueError(glenum.InvalidOperation, "`rb` has never been bound.")
			return
		}
		a = &attachment{}
		resource.Assign(&a.renderbuffer, rb)
	}
	fb.setAttachment(attachmentPoint, a)
	c.run(g, dispatch.MethodFramebufferAttach, target, attachmentPoint, uint32(0), uint64(0), idOf(rb), int64(0))
}

// CheckFramebufferStatus returns the completeness status of the framebuffer
// bound to target, or 0 if the context is lost.
func (c *Context) CheckFramebufferStatus(target uint32) uint32 {
	defer c.scope("checkFramebufferStatus")()
	g := c.live()
	if g == nil {
		return 0
	}
	if !validFramebufferTarget(target) {
		c.enumError("target", target)
		return 0
	}
	var status uint32
	if !g.disp.Query(&status, dispatch.MethodCheckFramebufferStatus, target) {
		return 0
	}
	return status
}

// GetFramebufferAttachmentParameter answers OBJECT_TYPE and OBJECT_NAME
// from the framebuffer's own attachment map.
func (c *Context) GetFramebufferAttachmentParameter(target, attachmentPoint, pname uint32) any {
	defer c.scope("getFramebufferAttachmentParameter")()
	g := c.live()
	if g == nil {
		return nil
	}
	fb := c.attachTarget(g, target, attachmentPoint)
	if fb == nil {
		return nil
	}
	a := fb.attachments[attachmentPoint]
	switch pname {
	case glenum.FramebufferAttachmentObjectType:
		switch {
		case a == nil:
			return glenum.None
		case a.texture != nil:
			return glenum.Texture
		default:
			return glenum.Renderbuffer
		}
	case glenum.FramebufferAttachmentObjectName:
		switch {
		case a == nil:
			return nil
		case a.texture != nil:
			return a.texture
		default:
			return a.renderbuffer
		}
	}
	if a == nil {
		c.enqueueError(glenum.InvalidOperation, "No attachment at 0x%04x.", attachmentPoint)
		return nil
	}
	c.enumError("pname", pname)
	return nil
}

// BindRenderbuffer binds rb, or unbinds for nil.
func (c *Context) BindRenderbuffer(target uint32, rb *Renderbuffer) {
	defer c.scope("bindRenderbuffer")()
	if !validOrNil(c, rb, "rb") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if target != glenum.Renderbuffer {
		c.enumError("target", target)
		return
	}
	if rb != nil {
		rb.bound = true
	}
	resource.Assign(&g.renderbuffer, rb)
	c.run(g, dispatch.MethodBindRenderbuffer, idOf(rb))
}

// RenderbufferStorage allocates storage for the bound renderbuffer.
func (c *Context) RenderbufferStorage(target, internalFormat uint32, width, height int32) {
	defer c.scope("renderbufferStorage")()
	g := c.live()
	if g == nil {
		return
	}
	if target != glenum.Renderbuffer {
		c.enumError("target", target)
		return
	}
	if g.renderbuffer == nil {
		c.enqueueError(glenum.InvalidOperation, "No renderbuffer bound.")
		return
	}
	if width < 0 || height < 0 {
		c.enqueueError(glenum.InvalidValue, "`width` and `height` must be non-negative.")
		return
	}
	if limit := g.info.Limits.MaxTextureSize; width > limit || height > limit {
		c.enqueueError(glenum.InvalidValue, "Size exceeds MAX_RENDERBUFFER_SIZE (%d).", limit)
		return
	}
	c.run(g, dispatch.MethodRenderbufferStorage, internalFormat, int64(width), int64(height))
}
