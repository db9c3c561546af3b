package webgl

import (
	"math/bits"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

const (
	mirroredRepeat       = 0x8370
	textureBaseLevel     = 0x813C
	textureMaxLevel      = 0x813D
	textureMinLOD        = 0x813A
	textureMaxLOD        = 0x813B
	textureCompareMode   = 0x884C
	textureCompareFunc   = 0x884D
	nearestMipmapNearest = 0x2700
	linearMipmapLinear   = 0x2703
)

func validTextureTarget(target uint32) bool {
	switch target {
	case glenum.Texture2D, glenum.Texture3D, glenum.Texture2DArray, glenum.TextureCubeMap:
		return true
	}
	return false
}

func isCubeFace(target uint32) bool {
	return target >= glenum.TextureCubeMapPositiveX && target <= glenum.TextureCubeMapNegativeZ
}

// ActiveTexture selects the texture unit later binds apply to.
func (c *Context) ActiveTexture(texture uint32) {
	defer c.scope("activeTexture")()
	g := c.live()
	if g == nil {
		return
	}
	if texture < glenum.Texture0 || texture-glenum.Texture0 >= uint32(len(g.units)) {
		c.enqueueError(glenum.InvalidEnum, "Texture unit out of range: 0x%04x (max %d units).", texture, len(g.units))
		return
	}
	g.activeUnit = texture - glenum.Texture0
	c.run(g, dispatch.MethodActiveTexture, g.activeUnit)
}

// BindTexture binds tex to target on the active unit. A texture keeps the
// target it was first bound to.
func (c *Context) BindTexture(target uint32, tex *Texture) {
	defer c.scope("bindTexture")()
	if !validOrNil(c, tex, "tex") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if !validTextureTarget(target) {
		c.enumError("target", target)
		return
	}
	if tex != nil {
		if tex.target != 0 && tex.target != target {
			c.enqueueError(glenum.InvalidOperation, "Texture previously bound to 0x%04x cannot be bound now to 0x%04x.", tex.target, target)
			return
		}
		tex.target = target
	}
	bindAt(g.unit().textures, target, tex)
	c.run(g, dispatch.MethodBindTexture, target, idOf(tex))
}

// boundTexture returns the texture bound for target on the active unit.
// Cube faces resolve to the cube map binding.
func (c *Context) boundTexture(g *Generation, target uint32, argName string) *Texture {
	base := target
	if isCubeFace(target) {
		base = glenum.TextureCubeMap
	}
	if !validTextureTarget(base) {
		c.enumError(argName, target)
		return nil
	}
	tex := g.unit().textures[base]
	if tex == nil {
		c.enqueueError(glenum.InvalidOperation, "No texture is bound to this target.")
		return nil
	}
	return tex
}

// validTexParam reports whether pname/param is an acceptable texture or
// sampler parameter. It reports the error itself.
func (c *Context) validTexParam(pname uint32, param int32) bool {
	v := uint32(param)
	switch pname {
	case glenum.TextureMagFilter:
		if v == glenum.Nearest || v == glenum.Linear {
			return true
		}
	case glenum.TextureMinFilter:
		if v == glenum.Nearest || v == glenum.Linear || (v >= nearestMipmapNearest && v <= linearMipmapLinear) {
			return true
		}
	case glenum.TextureWrapS, glenum.TextureWrapT, glenum.TextureWrapR:
		if v == glenum.Repeat || v == glenum.ClampToEdge || v == mirroredRepeat {
			return true
		}
	case textureBaseLevel, textureMaxLevel, textureMinLOD, textureMaxLOD:
		if param >= 0 || pname == textureMinLOD || pname == textureMaxLOD {
			return true
		}
		c.enqueueError(glenum.InvalidValue, "Level must be non-negative.")
		return false
	case textureCompareMode, textureCompareFunc:
		return true
	default:
		c.enumError("pname", pname)
		return false
	}
	c.enumError("param", v)
	return false
}

// TexParameteri sets an integer parameter of the bound texture.
func (c *Context) TexParameteri(target, pname uint32, param int32) {
	defer c.scope("texParameteri")()
	g := c.live()
	if g == nil {
		return
	}
	if isCubeFace(target) {
		c.enumError("target", target)
		return
	}
	if c.boundTexture(g, target, "target") == nil || !c.validTexParam(pname, param) {
		return
	}
	c.run(g, dispatch.MethodTexParameter, target, pname, int64(param))
}

func formatChannels(format uint32) int {
	switch format {
	case glenum.RGBA:
		return 4
	case glenum.RGB:
		return 3
	case 0x8227: // RG
		return 2
	case 0x190A: // LUMINANCE_ALPHA
		return 2
	case 0x1903, 0x1906, 0x1909: // RED, ALPHA, LUMINANCE
		return 1
	}
	return 0
}

func bytesPerPixel(format, typ uint32) int {
	ch := formatChannels(format)
	if ch == 0 {
		return 0
	}
	switch typ {
	case glenum.UnsignedByte, glenum.Byte:
		return ch
	case glenum.UnsignedShort, glenum.Short, 0x8D61, 0x140B: // HALF_FLOAT_OES, HALF_FLOAT
		return 2 * ch
	case glenum.Float, glenum.UnsignedInt, glenum.Int:
		return 4 * ch
	case 0x8033, 0x8034, 0x8363: // UNSIGNED_SHORT_4_4_4_4, 5_5_5_1, 5_6_5
		return 2
	}
	return 0
}

// imageSize is the number of bytes an upload of width x height pixels needs
// under the given row alignment.
func imageSize(width, height int64, bpp, alignment int) int64 {
	if width == 0 || height == 0 {
		return 0
	}
	row := width * int64(bpp)
	a := int64(max(alignment, 1))
	stride := (row + a - 1) / a * a
	return stride*(height-1) + row
}

// TexImage2D specifies a 2D image for the bound texture. pixels may be nil,
// which allocates uninitialized storage.
func (c *Context) TexImage2D(target uint32, level int32, internalFormat uint32, width, height, border int32, format, typ uint32, pixels []byte) {
	defer c.scope("texImage2D")()
	g := c.live()
	if g == nil {
		return
	}
	if target != glenum.Texture2D && !isCubeFace(target) {
		c.enumError("target", target)
		return
	}
	if c.boundTexture(g, target, "target") == nil {
		return
	}
	if level < 0 || width < 0 || height < 0 {
		c.enqueueError(glenum.InvalidValue, "`level`, `width` and `height` must be non-negative.")
		return
	}
	if border != 0 {
		c.enqueueError(glenum.InvalidValue, "`border` must be 0.")
		return
	}
	if limit := g.info.Limits.MaxTextureSize >> level; width > limit || height > limit {
		c.enqueueError(glenum.InvalidValue, "Size exceeds MAX_TEXTURE_SIZE for level %d.", level)
		return
	}
	if isCubeFace(target) && width != height {
		c.enqueueError(glenum.InvalidValue, "Cube map faces must be square.")
		return
	}
	bpp := bytesPerPixel(format, typ)
	if bpp == 0 {
		c.enqueueError(glenum.InvalidEnum, "Unsupported format/type combination 0x%04x/0x%04x.", format, typ)
		return
	}
	if pixels == nil {
		c.run(g, dispatch.MethodTexImage2D, target, int64(level), internalFormat, int64(width), int64(height), format, typ, nil)
		return
	}
	need := imageSize(int64(width), int64(height), bpp, int(g.pixelStore[glenum.UnpackAlignment]))
	if int64(len(pixels)) < need {
		c.enqueueError(glenum.InvalidOperation, "ArrayBufferView not big enough for request: need %d bytes, have %d.", need, len(pixels))
		return
	}
	c.runWithBytes(g, dispatch.MethodTexImage2D, target, int64(level), internalFormat, int64(width), int64(height), format, typ, pixels)
}

// TexStorage2D allocates immutable storage for the bound texture.
func (c *Context) TexStorage2D(target uint32, levels int32, internalFormat uint32, width, height int32) {
	defer c.scope("texStorage2D")()
	g := c.live()
	if g == nil {
		return
	}
	if target != glenum.Texture2D && target != glenum.TextureCubeMap {
		c.enumError("target", target)
		return
	}
	if c.boundTexture(g, target, "target") == nil {
		return
	}
	if levels < 1 || width < 1 || height < 1 {
		c.enqueueError(glenum.InvalidValue, "`levels`, `width` and `height` must be at least 1.")
		return
	}
	if limit := g.info.Limits.MaxTextureSize; width > limit || height > limit {
		c.enqueueError(glenum.InvalidValue, "Size exceeds MAX_TEXTURE_SIZE (%d).", limit)
		return
	}
	if maxLevels := int32(bits.Len32(uint32(max(width, height)))); levels > maxLevels {
		c.enqueueError(glenum.InvalidOperation, "`levels` exceeds %d for this size.", maxLevels)
		return
	}
	c.run(g, dispatch.MethodTexStorage2D, target, int64(levels), internalFormat, int64(width), int64(height))
}

// GenerateMipmap generates the mip chain of the bound texture.
func (c *Context) GenerateMipmap(target uint32) {
	defer c.scope("generateMipmap")()
	g := c.live()
	if g == nil {
		return
	}
	if isCubeFace(target) {
		c.enumError("target", target)
		return
	}
	if c.boundTexture(g, target, "target") == nil {
		return
	}
	c.run(g, dispatch.MethodGenerateMipmap, target)
}

// BindSampler binds s to texture unit unit.
func (c *Context) BindSampler(unit uint32, s *Sampler) {
	defer c.scope("bindSampler")()
	if !validOrNil(c, s, "sampler") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if int(unit) >= len(g.units) {
		c.enqueueError(glenum.InvalidValue, "`unit` must be < %d.", len(g.units))
		return
	}
	resource.Assign(&g.units[unit].sampler, s)
	c.run(g, dispatch.MethodBindSampler, unit, idOf(s))
}

// SamplerParameteri sets an integer parameter of s.
func (c *Context) SamplerParameteri(s *Sampler, pname uint32, param int32) {
	defer c.scope("samplerParameteri")()
	if !valid(c, s, "sampler") {
		return
	}
	g := c.live()
	if g == nil || !c.validTexParam(pname, param) {
		return
	}
	c.run(g, dispatch.MethodSamplerParameter, idOf(s), pname, int64(param))
}

// GetSamplerParameter queries a parameter of s.
func (c *Context) GetSamplerParameter(s *Sampler, pname uint32) any {
	defer c.scope("getSamplerParameter")()
	if !valid(c, s, "sampler") {
		return nil
	}
	g := c.live()
	if g == nil {
		return nil
	}
	switch pname {
	case glenum.TextureMagFilter, glenum.TextureMinFilter,
		glenum.TextureWrapS, glenum.TextureWrapT, glenum.TextureWrapR,
		textureMinLOD, textureMaxLOD, textureCompareMode, textureCompareFunc:
	default:
		c.enumError("pname", pname)
		return nil
	}
	var v int64
	if !g.disp.Query(&v, dispatch.MethodGetSamplerParameter, idOf(s), pname) {
		return nil
	}
	return int32(v)
}
