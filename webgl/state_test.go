package webgl

import (
	"slices"
	"testing"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/host"
)

func TestGetParameter_Cached(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()

	c.ClearColor(0.25, 0.5, 0.75, 1)
	c.DepthRange(-1, 0.5)
	c.Viewport(1, 2, 10000, 20)
	c.ColorMask(true, false, true, false)

	queries := dev.CallCount(dispatch.MethodGetParameter)
	if got := c.GetParameter(glenum.ColorClearValue).([]float32); !slices.Equal(got, []float32{0.25, 0.5, 0.75, 1}) {
		t.Errorf("COLOR_CLEAR_VALUE = %v", got)
	}
	if got := c.GetParameter(glenum.DepthRange).([]float32); !slices.Equal(got, []float32{0, 0.5}) {
		t.Errorf("DEPTH_RANGE = %v", got)
	}
	if got := c.GetParameter(glenum.Viewport).([]int32); !slices.Equal(got, []int32{1, 2, host.DefaultLimits.MaxViewportDims, 20}) {
		t.Errorf("VIEWPORT = %v", got)
	}
	if got := c.GetParameter(glenum.ColorWritemask).([]bool); !slices.Equal(got, []bool{true, false, true, false}) {
		t.Errorf("COLOR_WRITEMASK = %v", got)
	}
	if got := c.GetParameter(glenum.UnpackAlignment); got != int32(4) {
		t.Errorf("UNPACK_ALIGNMENT = %v", got)
	}
	if got := c.GetParameter(glenum.MaxTextureSize); got != host.DefaultLimits.MaxTextureSize {
		t.Errorf("MAX_TEXTURE_SIZE = %v", got)
	}
	if n := dev.CallCount(dispatch.MethodGetParameter); n != queries {
		t.Errorf("cached parameters queried the executor %d times", n-queries)
	}

	if got := c.GetParameter(glenum.Version); got != "WebGL 2.0" {
		t.Errorf("VERSION = %v", got)
	}
	c.GetParameter(0xffff)
	expectErrors(t, c, glenum.InvalidEnum, glenum.NoError)
}

func TestIsEnabled(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	if !c.IsEnabled(glenum.Dither) {
		t.Error("DITHER off by default")
	}
	if c.IsEnabled(glenum.Blend) {
		t.Error("BLEND on by default")
	}
	if c.IsEnabled(glenum.Blend) {
		t.Error("BLEND on by default")
	}
	if n := dev.CallCount(dispatch.MethodIsEnabled); n != 1 {
		t.Errorf("IsEnabled queried %d times, want 1", n)
	}

	c.Enable(glenum.Blend)
	if !c.IsEnabled(glenum.Blend) || c.GetParameter(glenum.Blend) != true {
		t.Error("BLEND not enabled")
	}
	c.Disable(glenum.Blend)
	if c.IsEnabled(glenum.Blend) {
		t.Error("BLEND still enabled")
	}
}

func TestStateChecks(t *testing.T) {
	c, _, _ := newTestContext(t)
	tests := []struct {
		name string
		call func()
		want uint32
	}{
		{"blend constant mix", func() { c.BlendFunc(0x8001, 0x8003) }, glenum.InvalidOperation},
		{"blend bad factor", func() { c.BlendFunc(0x9999, glenum.One) }, glenum.InvalidEnum},
		{"depth func", func() { c.DepthFunc(0x0300) }, glenum.InvalidEnum},
		{"depth range order", func() { c.DepthRange(1, 0) }, glenum.InvalidOperation},
		{"scissor negative", func() { c.Scissor(0, 0, -1, 1) }, glenum.InvalidValue},
		{"alignment", func() { c.PixelStorei(glenum.UnpackAlignment, 3) }, glenum.InvalidValue},
		{"pixel store pname", func() { c.PixelStorei(0x1234, 1) }, glenum.InvalidEnum},
		{"clear mask", func() { c.Clear(0x1) }, glenum.InvalidValue},
		{"active texture", func() { c.ActiveTexture(glenum.Texture0 + 100) }, glenum.InvalidEnum},
		{"valid blend", func() { c.BlendFunc(glenum.SrcAlpha, glenum.OneMinusSrcAlpha) }, glenum.NoError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.call()
			expectErrors(t, c, tt.want, glenum.NoError)
		})
	}
}

func TestPixelStore_FlipYIsBool(t *testing.T) {
	c, _, _ := newTestContext(t)
	c.PixelStorei(glenum.UnpackFlipYWebGL, 7)
	if got := c.GetParameter(glenum.UnpackFlipYWebGL); got != true {
		t.Errorf("UNPACK_FLIP_Y_WEBGL = %v", got)
	}
}

func TestTexImage2D_Checks(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	tex := c.CreateTexture()
	c.BindTexture(glenum.Texture2D, tex)

	c.TexImage2D(glenum.Texture2D, 0, glenum.RGBA, 2, 2, 0, glenum.RGBA, glenum.UnsignedByte, make([]byte, 16))
	expectErrors(t, c, glenum.NoError)

	before := dev.CallCount(dispatch.MethodTexImage2D)
	tests := []struct {
		name string
		call func()
		want uint32
	}{
		{"border", func() {
			c.TexImage2D(glenum.Texture2D, 0, glenum.RGBA, 2, 2, 1, glenum.RGBA, glenum.UnsignedByte, nil)
		}, glenum.InvalidValue},
		{"too large", func() {
			c.TexImage2D(glenum.Texture2D, 0, glenum.RGBA, 8192, 1, 0, glenum.RGBA, glenum.UnsignedByte, nil)
		}, glenum.InvalidValue},
		{"short pixels", func() {
			c.TexImage2D(glenum.Texture2D, 0, glenum.RGB, 3, 2, 0, glenum.RGB, glenum.UnsignedByte, make([]byte, 18))
		}, glenum.InvalidOperation},
		{"cube face not square", func() {
			cube := c.CreateTexture()
			c.BindTexture(glenum.TextureCubeMap, cube)
			c.TexImage2D(glenum.TextureCubeMapPositiveX, 0, glenum.RGBA, 2, 4, 0, glenum.RGBA, glenum.UnsignedByte, nil)
		}, glenum.InvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.call()
			expectErrors(t, c, tt.want, glenum.NoError)
		})
	}
	if n := dev.CallCount(dispatch.MethodTexImage2D); n != before {
		t.Errorf("rejected uploads reached the executor: %d", n-before)
	}

	// Rows of 3 RGB pixels pad to 12 bytes at the default alignment; the
	// last row is not padded.
	c.TexImage2D(glenum.Texture2D, 0, glenum.RGB, 3, 2, 0, glenum.RGB, glenum.UnsignedByte, make([]byte, 21))
	expectErrors(t, c, glenum.NoError)
}

func TestSampler(t *testing.T) {
	c, _, _ := newTestContext(t)
	s := c.CreateSampler()
	c.SamplerParameteri(s, glenum.TextureMinFilter, int32(glenum.Nearest))
	if got := c.GetSamplerParameter(s, glenum.TextureMinFilter); got != int32(glenum.Nearest) {
		t.Errorf("MIN_FILTER = %v", got)
	}
	c.BindSampler(0, s)
	if c.GetParameter(glenum.SamplerBinding) != any(s) {
		t.Error("sampler not bound")
	}
	c.DeleteSampler(s)
	if c.GetParameter(glenum.SamplerBinding) != nil {
		t.Error("deleted sampler still bound")
	}
	c.SamplerParameteri(c.CreateSampler(), glenum.TextureWrapS, 0x1234)
	expectErrors(t, c, glenum.InvalidEnum, glenum.NoError)
}

func TestVertexAttribPointer(t *testing.T) {
	c, _, _ := newTestContext(t)
	tests := []struct {
		name   string
		size   int32
		typ    uint32
		stride int32
		offset int64
		want   uint32
	}{
		{"size", 5, glenum.Float, 0, 0, glenum.InvalidValue},
		{"type", 4, 0x1234, 0, 0, glenum.InvalidEnum},
		{"stride range", 4, glenum.Float, 256, 0, glenum.InvalidValue},
		{"stride alignment", 4, glenum.Float, 6, 0, glenum.InvalidOperation},
		{"offset without buffer", 4, glenum.Float, 0, 16, glenum.InvalidOperation},
		{"client zero offset", 4, glenum.Float, 0, 0, glenum.NoError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.VertexAttribPointer(0, tt.size, tt.typ, false, tt.stride, tt.offset)
			expectErrors(t, c, tt.want, glenum.NoError)
		})
	}

	b := c.CreateBuffer()
	c.BindBuffer(glenum.ArrayBuffer, b)
	c.VertexAttribPointer(1, 2, glenum.Short, true, 4, 8)
	expectErrors(t, c, glenum.NoError)
	if c.GetVertexAttrib(1, glenum.VertexAttribArrayBufferBinding) != any(b) {
		t.Error("attribute buffer not recorded")
	}
	if got := c.GetVertexAttrib(1, glenum.VertexAttribArrayType); got != glenum.Short {
		t.Errorf("type = %v", got)
	}
	if got := c.GetVertexAttrib(2, glenum.CurrentVertexAttrib).([]float32); !slices.Equal(got, []float32{0, 0, 0, 1}) {
		t.Errorf("generic value = %v", got)
	}
	c.VertexAttrib4f(2, 1, 2, 3, 4)
	if got := c.GetVertexAttrib(2, glenum.CurrentVertexAttrib).([]float32); !slices.Equal(got, []float32{1, 2, 3, 4}) {
		t.Errorf("generic value = %v", got)
	}
	c.EnableVertexAttribArray(99)
	expectErrors(t, c, glenum.InvalidValue, glenum.NoError)
}

func TestVertexArray_OwnsIndexBinding(t *testing.T) {
	c, _, _ := newTestContext(t)
	ib := c.CreateBuffer()
	va := c.CreateVertexArray()

	c.BindVertexArray(va)
	c.BindBuffer(glenum.ElementArrayBuffer, ib)
	c.BindVertexArray(nil)
	if c.GetParameter(glenum.ElementArrayBufferBinding) != nil {
		t.Error("index buffer leaked into the default vertex array")
	}
	c.BindVertexArray(va)
	if c.GetParameter(glenum.ElementArrayBufferBinding) != any(ib) {
		t.Error("vertex array lost its index buffer")
	}
	c.DeleteVertexArray(va)
	if c.GetParameter(glenum.VertexArrayBinding) != nil {
		t.Error("deleted vertex array still bound")
	}
	expectErrors(t, c, glenum.NoError)
}
