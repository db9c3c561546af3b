package webgl

import (
	"testing"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
)

func compiledShader(t *testing.T, c *Context, typ uint32, src string) *Shader {
	t.Helper()
	s := c.CreateShader(typ)
	c.ShaderSource(s, src)
	c.CompileShader(s)
	if ok, _ := c.GetShaderParameter(s, glenum.CompileStatus).(bool); !ok {
		t.Fatalf("compile failed: %s", c.GetShaderInfoLog(s))
	}
	return s
}

func linkedProgram(t *testing.T, c *Context) (*Program, *Shader, *Shader) {
	t.Helper()
	vs := compiledShader(t, c, glenum.VertexShader, testVS)
	fs := compiledShader(t, c, glenum.FragmentShader, testFS)
	p := c.CreateProgram()
	c.AttachShader(p, vs)
	c.AttachShader(p, fs)
	c.LinkProgram(p)
	if ok, _ := c.GetProgramParameter(p, glenum.LinkStatus).(bool); !ok {
		t.Fatalf("link failed: %s", c.GetProgramInfoLog(p))
	}
	return p, vs, fs
}

func TestCreate_DispatchOrder(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	start := len(dev.Calls())

	b := c.CreateBuffer()
	c.BindBuffer(glenum.ArrayBuffer, b)
	c.BufferData(glenum.ArrayBuffer, []byte{1, 2, 3, 4}, glenum.StaticDraw)

	got := dev.Calls()[start:]
	want := []dispatch.Method{dispatch.MethodCreateObject, dispatch.MethodBindBuffer, dispatch.MethodBufferData}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
	if !dev.Has(idOf(b)) {
		t.Error("buffer not created on the device")
	}
}

func TestCreateShader_BadType(t *testing.T) {
	c, _, _ := newTestContext(t)
	if s := c.CreateShader(glenum.Texture2D); s != nil {
		t.Fatal("expected nil shader")
	}
	expectErrors(t, c, glenum.InvalidEnum, glenum.NoError)
}

func TestCreate_WhileLost(t *testing.T) {
	c, _, _ := newTestContext(t)
	c.EmulateLoseContext()
	b := c.CreateBuffer()
	if b == nil {
		t.Fatal("CreateBuffer returned nil while lost")
	}
	if c.IsUsable(b) || c.IsBuffer(b) {
		t.Error("buffer created while lost is usable")
	}
}

func TestDeleteBuffer_Unbinds(t *testing.T) {
	c, conn, _ := newTestContext(t)
	b := c.CreateBuffer()
	c.BindBuffer(glenum.ArrayBuffer, b)
	if c.GetParameter(glenum.ArrayBufferBinding) != any(b) {
		t.Fatal("buffer not bound")
	}

	c.DeleteBuffer(b)
	if c.GetParameter(glenum.ArrayBufferBinding) != nil {
		t.Error("deleted buffer still bound")
	}
	if conn.Last().Has(idOf(b)) {
		t.Error("device object survived delete")
	}
	if c.IsBuffer(b) {
		t.Error("IsBuffer true after delete")
	}

	c.BindBuffer(glenum.ArrayBuffer, b)
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)

	// A second delete is a no-op.
	c.DeleteBuffer(b)
	expectErrors(t, c, glenum.NoError)
}

func TestDelete_ForeignContext(t *testing.T) {
	c1, _, w := newTestContext(t)
	c2, _, _ := newTestContext(t)
	b := c2.CreateBuffer()

	c1.DeleteBuffer(b)
	expectErrors(t, c1, glenum.InvalidOperation, glenum.NoError)
	if !c2.IsUsable(b) {
		t.Error("foreign delete affected the owning context")
	}
	c1.Queue().Drain(4)
	if !w.contains("is from a different WebGL context") {
		t.Errorf("warnings = %q", w.msgs)
	}
}

func TestDelete_StaleGenerationIsSilent(t *testing.T) {
	c, _, _ := newTestContext(t)
	preventDefault(c)
	tex := c.CreateTexture()
	c.EmulateLoseContext()
	c.Queue().RunPending()
	c.RestoreContext()
	c.Queue().Drain(4)

	c.DeleteTexture(tex)
	expectErrors(t, c, glenum.NoError)
}

func TestDeleteShader_AttachedStaysAlive(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	vs := compiledShader(t, c, glenum.VertexShader, testVS)
	p := c.CreateProgram()
	c.AttachShader(p, vs)

	c.DeleteShader(vs)
	if !dev.Has(idOf(vs)) {
		t.Fatal("attached shader destroyed by delete")
	}
	if deleted, _ := c.GetShaderParameter(vs, glenum.DeleteStatus).(bool); !deleted {
		t.Error("DELETE_STATUS false after delete")
	}
	if got := c.GetAttachedShaders(p); len(got) != 1 || got[0] != vs {
		t.Errorf("attached = %v", got)
	}

	c.DetachShader(p, vs)
	if dev.Has(idOf(vs)) {
		t.Error("shader survived its last detach")
	}
	if c.IsShader(vs) {
		t.Error("IsShader true after destroy")
	}
	expectErrors(t, c, glenum.NoError)
}

func TestDetachShader_NotDeletedKeepsShader(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	vs := compiledShader(t, c, glenum.VertexShader, testVS)
	p := c.CreateProgram()
	c.AttachShader(p, vs)
	c.DetachShader(p, vs)

	if !dev.Has(idOf(vs)) {
		t.Fatal("detach destroyed a live shader")
	}
	if !c.IsShader(vs) {
		t.Error("IsShader false")
	}
	c.DetachShader(p, vs)
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)
}

func TestAttachShader_OnePerType(t *testing.T) {
	c, _, _ := newTestContext(t)
	p := c.CreateProgram()
	a := c.CreateShader(glenum.VertexShader)
	b := c.CreateShader(glenum.VertexShader)
	c.AttachShader(p, a)
	c.AttachShader(p, a)
	c.AttachShader(p, b)
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)
	if n, _ := c.GetProgramParameter(p, glenum.AttachedShaders).(int32); n != 1 {
		t.Errorf("ATTACHED_SHADERS = %d", n)
	}
}

func TestDeleteProgram_ReleasesAttachments(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	p, vs, fs := linkedProgram(t, c)
	c.DeleteShader(vs)
	c.DeleteShader(fs)
	if !dev.Has(idOf(vs)) || !dev.Has(idOf(fs)) {
		t.Fatal("attached shaders destroyed early")
	}

	c.DeleteProgram(p)
	for name, id := range map[string]uint64{"program": idOf(p), "vs": idOf(vs), "fs": idOf(fs)} {
		if dev.Has(id) {
			t.Errorf("%s survived program delete", name)
		}
	}

	c.LinkProgram(p)
	expectErrors(t, c, glenum.InvalidValue, glenum.NoError)
}

func TestDeleteProgram_CurrentIsDeferred(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	p, _, _ := linkedProgram(t, c)
	c.UseProgram(p)

	c.DeleteProgram(p)
	if !dev.Has(idOf(p)) {
		t.Fatal("current program destroyed by delete")
	}
	if c.GetParameter(glenum.CurrentProgram) != any(p) {
		t.Error("CURRENT_PROGRAM changed by delete")
	}
	if deleted, _ := c.GetProgramParameter(p, glenum.DeleteStatus).(bool); !deleted {
		t.Error("DELETE_STATUS false")
	}
	if !c.IsProgram(p) {
		t.Error("IsProgram false while current")
	}

	c.UseProgram(nil)
	if dev.Has(idOf(p)) {
		t.Error("program survived being replaced")
	}
	if c.IsProgram(p) {
		t.Error("IsProgram true after destroy")
	}
	expectErrors(t, c, glenum.NoError)
}

func TestDeleteFramebuffer_Detaches(t *testing.T) {
	c, _, _ := newTestContext(t)
	fb := c.CreateFramebuffer()
	tex := c.CreateTexture()
	c.BindTexture(glenum.Texture2D, tex)
	c.BindFramebuffer(glenum.Framebuffer, fb)
	c.FramebufferTexture2D(glenum.Framebuffer, glenum.ColorAttachment0, glenum.Texture2D, tex, 0)
	if c.GetFramebufferAttachmentParameter(glenum.Framebuffer, glenum.ColorAttachment0, glenum.FramebufferAttachmentObjectName) != any(tex) {
		t.Fatal("texture not attached")
	}

	c.DeleteTexture(tex)
	if got := c.GetFramebufferAttachmentParameter(glenum.Framebuffer, glenum.ColorAttachment0, glenum.FramebufferAttachmentObjectType); got != glenum.None {
		t.Errorf("attachment type after texture delete = %v", got)
	}

	c.DeleteFramebuffer(fb)
	if c.GetParameter(glenum.FramebufferBinding) != nil {
		t.Error("deleted framebuffer still bound")
	}
	expectErrors(t, c, glenum.NoError)
}

func TestIsObject_RequiresBind(t *testing.T) {
	c, _, _ := newTestContext(t)
	tex := c.CreateTexture()
	va := c.CreateVertexArray()
	if c.IsTexture(tex) || c.IsVertexArray(va) {
		t.Fatal("unbound objects reported as objects")
	}
	c.BindTexture(glenum.Texture2D, tex)
	c.BindVertexArray(va)
	if !c.IsTexture(tex) || !c.IsVertexArray(va) {
		t.Fatal("bound objects not reported")
	}
	if c.IsTexture(nil) {
		t.Error("IsTexture(nil)")
	}
}

func TestBindTexture_TargetIsSticky(t *testing.T) {
	c, _, _ := newTestContext(t)
	tex := c.CreateTexture()
	c.BindTexture(glenum.Texture2D, tex)
	c.BindTexture(glenum.TextureCubeMap, tex)
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)
	if c.GetParameter(glenum.TextureBindingCubeMap) != nil {
		t.Error("cube map binding changed")
	}
}

func TestRelease_PlainObject(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()

	loose := c.CreateTexture()
	start := len(dev.Calls())
	loose.Release()
	if got := dev.Calls()[start:]; len(got) != 1 || got[0] != dispatch.MethodDeleteObject {
		t.Fatalf("calls after release = %v", got)
	}
	if dev.Has(idOf(loose)) {
		t.Error("released texture still on the device")
	}

	b := c.CreateBuffer()
	c.BindBuffer(glenum.ArrayBuffer, b)
	b.Release()
	if !dev.Has(idOf(b)) {
		t.Fatal("bound buffer destroyed by release")
	}
	c.BindBuffer(glenum.ArrayBuffer, nil)
	if dev.Has(idOf(b)) {
		t.Error("buffer survived its last binding")
	}
	expectErrors(t, c, glenum.NoError)
}

func TestRelease_AttachedShaderLivesUntilDetach(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	p, vs, _ := linkedProgram(t, c)

	vs.Release()
	if !dev.Has(idOf(vs)) {
		t.Fatal("attached shader destroyed by release")
	}
	c.LinkProgram(p)
	if ok, _ := c.GetProgramParameter(p, glenum.LinkStatus).(bool); !ok {
		t.Fatalf("relink failed: %s", c.GetProgramInfoLog(p))
	}

	c.DetachShader(p, vs)
	if dev.Has(idOf(vs)) {
		t.Error("shader survived its last detach")
	}
	expectErrors(t, c, glenum.NoError)
}

func TestRelease_CurrentProgram(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	p, vs, fs := linkedProgram(t, c)
	c.UseProgram(p)
	before := dev.Objects()

	p.Release()
	vs.Release()
	fs.Release()
	c.Queue().RunPending()
	if dev.Objects() != before {
		t.Fatalf("objects destroyed while the program is current: %d -> %d", before, dev.Objects())
	}

	c.UseProgram(nil)
	c.Queue().RunPending()
	for name, id := range map[string]uint64{"program": idOf(p), "vs": idOf(vs), "fs": idOf(fs)} {
		if dev.Has(id) {
			t.Errorf("%s survived after the program stopped being current", name)
		}
	}
	if p.weak.Alive() || vs.weak.Alive() || fs.weak.Alive() {
		t.Error("keep-alive token outlived its objects")
	}
	if got := dev.Objects(); got != before-3 {
		t.Errorf("device objects = %d, want %d", got, before-3)
	}
}

func TestRelease_ProgramHeldByTransformFeedback(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	vs := compiledShader(t, c, glenum.VertexShader, testVS)
	fs := compiledShader(t, c, glenum.FragmentShader, testFS)
	p := c.CreateProgram()
	c.AttachShader(p, vs)
	c.AttachShader(p, fs)
	c.TransformFeedbackVaryings(p, []string{"vUV"}, glenum.InterleavedAttribs)
	c.LinkProgram(p)
	c.UseProgram(p)

	tf := c.CreateTransformFeedback()
	c.BindTransformFeedback(glenum.TransformFeedback, tf)
	c.BindBufferBase(glenum.TransformFeedbackBuffer, 0, c.CreateBuffer())
	c.BeginTransformFeedback(glenum.Points)
	expectErrors(t, c, glenum.NoError)

	p.Release()
	vs.Release()
	fs.Release()
	c.EndTransformFeedback()
	if !dev.Has(idOf(p)) {
		t.Fatal("current program destroyed by EndTransformFeedback")
	}
	c.UseProgram(nil)
	for name, id := range map[string]uint64{"program": idOf(p), "vs": idOf(vs), "fs": idOf(fs)} {
		if dev.Has(id) {
			t.Errorf("%s survived after transform feedback and use ended", name)
		}
	}
	expectErrors(t, c, glenum.NoError)
}
