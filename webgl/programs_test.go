package webgl

import (
	"strings"
	"testing"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
)

func TestLinkProgram_ResultFromNotification(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	vs := compiledShader(t, c, glenum.VertexShader, testVS)
	fs := compiledShader(t, c, glenum.FragmentShader, testFS)
	p := c.CreateProgram()
	c.AttachShader(p, vs)
	c.AttachShader(p, fs)
	c.LinkProgram(p)

	c.Queue().RunPending()
	if ok, _ := c.GetProgramParameter(p, glenum.LinkStatus).(bool); !ok {
		t.Fatalf("link failed: %s", c.GetProgramInfoLog(p))
	}
	if n := dev.CallCount(dispatch.MethodGetLinkResult); n != 0 {
		t.Errorf("link result fetched synchronously %d times", n)
	}
}

func TestLinkProgram_Failure(t *testing.T) {
	c, _, _ := newTestContext(t)
	vs := compiledShader(t, c, glenum.VertexShader, testVS)
	p := c.CreateProgram()
	c.AttachShader(p, vs)
	c.LinkProgram(p)
	if ok, _ := c.GetProgramParameter(p, glenum.LinkStatus).(bool); ok {
		t.Fatal("link without a fragment shader succeeded")
	}
	if log := c.GetProgramInfoLog(p); !strings.Contains(log, "missing fragment shader") {
		t.Errorf("log = %q", log)
	}
	c.UseProgram(p)
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)
}

func TestCompileShader_Failure(t *testing.T) {
	c, _, _ := newTestContext(t)
	s := c.CreateShader(glenum.FragmentShader)
	c.ShaderSource(s, "uniform float x;")
	c.CompileShader(s)
	if ok, _ := c.GetShaderParameter(s, glenum.CompileStatus).(bool); ok {
		t.Fatal("compile succeeded")
	}
	if log := c.GetShaderInfoLog(s); !strings.Contains(log, "main") {
		t.Errorf("log = %q", log)
	}
	if got := c.GetShaderSource(s); got != "uniform float x;" {
		t.Errorf("source = %q", got)
	}
	if got := c.GetShaderParameter(s, glenum.ShaderType); got != glenum.FragmentShader {
		t.Errorf("SHADER_TYPE = %v", got)
	}
}

func TestActiveInfo(t *testing.T) {
	c, _, _ := newTestContext(t)
	p, _, _ := linkedProgram(t, c)

	if n := c.GetProgramParameter(p, glenum.ActiveUniforms); n != int32(3) {
		t.Fatalf("ACTIVE_UNIFORMS = %v", n)
	}
	u := c.GetActiveUniform(p, 1)
	if u == nil || u.Name != "uWeights[0]" || u.Size != 4 || u.Type != glenum.Float {
		t.Errorf("uniform 1 = %+v", u)
	}
	if c.GetActiveUniform(p, 7) != nil {
		t.Error("out of range index answered")
	}
	expectErrors(t, c, glenum.InvalidValue, glenum.NoError)

	if loc := c.GetAttribLocation(p, "aColor"); loc != 3 {
		t.Errorf("aColor at %d", loc)
	}
	if loc := c.GetAttribLocation(p, "aPosition"); loc != 0 {
		t.Errorf("aPosition at %d", loc)
	}
	if loc := c.GetAttribLocation(p, "gl_VertexID"); loc != -1 {
		t.Errorf("reserved name at %d", loc)
	}
}

func TestBindAttribLocation(t *testing.T) {
	c, _, _ := newTestContext(t)
	vs := compiledShader(t, c, glenum.VertexShader, testVS)
	fs := compiledShader(t, c, glenum.FragmentShader, testFS)
	p := c.CreateProgram()
	c.AttachShader(p, vs)
	c.AttachShader(p, fs)
	c.BindAttribLocation(p, 5, "aPosition")
	c.BindAttribLocation(p, 1, "gl_Position")
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)

	c.LinkProgram(p)
	if loc := c.GetAttribLocation(p, "aPosition"); loc != 5 {
		t.Errorf("aPosition at %d, want 5", loc)
	}
}

func TestUniformLocation_Names(t *testing.T) {
	c, _, _ := newTestContext(t)
	p, _, _ := linkedProgram(t, c)

	tests := []struct {
		name string
		loc  int32
		ok   bool
	}{
		{"uMVP", 0, true},
		{"uWeights", 1, true},
		{"uWeights[0]", 1, true},
		{"uWeights[3]", 4, true},
		{"uWeights[4]", 0, false},
		{"uTex", 5, true},
		{"missing", 0, false},
		{"gl_DepthRange", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := c.GetUniformLocation(p, tt.name)
			if (l != nil) != tt.ok {
				t.Fatalf("location = %v, want found=%v", l, tt.ok)
			}
			if l != nil && l.Location() != tt.loc {
				t.Errorf("location = %d, want %d", l.Location(), tt.loc)
			}
		})
	}
}

func TestUniform_Validation(t *testing.T) {
	c, _, _ := newTestContext(t)
	p, _, _ := linkedProgram(t, c)
	weights := c.GetUniformLocation(p, "uWeights")
	mvp := c.GetUniformLocation(p, "uMVP")
	tex := c.GetUniformLocation(p, "uTex")

	c.Uniform1fv(weights, []float32{1, 2, 3, 4})
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)

	c.UseProgram(p)
	c.Uniform1fv(weights, []float32{1, 2, 3, 4})
	c.UniformMatrix4fv(mvp, false, make([]float32, 16))
	c.Uniform1i(tex, 0)
	c.Uniform1f(nil, 1)
	expectErrors(t, c, glenum.NoError)

	tests := []struct {
		name string
		call func()
		want uint32
	}{
		{"int setter on float", func() { c.Uniform1i(weights, 1) }, glenum.InvalidOperation},
		{"float setter on matrix", func() { c.Uniform4f(mvp, 1, 2, 3, 4) }, glenum.InvalidOperation},
		{"bad length", func() { c.UniformMatrix4fv(mvp, false, make([]float32, 15)) }, glenum.InvalidValue},
		{"array on non-array", func() { c.Uniform1iv(tex, []int32{0, 1}) }, glenum.InvalidOperation},
		{"sampler unit out of range", func() { c.Uniform1i(tex, 1000) }, glenum.InvalidValue},
		{"empty array", func() { c.Uniform1fv(weights, nil) }, glenum.InvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.call()
			expectErrors(t, c, tt.want, glenum.NoError)
		})
	}
}

func TestUniform_ObsoleteAfterRelink(t *testing.T) {
	c, _, w := newTestContext(t)
	p, _, _ := linkedProgram(t, c)
	c.UseProgram(p)
	old := c.GetUniformLocation(p, "uWeights")
	c.Uniform1fv(old, []float32{1, 2, 3, 4})
	expectErrors(t, c, glenum.NoError)

	c.LinkProgram(p)
	c.Queue().RunPending()

	c.Uniform1fv(old, []float32{1, 2, 3, 4})
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)

	fresh := c.GetUniformLocation(p, "uWeights")
	c.Uniform1fv(fresh, []float32{1, 2, 3, 4})
	expectErrors(t, c, glenum.NoError)

	c.Queue().Drain(4)
	if !w.contains("obsolete") {
		t.Errorf("warnings = %q", w.msgs)
	}
}

func TestUniform_OtherProgram(t *testing.T) {
	c, _, _ := newTestContext(t)
	p1, _, _ := linkedProgram(t, c)
	p2, _, _ := linkedProgram(t, c)
	c.UseProgram(p2)
	c.Uniform1f(c.GetUniformLocation(p1, "uWeights[2]"), 1)
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)
}

func TestUniform_AfterLoss(t *testing.T) {
	c, _, _ := newTestContext(t)
	p, _, _ := linkedProgram(t, c)
	c.UseProgram(p)
	l := c.GetUniformLocation(p, "uMVP")
	c.EmulateLoseContext()
	expectErrors(t, c, glenum.ContextLostWebGL)
	c.UniformMatrix4fv(l, false, make([]float32, 16))
	expectErrors(t, c, glenum.NoError)
}

func TestLinkProgram_WhileTransformFeedbackActive(t *testing.T) {
	c, _, _ := newTestContext(t)
	vs := compiledShader(t, c, glenum.VertexShader, testVS)
	fs := compiledShader(t, c, glenum.FragmentShader, testFS)
	p := c.CreateProgram()
	c.AttachShader(p, vs)
	c.AttachShader(p, fs)
	c.TransformFeedbackVaryings(p, []string{"vUV"}, glenum.InterleavedAttribs)
	c.LinkProgram(p)
	c.UseProgram(p)

	tf := c.CreateTransformFeedback()
	buf := c.CreateBuffer()
	c.BindTransformFeedback(glenum.TransformFeedback, tf)
	c.BindBufferBase(glenum.TransformFeedbackBuffer, 0, buf)
	c.BeginTransformFeedback(glenum.Points)
	expectErrors(t, c, glenum.NoError)
	if c.GetParameter(glenum.TransformFeedbackActive) != true {
		t.Fatal("transform feedback not active")
	}

	c.LinkProgram(p)
	c.UseProgram(nil)
	c.DeleteTransformFeedback(tf)
	expectErrors(t, c, glenum.InvalidOperation, glenum.NoError)

	c.PauseTransformFeedback()
	c.ResumeTransformFeedback()
	c.EndTransformFeedback()
	expectErrors(t, c, glenum.NoError)
	c.LinkProgram(p)
	expectErrors(t, c, glenum.NoError)
}
