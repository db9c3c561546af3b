package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/webgl"
)

// session drives one context from text commands. Each command runs as one
// task queue turn, so notifications and warnings posted by a command are
// reported with its output.
type session struct {
	ctx     *webgl.Context
	objects map[string]any
	notes   []string
	frames  int
}

func newSession(opts webgl.Options) (*session, error) {
	s := &session{objects: make(map[string]any)}
	userWarning := opts.OnWarning
	opts.OnWarning = func(msg string) {
		s.note(msg)
		if userWarning != nil {
			userWarning(msg)
		}
	}
	opts.Compositor = s
	ctx, err := webgl.New(opts)
	if err != nil {
		return nil, err
	}
	ctx.AddEventListener(webgl.EventContextLost, func(e *webgl.Event) {
		e.PreventDefault()
		s.note("event: " + webgl.EventContextLost + " (" + ctx.LossReason().String() + ")")
	})
	ctx.AddEventListener(webgl.EventContextRestored, func(*webgl.Event) {
		s.note("event: " + webgl.EventContextRestored)
	})
	s.ctx = ctx
	return s, nil
}

func (s *session) note(msg string) { s.notes = append(s.notes, msg) }

// PresentFrame reports presented frames.
func (s *session) PresentFrame(f webgl.Frame) error {
	s.frames++
	s.note(fmt.Sprintf("frame %d: %dx%d %s epoch %d", f.Handle, f.Width, f.Height, f.ColorSpace, f.Generation))
	return nil
}

func (s *session) close() error { return s.ctx.Close() }

type command struct {
	usage string
	help  string
	min   int
	run   func(s *session, args []string) (string, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"create":      {"create <kind> <name> [vertex|fragment]", "create an object", 2, (*session).create},
		"delete":      {"delete <name>", "delete an object", 1, (*session).delete},
		"is":          {"is <name>", "report whether an object is usable", 1, (*session).is},
		"bind":        {"bind <target> <name|null>", "bind an object to a target", 2, (*session).bind},
		"data":        {"data <target> <byte>...", "upload bytes to the bound buffer", 1, (*session).data},
		"source":      {"source <shader> <glsl>", "set shader source; \\n starts a new line", 2, (*session).source},
		"source-file": {"source-file <shader> <path>", "set shader source from a file", 2, (*session).sourceFile},
		"compile":     {"compile <shader>", "compile a shader", 1, (*session).compile},
		"attach":      {"attach <program> <shader>", "attach a shader", 2, (*session).attach},
		"link":        {"link <program>", "link a program", 1, (*session).link},
		"use":         {"use <program|null>", "make a program current", 1, (*session).use},
		"uniform":     {"uniform <program> <name> <float>...", "set a float uniform of the current program", 3, (*session).uniform},
		"enable":      {"enable <cap>", "enable a capability", 1, (*session).enable},
		"disable":     {"disable <cap>", "disable a capability", 1, (*session).disable},
		"clear-color": {"clear-color <r> <g> <b> <a>", "set the clear color", 4, (*session).clearColor},
		"clear":       {"clear [color] [depth] [stencil]", "clear buffers", 0, (*session).clear},
		"viewport":    {"viewport <x> <y> <w> <h>", "set the viewport", 4, (*session).viewport},
		"draw":        {"draw <mode> <first> <count>", "draw arrays", 3, (*session).draw},
		"flush":       {"flush", "flush commands", 0, (*session).flush},
		"finish":      {"finish", "wait for the executor", 0, (*session).finish},
		"present":     {"present", "present the canvas if drawn to", 0, (*session).present},
		"error":       {"error", "drain GetError", 0, (*session).errors},
		"param":       {"param <name>", "query a parameter", 1, (*session).param},
		"extensions":  {"extensions", "list supported extensions", 0, (*session).extensions},
		"lose":        {"lose", "emulate a context loss", 0, (*session).lose},
		"restore":     {"restore", "restore a lost context", 0, (*session).restore},
		"status":      {"status", "show context status", 0, (*session).status},
		"turn":        {"turn [n]", "run task queue turns", 0, (*session).turn},
		"help":        {"help", "list commands", 0, (*session).help},
	}
}

// exec runs one command line and the task queue turn that follows it.
// Blank lines and lines starting with # are ignored.
func (s *session) exec(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	fields := strings.Fields(line)
	cmd, ok := commands[fields[0]]
	if !ok {
		return nil, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	args := fields[1:]
	if len(args) < cmd.min {
		return nil, fmt.Errorf("usage: %s", cmd.usage)
	}
	if fields[0] == "source" {
		// Keep the source text as written.
		rest := strings.TrimSpace(strings.TrimPrefix(line, "source"))
		name, glsl, _ := strings.Cut(rest, " ")
		args = []string{name, strings.ReplaceAll(glsl, `\n`, "\n")}
	}
	result, err := cmd.run(s, args)
	s.ctx.Queue().RunPending()

	var out []string
	if result != "" {
		out = append(out, result)
	}
	out = append(out, s.notes...)
	s.notes = s.notes[:0]
	return out, err
}

var enumNames = map[string]uint32{
	"array":          glenum.ArrayBuffer,
	"element":        glenum.ElementArrayBuffer,
	"uniform":        glenum.UniformBuffer,
	"copy-read":      glenum.CopyReadBuffer,
	"copy-write":     glenum.CopyWriteBuffer,
	"texture-2d":     glenum.Texture2D,
	"cube-map":       glenum.TextureCubeMap,
	"framebuffer":    glenum.Framebuffer,
	"read-fb":        glenum.ReadFramebuffer,
	"draw-fb":        glenum.DrawFramebuffer,
	"renderbuffer":   glenum.Renderbuffer,
	"vertex":         glenum.VertexShader,
	"fragment":       glenum.FragmentShader,
	"blend":          glenum.Blend,
	"cull-face":      glenum.CullFace,
	"depth-test":     glenum.DepthTest,
	"scissor-test":   glenum.ScissorTest,
	"stencil-test":   glenum.StencilTest,
	"dither":         glenum.Dither,
	"points":         glenum.Points,
	"lines":          glenum.Lines,
	"line-loop":      glenum.LineLoop,
	"line-strip":     glenum.LineStrip,
	"triangles":      glenum.Triangles,
	"triangle-strip": glenum.TriangleStrip,
	"triangle-fan":   glenum.TriangleFan,
	"vendor":         glenum.Vendor,
	"renderer":       glenum.Renderer,
	"version":        glenum.Version,
	"viewport":       glenum.Viewport,
	"clear-color":    glenum.ColorClearValue,
	"program":        glenum.CurrentProgram,
	"max-texture":    glenum.MaxTextureSize,
}

var errorNames = map[uint32]string{
	glenum.InvalidEnum:                 "INVALID_ENUM",
	glenum.InvalidValue:                "INVALID_VALUE",
	glenum.InvalidOperation:            "INVALID_OPERATION",
	glenum.OutOfMemory:                 "OUT_OF_MEMORY",
	glenum.InvalidFramebufferOperation: "INVALID_FRAMEBUFFER_OPERATION",
	glenum.ContextLostWebGL:            "CONTEXT_LOST_WEBGL",
}

// enum resolves a symbolic name or a numeric literal.
func enum(name string) (uint32, error) {
	if v, ok := enumNames[strings.ToLower(name)]; ok {
		return v, nil
	}
	v, err := strconv.ParseUint(name, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown enum %q", name)
	}
	return uint32(v), nil
}

func floats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func ints(args []string) ([]int32, error) {
	out := make([]int32, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = int32(v)
	}
	return out, nil
}

// boxed boxes v, or returns nil for a nil handle.
func boxed[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}

// lookup returns the object named name as a T. "null" yields the zero T.
func lookup[T any](s *session, name string) (T, error) {
	var zero T
	if name == "null" {
		return zero, nil
	}
	obj, ok := s.objects[name]
	if !ok {
		return zero, fmt.Errorf("no object named %q", name)
	}
	v, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%q is a %T", name, obj)
	}
	return v, nil
}

func (s *session) create(args []string) (string, error) {
	kind, name := args[0], args[1]
	if _, exists := s.objects[name]; exists {
		return "", fmt.Errorf("name %q is taken", name)
	}
	var obj any
	switch kind {
	case "buffer":
		obj = boxed(s.ctx.CreateBuffer())
	case "texture":
		obj = boxed(s.ctx.CreateTexture())
	case "framebuffer":
		obj = boxed(s.ctx.CreateFramebuffer())
	case "renderbuffer":
		obj = boxed(s.ctx.CreateRenderbuffer())
	case "sampler":
		obj = boxed(s.ctx.CreateSampler())
	case "query":
		obj = boxed(s.ctx.CreateQuery())
	case "vao":
		obj = boxed(s.ctx.CreateVertexArray())
	case "program":
		obj = boxed(s.ctx.CreateProgram())
	case "shader":
		if len(args) < 3 {
			return "", fmt.Errorf("usage: create shader <name> vertex|fragment")
		}
		typ, err := enum(args[2])
		if err != nil {
			return "", err
		}
		obj = boxed(s.ctx.CreateShader(typ))
	default:
		return "", fmt.Errorf("unknown kind %q", kind)
	}
	if obj == nil {
		return "", fmt.Errorf("create %s failed", kind)
	}
	s.objects[name] = obj
	return fmt.Sprintf("%s %s", kind, name), nil
}

func (s *session) delete(args []string) (string, error) {
	obj, ok := s.objects[args[0]]
	if !ok {
		return "", fmt.Errorf("no object named %q", args[0])
	}
	switch o := obj.(type) {
	case *webgl.Buffer:
		s.ctx.DeleteBuffer(o)
	case *webgl.Texture:
		s.ctx.DeleteTexture(o)
	case *webgl.Framebuffer:
		s.ctx.DeleteFramebuffer(o)
	case *webgl.Renderbuffer:
		s.ctx.DeleteRenderbuffer(o)
	case *webgl.Sampler:
		s.ctx.DeleteSampler(o)
	case *webgl.Query:
		s.ctx.DeleteQuery(o)
	case *webgl.VertexArray:
		s.ctx.DeleteVertexArray(o)
	case *webgl.Program:
		s.ctx.DeleteProgram(o)
	case *webgl.Shader:
		s.ctx.DeleteShader(o)
	}
	return "", nil
}

func (s *session) is(args []string) (string, error) {
	obj, ok := s.objects[args[0]]
	if !ok {
		return "", fmt.Errorf("no object named %q", args[0])
	}
	var yes bool
	switch o := obj.(type) {
	case *webgl.Buffer:
		yes = s.ctx.IsBuffer(o)
	case *webgl.Texture:
		yes = s.ctx.IsTexture(o)
	case *webgl.Framebuffer:
		yes = s.ctx.IsFramebuffer(o)
	case *webgl.Renderbuffer:
		yes = s.ctx.IsRenderbuffer(o)
	case *webgl.Sampler:
		yes = s.ctx.IsSampler(o)
	case *webgl.Query:
		yes = s.ctx.IsQuery(o)
	case *webgl.VertexArray:
		yes = s.ctx.IsVertexArray(o)
	case *webgl.Program:
		yes = s.ctx.IsProgram(o)
	case *webgl.Shader:
		yes = s.ctx.IsShader(o)
	}
	return strconv.FormatBool(yes), nil
}

func (s *session) bind(args []string) (string, error) {
	name := args[1]
	if args[0] == "vao" {
		va, err := lookup[*webgl.VertexArray](s, name)
		if err != nil {
			return "", err
		}
		s.ctx.BindVertexArray(va)
		return "", nil
	}
	target, err := enum(args[0])
	if err != nil {
		return "", err
	}
	switch target {
	case glenum.ArrayBuffer, glenum.ElementArrayBuffer, glenum.UniformBuffer,
		glenum.CopyReadBuffer, glenum.CopyWriteBuffer:
		b, err := lookup[*webgl.Buffer](s, name)
		if err != nil {
			return "", err
		}
		s.ctx.BindBuffer(target, b)
	case glenum.Texture2D, glenum.TextureCubeMap:
		t, err := lookup[*webgl.Texture](s, name)
		if err != nil {
			return "", err
		}
		s.ctx.BindTexture(target, t)
	case glenum.Framebuffer, glenum.ReadFramebuffer, glenum.DrawFramebuffer:
		fb, err := lookup[*webgl.Framebuffer](s, name)
		if err != nil {
			return "", err
		}
		s.ctx.BindFramebuffer(target, fb)
	case glenum.Renderbuffer:
		rb, err := lookup[*webgl.Renderbuffer](s, name)
		if err != nil {
			return "", err
		}
		s.ctx.BindRenderbuffer(target, rb)
	default:
		return "", fmt.Errorf("cannot bind to %s", args[0])
	}
	return "", nil
}

func (s *session) data(args []string) (string, error) {
	target, err := enum(args[0])
	if err != nil {
		return "", err
	}
	vals, err := ints(args[1:])
	if err != nil {
		return "", err
	}
	buf := make([]byte, len(vals))
	for i, v := range vals {
		buf[i] = byte(v)
	}
	s.ctx.BufferData(target, buf, glenum.StaticDraw)
	return "", nil
}

func (s *session) source(args []string) (string, error) {
	sh, err := lookup[*webgl.Shader](s, args[0])
	if err != nil {
		return "", err
	}
	s.ctx.ShaderSource(sh, args[1])
	return "", nil
}

func (s *session) sourceFile(args []string) (string, error) {
	sh, err := lookup[*webgl.Shader](s, args[0])
	if err != nil {
		return "", err
	}
	text, err := os.ReadFile(args[1])
	if err != nil {
		return "", err
	}
	s.ctx.ShaderSource(sh, string(text))
	return "", nil
}

func (s *session) compile(args []string) (string, error) {
	sh, err := lookup[*webgl.Shader](s, args[0])
	if err != nil {
		return "", err
	}
	s.ctx.CompileShader(sh)
	if ok, _ := s.ctx.GetShaderParameter(sh, glenum.CompileStatus).(bool); !ok {
		return "compile failed: " + s.ctx.GetShaderInfoLog(sh), nil
	}
	return "compiled", nil
}

func (s *session) attach(args []string) (string, error) {
	p, err := lookup[*webgl.Program](s, args[0])
	if err != nil {
		return "", err
	}
	sh, err := lookup[*webgl.Shader](s, args[1])
	if err != nil {
		return "", err
	}
	s.ctx.AttachShader(p, sh)
	return "", nil
}

func (s *session) link(args []string) (string, error) {
	p, err := lookup[*webgl.Program](s, args[0])
	if err != nil {
		return "", err
	}
	s.ctx.LinkProgram(p)
	if ok, _ := s.ctx.GetProgramParameter(p, glenum.LinkStatus).(bool); !ok {
		return "link failed: " + s.ctx.GetProgramInfoLog(p), nil
	}
	return "linked", nil
}

func (s *session) use(args []string) (string, error) {
	p, err := lookup[*webgl.Program](s, args[0])
	if err != nil {
		return "", err
	}
	s.ctx.UseProgram(p)
	return "", nil
}

func (s *session) uniform(args []string) (string, error) {
	p, err := lookup[*webgl.Program](s, args[0])
	if err != nil {
		return "", err
	}
	v, err := floats(args[2:])
	if err != nil {
		return "", err
	}
	loc := s.ctx.GetUniformLocation(p, args[1])
	if loc == nil {
		return "", fmt.Errorf("no active uniform %q", args[1])
	}
	s.ctx.Uniform1fv(loc, v)
	return "", nil
}

func (s *session) enable(args []string) (string, error) {
	c, err := enum(args[0])
	if err != nil {
		return "", err
	}
	s.ctx.Enable(c)
	return "", nil
}

func (s *session) disable(args []string) (string, error) {
	c, err := enum(args[0])
	if err != nil {
		return "", err
	}
	s.ctx.Disable(c)
	return "", nil
}

func (s *session) clearColor(args []string) (string, error) {
	v, err := floats(args)
	if err != nil {
		return "", err
	}
	s.ctx.ClearColor(v[0], v[1], v[2], v[3])
	return "", nil
}

func (s *session) clear(args []string) (string, error) {
	if len(args) == 0 {
		args = []string{"color"}
	}
	var mask uint32
	for _, a := range args {
		switch a {
		case "color":
			mask |= glenum.ColorBufferBit
		case "depth":
			mask |= glenum.DepthBufferBit
		case "stencil":
			mask |= glenum.StencilBufferBit
		default:
			return "", fmt.Errorf("unknown buffer %q", a)
		}
	}
	s.ctx.Clear(mask)
	return "", nil
}

func (s *session) viewport(args []string) (string, error) {
	v, err := ints(args)
	if err != nil {
		return "", err
	}
	s.ctx.Viewport(v[0], v[1], v[2], v[3])
	return "", nil
}

func (s *session) draw(args []string) (string, error) {
	mode, err := enum(args[0])
	if err != nil {
		return "", err
	}
	v, err := ints(args[1:3])
	if err != nil {
		return "", err
	}
	s.ctx.DrawArrays(mode, v[0], v[1])
	return "", nil
}

func (s *session) flush([]string) (string, error) {
	s.ctx.Flush()
	return "", nil
}

func (s *session) finish([]string) (string, error) {
	s.ctx.Finish()
	return "", nil
}

func (s *session) present([]string) (string, error) {
	before := s.frames
	if err := s.ctx.Present(); err != nil {
		return "", err
	}
	if s.frames == before {
		return "nothing to present", nil
	}
	return "", nil
}

func (s *session) errors([]string) (string, error) {
	var names []string
	for range 16 {
		code := s.ctx.GetError()
		if code == glenum.NoError {
			break
		}
		name, ok := errorNames[code]
		if !ok {
			name = fmt.Sprintf("0x%04x", code)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "NO_ERROR", nil
	}
	return strings.Join(names, " "), nil
}

func (s *session) param(args []string) (string, error) {
	pname, err := enum(args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprint(s.ctx.GetParameter(pname)), nil
}

func (s *session) extensions([]string) (string, error) {
	exts := s.ctx.GetSupportedExtensions()
	if exts == nil {
		return "context lost", nil
	}
	return strings.Join(exts, "\n"), nil
}

func (s *session) lose([]string) (string, error) {
	s.ctx.EmulateLoseContext()
	return "", nil
}

func (s *session) restore([]string) (string, error) {
	s.ctx.RestoreContext()
	return "", nil
}

func (s *session) status([]string) (string, error) {
	return fmt.Sprintf("context %s: %s, turn %d, %d objects", s.ctx.ID(), s.ctx.Status(), s.ctx.Queue().Turn(), len(s.objects)), nil
}

func (s *session) turn(args []string) (string, error) {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return "", err
		}
		n = v
	}
	ran := s.ctx.Queue().Drain(n)
	return fmt.Sprintf("%d tasks", ran), nil
}

func (s *session) help([]string) (string, error) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-40s %s", commands[name].usage, commands[name].help)
	}
	return b.String(), nil
}
