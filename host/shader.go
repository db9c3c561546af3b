package host

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
)

var (
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	inputDecl   = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?(?:in|attribute)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)
	outputDecl  = regexp.MustCompile(`(?m)^\s*(?:flat\s+|smooth\s+)?(?:out|varying)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)
	mainDecl    = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(?:void)?\s*\)`)
	errorDecl   = regexp.MustCompile(`(?m)^\s*#error\s*(.*)$`)
)

var glslTypes = map[string]uint32{
	"float":       glenum.Float,
	"vec2":        glenum.FloatVec2,
	"vec3":        glenum.FloatVec3,
	"vec4":        glenum.FloatVec4,
	"int":         glenum.Int,
	"ivec2":       glenum.IntVec2,
	"ivec3":       glenum.IntVec3,
	"ivec4":       glenum.IntVec4,
	"uint":        glenum.UnsignedInt,
	"bool":        glenum.Bool,
	"mat2":        glenum.FloatMat2,
	"mat3":        glenum.FloatMat3,
	"mat4":        glenum.FloatMat4,
	"sampler2D":   glenum.Sampler2D,
	"samplerCube": glenum.SamplerCube,
}

// compileShader checks the source the way a front end would reject it
// early: it needs a main function, known declaration types and no #error.
func compileShader(source string) *dispatch.CompileResult {
	var problems []string
	if strings.TrimSpace(source) == "" {
		problems = append(problems, "empty source")
	}
	if m := errorDecl.FindStringSubmatch(source); m != nil {
		problems = append(problems, "#error "+strings.TrimSpace(m[1]))
	}
	if source != "" && !mainDecl.MatchString(source) {
		problems = append(problems, "missing function: main")
	}
	for _, m := range uniformDecl.FindAllStringSubmatch(source, -1) {
		if _, ok := glslTypes[m[1]]; !ok {
			problems = append(problems, fmt.Sprintf("unknown type %q for uniform %s", m[1], m[2]))
		}
	}

	if len(problems) > 0 {
		var b strings.Builder
		for _, p := range problems {
			b.WriteString("ERROR: 0:0: ")
			b.WriteString(p)
			b.WriteByte('\n')
		}
		return &dispatch.CompileResult{Log: b.String()}
	}
	return &dispatch.CompileResult{Success: true}
}

type decl struct {
	name     string
	typ      uint32
	size     int32
	location int32
}

func scanUniforms(source string) []decl {
	var out []decl
	for _, m := range uniformDecl.FindAllStringSubmatch(source, -1) {
		size := int32(1)
		if m[3] != "" {
			if n, err := strconv.Atoi(m[3]); err == nil && n > 0 {
				size = int32(n)
			}
		}
		out = append(out, decl{name: m[2], typ: glslTypes[m[1]], size: size, location: -1})
	}
	return out
}

func scanInputs(source string) []decl {
	var out []decl
	for _, m := range inputDecl.FindAllStringSubmatch(source, -1) {
		loc := int32(-1)
		if m[1] != "" {
			if n, err := strconv.Atoi(m[1]); err == nil {
				loc = int32(n)
			}
		}
		out = append(out, decl{name: m[3], typ: glslTypes[m[2]], size: 1, location: loc})
	}
	return out
}

func scanOutputs(source string) []decl {
	var out []decl
	for _, m := range outputDecl.FindAllStringSubmatch(source, -1) {
		out = append(out, decl{name: m[2], typ: glslTypes[m[1]], size: 1, location: -1})
	}
	return out
}

// linkProgram builds the link result for a vertex and fragment shader
// pair. Uniform locations are assigned in declaration order; attribute
// locations honor layout qualifiers, then explicit bindings, then the
// lowest free slot.
func linkProgram(vs, fs *object, bindings map[string]int32, varyings []string, maxAttribs int32, serial uint64) *dispatch.LinkResult {
	res := &dispatch.LinkResult{Serial: serial}
	fail := func(msg string) *dispatch.LinkResult {
		res.Log = "ERROR: " + msg + "\n"
		return res
	}

	switch {
	case vs == nil:
		return fail("missing vertex shader")
	case fs == nil:
		return fail("missing fragment shader")
	case vs.compile == nil || !vs.compile.Success:
		return fail("vertex shader not compiled")
	case fs.compile == nil || !fs.compile.Success:
		return fail("fragment shader not compiled")
	}

	seen := make(map[string]bool)
	var loc int32
	for _, src := range []string{vs.source, fs.source} {
		for _, u := range scanUniforms(src) {
			if seen[u.name] {
				continue
			}
			seen[u.name] = true
			res.Uniforms = append(res.Uniforms, dispatch.ActiveInfo{
				Name:     u.name,
				Type:     u.typ,
				Size:     u.size,
				Location: loc,
			})
			loc += u.size
		}
	}

	inputs := scanInputs(vs.source)
	used := make(map[int32]bool)
	for i := range inputs {
		if inputs[i].location < 0 {
			if b, ok := bindings[inputs[i].name]; ok {
				inputs[i].location = b
			}
		}
		if inputs[i].location >= 0 {
			if used[inputs[i].location] {
				return fail(fmt.Sprintf("attribute location %d aliased", inputs[i].location))
			}
			used[inputs[i].location] = true
		}
	}
	next := int32(0)
	for i := range inputs {
		if inputs[i].location >= 0 {
			continue
		}
		for used[next] {
			next++
		}
		inputs[i].location = next
		used[next] = true
	}
	for _, in := range inputs {
		if in.location >= maxAttribs {
			return fail(fmt.Sprintf("too many attributes: %s at %d", in.name, in.location))
		}
		res.Attributes = append(res.Attributes, dispatch.ActiveInfo{
			Name:     in.name,
			Type:     in.typ,
			Size:     in.size,
			Location: in.location,
		})
	}
	sort.Slice(res.Attributes, func(i, j int) bool {
		return res.Attributes[i].Location < res.Attributes[j].Location
	})

	if len(varyings) > 0 {
		outs := make(map[string]decl)
		for _, o := range scanOutputs(vs.source) {
			outs[o.name] = o
		}
		for i, name := range varyings {
			o, ok := outs[name]
			if !ok {
				return fail("transform feedback varying not found: " + name)
			}
			res.Varyings = append(res.Varyings, dispatch.ActiveInfo{
				Name:     name,
				Type:     o.typ,
				Size:     1,
				Location: int32(i),
			})
		}
	}

	res.Success = true
	return res
}
