package host

import (
	"strings"
	"testing"

	"github.com/wippyai/glproxy/glenum"
)

const testVS = `#version 300 es
layout(location = 3) in vec4 aColor;
in vec3 aPosition;
in vec2 aUV;
uniform mat4 uMVP;
uniform float uWeights[4];
out vec2 vUV;
void main() {
	vUV = aUV;
	gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

const testFS = `#version 300 es
precision mediump float;
uniform sampler2D uTex;
uniform float uWeights[4];
in vec2 vUV;
out vec4 color;
void main() { color = texture(uTex, vUV); }
`

func compiled(typ uint32, src string) *object {
	return &object{shaderType: typ, source: src, compile: compileShader(src)}
}

func TestCompileShader(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		ok      bool
		logPart string
	}{
		{"valid", testVS, true, ""},
		{"empty", "   ", false, "empty source"},
		{"no main", "uniform float x;", false, "missing function: main"},
		{"error directive", "#error not supported\nvoid main(){}", false, "#error not supported"},
		{"unknown type", "uniform blob x;\nvoid main(){}", false, "unknown type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compileShader(tt.src)
			if res.Success != tt.ok {
				t.Fatalf("Success = %v, log %q", res.Success, res.Log)
			}
			if tt.logPart != "" && !strings.Contains(res.Log, tt.logPart) {
				t.Fatalf("log %q does not contain %q", res.Log, tt.logPart)
			}
		})
	}
}

func TestLinkProgram_Tables(t *testing.T) {
	vs, fs := compiled(glenum.VertexShader, testVS), compiled(glenum.FragmentShader, testFS)
	res := linkProgram(vs, fs, map[string]int32{"aUV": 0}, nil, 16, 7)

	if !res.Success {
		t.Fatalf("link failed: %s", res.Log)
	}
	if res.Serial != 7 {
		t.Fatalf("Serial = %d", res.Serial)
	}

	if len(res.Uniforms) != 3 {
		t.Fatalf("uniforms = %+v", res.Uniforms)
	}
	u := res.Uniforms[1]
	if u.Name != "uWeights" || u.Size != 4 || u.Type != glenum.Float || u.Location != 1 {
		t.Fatalf("uWeights = %+v", u)
	}
	if res.Uniforms[2].Name != "uTex" || res.Uniforms[2].Location != 5 {
		t.Fatalf("uTex = %+v", res.Uniforms[2])
	}

	locs := make(map[string]int32)
	for _, a := range res.Attributes {
		locs[a.Name] = a.Location
	}
	if locs["aColor"] != 3 || locs["aUV"] != 0 || locs["aPosition"] != 1 {
		t.Fatalf("attribute locations = %v", locs)
	}
}

func TestLinkProgram_Failures(t *testing.T) {
	vs, fs := compiled(glenum.VertexShader, testVS), compiled(glenum.FragmentShader, testFS)
	broken := compiled(glenum.FragmentShader, "")

	tests := []struct {
		name     string
		vs, fs   *object
		bindings map[string]int32
		varyings []string
		logPart  string
	}{
		{"missing vertex", nil, fs, nil, nil, "missing vertex shader"},
		{"missing fragment", vs, nil, nil, nil, "missing fragment shader"},
		{"uncompiled", vs, broken, nil, nil, "fragment shader not compiled"},
		{"aliased", vs, fs, map[string]int32{"aUV": 3}, nil, "aliased"},
		{"bad varying", vs, fs, nil, []string{"nope"}, "varying not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := linkProgram(tt.vs, tt.fs, tt.bindings, tt.varyings, 16, 1)
			if res.Success {
				t.Fatal("expected link failure")
			}
			if !strings.Contains(res.Log, tt.logPart) {
				t.Fatalf("log %q does not contain %q", res.Log, tt.logPart)
			}
		})
	}
}

func TestLinkProgram_Varyings(t *testing.T) {
	vs, fs := compiled(glenum.VertexShader, testVS), compiled(glenum.FragmentShader, testFS)
	res := linkProgram(vs, fs, nil, []string{"vUV"}, 16, 1)
	if !res.Success || len(res.Varyings) != 1 || res.Varyings[0].Type != glenum.FloatVec2 {
		t.Fatalf("result = %+v", res)
	}
}
