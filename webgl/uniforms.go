package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
)

type setterKind uint8

const (
	setFloat setterKind = iota
	setInt
	setMatrix
)

// uniformShape returns the component count of a uniform type and whether
// float setters, int setters or matrix setters may write it.
func uniformShape(elemType uint32) (comps int, accepts func(setterKind) bool) {
	floats := func(k setterKind) bool { return k == setFloat }
	ints := func(k setterKind) bool { return k == setInt }
	bools := func(k setterKind) bool { return k != setMatrix }
	matrix := func(k setterKind) bool { return k == setMatrix }
	switch elemType {
	case glenum.Float:
		return 1, floats
	case glenum.FloatVec2:
		return 2, floats
	case glenum.FloatVec3:
		return 3, floats
	case glenum.FloatVec4:
		return 4, floats
	case glenum.Int, glenum.Sampler2D, glenum.SamplerCube, glenum.Sampler3D, glenum.Sampler2DArray:
		return 1, ints
	case glenum.IntVec2:
		return 2, ints
	case glenum.IntVec3:
		return 3, ints
	case glenum.IntVec4:
		return 4, ints
	case glenum.Bool:
		return 1, bools
	case glenum.BoolVec2:
		return 2, bools
	case glenum.BoolVec3:
		return 3, bools
	case glenum.BoolVec4:
		return 4, bools
	case glenum.FloatMat2:
		return 4, matrix
	case glenum.FloatMat3:
		return 9, matrix
	case glenum.FloatMat4:
		return 16, matrix
	}
	return 0, func(setterKind) bool { return false }
}

func isSampler(elemType uint32) bool {
	switch elemType {
	case glenum.Sampler2D, glenum.SamplerCube, glenum.Sampler3D, glenum.Sampler2DArray:
		return true
	}
	return false
}

// checkUniform validates a uniform write of n values with comps components
// each. A nil location is a silent no-op.
func (c *Context) checkUniform(l *UniformLocation, kind setterKind, comps, n int) *Generation {
	if l == nil || !c.ValidateUsable(l, "location") {
		return nil
	}
	g := c.live()
	if g == nil {
		return nil
	}
	if g.program == nil {
		c.enqueueError(glenum.InvalidOperation, "No program is currently bound.")
		return nil
	}
	if l.link != g.activeLink {
		c.enqueueError(glenum.InvalidOperation, "This uniform location is obsolete or belongs to a different program.")
		return nil
	}
	want, accepts := uniformShape(l.elemType)
	if want != comps || !accepts(kind) {
		c.enqueueError(glenum.InvalidOperation, "Function used does not match the uniform's type 0x%04x.", l.elemType)
		return nil
	}
	if n == 0 || n%comps != 0 {
		c.enqueueError(glenum.InvalidValue, "Array length %d must be a positive multiple of %d.", n, comps)
		return nil
	}
	if n > comps && l.size <= 1 {
		c.enqueueError(glenum.InvalidOperation, "Array data passed for a non-array uniform.")
		return nil
	}
	return g
}

func (c *Context) uniformFloats(l *UniformLocation, kind setterKind, comps int, transpose bool, v []float32) {
	g := c.checkUniform(l, kind, comps, len(v))
	if g == nil {
		return
	}
	if elems := len(v) / comps; elems > int(l.size) {
		v = v[:int(l.size)*comps]
	}
	c.run(g, dispatch.MethodUniform, int64(l.location), l.elemType, transpose, v)
}

func (c *Context) uniformInts(l *UniformLocation, comps int, v []int32) {
	g := c.checkUniform(l, setInt, comps, len(v))
	if g == nil {
		return
	}
	if isSampler(l.elemType) {
		for _, unit := range v {
			if unit < 0 || int(unit) >= len(g.units) {
				c.enqueueError(glenum.InvalidValue, "Sampler unit %d is out of range.", unit)
				return
			}
		}
	}
	if elems := len(v) / comps; elems > int(l.size) {
		v = v[:int(l.size)*comps]
	}
	c.run(g, dispatch.MethodUniform, int64(l.location), l.elemType, false, v)
}

// Uniform1f sets a float uniform.
func (c *Context) Uniform1f(l *UniformLocation, x float32) {
	defer c.scope("uniform1f")()
	c.uniformFloats(l, setFloat, 1, false, []float32{x})
}

// Uniform2f sets a vec2 uniform.
func (c *Context) Uniform2f(l *UniformLocation, x, y float32) {
	defer c.scope("uniform2f")()
	c.uniformFloats(l, setFloat, 2, false, []float32{x, y})
}

// Uniform3f sets a vec3 uniform.
func (c *Context) Uniform3f(l *UniformLocation, x, y, z float32) {
	defer c.scope("uniform3f")()
	c.uniformFloats(l, setFloat, 3, false, []float32{x, y, z})
}

// Uniform4f sets a vec4 uniform.
func (c *Context) Uniform4f(l *UniformLocation, x, y, z, w float32) {
	defer c.scope("uniform4f")()
	c.uniformFloats(l, setFloat, 4, false, []float32{x, y, z, w})
}

// Uniform1i sets an int, bool or sampler uniform.
func (c *Context) Uniform1i(l *UniformLocation, x int32) {
	defer c.scope("uniform1i")()
	c.uniformInts(l, 1, []int32{x})
}

// Uniform1fv sets a float uniform or array.
func (c *Context) Uniform1fv(l *UniformLocation, v []float32) {
	defer c.scope("uniform1fv")()
	c.uniformFloats(l, setFloat, 1, false, v)
}

// Uniform2fv sets a vec2 uniform or array.
func (c *Context) Uniform2fv(l *UniformLocation, v []float32) {
	defer c.scope("uniform2fv")()
	c.uniformFloats(l, setFloat, 2, false, v)
}

// Uniform3fv sets a vec3 uniform or array.
func (c *Context) Uniform3fv(l *UniformLocation, v []float32) {
	defer c.scope("uniform3fv")()
	c.uniformFloats(l, setFloat, 3, false, v)
}

// Uniform4fv sets a vec4 uniform or array.
func (c *Context) Uniform4fv(l *UniformLocation, v []float32) {
	defer c.scope("uniform4fv")()
	c.uniformFloats(l, setFloat, 4, false, v)
}

// Uniform1iv sets an int uniform or array.
func (c *Context) Uniform1iv(l *UniformLocation, v []int32) {
	defer c.scope("uniform1iv")()
	c.uniformInts(l, 1, v)
}

// UniformMatrix4fv sets a mat4 uniform or array.
func (c *Context) UniformMatrix4fv(l *UniformLocation, transpose bool, v []float32) {
	defer c.scope("uniformMatrix4fv")()
	c.uniformFloats(l, setMatrix, 16, transpose, v)
}
