package host

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

type handlerFunc func(d *Device, r *argReader) any

var handlers = map[dispatch.Method]handlerFunc{
	dispatch.MethodCreateObject: (*Device).createObject,
	dispatch.MethodDeleteObject: (*Device).deleteObject,
	dispatch.MethodCreateShader: (*Device).createShader,

	dispatch.MethodBindBuffer:        (*Device).bindBuffer,
	dispatch.MethodBindBufferRange:   (*Device).bindBufferRange,
	dispatch.MethodBufferData:        (*Device).bufferData,
	dispatch.MethodBufferSubData:     (*Device).bufferSubData,
	dispatch.MethodGetBufferSubData:  (*Device).getBufferSubData,
	dispatch.MethodCopyBufferSubData: (*Device).copyBufferSubData,

	dispatch.MethodBindFramebuffer:        (*Device).bindFramebuffer,
	dispatch.MethodFramebufferAttach:      (*Device).framebufferAttach,
	dispatch.MethodCheckFramebufferStatus: (*Device).checkFramebufferStatus,
	dispatch.MethodBindRenderbuffer:       (*Device).bindRenderbuffer,
	dispatch.MethodRenderbufferStorage:    (*Device).renderbufferStorage,

	dispatch.MethodActiveTexture:       (*Device).activeTexture,
	dispatch.MethodBindTexture:         (*Device).bindTexture,
	dispatch.MethodTexParameter:        (*Device).texParameter,
	dispatch.MethodTexImage2D:          (*Device).texImage2D,
	dispatch.MethodTexStorage2D:        (*Device).texStorage2D,
	dispatch.MethodGenerateMipmap:      (*Device).generateMipmap,
	dispatch.MethodBindSampler:         (*Device).bindSampler,
	dispatch.MethodSamplerParameter:    (*Device).samplerParameter,
	dispatch.MethodGetSamplerParameter: (*Device).getSamplerParameter,

	dispatch.MethodShaderSource:              (*Device).shaderSource,
	dispatch.MethodCompileShader:             (*Device).compileShader,
	dispatch.MethodGetCompileResult:          (*Device).getCompileResult,
	dispatch.MethodAttachShader:              (*Device).attachShader,
	dispatch.MethodDetachShader:              (*Device).detachShader,
	dispatch.MethodBindAttribLocation:        (*Device).bindAttribLocation,
	dispatch.MethodTransformFeedbackVaryings: (*Device).transformFeedbackVaryings,
	dispatch.MethodLinkProgram:               (*Device).linkProgram,
	dispatch.MethodGetLinkResult:             (*Device).getLinkResult,
	dispatch.MethodValidateProgram:           (*Device).validateProgram,
	dispatch.MethodUseProgram:                (*Device).useProgram,
	dispatch.MethodUniform:                   (*Device).uniform,

	dispatch.MethodSetEnabled:   (*Device).setEnabled,
	dispatch.MethodIsEnabled:    (*Device).isEnabled,
	dispatch.MethodClearColor:   (*Device).clearColor,
	dispatch.MethodBlendColor:   (*Device).blendColor,
	dispatch.MethodBlendFunc:    (*Device).blendFuncs,
	dispatch.MethodDepthFunc:    (*Device).depthFuncs,
	dispatch.MethodDepthRange:   (*Device).depthRange,
	dispatch.MethodColorMask:    (*Device).colorMask,
	dispatch.MethodViewport:     (*Device).setViewport,
	dispatch.MethodScissor:      (*Device).setScissor,
	dispatch.MethodPixelStore:   (*Device).pixelStore,
	dispatch.MethodClear:        (*Device).clear,
	dispatch.MethodGetParameter: (*Device).getParameter,

	dispatch.MethodBindVertexArray:     (*Device).bindVertexArray,
	dispatch.MethodVertexAttribArray:   (*Device).vertexAttribArray,
	dispatch.MethodVertexAttribPointer: (*Device).vertexAttribPointer,
	dispatch.MethodVertexAttribDivisor: (*Device).noop,
	dispatch.MethodVertexAttrib4f:      (*Device).noop,

	dispatch.MethodDrawArrays:   (*Device).drawArrays,
	dispatch.MethodDrawElements: (*Device).drawElements,

	dispatch.MethodBeginQuery:        (*Device).beginQuery,
	dispatch.MethodEndQuery:          (*Device).endQuery,
	dispatch.MethodGetQueryParameter: (*Device).getQueryParameter,
	dispatch.MethodFenceSync:         (*Device).fenceSync,
	dispatch.MethodClientWaitSync:    (*Device).clientWaitSync,
	dispatch.MethodWaitSync:          (*Device).noop,
	dispatch.MethodGetSyncParameter:  (*Device).getSyncParameter,

	dispatch.MethodBindTransformFeedback:   (*Device).bindTransformFeedback,
	dispatch.MethodBeginTransformFeedback:  (*Device).beginTransformFeedback,
	dispatch.MethodEndTransformFeedback:    (*Device).endTransformFeedback,
	dispatch.MethodPauseTransformFeedback:  (*Device).pauseTransformFeedback,
	dispatch.MethodResumeTransformFeedback: (*Device).resumeTransformFeedback,

	dispatch.MethodEnableExtension: (*Device).enableExtension,
	dispatch.MethodFlush:           (*Device).flush,
	dispatch.MethodFinish:          (*Device).finish,
	dispatch.MethodGetError:        (*Device).getError,
	dispatch.MethodPresent:         (*Device).present,
}

func (d *Device) noop(r *argReader) any { return nil }

// Objects

func (d *Device) createObject(r *argReader) any {
	kind, id := resource.Kind(r.u32(0)), r.id(1)
	if r.err != nil {
		return nil
	}
	d.objects[id] = &object{id: id, kind: kind}
	return nil
}

func (d *Device) createShader(r *argReader) any {
	id, typ := r.id(0), r.u32(1)
	if r.err != nil {
		return nil
	}
	d.objects[id] = &object{id: id, kind: resource.KindShader, shaderType: typ}
	return nil
}

func (d *Device) deleteObject(r *argReader) any {
	kind, id := resource.Kind(r.u32(0)), r.id(1)
	if r.err != nil {
		return nil
	}
	if d.lookup(id, kind) == nil {
		d.glError(glenum.InvalidValue, r.method, "no such object")
		return nil
	}
	delete(d.objects, id)

	unbind := func(m map[uint32]uint64) {
		for k, v := range m {
			if v == id {
				delete(m, k)
			}
		}
	}
	unbindKeyed := func(m map[bindingKey]uint64) {
		for k, v := range m {
			if v == id {
				delete(m, k)
			}
		}
	}
	unbind(d.buffers)
	unbind(d.samplers)
	unbind(d.queries)
	unbindKeyed(d.indexed)
	unbindKeyed(d.textures)
	for _, p := range []*uint64{&d.drawFB, &d.readFB, &d.rb, &d.program, &d.vao, &d.tf} {
		if *p == id {
			*p = 0
		}
	}
	return nil
}

// Buffers

func (d *Device) boundBuffer(target uint32) *object {
	return d.lookup(d.buffers[target], resource.KindBuffer)
}

func (d *Device) bindBuffer(r *argReader) any {
	target, id := r.u32(0), r.id(1)
	if r.err != nil {
		return nil
	}
	if id == 0 {
		delete(d.buffers, target)
		return nil
	}
	d.buffers[target] = id
	return nil
}

func (d *Device) bindBufferRange(r *argReader) any {
	target, index, id := r.u32(0), r.u32(1), r.id(2)
	r.i64(3)
	r.i64(4)
	if r.err != nil {
		return nil
	}
	key := bindingKey{target: target, index: index}
	if id == 0 {
		delete(d.indexed, key)
	} else {
		d.indexed[key] = id
	}
	d.buffers[target] = id
	return nil
}

func (d *Device) bufferData(r *argReader) any {
	target, size, data := r.u32(0), r.i64(1), r.bytes(2)
	r.u32(3)
	if r.err != nil {
		return nil
	}
	buf := d.boundBuffer(target)
	if buf == nil {
		d.glError(glenum.InvalidOperation, r.method, "no buffer bound")
		return nil
	}
	if size < 0 {
		d.glError(glenum.InvalidValue, r.method, "negative size")
		return nil
	}
	if size > d.info.Limits.MaxBufferSize || int64(len(data)) > d.info.Limits.MaxBufferSize {
		d.glError(glenum.OutOfMemory, r.method, "buffer size exceeds the limit")
		return nil
	}
	if data != nil {
		buf.data = append([]byte(nil), data...)
	} else {
		buf.data = make([]byte, size)
	}
	return nil
}

// inRange reports whether [offset, offset+n) lies within size bytes.
func inRange(offset, n, size int64) bool {
	return offset >= 0 && n >= 0 && n <= size && offset <= size-n
}

func (d *Device) bufferSubData(r *argReader) any {
	target, offset, data := r.u32(0), r.i64(1), r.bytes(2)
	if r.err != nil {
		return nil
	}
	buf := d.boundBuffer(target)
	if buf == nil {
		d.glError(glenum.InvalidOperation, r.method, "no buffer bound")
		return nil
	}
	if !inRange(offset, int64(len(data)), int64(len(buf.data))) {
		d.glError(glenum.InvalidValue, r.method, "offset+size exceeds buffer size")
		return nil
	}
	copy(buf.data[offset:], data)
	return nil
}

func (d *Device) getBufferSubData(r *argReader) any {
	target, offset, length := r.u32(0), r.i64(1), r.i64(2)
	if r.err != nil {
		return nil
	}
	buf := d.boundBuffer(target)
	if buf == nil {
		d.glError(glenum.InvalidOperation, r.method, "no buffer bound")
		return []byte{}
	}
	if !inRange(offset, length, int64(len(buf.data))) {
		d.glError(glenum.InvalidValue, r.method, "offset+size exceeds buffer size")
		return []byte{}
	}
	return append([]byte(nil), buf.data[offset:offset+length]...)
}

func (d *Device) copyBufferSubData(r *argReader) any {
	readTarget, writeTarget := r.u32(0), r.u32(1)
	readOffset, writeOffset, size := r.i64(2), r.i64(3), r.i64(4)
	if r.err != nil {
		return nil
	}
	src, dst := d.boundBuffer(readTarget), d.boundBuffer(writeTarget)
	if src == nil || dst == nil {
		d.glError(glenum.InvalidOperation, r.method, "no buffer bound")
		return nil
	}
	if !inRange(readOffset, size, int64(len(src.data))) || !inRange(writeOffset, size, int64(len(dst.data))) {
		d.glError(glenum.InvalidValue, r.method, "range exceeds buffer size")
		return nil
	}
	copy(dst.data[writeOffset:writeOffset+size], src.data[readOffset:readOffset+size])
	return nil
}

// Framebuffers and renderbuffers

func (d *Device) bindFramebuffer(r *argReader) any {
	target, id := r.u32(0), r.id(1)
	if r.err != nil {
		return nil
	}
	switch target {
	case glenum.Framebuffer:
		d.drawFB, d.readFB = id, id
	case glenum.DrawFramebuffer:
		d.drawFB = id
	case glenum.ReadFramebuffer:
		d.readFB = id
	}
	return nil
}

func (d *Device) boundFramebuffer(target uint32) *object {
	id := d.drawFB
	if target == glenum.ReadFramebuffer {
		id = d.readFB
	}
	return d.lookup(id, resource.KindFramebuffer)
}

func (d *Device) framebufferAttach(r *argReader) any {
	target, attachment := r.u32(0), r.u32(1)
	r.u32(2)
	tex, rb := r.id(3), r.id(4)
	r.i64(5)
	if r.err != nil {
		return nil
	}
	fb := d.boundFramebuffer(target)
	if fb == nil {
		d.glError(glenum.InvalidOperation, r.method, "default framebuffer bound")
		return nil
	}
	if fb.params == nil {
		fb.params = make(map[uint32]int64)
	}
	switch {
	case tex != 0:
		fb.params[attachment] = int64(tex)
	case rb != 0:
		fb.params[attachment] = int64(rb)
	default:
		delete(fb.params, attachment)
	}
	return nil
}

func (d *Device) checkFramebufferStatus(r *argReader) any {
	target := r.u32(0)
	if r.err != nil {
		return nil
	}
	if target == glenum.Framebuffer {
		target = glenum.DrawFramebuffer
	}
	fb := d.boundFramebuffer(target)
	if fb == nil {
		if target == glenum.ReadFramebuffer && d.readFB != 0 || target == glenum.DrawFramebuffer && d.drawFB != 0 {
			return uint32(0)
		}
		return glenum.FramebufferComplete
	}
	if len(fb.params) == 0 {
		return uint32(0x8CD7) // FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT
	}
	return glenum.FramebufferComplete
}

func (d *Device) bindRenderbuffer(r *argReader) any {
	id := r.id(0)
	if r.err != nil {
		return nil
	}
	d.rb = id
	return nil
}

func (d *Device) renderbufferStorage(r *argReader) any {
	format, width, height := r.u32(0), r.i64(1), r.i64(2)
	if r.err != nil {
		return nil
	}
	rb := d.lookup(d.rb, resource.KindRenderbuffer)
	if rb == nil {
		d.glError(glenum.InvalidOperation, r.method, "no renderbuffer bound")
		return nil
	}
	if width > int64(d.info.Limits.MaxTextureSize) || height > int64(d.info.Limits.MaxTextureSize) {
		d.glError(glenum.InvalidValue, r.method, "size exceeds MAX_RENDERBUFFER_SIZE")
		return nil
	}
	rb.target = format
	return nil
}

// Textures and samplers

func (d *Device) activeTexture(r *argReader) any {
	unit := r.u32(0)
	if r.err != nil {
		return nil
	}
	d.unit = unit
	return nil
}

func (d *Device) bindTexture(r *argReader) any {
	target, id := r.u32(0), r.id(1)
	if r.err != nil {
		return nil
	}
	key := bindingKey{target: target, index: d.unit}
	if id == 0 {
		delete(d.textures, key)
		return nil
	}
	if tex := d.lookup(id, resource.KindTexture); tex != nil {
		tex.target = target
	}
	d.textures[key] = id
	return nil
}

func (d *Device) boundTexture(target uint32) *object {
	if target >= glenum.TextureCubeMapPositiveX && target <= glenum.TextureCubeMapNegativeZ {
		target = glenum.TextureCubeMap
	}
	return d.lookup(d.textures[bindingKey{target: target, index: d.unit}], resource.KindTexture)
}

func (d *Device) texParameter(r *argReader) any {
	target, pname, param := r.u32(0), r.u32(1), r.i64(2)
	if r.err != nil {
		return nil
	}
	tex := d.boundTexture(target)
	if tex == nil {
		d.glError(glenum.InvalidOperation, r.method, "no texture bound")
		return nil
	}
	if tex.params == nil {
		tex.params = make(map[uint32]int64)
	}
	tex.params[pname] = param
	return nil
}

func (d *Device) texImage2D(r *argReader) any {
	target, level := r.u32(0), r.i64(1)
	r.u32(2)
	width, height := r.i64(3), r.i64(4)
	r.u32(5)
	r.u32(6)
	data := r.bytes(7)
	if r.err != nil {
		return nil
	}
	tex := d.boundTexture(target)
	if tex == nil {
		d.glError(glenum.InvalidOperation, r.method, "no texture bound")
		return nil
	}
	limit := int64(d.info.Limits.MaxTextureSize) >> level
	if width > limit || height > limit {
		d.glError(glenum.InvalidValue, r.method, "width or height exceeds MAX_TEXTURE_SIZE")
		return nil
	}
	if level == 0 {
		tex.data = append([]byte(nil), data...)
	}
	return nil
}

func (d *Device) texStorage2D(r *argReader) any {
	target, levels := r.u32(0), r.i64(1)
	r.u32(2)
	width, height := r.i64(3), r.i64(4)
	if r.err != nil {
		return nil
	}
	tex := d.boundTexture(target)
	if tex == nil {
		d.glError(glenum.InvalidOperation, r.method, "no texture bound")
		return nil
	}
	if width > int64(d.info.Limits.MaxTextureSize) || height > int64(d.info.Limits.MaxTextureSize) {
		d.glError(glenum.InvalidValue, r.method, "width or height exceeds MAX_TEXTURE_SIZE")
		return nil
	}
	if tex.params == nil {
		tex.params = make(map[uint32]int64)
	}
	tex.params[0] = levels
	return nil
}

func (d *Device) generateMipmap(r *argReader) any {
	target := r.u32(0)
	if r.err != nil {
		return nil
	}
	if d.boundTexture(target) == nil {
		d.glError(glenum.InvalidOperation, r.method, "no texture bound")
	}
	return nil
}

func (d *Device) bindSampler(r *argReader) any {
	unit, id := r.u32(0), r.id(1)
	if r.err != nil {
		return nil
	}
	if id == 0 {
		delete(d.samplers, unit)
		return nil
	}
	d.samplers[unit] = id
	return nil
}

func (d *Device) samplerParameter(r *argReader) any {
	id, pname, param := r.id(0), r.u32(1), r.i64(2)
	if r.err != nil {
		return nil
	}
	s := d.lookup(id, resource.KindSampler)
	if s == nil {
		d.glError(glenum.InvalidOperation, r.method, "no such sampler")
		return nil
	}
	if s.params == nil {
		s.params = make(map[uint32]int64)
	}
	s.params[pname] = param
	return nil
}

func (d *Device) getSamplerParameter(r *argReader) any {
	id, pname := r.id(0), r.u32(1)
	if r.err != nil {
		return nil
	}
	s := d.lookup(id, resource.KindSampler)
	if s == nil {
		d.glError(glenum.InvalidOperation, r.method, "no such sampler")
		return int64(0)
	}
	if v, ok := s.params[pname]; ok {
		return v
	}
	switch pname {
	case glenum.TextureMinFilter:
		return int64(0x2702) // NEAREST_MIPMAP_LINEAR
	case glenum.TextureMagFilter:
		return int64(glenum.Linear)
	case glenum.TextureWrapS, glenum.TextureWrapT:
		return int64(glenum.Repeat)
	}
	return int64(0)
}
