package dispatch

import "fmt"

// Method is the stable numeric identifier of a dispatched operation. Values
// are part of the wire format and must not be renumbered.
type Method uint16

const (
	MethodInvalid Method = iota

	// Objects
	MethodCreateObject
	MethodDeleteObject
	MethodCreateShader

	// Buffers
	MethodBindBuffer
	MethodBindBufferRange
	MethodBufferData
	MethodBufferSubData
	MethodGetBufferSubData
	MethodCopyBufferSubData

	// Framebuffers and renderbuffers
	MethodBindFramebuffer
	MethodFramebufferAttach
	MethodCheckFramebufferStatus
	MethodBindRenderbuffer
	MethodRenderbufferStorage

	// Textures and samplers
	MethodActiveTexture
	MethodBindTexture
	MethodTexParameter
	MethodTexImage2D
	MethodTexStorage2D
	MethodGenerateMipmap
	MethodBindSampler
	MethodSamplerParameter
	MethodGetSamplerParameter

	// Shaders and programs
	MethodShaderSource
	MethodCompileShader
	MethodGetCompileResult
	MethodAttachShader
	MethodDetachShader
	MethodBindAttribLocation
	MethodTransformFeedbackVaryings
	MethodLinkProgram
	MethodGetLinkResult
	MethodValidateProgram
	MethodUseProgram
	MethodUniform

	// Fixed-function state
	MethodSetEnabled
	MethodIsEnabled
	MethodClearColor
	MethodBlendColor
	MethodBlendFunc
	MethodDepthFunc
	MethodDepthRange
	MethodColorMask
	MethodViewport
	MethodScissor
	MethodPixelStore
	MethodClear
	MethodGetParameter

	// Vertex specification
	MethodBindVertexArray
	MethodVertexAttribArray
	MethodVertexAttribPointer
	MethodVertexAttribDivisor
	MethodVertexAttrib4f

	// Drawing
	MethodDrawArrays
	MethodDrawElements

	// Queries and syncs
	MethodBeginQuery
	MethodEndQuery
	MethodGetQueryParameter
	MethodFenceSync
	MethodClientWaitSync
	MethodWaitSync
	MethodGetSyncParameter

	// Transform feedback
	MethodBindTransformFeedback
	MethodBeginTransformFeedback
	MethodEndTransformFeedback
	MethodPauseTransformFeedback
	MethodResumeTransformFeedback

	// Misc
	MethodEnableExtension
	MethodFlush
	MethodFinish
	MethodGetError
	MethodPresent

	methodCount
)

var methodNames = [methodCount]string{
	MethodInvalid: "invalid",

	MethodCreateObject: "createObject",
	MethodDeleteObject: "deleteObject",
	MethodCreateShader: "createShader",

	MethodBindBuffer:        "bindBuffer",
	MethodBindBufferRange:   "bindBufferRange",
	MethodBufferData:        "bufferData",
	MethodBufferSubData:     "bufferSubData",
	MethodGetBufferSubData:  "getBufferSubData",
	MethodCopyBufferSubData: "copyBufferSubData",

	MethodBindFramebuffer:        "bindFramebuffer",
	MethodFramebufferAttach:      "framebufferAttach",
	MethodCheckFramebufferStatus: "checkFramebufferStatus",
	MethodBindRenderbuffer:       "bindRenderbuffer",
	MethodRenderbufferStorage:    "renderbufferStorage",

	MethodActiveTexture:       "activeTexture",
	MethodBindTexture:         "bindTexture",
	MethodTexParameter:        "texParameter",
	MethodTexImage2D:          "texImage2D",
	MethodTexStorage2D:        "texStorage2D",
	MethodGenerateMipmap:      "generateMipmap",
	MethodBindSampler:         "bindSampler",
	MethodSamplerParameter:    "samplerParameter",
	MethodGetSamplerParameter: "getSamplerParameter",

	MethodShaderSource:              "shaderSource",
	MethodCompileShader:             "compileShader",
	MethodGetCompileResult:          "getCompileResult",
	MethodAttachShader:              "attachShader",
	MethodDetachShader:              "detachShader",
	MethodBindAttribLocation:        "bindAttribLocation",
	MethodTransformFeedbackVaryings: "transformFeedbackVaryings",
	MethodLinkProgram:               "linkProgram",
	MethodGetLinkResult:             "getLinkResult",
	MethodValidateProgram:           "validateProgram",
	MethodUseProgram:                "useProgram",
	MethodUniform:                   "uniform",

	MethodSetEnabled:   "setEnabled",
	MethodIsEnabled:    "isEnabled",
	MethodClearColor:   "clearColor",
	MethodBlendColor:   "blendColor",
	MethodBlendFunc:    "blendFunc",
	MethodDepthFunc:    "depthFunc",
	MethodDepthRange:   "depthRange",
	MethodColorMask:    "colorMask",
	MethodViewport:     "viewport",
	MethodScissor:      "scissor",
	MethodPixelStore:   "pixelStore",
	MethodClear:        "clear",
	MethodGetParameter: "getParameter",

	MethodBindVertexArray:     "bindVertexArray",
	MethodVertexAttribArray:   "vertexAttribArray",
	MethodVertexAttribPointer: "vertexAttribPointer",
	MethodVertexAttribDivisor: "vertexAttribDivisor",
	MethodVertexAttrib4f:      "vertexAttrib4f",

	MethodDrawArrays:   "drawArrays",
	MethodDrawElements: "drawElements",

	MethodBeginQuery:        "beginQuery",
	MethodEndQuery:          "endQuery",
	MethodGetQueryParameter: "getQueryParameter",
	MethodFenceSync:         "fenceSync",
	MethodClientWaitSync:    "clientWaitSync",
	MethodWaitSync:          "waitSync",
	MethodGetSyncParameter:  "getSyncParameter",

	MethodBindTransformFeedback:   "bindTransformFeedback",
	MethodBeginTransformFeedback:  "beginTransformFeedback",
	MethodEndTransformFeedback:    "endTransformFeedback",
	MethodPauseTransformFeedback:  "pauseTransformFeedback",
	MethodResumeTransformFeedback: "resumeTransformFeedback",

	MethodEnableExtension: "enableExtension",
	MethodFlush:           "flush",
	MethodFinish:          "finish",
	MethodGetError:        "getError",
	MethodPresent:         "present",
}

var methodByName = func() map[string]Method {
	m := make(map[string]Method, methodCount)
	for id, name := range methodNames {
		if Method(id) != MethodInvalid {
			m[name] = Method(id)
		}
	}
	return m
}()

func (m Method) String() string {
	if m.Valid() {
		return methodNames[m]
	}
	return fmt.Sprintf("method(%d)", uint16(m))
}

// Valid reports whether m is a registered, dispatchable method.
func (m Method) Valid() bool {
	return m > MethodInvalid && m < methodCount
}

// LookupMethod resolves a method by its name.
func LookupMethod(name string) (Method, bool) {
	m, ok := methodByName[name]
	return m, ok
}

// Methods returns every dispatchable method in id order.
func Methods() []Method {
	out := make([]Method, 0, methodCount-1)
	for m := MethodInvalid + 1; m < methodCount; m++ {
		out = append(out, m)
	}
	return out
}
