// Package glenum holds the GL enum values the client validates locally.
//
// Values match the Khronos registry so that calls forwarded to an executor
// need no translation.
package glenum

// Enum is a GL enumerant.
type Enum = uint32

// Errors
const (
	NoError          Enum = 0
	InvalidEnum      Enum = 0x0500
	InvalidValue     Enum = 0x0501
	InvalidOperation Enum = 0x0502
	OutOfMemory      Enum = 0x0505

	InvalidFramebufferOperation Enum = 0x0506
	ContextLostWebGL            Enum = 0x9242
)

// Buffer targets and parameters
const (
	ArrayBuffer             Enum = 0x8892
	ElementArrayBuffer      Enum = 0x8893
	CopyReadBuffer          Enum = 0x8F36
	CopyWriteBuffer         Enum = 0x8F37
	PixelPackBuffer         Enum = 0x88EB
	PixelUnpackBuffer       Enum = 0x88EC
	TransformFeedbackBuffer Enum = 0x8C8E
	UniformBuffer           Enum = 0x8A11

	StreamDraw  Enum = 0x88E0
	StaticDraw  Enum = 0x88E4
	DynamicDraw Enum = 0x88E8

	BufferSize  Enum = 0x8764
	BufferUsage Enum = 0x8765

	ArrayBufferBinding        Enum = 0x8894
	ElementArrayBufferBinding Enum = 0x8895
	UniformBufferBinding      Enum = 0x8A28
)

// Framebuffers and renderbuffers
const (
	Framebuffer     Enum = 0x8D40
	ReadFramebuffer Enum = 0x8CA8
	DrawFramebuffer Enum = 0x8CA9
	Renderbuffer    Enum = 0x8D41

	ColorAttachment0       Enum = 0x8CE0
	DepthAttachment        Enum = 0x8D00
	StencilAttachment      Enum = 0x8D20
	DepthStencilAttachment Enum = 0x821A

	FramebufferAttachmentObjectType Enum = 0x8CD0
	FramebufferAttachmentObjectName Enum = 0x8CD1

	FramebufferComplete Enum = 0x8CD5

	// Attachment object types
	None    Enum = 0
	Texture Enum = 0x1702

	FramebufferBinding     Enum = 0x8CA6
	DrawFramebufferBinding Enum = 0x8CA6
	ReadFramebufferBinding Enum = 0x8CAA
	RenderbufferBinding    Enum = 0x8CA7

	RGBA4               Enum = 0x8056
	RGBA8               Enum = 0x8058
	DepthComponent16    Enum = 0x81A5
	DepthStencil        Enum = 0x84F9
	MaxColorAttachments Enum = 0x8CDF
)

// Textures and samplers
const (
	Texture2D               Enum = 0x0DE1
	Texture3D               Enum = 0x806F
	Texture2DArray          Enum = 0x8C1A
	TextureCubeMap          Enum = 0x8513
	TextureCubeMapPositiveX Enum = 0x8515
	TextureCubeMapNegativeZ Enum = 0x851A

	Texture0 Enum = 0x84C0

	TextureMagFilter Enum = 0x2800
	TextureMinFilter Enum = 0x2801
	TextureWrapS     Enum = 0x2802
	TextureWrapT     Enum = 0x2803

	Nearest       Enum = 0x2600
	Linear        Enum = 0x2601
	Repeat        Enum = 0x2901
	ClampToEdge   Enum = 0x812F
	TextureWrapR  Enum = 0x8072
	RGBA          Enum = 0x1908
	RGB           Enum = 0x1907
	Byte          Enum = 0x1400
	UnsignedByte  Enum = 0x1401
	Short         Enum = 0x1402
	UnsignedShort Enum = 0x1403
	UnsignedInt   Enum = 0x1405
	Float         Enum = 0x1406
	Int           Enum = 0x1404

	TextureBinding2D      Enum = 0x8069
	TextureBindingCubeMap Enum = 0x8514
	ActiveTexture         Enum = 0x84E0
	SamplerBinding        Enum = 0x8919

	MaxCombinedTextureImageUnits Enum = 0x8B4D
)

// Shaders and programs
const (
	FragmentShader Enum = 0x8B30
	VertexShader   Enum = 0x8B31

	ShaderType                  Enum = 0x8B4F
	DeleteStatus                Enum = 0x8B80
	CompileStatus               Enum = 0x8B81
	LinkStatus                  Enum = 0x8B82
	ValidateStatus              Enum = 0x8B83
	AttachedShaders             Enum = 0x8B85
	ActiveUniforms              Enum = 0x8B86
	ActiveAttributes            Enum = 0x8B89
	CurrentProgram              Enum = 0x8B8D
	FloatVec2                   Enum = 0x8B50
	FloatVec3                   Enum = 0x8B51
	FloatVec4                   Enum = 0x8B52
	IntVec2                     Enum = 0x8B53
	IntVec3                     Enum = 0x8B54
	IntVec4                     Enum = 0x8B55
	Bool                        Enum = 0x8B56
	BoolVec2                    Enum = 0x8B57
	BoolVec3                    Enum = 0x8B58
	BoolVec4                    Enum = 0x8B59
	FloatMat2                   Enum = 0x8B5A
	FloatMat3                   Enum = 0x8B5B
	FloatMat4                   Enum = 0x8B5C
	Sampler2D                   Enum = 0x8B5E
	SamplerCube                 Enum = 0x8B60
	Sampler3D                   Enum = 0x8B5F
	Sampler2DArray              Enum = 0x8DC1
	MaxVertexAttribs            Enum = 0x8869
	TransformFeedbackBufferMode Enum = 0x8C7F
	TransformFeedbackVaryings   Enum = 0x8C83
)

// Capabilities and state
const (
	Blend                 Enum = 0x0BE2
	CullFace              Enum = 0x0B44
	DepthTest             Enum = 0x0B71
	Dither                Enum = 0x0BD0
	PolygonOffsetFill     Enum = 0x8037
	RasterizerDiscard     Enum = 0x8C89
	SampleAlphaToCoverage Enum = 0x809E
	SampleCoverage        Enum = 0x80A0
	ScissorTest           Enum = 0x0C11
	StencilTest           Enum = 0x0B90

	Viewport        Enum = 0x0BA2
	ScissorBox      Enum = 0x0C10
	ColorClearValue Enum = 0x0C22
	BlendColor      Enum = 0x8005
	DepthRange      Enum = 0x0B70
	ColorWritemask  Enum = 0x0C23

	Vendor   Enum = 0x1F00
	Renderer Enum = 0x1F01
	Version  Enum = 0x1F02

	MaxTextureSize  Enum = 0x0D33
	MaxViewportDims Enum = 0x0D3A
	MaxDrawBuffers  Enum = 0x8824

	ColorBufferBit   Enum = 0x00004000
	DepthBufferBit   Enum = 0x00000100
	StencilBufferBit Enum = 0x00000400

	Zero             Enum = 0
	One              Enum = 1
	SrcColor         Enum = 0x0300
	OneMinusSrcColor Enum = 0x0301
	SrcAlpha         Enum = 0x0302
	OneMinusSrcAlpha Enum = 0x0303
	DstAlpha         Enum = 0x0304
	OneMinusDstAlpha Enum = 0x0305
	DstColor         Enum = 0x0306
	OneMinusDstColor Enum = 0x0307
	SrcAlphaSaturate Enum = 0x0308

	Never    Enum = 0x0200
	Less     Enum = 0x0201
	Equal    Enum = 0x0202
	Lequal   Enum = 0x0203
	Greater  Enum = 0x0204
	NotEqual Enum = 0x0205
	Gequal   Enum = 0x0206
	Always   Enum = 0x0207
)

// Pixel storage
const (
	PackAlignment                   Enum = 0x0D05
	UnpackAlignment                 Enum = 0x0CF5
	UnpackFlipYWebGL                Enum = 0x9240
	UnpackPremultiplyAlphaWebGL     Enum = 0x9241
	UnpackColorspaceConversionWebGL Enum = 0x9243
	PackRowLength                   Enum = 0x0D02
	UnpackRowLength                 Enum = 0x0CF2
)

// Primitives
const (
	Points        Enum = 0x0000
	Lines         Enum = 0x0001
	LineLoop      Enum = 0x0002
	LineStrip     Enum = 0x0003
	Triangles     Enum = 0x0004
	TriangleStrip Enum = 0x0005
	TriangleFan   Enum = 0x0006
)

// Vertex attributes
const (
	VertexAttribArrayEnabled       Enum = 0x8622
	VertexAttribArraySize          Enum = 0x8623
	VertexAttribArrayStride        Enum = 0x8624
	VertexAttribArrayType          Enum = 0x8625
	VertexAttribArrayNormalized    Enum = 0x886A
	VertexAttribArrayPointer       Enum = 0x8645
	VertexAttribArrayBufferBinding Enum = 0x889F
	VertexAttribArrayDivisor       Enum = 0x88FE
	CurrentVertexAttrib            Enum = 0x8626
	VertexArrayBinding             Enum = 0x85B5
)

// Queries
const (
	AnySamplesPassed                   Enum = 0x8C2F
	AnySamplesPassedConservative       Enum = 0x8D6A
	TransformFeedbackPrimitivesWritten Enum = 0x8C88
	TimeElapsed                        Enum = 0x88BF

	CurrentQuery         Enum = 0x8865
	QueryResult          Enum = 0x8866
	QueryResultAvailable Enum = 0x8867
)

// Sync objects
const (
	SyncGPUCommandsComplete Enum = 0x9117
	SyncFlushCommandsBit    Enum = 0x00000001

	ObjectType    Enum = 0x9112
	SyncCondition Enum = 0x9113
	SyncStatus    Enum = 0x9114
	SyncFlags     Enum = 0x9115
	SyncFence     Enum = 0x9116
	Unsignaled    Enum = 0x9118
	Signaled      Enum = 0x9119

	AlreadySignaled    Enum = 0x911A
	TimeoutExpired     Enum = 0x911B
	ConditionSatisfied Enum = 0x911C
	WaitFailed         Enum = 0x911D

	MaxClientWaitTimeoutWebGL Enum = 0x9247

	TimeoutIgnored int64 = -1
)

// Transform feedback
const (
	TransformFeedback        Enum = 0x8E22
	TransformFeedbackBinding Enum = 0x8E25
	TransformFeedbackPaused  Enum = 0x8E23
	TransformFeedbackActive  Enum = 0x8E24

	TransformFeedbackBufferBinding Enum = 0x8C8F
	InterleavedAttribs             Enum = 0x8C8C
	SeparateAttribs                Enum = 0x8C8D
)

// Extensions
const (
	LoseContextExtension = "WEBGL_lose_context"
)
