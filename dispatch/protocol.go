package dispatch

// Call is one dispatched operation.
type Call struct {
	Args   Args
	Seq    uint64
	Method Method
}

// LossReason says why a context was lost.
type LossReason uint8

const (
	LossManual LossReason = iota + 1
	LossExecutor
	LossDriver
)

func (r LossReason) String() string {
	switch r {
	case LossManual:
		return "manual"
	case LossExecutor:
		return "executor"
	case LossDriver:
		return "driver"
	}
	return "unknown"
}

// NotificationKind identifies an asynchronous executor report.
type NotificationKind uint8

const (
	NotifyQueryAvailable NotificationKind = iota + 1
	NotifySyncComplete
	NotifyLinkResult
	NotifyCompileResult
	NotifyHostError
	NotifyContextLost
	NotifyTransportError
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyQueryAvailable:
		return "query-available"
	case NotifySyncComplete:
		return "sync-complete"
	case NotifyLinkResult:
		return "link-result"
	case NotifyCompileResult:
		return "compile-result"
	case NotifyHostError:
		return "host-error"
	case NotifyContextLost:
		return "context-lost"
	case NotifyTransportError:
		return "transport-error"
	}
	return "unknown"
}

// Notification is an asynchronous report from the executor, attributed to
// the numeric id of the resource it concerns.
type Notification struct {
	Link    *LinkResult      `cbor:"1,keyasint,omitempty"`
	Compile *CompileResult   `cbor:"2,keyasint,omitempty"`
	Detail  string           `cbor:"3,keyasint,omitempty"`
	ID      uint64           `cbor:"4,keyasint,omitempty"`
	Serial  uint64           `cbor:"5,keyasint,omitempty"`
	Value   uint64           `cbor:"6,keyasint,omitempty"`
	Kind    NotificationKind `cbor:"7,keyasint"`
	Reason  LossReason       `cbor:"8,keyasint,omitempty"`
}

// Notifier receives executor notifications. Implementations must not block
// and must not touch context state directly; the client posts each
// notification onto its task queue.
type Notifier func(Notification)

// ActiveInfo describes one active uniform or attribute.
type ActiveInfo struct {
	Name     string `cbor:"1,keyasint"`
	Type     uint32 `cbor:"2,keyasint"`
	Size     int32  `cbor:"3,keyasint"`
	Location int32  `cbor:"4,keyasint"`
}

// LinkResult is the executor's report of one link attempt.
type LinkResult struct {
	Log        string       `cbor:"1,keyasint,omitempty"`
	Uniforms   []ActiveInfo `cbor:"2,keyasint,omitempty"`
	Attributes []ActiveInfo `cbor:"3,keyasint,omitempty"`
	Varyings   []ActiveInfo `cbor:"4,keyasint,omitempty"`
	Serial     uint64       `cbor:"5,keyasint"`
	Success    bool         `cbor:"6,keyasint"`
}

// CompileResult is the executor's report of one compile attempt.
type CompileResult struct {
	Log     string `cbor:"1,keyasint,omitempty"`
	Success bool   `cbor:"2,keyasint"`
}

// Attributes are the creation attributes of a context.
type Attributes struct {
	ColorSpace            string `cbor:"1,keyasint,omitempty" toml:"color_space"`
	Width                 int32  `cbor:"2,keyasint" toml:"width"`
	Height                int32  `cbor:"3,keyasint" toml:"height"`
	Alpha                 bool   `cbor:"4,keyasint" toml:"alpha"`
	Depth                 bool   `cbor:"5,keyasint" toml:"depth"`
	Stencil               bool   `cbor:"6,keyasint" toml:"stencil"`
	Antialias             bool   `cbor:"7,keyasint" toml:"antialias"`
	PremultipliedAlpha    bool   `cbor:"8,keyasint" toml:"premultiplied_alpha"`
	PreserveDrawingBuffer bool   `cbor:"9,keyasint" toml:"preserve_drawing_buffer"`
	WebGL2                bool   `cbor:"10,keyasint" toml:"webgl2"`
}

// InitRequest asks an executor to create a context.
type InitRequest struct {
	Session    string     `cbor:"1,keyasint"`
	Attributes Attributes `cbor:"2,keyasint"`
}

// Limits are the implementation limits reported at creation.
type Limits struct {
	MaxTextureSize       int32 `cbor:"1,keyasint"`
	MaxTextureUnits      int32 `cbor:"2,keyasint"`
	MaxVertexAttribs     int32 `cbor:"3,keyasint"`
	MaxColorAttachments  int32 `cbor:"4,keyasint"`
	MaxDrawBuffers       int32 `cbor:"5,keyasint"`
	MaxUniformBindings   int32 `cbor:"6,keyasint"`
	MaxTransformFeedback int32 `cbor:"7,keyasint"`
	MaxViewportDims      int32 `cbor:"8,keyasint"`
	MaxBufferSize        int64 `cbor:"9,keyasint"`
}

// InitResult is the executor's answer to an InitRequest.
type InitResult struct {
	Vendor     string   `cbor:"1,keyasint"`
	Renderer   string   `cbor:"2,keyasint"`
	Extensions []string `cbor:"3,keyasint,omitempty"`
	Limits     Limits   `cbor:"4,keyasint"`
}

// FrameInfo identifies the drawing buffer of one presented frame.
type FrameInfo struct {
	Handle uint64 `cbor:"1,keyasint"`
	Width  int32  `cbor:"2,keyasint"`
	Height int32  `cbor:"3,keyasint"`
}
