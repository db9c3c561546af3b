package resource

import "fmt"

// ID identifies a resource within one context. IDs increase monotonically,
// are never reused, and 0 is reserved as invalid.
type ID uint64

// Epoch numbers one unbroken span of context validity. Epoch 0 never
// corresponds to a live generation.
type Epoch uint64

// Kind identifies the concrete resource type of a handle.
type Kind uint8

const (
	KindBuffer Kind = iota + 1
	KindFramebuffer
	KindProgram
	KindQuery
	KindRenderbuffer
	KindSampler
	KindShader
	KindSync
	KindTexture
	KindTransformFeedback
	KindVertexArray
	KindUniformLocation
)

var kindNames = [...]string{
	KindBuffer:            "buffer",
	KindFramebuffer:       "framebuffer",
	KindProgram:           "program",
	KindQuery:             "query",
	KindRenderbuffer:      "renderbuffer",
	KindSampler:           "sampler",
	KindShader:            "shader",
	KindSync:              "sync",
	KindTexture:           "texture",
	KindTransformFeedback: "transformFeedback",
	KindVertexArray:       "vertexArray",
	KindUniformLocation:   "uniformLocation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDeleteRequested
	EventFinalized
	EventOrphaned
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDeleteRequested:
		return "delete-requested"
	case EventFinalized:
		return "finalized"
	case EventOrphaned:
		return "orphaned"
	}
	return "unknown"
}

// Event represents a resource lifecycle event.
type Event struct {
	Handle Handle
	ID     ID
	Epoch  Epoch
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Handle is implemented by every scripting-visible resource object.
type Handle interface {
	Base() *Object
}
