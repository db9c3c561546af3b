package dispatch

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/glproxy/errors"
)

// encMode uses canonical options so frames are deterministic.
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dispatch: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// FrameKind identifies a wire frame.
type FrameKind uint8

const (
	FrameHello FrameKind = iota + 1
	FrameCall
	FrameReply
	FrameNotify
)

func (k FrameKind) String() string {
	switch k {
	case FrameHello:
		return "hello"
	case FrameCall:
		return "call"
	case FrameReply:
		return "reply"
	case FrameNotify:
		return "notify"
	}
	return fmt.Sprintf("frame(%d)", uint8(k))
}

// Frame is the unit exchanged with a remote executor. Frames are
// self-delimiting CBOR items written back to back on the stream.
type Frame struct {
	Hello     *InitRequest    `cbor:"1,keyasint,omitempty"`
	Note      *Notification   `cbor:"2,keyasint,omitempty"`
	Error     string          `cbor:"3,keyasint,omitempty"`
	Value     cbor.RawMessage `cbor:"4,keyasint,omitempty"`
	Args      []any           `cbor:"5,keyasint,omitempty"`
	Seq       uint64          `cbor:"6,keyasint,omitempty"`
	Method    Method          `cbor:"7,keyasint,omitempty"`
	Kind      FrameKind       `cbor:"8,keyasint"`
	WantReply bool            `cbor:"9,keyasint,omitempty"`
}

// MarshalFrame serializes a Frame to CBOR bytes.
func MarshalFrame(f *Frame) ([]byte, error) {
	data, err := encMode.Marshal(f)
	if err != nil {
		return nil, errors.InvalidFrame(errors.PhaseEncode, "marshal "+f.Kind.String()+" frame", err)
	}
	return data, nil
}

// UnmarshalFrame deserializes a Frame from CBOR bytes.
func UnmarshalFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, errors.InvalidFrame(errors.PhaseDecode, "unmarshal frame", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// EncodeValue serializes a reply value.
func EncodeValue(v any) (cbor.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.InvalidFrame(errors.PhaseEncode, "marshal reply value", err)
	}
	return data, nil
}

func (f *Frame) validate() error {
	switch f.Kind {
	case FrameHello:
		if f.Hello == nil {
			return errors.InvalidFrame(errors.PhaseDecode, "hello frame without request", nil)
		}
	case FrameCall:
		if !f.Method.Valid() {
			return errors.UnknownMethod(errors.PhaseDecode, uint16(f.Method))
		}
	case FrameReply:
	case FrameNotify:
		if f.Note == nil {
			return errors.InvalidFrame(errors.PhaseDecode, "notify frame without notification", nil)
		}
	default:
		return errors.InvalidFrame(errors.PhaseDecode, "unknown frame kind "+f.Kind.String(), nil)
	}
	return nil
}

// FrameReader decodes frames from a stream.
type FrameReader struct {
	dec *cbor.Decoder
}

// NewFrameReader creates a reader over r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{dec: cbor.NewDecoder(r)}
}

// Read decodes the next frame. It returns io.EOF at a clean end of stream.
func (r *FrameReader) Read() (*Frame, error) {
	var f Frame
	if err := r.dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, err
		}
		var syntax *cbor.SyntaxError
		var typ *cbor.UnmarshalTypeError
		if errors.As(err, &syntax) || errors.As(err, &typ) {
			return nil, errors.InvalidFrame(errors.PhaseDecode, "read frame", err)
		}
		return nil, errors.Wrap(errors.PhaseTransport, errors.KindExecutorFailure, err, "read frame")
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
