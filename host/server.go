package host

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/errors"
)

// Server runs devices for a remote client over one stream. A hello frame
// creates a fresh Device, replacing any previous one; call frames are
// executed in the order read.
type Server struct {
	// NewDevice creates the device for a hello frame. Defaults to NewDevice.
	NewDevice func(req dispatch.InitRequest, notify dispatch.Notifier) *Device
	// OnDevice, if set, observes every device the server creates.
	OnDevice func(*Device)

	conn io.ReadWriteCloser
	wmu  sync.Mutex
}

// Serve executes frames from conn until the stream ends, ctx is done or a
// call fails at the executor level. It closes conn before returning.
func (s *Server) Serve(ctx context.Context, conn io.ReadWriteCloser) error {
	s.conn = conn
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var dev *Device
	defer func() {
		if dev != nil {
			_ = dev.Close()
		}
	}()

	reader := dispatch.NewFrameReader(conn)
	for {
		f, err := reader.Read()
		if err != nil {
			if err == io.EOF || ctx.Err() != nil {
				return nil
			}
			return err
		}

		switch f.Kind {
		case dispatch.FrameHello:
			if dev != nil {
				_ = dev.Close()
			}
			dev = s.newDevice(*f.Hello)
			Logger().Debug("device created", zap.String("session", f.Hello.Session))
			if err := s.reply(f.Seq, dev.Info(), nil); err != nil {
				return err
			}

		case dispatch.FrameCall:
			if dev == nil {
				err := errors.NotInitialized(errors.PhaseExecute, "device")
				if f.WantReply {
					if werr := s.reply(f.Seq, nil, err); werr != nil {
						return werr
					}
					continue
				}
				return err
			}
			v, err := dev.Handle(dispatch.Call{Seq: f.Seq, Method: f.Method, Args: f.Args})
			if f.WantReply {
				if werr := s.reply(f.Seq, v, err); werr != nil {
					return werr
				}
			}
			if err != nil {
				Logger().Warn("executor call failed, closing session",
					zap.Stringer("method", f.Method), zap.Error(err))
				return err
			}

		default:
			Logger().Warn("unexpected frame from client", zap.Stringer("kind", f.Kind))
		}
	}
}

func (s *Server) newDevice(req dispatch.InitRequest) *Device {
	factory := s.NewDevice
	if factory == nil {
		factory = NewDevice
	}
	dev := factory(req, s.sendNotification)
	if s.OnDevice != nil {
		s.OnDevice(dev)
	}
	return dev
}

func (s *Server) reply(seq uint64, v any, callErr error) error {
	f := &dispatch.Frame{Kind: dispatch.FrameReply, Seq: seq}
	if callErr != nil {
		f.Error = callErr.Error()
	} else {
		raw, err := dispatch.EncodeValue(v)
		if err != nil {
			f.Error = err.Error()
		} else {
			f.Value = raw
		}
	}
	return s.write(f)
}

func (s *Server) sendNotification(n dispatch.Notification) {
	if err := s.write(&dispatch.Frame{Kind: dispatch.FrameNotify, Note: &n}); err != nil {
		Logger().Debug("dropping notification", zap.Stringer("kind", n.Kind), zap.Error(err))
	}
}

func (s *Server) write(f *dispatch.Frame) error {
	data, err := dispatch.MarshalFrame(f)
	if err != nil {
		return err
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if _, err := s.conn.Write(data); err != nil {
		return errors.ExecutorFailure(errors.PhaseTransport, f.Kind.String(), err)
	}
	return nil
}
