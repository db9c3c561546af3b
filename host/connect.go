package host

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/errors"
)

// InProcess connects contexts to Devices running in the caller's process
// through a dispatch.Local executor.
type InProcess struct {
	// Refuse, if set, is consulted before every connection; a non-nil
	// error rejects it. attempt counts from 1.
	Refuse func(attempt int) error
	// OnDevice, if set, observes every device created.
	OnDevice func(*Device)

	mu       sync.Mutex
	attempts int
	devices  []*Device
}

// Connect creates a new Device.
func (c *InProcess) Connect(ctx context.Context, req dispatch.InitRequest, notify dispatch.Notifier) (dispatch.Executor, dispatch.InitResult, error) {
	c.mu.Lock()
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	if c.Refuse != nil {
		if err := c.Refuse(attempt); err != nil {
			return nil, dispatch.InitResult{}, errors.Wrap(errors.PhaseConnect, errors.KindExecutorFailure, err, "create device")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, dispatch.InitResult{}, errors.Wrap(errors.PhaseConnect, errors.KindTimeout, err, "create device")
	}

	dev := NewDevice(req, notify)
	c.mu.Lock()
	c.devices = append(c.devices, dev)
	c.mu.Unlock()
	if c.OnDevice != nil {
		c.OnDevice(dev)
	}
	return dispatch.NewLocal(dev), dev.Info(), nil
}

// Devices returns every device created so far, oldest first.
func (c *InProcess) Devices() []*Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Device(nil), c.devices...)
}

// Last returns the most recently created device.
func (c *InProcess) Last() *Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.devices) == 0 {
		return nil
	}
	return c.devices[len(c.devices)-1]
}

// Pipe connects contexts to a Server running on a goroutine of the same
// process over an in-memory stream. Every call crosses the wire codec,
// which makes it the cheapest way to exercise the remote path.
type Pipe struct {
	// OnDevice, if set, observes every device created.
	OnDevice func(*Device)
	// QueryTimeout bounds synchronous calls.
	QueryTimeout time.Duration
}

// Connect starts a server and performs the handshake.
func (p *Pipe) Connect(ctx context.Context, req dispatch.InitRequest, notify dispatch.Notifier) (dispatch.Executor, dispatch.InitResult, error) {
	client, server := net.Pipe()
	srv := &Server{OnDevice: p.OnDevice}
	go func() {
		if err := srv.Serve(context.Background(), server); err != nil {
			Logger().Debug("pipe server stopped", zap.Error(err))
		}
	}()

	remote := dispatch.NewRemote(client, notify, dispatch.WithQueryTimeout(p.QueryTimeout))
	info, err := remote.Handshake(ctx, req)
	if err != nil {
		_ = remote.Close()
		return nil, dispatch.InitResult{}, errors.Wrap(errors.PhaseConnect, errors.KindExecutorFailure, err, "handshake")
	}
	return remote, info, nil
}

// Spawn connects contexts to an executor subprocess speaking the frame
// protocol on its stdin and stdout. Each connection starts a new process.
type Spawn struct {
	Command      []string
	Env          []string
	QueryTimeout time.Duration
}

// Connect starts the process and performs the handshake.
func (s *Spawn) Connect(ctx context.Context, req dispatch.InitRequest, notify dispatch.Notifier) (dispatch.Executor, dispatch.InitResult, error) {
	if len(s.Command) == 0 {
		return nil, dispatch.InitResult{}, errors.InvalidInput(errors.PhaseConnect, "executor command is empty")
	}

	cmd := exec.Command(s.Command[0], s.Command[1:]...)
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, dispatch.InitResult{}, errors.Wrap(errors.PhaseConnect, errors.KindExecutorFailure, err, "creating stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, dispatch.InitResult{}, errors.Wrap(errors.PhaseConnect, errors.KindExecutorFailure, err, "creating stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		return nil, dispatch.InitResult{}, errors.Wrap(errors.PhaseConnect, errors.KindExecutorFailure, err, fmt.Sprintf("starting %s", s.Command[0]))
	}
	Logger().Info("executor process started", zap.Int("pid", cmd.Process.Pid))

	conn := &processConn{cmd: cmd, stdin: stdin, stdout: stdout, grace: exitGrace}
	remote := dispatch.NewRemote(conn, notify, dispatch.WithQueryTimeout(s.QueryTimeout))
	info, err := remote.Handshake(ctx, req)
	if err != nil {
		_ = remote.Close()
		return nil, dispatch.InitResult{}, errors.Wrap(errors.PhaseConnect, errors.KindExecutorFailure, err, "handshake")
	}
	return remote, info, nil
}

// exitGrace is how long a closed executor process may take to exit before
// it is killed.
const exitGrace = 2 * time.Second

// processConn joins a child's stdout and stdin into one stream.
type processConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	grace  time.Duration
	once   sync.Once
}

func (c *processConn) Read(p []byte) (int, error)  { return c.stdout.Read(p) }
func (c *processConn) Write(p []byte) (int, error) { return c.stdin.Write(p) }

func (c *processConn) Close() error {
	c.once.Do(func() {
		// Closing stdout ends any pending Read before Wait runs.
		_ = c.stdin.Close()
		_ = c.stdout.Close()

		done := make(chan error, 1)
		go func() { done <- c.cmd.Wait() }()

		var err error
		select {
		case err = <-done:
		case <-time.After(c.grace):
			Logger().Warn("executor process did not exit, killing it", zap.Int("pid", c.cmd.Process.Pid))
			_ = c.cmd.Process.Kill()
			err = <-done
		}
		if err != nil {
			Logger().Debug("executor process exited", zap.Error(err))
		}
	})
	return nil
}

// StdioConn is the executor side of a Spawn connection.
type StdioConn struct {
	In  io.ReadCloser
	Out io.WriteCloser
}

func (c StdioConn) Read(p []byte) (int, error)  { return c.In.Read(p) }
func (c StdioConn) Write(p []byte) (int, error) { return c.Out.Write(p) }

func (c StdioConn) Close() error {
	err := c.Out.Close()
	if cerr := c.In.Close(); err == nil {
		err = cerr
	}
	return err
}
