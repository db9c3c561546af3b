package host

import (
	"bytes"
	"context"
	stderrors "errors"
	"math"
	"testing"
	"time"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/errors"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

type collector struct {
	notes []dispatch.Notification
}

func (c *collector) notify(n dispatch.Notification) { c.notes = append(c.notes, n) }

func (c *collector) kinds() []dispatch.NotificationKind {
	out := make([]dispatch.NotificationKind, len(c.notes))
	for i, n := range c.notes {
		out[i] = n.Kind
	}
	return out
}

func newTestDevice() (*Device, *collector) {
	c := &collector{}
	d := NewDevice(dispatch.InitRequest{
		Session:    "test",
		Attributes: dispatch.Attributes{Width: 300, Height: 150, WebGL2: true},
	}, c.notify)
	return d, c
}

func call(t *testing.T, d *Device, m dispatch.Method, args ...any) any {
	t.Helper()
	v, err := d.Handle(dispatch.Call{Method: m, Args: args})
	if err != nil {
		t.Fatalf("%s: %v", m, err)
	}
	return v
}

func TestDevice_BufferData(t *testing.T) {
	d, _ := newTestDevice()
	call(t, d, dispatch.MethodCreateObject, uint8(resource.KindBuffer), uint64(1))
	call(t, d, dispatch.MethodBindBuffer, glenum.ArrayBuffer, uint64(1))
	call(t, d, dispatch.MethodBufferData, glenum.ArrayBuffer, int64(4), []byte(nil), glenum.StaticDraw)
	call(t, d, dispatch.MethodBufferSubData, glenum.ArrayBuffer, int64(1), []byte{7, 8})

	if got := d.BufferData(1); !bytes.Equal(got, []byte{0, 7, 8, 0}) {
		t.Fatalf("buffer = %v", got)
	}

	got := call(t, d, dispatch.MethodGetBufferSubData, glenum.ArrayBuffer, int64(1), int64(2))
	if !bytes.Equal(got.([]byte), []byte{7, 8}) {
		t.Fatalf("GetBufferSubData = %v", got)
	}
}

func TestDevice_ErrorQueue(t *testing.T) {
	d, c := newTestDevice()
	call(t, d, dispatch.MethodCreateObject, uint8(resource.KindBuffer), uint64(1))
	call(t, d, dispatch.MethodBindBuffer, glenum.ArrayBuffer, uint64(1))
	call(t, d, dispatch.MethodBufferData, glenum.ArrayBuffer, int64(2), []byte(nil), glenum.StaticDraw)

	call(t, d, dispatch.MethodBufferSubData, glenum.ArrayBuffer, int64(1), []byte{1, 2, 3})
	call(t, d, dispatch.MethodBufferSubData, glenum.ArrayBuffer, int64(5), []byte{1})
	call(t, d, dispatch.MethodDrawArrays, glenum.Triangles, int64(0), int64(3), int64(1))

	want := []uint32{glenum.InvalidValue, glenum.InvalidOperation, glenum.NoError}
	for _, w := range want {
		if got := call(t, d, dispatch.MethodGetError); got != w {
			t.Fatalf("GetError = %#x, want %#x", got, w)
		}
	}

	if len(c.notes) != 3 {
		t.Fatalf("host errors reported: %v", c.kinds())
	}
	for _, n := range c.notes {
		if n.Kind != dispatch.NotifyHostError {
			t.Fatalf("unexpected notification %s", n.Kind)
		}
	}
}

func TestDevice_CompileAndLinkNotify(t *testing.T) {
	d, c := newTestDevice()
	call(t, d, dispatch.MethodCreateObject, uint8(resource.KindProgram), uint64(1))
	call(t, d, dispatch.MethodCreateShader, uint64(2), glenum.VertexShader)
	call(t, d, dispatch.MethodCreateShader, uint64(3), glenum.FragmentShader)
	call(t, d, dispatch.MethodShaderSource, uint64(2), testVS)
	call(t, d, dispatch.MethodShaderSource, uint64(3), testFS)
	call(t, d, dispatch.MethodCompileShader, uint64(2))
	call(t, d, dispatch.MethodCompileShader, uint64(3))
	call(t, d, dispatch.MethodAttachShader, uint64(1), uint64(2))
	call(t, d, dispatch.MethodAttachShader, uint64(1), uint64(3))
	call(t, d, dispatch.MethodLinkProgram, uint64(1), uint64(1))

	if len(c.notes) != 3 || c.notes[2].Kind != dispatch.NotifyLinkResult {
		t.Fatalf("notifications = %v", c.kinds())
	}
	if n := c.notes[2]; n.ID != 1 || n.Serial != 1 || n.Link == nil || !n.Link.Success {
		t.Fatalf("link notification = %+v", n)
	}

	res := call(t, d, dispatch.MethodGetLinkResult, uint64(1)).(*dispatch.LinkResult)
	if !res.Success || len(res.Uniforms) == 0 {
		t.Fatalf("link result = %+v", res)
	}
	if ok := call(t, d, dispatch.MethodValidateProgram, uint64(1)); ok != true {
		t.Fatal("validateProgram should succeed")
	}
}

func TestDevice_QueriesAndSyncs(t *testing.T) {
	d, c := newTestDevice()
	call(t, d, dispatch.MethodCreateObject, uint8(resource.KindQuery), uint64(1))
	call(t, d, dispatch.MethodBeginQuery, glenum.AnySamplesPassed, uint64(1))
	call(t, d, dispatch.MethodClear, glenum.ColorBufferBit)
	call(t, d, dispatch.MethodEndQuery, glenum.AnySamplesPassed)

	if got := call(t, d, dispatch.MethodGetQueryParameter, uint64(1), glenum.QueryResult); got != uint64(1) {
		t.Fatalf("query result = %v", got)
	}

	call(t, d, dispatch.MethodFenceSync, uint64(2), glenum.SyncGPUCommandsComplete, uint32(0))
	if got := call(t, d, dispatch.MethodClientWaitSync, uint64(2), uint32(0), int64(0)); got != glenum.TimeoutExpired {
		t.Fatalf("clientWaitSync = %#x", got)
	}
	call(t, d, dispatch.MethodFlush)
	if got := call(t, d, dispatch.MethodGetSyncParameter, uint64(2), glenum.SyncStatus); got != glenum.Signaled {
		t.Fatalf("sync status = %#x", got)
	}

	kinds := c.kinds()
	if len(kinds) != 2 || kinds[0] != dispatch.NotifyQueryAvailable || kinds[1] != dispatch.NotifySyncComplete {
		t.Fatalf("notifications = %v", kinds)
	}
}

func TestDevice_FailNext(t *testing.T) {
	d, _ := newTestDevice()
	d.FailNext(stderrors.New("gpu hang"))

	_, err := d.Handle(dispatch.Call{Method: dispatch.MethodFlush})
	if !errors.HasKind(err, errors.KindExecutorFailure) {
		t.Fatalf("err = %v", err)
	}
	if _, err := d.Handle(dispatch.Call{Method: dispatch.MethodFlush}); err != nil {
		t.Fatalf("failure should apply once: %v", err)
	}
}

func TestDevice_LoseContext(t *testing.T) {
	d, c := newTestDevice()
	d.LoseContext()
	d.LoseContext()

	if len(c.notes) != 1 || c.notes[0].Kind != dispatch.NotifyContextLost || c.notes[0].Reason != dispatch.LossDriver {
		t.Fatalf("notifications = %+v", c.notes)
	}
	if got := call(t, d, dispatch.MethodGetError); got != glenum.ContextLostWebGL {
		t.Fatalf("GetError = %#x", got)
	}
	call(t, d, dispatch.MethodCreateObject, uint8(resource.KindBuffer), uint64(1))
	if d.Has(1) {
		t.Fatal("lost device must not execute calls")
	}
}

func TestDevice_DeleteUnbinds(t *testing.T) {
	d, _ := newTestDevice()
	call(t, d, dispatch.MethodCreateObject, uint8(resource.KindTexture), uint64(4))
	call(t, d, dispatch.MethodBindTexture, glenum.Texture2D, uint64(4))
	call(t, d, dispatch.MethodDeleteObject, uint8(resource.KindTexture), uint64(4))

	if d.Has(4) || d.Objects() != 0 {
		t.Fatal("texture not deleted")
	}
	call(t, d, dispatch.MethodTexParameter, glenum.Texture2D, glenum.TextureMinFilter, int64(glenum.Linear))
	if got := call(t, d, dispatch.MethodGetError); got != glenum.InvalidOperation {
		t.Fatalf("GetError = %#x", got)
	}
}

func TestInProcess_Refuse(t *testing.T) {
	c := &InProcess{Refuse: func(attempt int) error {
		if attempt == 2 {
			return stderrors.New("no adapter")
		}
		return nil
	}}

	if _, _, err := c.Connect(context.Background(), dispatch.InitRequest{}, nil); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if _, _, err := c.Connect(context.Background(), dispatch.InitRequest{}, nil); err == nil {
		t.Fatal("second connect should be refused")
	}
	if _, _, err := c.Connect(context.Background(), dispatch.InitRequest{}, nil); err != nil {
		t.Fatalf("third connect: %v", err)
	}
	if len(c.Devices()) != 2 {
		t.Fatalf("devices = %d", len(c.Devices()))
	}
}

func TestPipe_RemoteRoundTrip(t *testing.T) {
	notes := make(chan dispatch.Notification, 8)
	var dev *Device
	devCh := make(chan *Device, 1)
	p := &Pipe{OnDevice: func(d *Device) { devCh <- d }, QueryTimeout: 2 * time.Second}

	exec, info, err := p.Connect(context.Background(), dispatch.InitRequest{Session: "pipe"}, func(n dispatch.Notification) { notes <- n })
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer exec.Close()
	dev = <-devCh

	if info.Vendor != "glproxy" || info.Limits.MaxTextureSize != DefaultLimits.MaxTextureSize {
		t.Fatalf("info = %+v", info)
	}

	d := dispatch.NewDispatcher(exec, func(err error) { t.Errorf("failure: %v", err) })
	d.Run(dispatch.MethodCreateObject, uint8(resource.KindBuffer), uint64(1))
	d.Run(dispatch.MethodBindBuffer, glenum.ArrayBuffer, uint64(1))
	d.RunWithGCData(dispatch.NewNoGC(nil), dispatch.MethodBufferData, glenum.ArrayBuffer, int64(3), []byte{1, 2, 3}, glenum.StaticDraw)

	var data []byte
	if !d.Query(&data, dispatch.MethodGetBufferSubData, glenum.ArrayBuffer, int64(0), int64(3)) {
		t.Fatal("query failed")
	}
	if !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Fatalf("data = %v", data)
	}
	if !bytes.Equal(dev.BufferData(1), []byte{1, 2, 3}) {
		t.Fatal("device did not receive buffer data")
	}

	d.Run(dispatch.MethodCreateObject, uint8(resource.KindSync), uint64(2))
	d.Run(dispatch.MethodFenceSync, uint64(2), glenum.SyncGPUCommandsComplete, uint32(0))
	d.Run(dispatch.MethodFlush)

	select {
	case n := <-notes:
		if n.Kind != dispatch.NotifySyncComplete || n.ID != 2 {
			t.Fatalf("notification = %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no sync notification")
	}
}

func TestPipe_ExecutorCrashEndsSession(t *testing.T) {
	notes := make(chan dispatch.Notification, 8)
	devCh := make(chan *Device, 1)
	p := &Pipe{OnDevice: func(d *Device) { devCh <- d }}

	exec, _, err := p.Connect(context.Background(), dispatch.InitRequest{}, func(n dispatch.Notification) { notes <- n })
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer exec.Close()
	dev := <-devCh

	dev.FailNext(stderrors.New("gpu hang"))
	if err := exec.Submit(dispatch.Call{Method: dispatch.MethodFlush}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case n := <-notes:
		if n.Kind != dispatch.NotifyTransportError {
			t.Fatalf("notification = %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("crash not reported")
	}
}

func TestDevice_RangeOverflow(t *testing.T) {
	d, _ := newTestDevice()
	call(t, d, dispatch.MethodCreateObject, uint8(resource.KindBuffer), uint64(1))
	call(t, d, dispatch.MethodCreateObject, uint8(resource.KindBuffer), uint64(2))
	call(t, d, dispatch.MethodBindBuffer, glenum.CopyReadBuffer, uint64(1))
	call(t, d, dispatch.MethodBindBuffer, glenum.CopyWriteBuffer, uint64(2))
	call(t, d, dispatch.MethodBufferData, glenum.CopyReadBuffer, int64(4), []byte(nil), glenum.StaticDraw)
	call(t, d, dispatch.MethodBufferData, glenum.CopyWriteBuffer, int64(4), []byte(nil), glenum.StaticDraw)

	tests := []struct {
		name string
		m    dispatch.Method
		args []any
		want uint32
	}{
		{"sub data", dispatch.MethodBufferSubData, []any{glenum.CopyReadBuffer, int64(math.MaxInt64), []byte{9}}, glenum.InvalidValue},
		{"get sub data", dispatch.MethodGetBufferSubData, []any{glenum.CopyReadBuffer, int64(math.MaxInt64), int64(2)}, glenum.InvalidValue},
		{"copy read", dispatch.MethodCopyBufferSubData, []any{glenum.CopyReadBuffer, glenum.CopyWriteBuffer, int64(math.MaxInt64), int64(0), int64(1)}, glenum.InvalidValue},
		{"copy write", dispatch.MethodCopyBufferSubData, []any{glenum.CopyReadBuffer, glenum.CopyWriteBuffer, int64(0), int64(math.MaxInt64), int64(1)}, glenum.InvalidValue},
		{"huge size", dispatch.MethodBufferData, []any{glenum.CopyReadBuffer, int64(math.MaxInt64), []byte(nil), glenum.StaticDraw}, glenum.OutOfMemory},
		{"negative size", dispatch.MethodBufferData, []any{glenum.CopyReadBuffer, int64(-1), []byte(nil), glenum.StaticDraw}, glenum.InvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call(t, d, tt.m, tt.args...)
			if got := call(t, d, dispatch.MethodGetError); got != tt.want {
				t.Errorf("GetError = %#x, want %#x", got, tt.want)
			}
		})
	}

	if got := d.BufferData(1); !bytes.Equal(got, make([]byte, 4)) {
		t.Errorf("buffer changed by rejected calls: %v", got)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDevice_HandlerPanicFailsCall(t *testing.T) {
	saved := handlers[dispatch.MethodFinish]
	handlers[dispatch.MethodFinish] = func(*Device, *argReader) any { panic("boom") }
	t.Cleanup(func() { handlers[dispatch.MethodFinish] = saved })

	d, _ := newTestDevice()
	_, err := d.Handle(dispatch.Call{Method: dispatch.MethodFinish})
	if !errors.HasKind(err, errors.KindExecutorFailure) {
		t.Fatalf("err = %v, want executor failure", err)
	}

	// The lock is released, so later calls and Close still work.
	call(t, d, dispatch.MethodCreateObject, uint8(resource.KindBuffer), uint64(1))
	if !d.Has(1) {
		t.Error("call after panic did not run")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
