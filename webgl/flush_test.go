package webgl

import (
	"runtime"
	"testing"
	"time"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/host"
	"github.com/wippyai/glproxy/taskqueue"
)

func TestAutoFlush_OncePerTurn(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()

	b := c.CreateBuffer()
	c.BindBuffer(glenum.ArrayBuffer, b)
	c.ClearColor(0, 0, 0, 1)
	if !c.FlushPending() {
		t.Fatal("no flush scheduled")
	}
	if n := dev.CallCount(dispatch.MethodFlush); n != 0 {
		t.Fatalf("flushed synchronously %d times", n)
	}

	c.Queue().RunPending()
	if n := dev.CallCount(dispatch.MethodFlush); n != 1 {
		t.Fatalf("flushes = %d, want 1", n)
	}
	if c.FlushPending() {
		t.Error("flush still pending after its turn")
	}

	c.Queue().RunPending()
	if n := dev.CallCount(dispatch.MethodFlush); n != 1 {
		t.Errorf("idle turn flushed: %d", n)
	}

	c.ClearColor(1, 1, 1, 1)
	c.Queue().RunPending()
	if n := dev.CallCount(dispatch.MethodFlush); n != 2 {
		t.Errorf("flushes = %d, want 2", n)
	}
}

func TestAutoFlush_QueriesDoNotSchedule(t *testing.T) {
	c, _, _ := newTestContext(t)
	c.GetError()
	c.GetParameter(glenum.Vendor)
	if c.FlushPending() {
		t.Error("synchronous queries scheduled a flush")
	}
}

func TestFlush_CancelsPending(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()

	c.ClearColor(0, 0, 0, 1)
	c.Flush()
	if c.FlushPending() {
		t.Fatal("explicit flush left the automatic one pending")
	}
	if n := dev.CallCount(dispatch.MethodFlush); n != 1 {
		t.Fatalf("flushes = %d, want 1", n)
	}
	c.Queue().RunPending()
	if n := dev.CallCount(dispatch.MethodFlush); n != 1 {
		t.Errorf("flushes after turn = %d, want 1", n)
	}
}

func TestFlush_Forwarding(t *testing.T) {
	tests := []struct {
		name    string
		forward bool
		issue   bool
		want    int
	}{
		{"forward idle", true, false, 1},
		{"forward pending", true, true, 1},
		{"no forward idle", false, false, 0},
		{"no forward pending", false, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, conn, _ := newTestContext(t, func(o *Options) { o.ForwardFlush = tt.forward })
			if tt.issue {
				c.ClearColor(0, 0, 0, 1)
			}
			c.Flush()
			if n := conn.Last().CallCount(dispatch.MethodFlush); n != tt.want {
				t.Errorf("flushes = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestAutoFlush_Disabled(t *testing.T) {
	c, conn, _ := newTestContext(t, func(o *Options) { o.AutoFlush = false })
	c.ClearColor(0, 0, 0, 1)
	if c.FlushPending() {
		t.Fatal("flush scheduled with AutoFlush off")
	}
	c.Queue().Drain(4)
	if n := conn.Last().CallCount(dispatch.MethodFlush); n != 0 {
		t.Errorf("flushes = %d", n)
	}
}

func TestAutoFlush_CanceledByLoss(t *testing.T) {
	c, conn, _ := newTestContext(t)
	preventDefault(c)
	first := conn.Last()

	c.ClearColor(0, 0, 0, 1)
	c.EmulateLoseContext()
	if c.FlushPending() {
		t.Fatal("flush still pending after loss")
	}
	c.Queue().RunPending()
	c.RestoreContext()
	c.Queue().Drain(4)

	if n := first.CallCount(dispatch.MethodFlush); n != 0 {
		t.Errorf("lost generation flushed %d times", n)
	}
	if n := conn.Last().CallCount(dispatch.MethodFlush); n != 0 {
		t.Errorf("restored generation flushed %d times without commands", n)
	}
}

func TestFinish_SettlesPending(t *testing.T) {
	c, conn, _ := newTestContext(t)
	dev := conn.Last()
	c.ClearColor(0, 0, 0, 1)
	c.Finish()
	if c.FlushPending() {
		t.Error("finish left a flush pending")
	}
	if n := dev.CallCount(dispatch.MethodFinish); n != 1 {
		t.Errorf("finishes = %d", n)
	}
	c.Queue().RunPending()
	if n := dev.CallCount(dispatch.MethodFlush); n != 0 {
		t.Errorf("flushes = %d", n)
	}
}

func TestRunWithBytes_PinsHeap(t *testing.T) {
	pins, unpins := 0, 0
	c, conn, _ := newTestContext(t, func(o *Options) {
		o.PinHeap = func() func() {
			pins++
			return func() { unpins++ }
		}
	})
	b := c.CreateBuffer()
	c.BindBuffer(glenum.ArrayBuffer, b)
	c.BufferData(glenum.ArrayBuffer, []byte{9, 8, 7}, glenum.StaticDraw)
	c.BufferSubData(glenum.ArrayBuffer, 1, []byte{1})

	if pins != 2 || unpins != 2 {
		t.Fatalf("pins = %d unpins = %d", pins, unpins)
	}
	if got := conn.Last().BufferData(idOf(b)); string(got) != string([]byte{9, 1, 7}) {
		t.Errorf("device buffer = %v", got)
	}
}

func TestQueuedTasks_DoNotPinContext(t *testing.T) {
	queue := taskqueue.New()
	conn := &host.InProcess{}
	collected := make(chan struct{})

	func() {
		opts := DefaultOptions()
		opts.Connector = conn
		opts.Queue = queue
		c, err := New(opts)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		runtime.AddCleanup(c, func(ch chan struct{}) { close(ch) }, collected)

		// Leaves an auto flush, an availability batch and host
		// notifications queued.
		q := c.CreateQuery()
		c.BeginQuery(glenum.AnySamplesPassed, q)
		c.Clear(glenum.ColorBufferBit)
		c.EndQuery(glenum.AnySamplesPassed)
		c.FenceSync(glenum.SyncGPUCommandsComplete, 0)
	}()
	if queue.Len() == 0 {
		t.Fatal("nothing queued")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		runtime.GC()
		select {
		case <-collected:
			queue.Drain(4)
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("context kept alive by its queued tasks")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
