package dispatch

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/wippyai/glproxy/errors"
)

// echoPeer is a minimal executor: it records calls, answers queries with
// the call's sequence number and sends a notification after every flush.
type echoPeer struct {
	conn  net.Conn
	mu    sync.Mutex
	calls []Method
}

func (p *echoPeer) serve() {
	r := NewFrameReader(p.conn)
	for {
		f, err := r.Read()
		if err != nil {
			return
		}
		switch f.Kind {
		case FrameHello:
			raw, _ := EncodeValue(InitResult{Vendor: "test", Renderer: f.Hello.Session})
			p.write(&Frame{Kind: FrameReply, Seq: f.Seq, Value: raw})
		case FrameCall:
			p.mu.Lock()
			p.calls = append(p.calls, f.Method)
			p.mu.Unlock()
			if f.Method == MethodFlush {
				p.write(&Frame{Kind: FrameNotify, Note: &Notification{Kind: NotifySyncComplete, ID: 9}})
			}
			if f.WantReply {
				if f.Method == MethodGetError {
					p.write(&Frame{Kind: FrameReply, Seq: f.Seq, Error: "boom"})
					continue
				}
				raw, _ := EncodeValue(f.Seq)
				p.write(&Frame{Kind: FrameReply, Seq: f.Seq, Value: raw})
			}
		}
	}
}

func (p *echoPeer) write(f *Frame) {
	data, _ := MarshalFrame(f)
	_, _ = p.conn.Write(data)
}

func (p *echoPeer) seen() []Method {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Method(nil), p.calls...)
}

func newRemotePair(t *testing.T, notify Notifier) (*Remote, *echoPeer) {
	t.Helper()
	client, server := net.Pipe()
	peer := &echoPeer{conn: server}
	go peer.serve()
	r := NewRemote(client, notify, WithQueryTimeout(2*time.Second))
	t.Cleanup(func() {
		_ = r.Close()
		_ = server.Close()
	})
	return r, peer
}

func TestRemote_Handshake(t *testing.T) {
	r, _ := newRemotePair(t, nil)
	res, err := r.Handshake(context.Background(), InitRequest{Session: "abc"})
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if res.Vendor != "test" || res.Renderer != "abc" {
		t.Fatalf("InitResult = %+v", res)
	}
}

func TestRemote_OrderAndQuery(t *testing.T) {
	r, peer := newRemotePair(t, nil)
	d := NewDispatcher(r, func(err error) { t.Errorf("unexpected failure: %v", err) })

	d.Run(MethodClearColor, float32(0), float32(0), float32(0), float32(1))
	d.Run(MethodClear, uint32(0x4000))
	d.RunWithGCData(NewNoGC(nil), MethodBufferData, uint32(0x8892), int64(3), []byte{1, 2, 3}, uint32(0x88E4))

	var seq uint64
	if !d.Query(&seq, MethodFinish) {
		t.Fatal("Query failed")
	}
	if seq == 0 {
		t.Fatal("reply not decoded")
	}

	want := []Method{MethodClearColor, MethodClear, MethodBufferData, MethodFinish}
	got := peer.seen()
	if len(got) != len(want) {
		t.Fatalf("peer saw %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("peer saw %v, want %v", got, want)
		}
	}
}

func TestRemote_Notifications(t *testing.T) {
	notes := make(chan Notification, 4)
	r, _ := newRemotePair(t, func(n Notification) { notes <- n })

	if err := r.Submit(Call{Method: MethodFlush}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case n := <-notes:
		if n.Kind != NotifySyncComplete || n.ID != 9 {
			t.Fatalf("notification = %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
	}
}

func TestRemote_ReplyError(t *testing.T) {
	r, _ := newRemotePair(t, nil)
	_, err := r.Query(Call{Method: MethodGetError})
	if err == nil || !errors.HasKind(err, errors.KindExecutorFailure) {
		t.Fatalf("err = %v", err)
	}
}

func TestRemote_PeerGoneReportsTransportError(t *testing.T) {
	client, server := net.Pipe()
	notes := make(chan Notification, 4)
	r := NewRemote(client, func(n Notification) { notes <- n })
	defer r.Close()

	_ = server.Close()

	select {
	case n := <-notes:
		if n.Kind != NotifyTransportError {
			t.Fatalf("notification = %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("transport failure not reported")
	}

	if err := r.Submit(Call{Method: MethodFlush}); err == nil {
		t.Fatal("Submit after failure must fail")
	}
	select {
	case n := <-notes:
		t.Fatalf("failure reported twice: %+v", n)
	default:
	}
}

func TestRemote_CloseIsSilent(t *testing.T) {
	notes := make(chan Notification, 1)
	r, _ := newRemotePair(t, func(n Notification) { notes <- n })
	_ = r.Close()

	<-r.Done()
	select {
	case n := <-notes:
		t.Fatalf("deliberate close reported: %+v", n)
	default:
	}
}

func TestFrameReader_RejectsUnknownMethod(t *testing.T) {
	data, err := MarshalFrame(&Frame{Kind: FrameCall, Method: Method(5000)})
	if err != nil {
		t.Fatalf("MarshalFrame: %v", err)
	}
	if _, err := UnmarshalFrame(data); !errors.HasKind(err, errors.KindUnknownMethod) {
		t.Fatalf("err = %v", err)
	}

	data, _ = MarshalFrame(&Frame{Kind: FrameNotify})
	if _, err := UnmarshalFrame(data); !errors.HasKind(err, errors.KindInvalidFrame) {
		t.Fatalf("err = %v", err)
	}
}
