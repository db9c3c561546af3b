package webgl

import (
	"context"
	"weak"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/errors"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
	"github.com/wippyai/glproxy/taskqueue"
)

// Status is the loss state of a context.
type Status uint8

const (
	StatusReady Status = iota
	StatusLive
	StatusLost
	StatusAwaitingRestore
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusLive:
		return "live"
	case StatusLost:
		return "lost"
	case StatusAwaitingRestore:
		return "awaiting-restore"
	case StatusClosed:
		return "closed"
	}
	return "unknown"
}

// Event names.
const (
	EventContextLost     = "webglcontextlost"
	EventContextRestored = "webglcontextrestored"
)

// Event is delivered to listeners added with AddEventListener.
type Event struct {
	Type          string
	StatusMessage string

	defaultPrevented bool
}

// PreventDefault allows the context to be restored after a loss.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Context is a proxied WebGL 2 context.
type Context struct {
	opts      Options
	queue     *taskqueue.Queue
	owner     *resource.Owner
	gen       *Generation
	self      weak.Pointer[Context]
	listeners map[string][]func(*Event)
	loseExt   *LoseContextExtension
	flushTask *taskqueue.Task
	avail     *availability

	scopeName string
	glErrors  []uint32

	id         uuid.UUID
	serial     uint64
	syncMark   uint64
	warnings   int
	scopeDepth int
	lossReason dispatch.LossReason
	status     Status

	allowRestore bool
	canvasDirty  bool
}

// New creates a context and connects it to an executor. Errors are
// Go-level failures: bad options or an executor that could not be created.
func New(opts Options) (*Context, error) {
	if opts.Connector == nil {
		return nil, errors.InvalidInput(errors.PhaseConnect, "no connector")
	}
	if opts.Queue == nil {
		opts.Queue = taskqueue.New()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.MaxWarnings == 0 {
		opts.MaxWarnings = DefaultMaxWarnings
	}
	if opts.Attributes.ColorSpace == "" {
		opts.Attributes.ColorSpace = "srgb"
	}

	c := &Context{
		opts:      opts,
		queue:     opts.Queue,
		owner:     resource.NewOwner(),
		listeners: make(map[string][]func(*Event)),
		id:        uuid.New(),
	}
	c.self = weak.Make(c)
	c.loseExt = &LoseContextExtension{ctx: c}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	g, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	c.gen = g
	c.status = StatusLive
	Logger().Debug("context created",
		zap.Stringer("id", c.id),
		zap.String("renderer", g.info.Renderer),
		zap.Uint64("epoch", uint64(g.epoch)))
	return c, nil
}

// connect creates an executor context and a generation for it. The owner's
// epoch only advances on success, so a failed attempt leaves no trace.
func (c *Context) connect(ctx context.Context) (*Generation, error) {
	// Notifications reach the context weakly and only while the generation
	// they belong to is current.
	var epoch resource.Epoch
	queue, self := c.queue, c.self
	notify := func(n dispatch.Notification) {
		queue.Post("notification", func() {
			c := self.Value()
			if c == nil || c.gen == nil || epoch == 0 || c.gen.epoch != epoch {
				return
			}
			c.onNotification(c.gen, n)
		})
	}

	req := dispatch.InitRequest{Session: c.id.String(), Attributes: c.opts.Attributes}
	exec, info, err := c.opts.Connector.Connect(ctx, req, notify)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConnect, errors.KindExecutorFailure, err, "create executor context")
	}

	g := newGeneration(c.owner.Begin(), info, c.opts.Attributes)
	epoch = g.epoch
	g.disp = dispatch.NewDispatcher(exec, func(err error) {
		c.onExecutorFailure(g, err)
	})
	return g, nil
}

// ID returns the context's instance id.
func (c *Context) ID() uuid.UUID { return c.id }

// Status returns the loss state.
func (c *Context) Status() Status { return c.status }

// IsContextLost reports whether the context is not live.
func (c *Context) IsContextLost() bool { return c.status != StatusLive }

// Queue returns the task queue the context runs on.
func (c *Context) Queue() *taskqueue.Queue { return c.queue }

// Owner returns the epoch holder shared by all handles of this context.
func (c *Context) Owner() *resource.Owner { return c.owner }

// Generation returns the live generation, or nil.
func (c *Context) Generation() *Generation { return c.live() }

func (c *Context) live() *Generation {
	if c.status != StatusLive {
		return nil
	}
	return c.gen
}

// AddEventListener registers fn for the named event.
func (c *Context) AddEventListener(name string, fn func(*Event)) {
	c.listeners[name] = append(c.listeners[name], fn)
}

func (c *Context) dispatchEvent(ev *Event) {
	for _, fn := range c.listeners[ev.Type] {
		fn(ev)
	}
}

// Close tears the context down. It is terminal.
func (c *Context) Close() error {
	if c.status == StatusClosed {
		return nil
	}
	var err error
	if g := c.gen; g != nil {
		c.gen = nil
		c.owner.End()
		g.release()
		err = g.disp.Close()
	}
	c.flushTask.Cancel()
	c.status = StatusClosed
	Logger().Debug("context closed", zap.Stringer("id", c.id))
	return err
}

// EmulateLoseContext loses the context as WEBGL_lose_context.loseContext
// does.
func (c *Context) EmulateLoseContext() {
	defer c.scope("loseContext")()
	if c.status != StatusLive {
		c.enqueueError(glenum.InvalidOperation, "context is not live")
		return
	}
	c.onContextLoss(dispatch.LossManual)
}

// RestoreContext requests a restore after a loss. The restore runs on a
// later task; it needs the lost event's default to have been prevented.
func (c *Context) RestoreContext() {
	defer c.scope("restoreContext")()
	if c.status != StatusLost {
		c.enqueueError(glenum.InvalidOperation, "context is not lost")
		return
	}
	if !c.allowRestore {
		c.enqueueWarning("restore not allowed; the webglcontextlost event's default was not prevented")
		return
	}
	c.startRestore()
}

func (c *Context) onExecutorFailure(g *Generation, err error) {
	if c.gen != g || c.status != StatusLive {
		return
	}
	Logger().Warn("executor failed, losing context", zap.Stringer("id", c.id), zap.Error(err))
	c.onContextLoss(dispatch.LossExecutor)
}

// onContextLoss moves a live context to Lost. The generation ends
// immediately; listeners hear about it on a later task.
func (c *Context) onContextLoss(reason dispatch.LossReason) {
	if c.status != StatusLive {
		return
	}
	g := c.gen
	c.gen = nil
	c.owner.End()
	c.flushTask.Cancel()
	c.flushTask = nil
	c.status = StatusLost
	c.lossReason = reason
	c.allowRestore = false
	c.canvasDirty = false
	c.recordError(glenum.ContextLostWebGL)

	g.release()
	if err := g.disp.Close(); err != nil {
		Logger().Debug("closing executor", zap.Error(err))
	}
	Logger().Info("context lost", zap.Stringer("id", c.id), zap.Stringer("reason", reason))

	c.queue.Post(EventContextLost, func() {
		if c.status != StatusLost {
			return
		}
		ev := &Event{Type: EventContextLost, StatusMessage: reason.String()}
		c.dispatchEvent(ev)
		c.allowRestore = ev.DefaultPrevented()
		if c.allowRestore && reason != dispatch.LossManual {
			c.startRestore()
		}
	})
}

func (c *Context) startRestore() {
	c.status = StatusAwaitingRestore
	c.queue.Post("restore", c.restore)
}

func (c *Context) restore() {
	if c.status != StatusAwaitingRestore {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.ConnectTimeout)
	defer cancel()

	g, err := c.connect(ctx)
	if err != nil {
		c.status = StatusLost
		Logger().Warn("context restore failed", zap.Stringer("id", c.id), zap.Error(errors.RestoreFailed(err)))
		return
	}
	c.gen = g
	c.status = StatusLive
	c.glErrors = nil
	Logger().Info("context restored", zap.Stringer("id", c.id), zap.Uint64("epoch", uint64(g.epoch)))
	c.dispatchEvent(&Event{Type: EventContextRestored})
}

func (c *Context) onNotification(g *Generation, n dispatch.Notification) {
	switch n.Kind {
	case dispatch.NotifyQueryAvailable:
		if h, ok := c.owner.Table().GetTyped(resource.ID(n.ID), resource.KindQuery); ok {
			q := h.(*Query)
			q.result, q.hasResult = n.Value, true
		}
	case dispatch.NotifySyncComplete:
		c.OnSyncComplete(n.ID)
	case dispatch.NotifyLinkResult:
		if h, ok := c.owner.Table().GetTyped(resource.ID(n.ID), resource.KindProgram); ok && n.Link != nil {
			p := h.(*Program)
			if p.link.pending && p.link.serial == n.Serial {
				c.setLinkResult(g, p, n.Link)
			}
		}
	case dispatch.NotifyCompileResult:
		if h, ok := c.owner.Table().GetTyped(resource.ID(n.ID), resource.KindShader); ok && n.Compile != nil {
			s := h.(*Shader)
			s.acked++
			if s.acked == s.compiles {
				s.compile = n.Compile
			}
		}
	case dispatch.NotifyHostError:
		c.postWarning("WebGL warning: " + n.Detail)
	case dispatch.NotifyContextLost:
		reason := n.Reason
		if reason == 0 {
			reason = dispatch.LossDriver
		}
		c.onContextLoss(reason)
	case dispatch.NotifyTransportError:
		g.disp.Fail(errors.Wrap(errors.PhaseTransport, errors.KindExecutorFailure, nil, n.Detail))
	default:
		Logger().Debug("unhandled notification", zap.Stringer("kind", n.Kind))
	}
}

// OnSyncComplete records that every fence up to id has signaled.
func (c *Context) OnSyncComplete(id uint64) {
	if id > c.syncMark {
		c.syncMark = id
	}
}

// LoseContextExtension is the WEBGL_lose_context extension object.
type LoseContextExtension struct {
	ctx *Context
}

// LoseContext emulates a context loss.
func (e *LoseContextExtension) LoseContext() { e.ctx.EmulateLoseContext() }

// RestoreContext requests a restore.
func (e *LoseContextExtension) RestoreContext() { e.ctx.RestoreContext() }
