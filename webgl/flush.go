package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
)

// run forwards a state-changing call and schedules the automatic flush.
func (c *Context) run(g *Generation, method dispatch.Method, args ...any) {
	g.disp.Run(method, args...)
	c.scheduleFlush(g)
}

// runWithBytes forwards a call whose arguments reference caller memory.
// The heap stays pinned until the executor has consumed the bytes.
func (c *Context) runWithBytes(g *Generation, method dispatch.Method, args ...any) {
	var unpin func()
	if c.opts.PinHeap != nil {
		unpin = c.opts.PinHeap()
	}
	g.disp.RunWithGCData(dispatch.NewNoGC(unpin), method, args...)
	c.scheduleFlush(g)
}

// scheduleFlush posts at most one automatic flush per turn. The task holds
// the context weakly and does nothing if the generation it was scheduled
// for is gone by the time it runs.
func (c *Context) scheduleFlush(g *Generation) {
	if !c.opts.AutoFlush || c.live() != g || c.flushTask.Pending() {
		return
	}
	self, epoch := c.self, g.epoch
	c.flushTask = c.queue.Post("auto-flush", func() {
		c := self.Value()
		if c == nil {
			return
		}
		if g := c.live(); g != nil && g.epoch == epoch {
			g.disp.Run(dispatch.MethodFlush)
		}
	})
}

// FlushPending reports whether an automatic flush is scheduled.
func (c *Context) FlushPending() bool {
	return c.flushTask.Pending()
}

// availability marks queries and syncs as possibly available once control
// returns to the task queue. The batch is owned by the context; the task
// reaches it through the weak self pointer.
type availability struct {
	queries []*Query
	syncs   []*Sync
}

func (c *Context) availabilityBatch() *availability {
	if c.avail != nil {
		return c.avail
	}
	c.avail = &availability{}
	self := c.self
	c.queue.Post("availability", func() {
		c := self.Value()
		if c == nil || c.avail == nil {
			return
		}
		a := c.avail
		c.avail = nil
		for _, q := range a.queries {
			q.canBeAvailable = true
		}
		for _, s := range a.syncs {
			s.canBeAvailable = true
		}
	})
	return c.avail
}
