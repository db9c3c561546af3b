package webgl

import (
	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/glenum"
	"github.com/wippyai/glproxy/resource"
)

// querySlot maps a query target to its active-query slot. The two
// any-samples targets share one.
func querySlot(target uint32) (uint32, bool) {
	switch target {
	case glenum.AnySamplesPassed, glenum.AnySamplesPassedConservative:
		return glenum.AnySamplesPassed, true
	case glenum.TransformFeedbackPrimitivesWritten, glenum.TimeElapsed:
		return target, true
	}
	return 0, false
}

// BeginQuery starts q on target.
func (c *Context) BeginQuery(target uint32, q *Query) {
	defer c.scope("beginQuery")()
	if !valid(c, q, "query") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	slot, ok := querySlot(target)
	if !ok {
		c.enumError("target", target)
		return
	}
	if g.queries[slot] != nil {
		c.enqueueError(glenum.InvalidOperation, "A query is already active for this target.")
		return
	}
	for _, active := range g.queries {
		if active == q {
			c.enqueueError(glenum.InvalidOperation, "`query` is already active.")
			return
		}
	}
	if q.target != 0 && q.target != target {
		c.enqueueError(glenum.InvalidOperation, "`query` was previously used with a different target.")
		return
	}
	q.target = target
	q.canBeAvailable, q.hasResult, q.result = false, false, 0
	bindAt(g.queries, slot, q)
	c.run(g, dispatch.MethodBeginQuery, target, idOf(q))
}

// EndQuery ends the query active on target. Its result is not reported
// available before control returns to the task queue.
func (c *Context) EndQuery(target uint32) {
	defer c.scope("endQuery")()
	g := c.live()
	if g == nil {
		return
	}
	slot, ok := querySlot(target)
	if !ok {
		c.enumError("target", target)
		return
	}
	q := g.queries[slot]
	if q == nil || q.target != target {
		c.enqueueError(glenum.InvalidOperation, "No query is active for this target.")
		return
	}
	batch := c.availabilityBatch()
	batch.queries = append(batch.queries, q)
	bindAt(g.queries, slot, nil)
	c.run(g, dispatch.MethodEndQuery, target)
}

// GetQuery returns the query active on target for CURRENT_QUERY.
func (c *Context) GetQuery(target, pname uint32) any {
	defer c.scope("getQuery")()
	g := c.live()
	if g == nil {
		return nil
	}
	slot, ok := querySlot(target)
	if !ok {
		c.enumError("target", target)
		return nil
	}
	if pname != glenum.CurrentQuery {
		c.enumError("pname", pname)
		return nil
	}
	q := g.queries[slot]
	if q == nil || q.target != target {
		return nil
	}
	return q
}

// GetQueryParameter answers QUERY_RESULT_AVAILABLE and QUERY_RESULT.
// Neither is available during the task that ended the query.
func (c *Context) GetQueryParameter(q *Query, pname uint32) any {
	defer c.scope("getQueryParameter")()
	if !valid(c, q, "query") {
		return nil
	}
	g := c.live()
	if g == nil {
		return nil
	}
	if pname != glenum.QueryResult && pname != glenum.QueryResultAvailable {
		c.enumError("pname", pname)
		return nil
	}
	if q.target == 0 {
		c.enqueueError(glenum.InvalidOperation, "`query` has never been active.")
		return nil
	}
	if slot, _ := querySlot(q.target); g.queries[slot] == q {
		c.enqueueError(glenum.InvalidOperation, "`query` is still active.")
		return nil
	}
	if !q.canBeAvailable {
		if pname == glenum.QueryResultAvailable {
			return false
		}
		c.enqueuePerfWarning("Query results are not available until control returns to the event loop.")
		return nil
	}
	if !q.hasResult {
		var avail uint64
		if !g.disp.Query(&avail, dispatch.MethodGetQueryParameter, idOf(q), glenum.QueryResultAvailable) {
			return nil
		}
		if avail != 0 {
			var v uint64
			if !g.disp.Query(&v, dispatch.MethodGetQueryParameter, idOf(q), glenum.QueryResult) {
				return nil
			}
			q.result, q.hasResult = v, true
		}
	}
	if pname == glenum.QueryResultAvailable {
		return q.hasResult
	}
	if !q.hasResult {
		return nil
	}
	switch q.target {
	case glenum.AnySamplesPassed, glenum.AnySamplesPassedConservative:
		return q.result != 0
	}
	return q.result
}

// FenceSync inserts a fence into the command stream.
func (c *Context) FenceSync(condition, flags uint32) *Sync {
	defer c.scope("fenceSync")()
	g := c.live()
	if g == nil {
		return nil
	}
	if condition != glenum.SyncGPUCommandsComplete {
		c.enumError("condition", condition)
		return nil
	}
	if flags != 0 {
		c.enqueueError(glenum.InvalidValue, "`flags` must be 0.")
		return nil
	}
	s := &Sync{}
	c.register(&s.object, resource.KindSync, s)
	s.SetFinalizer(func() { c.finalizeObject(s) })
	batch := c.availabilityBatch()
	batch.syncs = append(batch.syncs, s)
	c.run(g, dispatch.MethodFenceSync, idOf(s), condition, flags)
	return s
}

// signaled reports whether s is known complete from sync notifications.
func (c *Context) signaled(s *Sync) bool {
	return uint64(s.ID()) <= c.syncMark
}

// ClientWaitSync polls s. A sync never completes during the task that
// created it.
func (c *Context) ClientWaitSync(s *Sync, flags uint32, timeout int64) uint32 {
	defer c.scope("clientWaitSync")()
	if !valid(c, s, "sync") {
		return glenum.WaitFailed
	}
	g := c.live()
	if g == nil {
		return glenum.WaitFailed
	}
	if flags&^glenum.SyncFlushCommandsBit != 0 {
		c.enqueueError(glenum.InvalidValue, "`flags` may only contain SYNC_FLUSH_COMMANDS_BIT.")
		return glenum.WaitFailed
	}
	if timeout < 0 {
		c.enqueueError(glenum.InvalidValue, "`timeout` must be non-negative.")
		return glenum.WaitFailed
	}
	if c.signaled(s) {
		return glenum.AlreadySignaled
	}
	if !s.canBeAvailable {
		if flags&glenum.SyncFlushCommandsBit != 0 {
			c.Flush()
		}
		return glenum.TimeoutExpired
	}
	var res uint32
	if !g.disp.Query(&res, dispatch.MethodClientWaitSync, idOf(s), flags, timeout) {
		return glenum.WaitFailed
	}
	return res
}

// WaitSync makes the executor wait on s before later commands.
func (c *Context) WaitSync(s *Sync, flags uint32, timeout int64) {
	defer c.scope("waitSync")()
	if !valid(c, s, "sync") {
		return
	}
	g := c.live()
	if g == nil {
		return
	}
	if flags != 0 {
		c.enqueueError(glenum.InvalidValue, "`flags` must be 0.")
		return
	}
	if timeout != glenum.TimeoutIgnored {
		c.enqueueError(glenum.InvalidValue, "`timeout` must be TIMEOUT_IGNORED.")
		return
	}
	c.run(g, dispatch.MethodWaitSync, idOf(s), flags, timeout)
}

// GetSyncParameter answers sync parameters. SYNC_STATUS stays UNSIGNALED
// during the task that created the sync.
func (c *Context) GetSyncParameter(s *Sync, pname uint32) any {
	defer c.scope("getSyncParameter")()
	if !valid(c, s, "sync") {
		return nil
	}
	g := c.live()
	if g == nil {
		return nil
	}
	switch pname {
	case glenum.ObjectType:
		return glenum.SyncFence
	case glenum.SyncCondition:
		return glenum.SyncGPUCommandsComplete
	case glenum.SyncFlags:
		return uint32(0)
	case glenum.SyncStatus:
		if c.signaled(s) {
			return glenum.Signaled
		}
		if !s.canBeAvailable {
			return glenum.Unsignaled
		}
		var status uint32
		if !g.disp.Query(&status, dispatch.MethodGetSyncParameter, idOf(s), pname) {
			return nil
		}
		return status
	}
	c.enumError("pname", pname)
	return nil
}
