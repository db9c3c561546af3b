package resource

// Owner is the per-context holder of the current epoch. Every handle keeps a
// pointer to its owner plus the epoch it was created under; a handle belongs
// to the live generation iff both match, so no round-trip to the executor and
// no walk over outstanding handles is needed to invalidate them.
type Owner struct {
	table   *Table
	lastID  ID
	current Epoch
	last    Epoch
	live    bool
}

// NewOwner creates an owner with no live epoch.
func NewOwner() *Owner {
	return &Owner{table: NewTable()}
}

// Begin starts a new epoch and makes it current.
func (o *Owner) Begin() Epoch {
	o.last++
	o.current = o.last
	o.live = true
	return o.current
}

// End retires the current epoch. Every handle created under it becomes
// permanently unusable; its table entries are orphaned.
func (o *Owner) End() Epoch {
	if !o.live {
		return 0
	}
	ended := o.current
	o.live = false
	o.current = 0
	o.table.Orphan(ended)
	return ended
}

// Current returns the live epoch, if any.
func (o *Owner) Current() (Epoch, bool) {
	return o.current, o.live
}

// NextID allocates the next resource ID. IDs keep increasing across epochs.
func (o *Owner) NextID() ID {
	o.lastID++
	return o.lastID
}

// Table returns the registry of live handles.
func (o *Owner) Table() *Table {
	return o.table
}
