// Package resource provides identity and lifetime tracking for GPU resource handles.
//
// Every scripting-visible resource (buffer, texture, program, ...) embeds an
// Object. An Object carries a stable ID, the Epoch it was created under and a
// pointer to its context's Owner:
//
//	owner := resource.NewOwner()
//	owner.Begin() // context becomes live
//
//	buf := &Buffer{}
//	buf.Init(owner, resource.KindBuffer, buf)
//
//	buf.IsForOwner(owner) // true
//	owner.End()           // context lost
//	buf.IsForOwner(owner) // false, forever
//
// # Epochs
//
// A handle is usable only while its epoch is the owner's current epoch. Ending
// an epoch invalidates every handle created under it at once; beginning a new
// one never revives them. IDs keep increasing across epochs and are never
// reused.
//
// # Reference Counts
//
// Retain and Release model both the scripting engine's references and the
// context's internal bindings. When the count reaches zero the finalizer runs
// and the handle leaves the table. Assign and Clear implement owning-pointer
// assignment for binding slots:
//
//	resource.Assign(&state.boundBuffer, buf) // retains buf, releases the old one
//	resource.Clear(&state.boundBuffer)
//
// # Observers
//
// The Table reports lifecycle events (created, delete-requested, finalized,
// orphaned) to subscribers:
//
//	unsubscribe := owner.Table().Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("%s %s#%d", e.Type, e.Kind, e.ID)
//	}))
//	defer unsubscribe()
package resource
