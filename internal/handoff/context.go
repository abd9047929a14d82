// internal/handoff/context.go
//
// The shared intake context carries the most recently scanned code from one
// workflow instance to the next. It is passed explicitly to each controller
// and has a single writer at a time: binding a new owner revokes the previous
// handle, so a torn-down workflow can no longer overwrite the code its
// successor is reading.

package handoff

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Hernesto-SRL/management-front/internal/inventory"
)

// ErrNotHolder is returned when a revoked handle tries to write.
var ErrNotHolder = errors.New("handoff: writer lease is held by another workflow")

// ErrNoCode is returned by stores that hold nothing yet.
var ErrNoCode = errors.New("handoff: no code stored")

// Store persists the single hand-off code.
type Store interface {
	Load(ctx context.Context) (inventory.ScannedCode, error)
	Save(ctx context.Context, code inventory.ScannedCode) error
	Clear(ctx context.Context) error
}

// Context guards a Store with a single-writer lease.
type Context struct {
	store Store

	mu     sync.Mutex
	lease  uint64
	holder string
}

// New wraps store. A nil store keeps the code in memory.
func New(store Store) *Context {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Context{store: store}
}

// Bind grants the writer lease to owner and revokes every earlier handle.
func (c *Context) Bind(owner string) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lease++
	c.holder = owner
	return &Handle{ctx: c, lease: c.lease, owner: owner}
}

// Holder names the current lease owner, empty when released.
func (c *Context) Holder() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.holder
}

// Peek reads the stored code without a lease. ok is false when empty.
func (c *Context) Peek(ctx context.Context) (inventory.ScannedCode, bool, error) {
	code, err := c.store.Load(ctx)
	if errors.Is(err, ErrNoCode) {
		return inventory.ScannedCode{}, false, nil
	}
	if err != nil {
		return inventory.ScannedCode{}, false, fmt.Errorf("handoff: load: %w", err)
	}
	return code, !code.IsZero(), nil
}

func (c *Context) current(lease uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lease == lease && c.holder != ""
}

// Handle is one owner's view of the context.
type Handle struct {
	ctx   *Context
	lease uint64
	owner string
}

// Owner returns the name the handle was bound with.
func (h *Handle) Owner() string {
	return h.owner
}

// Holds reports whether the handle still owns the writer lease.
func (h *Handle) Holds() bool {
	return h != nil && h.ctx.current(h.lease)
}

// Read returns the stored code. Reading does not require the lease.
func (h *Handle) Read(ctx context.Context) (inventory.ScannedCode, bool, error) {
	return h.ctx.Peek(ctx)
}

// Write replaces the stored code.
func (h *Handle) Write(ctx context.Context, code inventory.ScannedCode) error {
	if !h.Holds() {
		return ErrNotHolder
	}
	if err := h.ctx.store.Save(ctx, code); err != nil {
		return fmt.Errorf("handoff: save: %w", err)
	}
	return nil
}

// Clear empties the stored code.
func (h *Handle) Clear(ctx context.Context) error {
	if !h.Holds() {
		return ErrNotHolder
	}
	if err := h.ctx.store.Clear(ctx); err != nil {
		return fmt.Errorf("handoff: clear: %w", err)
	}
	return nil
}

// Release gives up the lease if the handle still holds it.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.ctx.mu.Lock()
	defer h.ctx.mu.Unlock()
	if h.ctx.lease == h.lease {
		h.ctx.holder = ""
	}
}
