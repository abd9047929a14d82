// internal/refdata/loader.go
//
// Reference collections (warehouses, categories) needed to complete record
// forms. Each collection is fetched once per process and shared by every
// workflow instance; a successful create elsewhere invalidates it.

package refdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Hernesto-SRL/management-front/internal/backend"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/metrics"
)

// Collection names.
const (
	Warehouses = "warehouses"
	Categories = "categories"
)

// Getter is the slice of the backend client the loader uses.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (*backend.Response, error)
}

// Status is the load state of one collection.
type Status struct {
	Loading bool
	Loaded  bool
	Err     error
}

// Failed reports whether the last fetch failed, nothing is cached and no
// retry is running.
func (s Status) Failed() bool {
	return !s.Loaded && !s.Loading && s.Err != nil
}

// Snapshot is the {data, isLoading, isError} view of a collection.
type Snapshot[T any] struct {
	Data    []T
	Loading bool
	Err     error
}

// Fetcher retrieves a full collection.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Collection caches one reference list. Failures are not cached.
type Collection[T any] struct {
	name  string
	fetch Fetcher[T]
	group singleflight.Group

	mu      sync.RWMutex
	data    []T
	loaded  bool
	loading bool
	err     error
}

// NewCollection wraps fetch with process-lifetime caching.
func NewCollection[T any](name string, fetch Fetcher[T]) *Collection[T] {
	return &Collection[T]{name: name, fetch: fetch}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Load returns the cached list, fetching it if needed. Concurrent callers
// share one fetch.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	if c.loaded {
		out := c.copyLocked()
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()
	return c.refresh(ctx)
}

// Ensure is Load without the data.
func (c *Collection[T]) Ensure(ctx context.Context) error {
	_, err := c.Load(ctx)
	return err
}

// Invalidate drops the cached list and fetches it again.
func (c *Collection[T]) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.loaded = false
	c.data = nil
	c.mu.Unlock()
	c.group.Forget(c.name)
	_, err := c.refresh(ctx)
	return err
}

// Status reports the current load state.
func (c *Collection[T]) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{Loading: c.loading, Loaded: c.loaded, Err: c.err}
}

// Snapshot returns a copy of the data with its load flags.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot[T]{Data: c.copyLocked(), Loading: c.loading, Err: c.err}
}

func (c *Collection[T]) refresh(ctx context.Context) ([]T, error) {
	v, err, _ := c.group.Do(c.name, func() (any, error) {
		c.mu.Lock()
		c.loading = true
		c.mu.Unlock()

		data, err := c.fetch(ctx)
		metrics.RecordRefDataLoad(c.name, err)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.loading = false
		if err != nil {
			c.err = err
			return nil, err
		}
		c.err = nil
		c.loaded = true
		c.data = data
		return c.copyLocked(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

func (c *Collection[T]) copyLocked() []T {
	out := make([]T, len(c.data))
	copy(out, c.data)
	return out
}

// Source is the type-erased view the workflow controller depends on.
type Source interface {
	Name() string
	Ensure(ctx context.Context) error
	Invalidate(ctx context.Context) error
	Status() Status
}

// Loader owns the process-wide reference collections.
type Loader struct {
	Warehouses *Collection[inventory.Warehouse]
	Categories *Collection[inventory.Category]
}

// NewLoader builds both collections over api.
func NewLoader(api Getter) *Loader {
	return &Loader{
		Warehouses: NewCollection(Warehouses, fetchList[inventory.Warehouse](api, backend.PathWarehouse)),
		Categories: NewCollection(Categories, fetchList[inventory.Category](api, backend.PathCategories)),
	}
}

// For returns the collection a workflow kind requires before its form.
func (l *Loader) For(kind inventory.WorkflowKind) Source {
	if kind == inventory.KindRegisterProduct {
		return l.Categories
	}
	return l.Warehouses
}

// Invalidate re-fetches the named collection.
func (l *Loader) Invalidate(ctx context.Context, name string) error {
	switch name {
	case Warehouses:
		return l.Warehouses.Invalidate(ctx)
	case Categories:
		return l.Categories.Invalidate(ctx)
	default:
		return fmt.Errorf("refdata: unknown collection %q", name)
	}
}

func fetchList[T any](api Getter, path string) Fetcher[T] {
	return func(ctx context.Context) ([]T, error) {
		resp, err := api.Get(ctx, path, nil)
		if err != nil {
			return nil, fmt.Errorf("refdata: fetch %s: %w", path, err)
		}
		if resp.Status != http.StatusOK {
			return nil, fmt.Errorf("refdata: fetch %s: status %d", path, resp.Status)
		}
		var out []T
		if err := resp.Decode(&out); err != nil {
			return nil, fmt.Errorf("refdata: fetch %s: %w", path, err)
		}
		return out, nil
	}
}
